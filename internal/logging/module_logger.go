package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-zoe/pkg/interfaces"
)

const (
	rootModule      = "zoe"
	configModule    = "zoe.config"
	contentModule   = "zoe.content"
	markdownModule  = "zoe.markdown"
	gitsyncModule   = "zoe.gitsync"
	remoteModule    = "zoe.remote"
	cacheModule     = "zoe.cache"
	generatorModule = "zoe.generator"
)

const (
	fieldSourcePath = "source_path"
	fieldSourceName = "source"
	fieldRoute      = "route"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ConfigLogger returns the logger namespace reserved for configuration loading.
func ConfigLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, configModule)
}

// ContentLogger returns the logger namespace reserved for content discovery.
func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

// MarkdownLogger returns the logger namespace reserved for markdown rendering.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// GitSyncLogger returns the logger namespace reserved for git content sync.
func GitSyncLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, gitsyncModule)
}

// RemoteLogger returns the logger namespace reserved for remote API access.
func RemoteLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, remoteModule)
}

// CacheLogger returns the logger namespace reserved for the response cache.
func CacheLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, cacheModule)
}

// GeneratorLogger returns the logger namespace reserved for static builds.
func GeneratorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, generatorModule)
}

// WithSourceContext enriches the logger with the content source name and file
// path being processed. Empty values are ignored.
func WithSourceContext(logger interfaces.Logger, source, path string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(source); trimmed != "" {
		fields[fieldSourceName] = trimmed
	}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldSourcePath] = trimmed
	}
	return WithFields(logger, fields)
}

// WithRoute attaches the route being rendered.
func WithRoute(logger interfaces.Logger, route string) interfaces.Logger {
	route = strings.TrimSpace(route)
	if route == "" {
		return logger
	}
	return WithFields(logger, map[string]any{fieldRoute: route})
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
