package gologger

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-zoe/pkg/interfaces"
)

func TestNewProviderAcceptsSiteLoggingConfig(t *testing.T) {
	cases := []Config{
		{},
		{Level: "debug", Format: FormatConsole},
		{Level: "WARNING", Format: FormatJSON, AddSource: true},
		{Level: "trace", Format: FormatPretty, Focus: []string{"zoe.remote"}},
	}
	for _, cfg := range cases {
		p, err := NewProvider(cfg)
		if err != nil {
			t.Fatalf("config %+v: %v", cfg, err)
		}
		logger := p.GetLogger("zoe.generator")
		if logger == nil {
			t.Fatalf("config %+v: expected logger", cfg)
		}
		logger.(interfaces.FieldsLogger).WithFields(map[string]any{"build_id": "b1"}).Debug("generator.build.start")
	}
}

func TestAdapterForwardsLevelsFieldsAndContext(t *testing.T) {
	stub := &stubLogger{}
	logger := wrap(stub).(*adapter)

	for _, emit := range []func(string, ...any){
		logger.Trace, logger.Debug, logger.Info, logger.Warn, logger.Error, logger.Fatal,
	} {
		emit("content.load", "dir", "content")
	}
	want := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	if len(stub.calls) != len(want) {
		t.Fatalf("expected %d calls, got %v", len(want), stub.calls)
	}
	for i := range want {
		if stub.calls[i] != want[i] {
			t.Fatalf("call %d: expected %s, got %s", i, want[i], stub.calls[i])
		}
	}

	fields := map[string]any{"source": "posts"}
	logger.WithFields(fields)
	fields["source"] = "pages"
	if len(stub.fields) != 1 || stub.fields[0]["source"] != "posts" {
		t.Fatalf("expected fields to be copied before forwarding, got %v", stub.fields)
	}
	if logger.WithFields(nil) != logger {
		t.Fatal("expected empty fields to keep the same logger")
	}

	ctx := context.WithValue(context.Background(), struct{}{}, "build")
	logger.WithContext(ctx)
	if len(stub.contexts) != 1 || stub.contexts[0] != ctx {
		t.Fatalf("expected context to reach the inner logger, got %v", stub.contexts)
	}
}

type stubLogger struct {
	calls    []string
	fields   []map[string]any
	contexts []context.Context
}

var _ glog.Logger = (*stubLogger)(nil)
var _ glog.FieldsLogger = (*stubLogger)(nil)

func (s *stubLogger) Trace(string, ...any) { s.calls = append(s.calls, "trace") }
func (s *stubLogger) Debug(string, ...any) { s.calls = append(s.calls, "debug") }
func (s *stubLogger) Info(string, ...any)  { s.calls = append(s.calls, "info") }
func (s *stubLogger) Warn(string, ...any)  { s.calls = append(s.calls, "warn") }
func (s *stubLogger) Error(string, ...any) { s.calls = append(s.calls, "error") }
func (s *stubLogger) Fatal(string, ...any) { s.calls = append(s.calls, "fatal") }

func (s *stubLogger) WithContext(ctx context.Context) glog.Logger {
	s.contexts = append(s.contexts, ctx)
	return s
}

func (s *stubLogger) WithFields(fields map[string]any) glog.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	s.fields = append(s.fields, copied)
	return s
}

func TestNewProviderRejectsUnknownOptions(t *testing.T) {
	if _, err := NewProvider(Config{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if _, err := NewProvider(Config{Level: "loud"}); err == nil {
		t.Fatal("expected error for unsupported level")
	}
}

func TestCompactFocus(t *testing.T) {
	got := compact([]string{" zoe.remote ", "", "zoe.remote", "zoe.generator"})
	if len(got) != 2 || got[0] != "zoe.remote" || got[1] != "zoe.generator" {
		t.Fatalf("unexpected focus list %v", got)
	}
}

func TestNilProviderReturnsNoOp(t *testing.T) {
	var p *Provider
	if p.GetLogger("zoe") == nil {
		t.Fatal("expected no-op logger")
	}
}
