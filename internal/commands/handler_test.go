package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-zoe/pkg/interfaces"
)

type testMessage struct {
	Name string
}

func (testMessage) Type() string { return "zoe.test.message" }

func (testMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "zoe.test.invalid" }

func (invalidMessage) Validate() error { return errors.New("invalid") }

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler(func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler(func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler(func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, testMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	h := NewHandler(func(ctx context.Context, msg testMessage) error {
		return errors.New("boom")
	})

	err := h.Execute(context.Background(), testMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestHandlerKeepsAlreadyCategorisedErrors(t *testing.T) {
	h := NewHandler(func(ctx context.Context, msg testMessage) error {
		return ServiceUnavailable(errors.New("no generator"))
	})

	err := h.Execute(context.Background(), testMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	h := NewHandler(func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
			return nil
		}
	}, WithTimeout[testMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), testMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
}

func TestHandlerTelemetryReceivesMessageFields(t *testing.T) {
	var got TelemetryInfo
	calls := 0
	h := NewHandler(func(ctx context.Context, msg testMessage) error {
		return nil
	},
		WithOperation[testMessage]("test.run"),
		WithMessageFields(func(msg testMessage) map[string]any {
			return map[string]any{"name": msg.Name}
		}),
		WithTelemetry(func(_ context.Context, _ testMessage, info TelemetryInfo) {
			calls++
			got = info
		}),
	)

	if err := h.Execute(context.Background(), testMessage{Name: "site"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected telemetry once, got %d", calls)
	}
	if got.Status != TelemetryStatusSuccess || got.Command != "zoe.test.message" || got.Operation != "test.run" {
		t.Fatalf("unexpected telemetry %+v", got)
	}
	if got.Fields["name"] != "site" || got.Fields["operation"] != "test.run" {
		t.Fatalf("expected message fields, got %v", got.Fields)
	}
}

func TestHandlerTelemetryStatuses(t *testing.T) {
	statuses := map[string]TelemetryStatus{}
	record := func(label string) Telemetry[testMessage] {
		return func(_ context.Context, _ testMessage, info TelemetryInfo) {
			statuses[label] = info.Status
		}
	}

	failing := NewHandler(func(context.Context, testMessage) error {
		return errors.New("boom")
	}, WithTelemetry(record("failed")))
	_ = failing.Execute(context.Background(), testMessage{})

	cancelled := NewHandler(func(context.Context, testMessage) error {
		return context.Canceled
	}, WithTelemetry(record("cancelled")))
	_ = cancelled.Execute(context.Background(), testMessage{})

	if statuses["failed"] != TelemetryStatusFailed {
		t.Fatalf("expected failed status, got %q", statuses["failed"])
	}
	if statuses["cancelled"] != TelemetryStatusContextError {
		t.Fatalf("expected context error status, got %q", statuses["cancelled"])
	}
}

type namedProvider struct {
	names []string
}

func (p *namedProvider) GetLogger(name string) interfaces.Logger {
	p.names = append(p.names, name)
	return nil
}

func TestCommandLoggerScopesModule(t *testing.T) {
	provider := &namedProvider{}
	if logger := CommandLogger(provider, " site "); logger == nil {
		t.Fatal("expected logger")
	}
	if len(provider.names) != 1 || provider.names[0] != "zoe.commands.site" {
		t.Fatalf("expected zoe.commands.site module, got %v", provider.names)
	}
}
