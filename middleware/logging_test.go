package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/broady/commonizer/cir"
	"github.com/broady/commonizer/classifiers"
	"github.com/broady/commonizer/engine"
)

func testGroup() *engine.Group {
	return &engine.Group{
		ID:   cir.ClassifierID{Package: "lib", Name: "Handle"},
		Kind: cir.DeclTypeAlias,
		Variants: []cir.Declaration{
			&cir.TypeAlias{Name: "Handle", Underlying: cir.ClassRef("shared", "Box")},
			&cir.TypeAlias{Name: "Handle", Underlying: cir.ClassRef("shared", "Box")},
		},
	}
}

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func TestLogging_Commonized(t *testing.T) {
	var buf bytes.Buffer
	interceptor := Logging(newLogger(&buf))

	handler := func(ctx context.Context, g *engine.Group) (engine.Outcome, error) {
		return engine.Outcome{ID: g.ID, Commonized: true, Strategy: cir.StrategyLiftUp}, nil
	}

	out, err := interceptor(context.Background(), testGroup(), handler)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !out.Commonized {
		t.Error("expected the handler's outcome to be returned")
	}

	logOutput := buf.String()
	for _, want := range []string{"group started", "group commonized", "lib.Handle", `"strategy":"lift-up"`} {
		if !strings.Contains(logOutput, want) {
			t.Errorf("expected %q in log output:\n%s", want, logOutput)
		}
	}
}

func TestLogging_NotCommonized(t *testing.T) {
	var buf bytes.Buffer
	interceptor := Logging(newLogger(&buf))

	handler := func(ctx context.Context, g *engine.Group) (engine.Outcome, error) {
		return engine.Outcome{ID: g.ID}, nil
	}

	if _, err := interceptor(context.Background(), testGroup(), handler); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "group not commonized") {
		t.Error("expected 'group not commonized' in log output")
	}
}

func TestLogging_Error(t *testing.T) {
	var buf bytes.Buffer
	interceptor := Logging(newLogger(&buf))

	testErr := errors.New("test error")
	handler := func(ctx context.Context, g *engine.Group) (engine.Outcome, error) {
		return engine.Outcome{}, testErr
	}

	_, err := interceptor(context.Background(), testGroup(), handler)
	if err != testErr {
		t.Errorf("expected test error, got %v", err)
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, "group failed") {
		t.Error("expected 'group failed' in log output")
	}
	if !strings.Contains(logOutput, "test error") {
		t.Error("expected error message in log output")
	}
}

func TestLogging_NilLogger(t *testing.T) {
	interceptor := Logging(nil)
	handler := func(ctx context.Context, g *engine.Group) (engine.Outcome, error) {
		return engine.Outcome{}, nil
	}
	if _, err := interceptor(context.Background(), testGroup(), handler); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLogging_WithEngine(t *testing.T) {
	var buf bytes.Buffer
	cache, err := classifiersForTest()
	if err != nil {
		t.Fatal(err)
	}
	e := engine.New(cache, engine.WithInterceptors(Logging(newLogger(&buf))))

	out, err := e.Commonize(context.Background(), testGroup())
	if err != nil {
		t.Fatalf("Commonize failed: %v", err)
	}
	if out.Strategy != cir.StrategyShortCircuit {
		t.Errorf("strategy = %s, want short-circuit", out.Strategy)
	}
	if !strings.Contains(buf.String(), `"strategy":"short-circuit"`) {
		t.Errorf("expected strategy in log output:\n%s", buf.String())
	}
}

func classifiersForTest() (*classifiers.Cache, error) {
	return classifiers.New(classifiers.PrefixPredicate("shared"))
}
