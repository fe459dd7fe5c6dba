package app

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mieux-choisir/foodmap"
	"github.com/mieux-choisir/foodmap/internal/store/memory"
)

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	nop := zerolog.Nop()
	opts = append([]Option{WithStore(memory.New().Opener()), WithLogger(&nop)}, opts...)
	app, err := New("1.0.0", "abc123", "2024-01-01", "test", opts...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return app
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app := newTestApp(t)

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Commit() != "abc123" {
		t.Errorf("Commit() = %s, want abc123", app.Commit())
	}
	if app.Date() != "2024-01-01" {
		t.Errorf("Date() = %s, want 2024-01-01", app.Date())
	}
	if app.BuiltBy() != "test" {
		t.Errorf("BuiltBy() = %s, want test", app.BuiltBy())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if app.Config() == nil {
		t.Error("Config() returned nil")
	}
}

// TestApp_Client_Singleton verifies that Client() returns the same instance.
func TestApp_Client_Singleton(t *testing.T) {
	app := newTestApp(t)

	c1, err := app.Client()
	if err != nil {
		t.Fatalf("Client() failed: %v", err)
	}
	c2, err := app.Client()
	if err != nil {
		t.Fatalf("Client() failed on second call: %v", err)
	}
	if c1 != c2 {
		t.Error("Client() returned different instances, expected singleton")
	}
}

// TestApp_Client_ThreadSafe verifies concurrent Client() calls are safe.
func TestApp_Client_ThreadSafe(t *testing.T) {
	app := newTestApp(t)

	const goroutines = 50
	var wg sync.WaitGroup
	results := make([]foodmap.Client, goroutines)
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = app.Client()
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("Goroutine %d: Client() failed: %v", i, err)
		}
	}
	for i, c := range results[1:] {
		if c != results[0] {
			t.Errorf("Goroutine %d got different client instance", i+1)
		}
	}
}

// TestApp_ClientWithOptions verifies custom options create new instances.
func TestApp_ClientWithOptions(t *testing.T) {
	app := newTestApp(t)

	c1, err := app.ClientWithOptions(foodmap.WithProvenance(true))
	if err != nil {
		t.Fatalf("ClientWithOptions() failed: %v", err)
	}
	defer c1.Close(context.Background()) //nolint:errcheck

	def, err := app.Client()
	if err != nil {
		t.Fatalf("Client() failed: %v", err)
	}
	if c1 == def {
		t.Error("ClientWithOptions() returned the default singleton")
	}

	if _, err := app.ClientWithOptions(foodmap.WithBatchSize(0)); err == nil {
		t.Error("ClientWithOptions() accepted an invalid batch size")
	}
}

// TestApp_WithOptions tests functional options pattern.
func TestApp_WithOptions(t *testing.T) {
	customConfig := &Config{Store: StoreSQLite, Format: "json"}
	app := newTestApp(t, WithConfig(customConfig))

	if app.Config() != customConfig {
		t.Error("WithConfig() option not applied")
	}
	if app.OutputFormat() != "json" {
		t.Errorf("OutputFormat() = %s, want json", app.OutputFormat())
	}

	_, err := New("1.0.0", "test", "2024-01-01", "test", WithConfig(&Config{Store: "redis"}))
	if err == nil {
		t.Error("WithConfig() accepted an unknown store")
	}
}

// TestApp_Shutdown verifies graceful shutdown.
func TestApp_Shutdown(t *testing.T) {
	app := newTestApp(t)
	c, err := app.Client()
	if err != nil {
		t.Fatalf("Client() failed: %v", err)
	}

	ctx := context.Background()
	if err := app.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() failed: %v", err)
	}
	if _, err := c.Match(ctx); err == nil {
		t.Error("client still usable after Shutdown()")
	}
	if err := app.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown() failed: %v", err)
	}
}

// TestApp_VersionCommand checks the version output.
func TestApp_VersionCommand(t *testing.T) {
	app := newTestApp(t)

	var out bytes.Buffer
	cmd := app.CreateVersionCommand()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	for _, want := range []string{"foodmap version 1.0.0", "commit: abc123", "built by: test", "platform: "} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("version output missing %q:\n%s", want, out.String())
		}
	}
}

// TestApp_RootCommand checks command registration and groups.
func TestApp_RootCommand(t *testing.T) {
	app := newTestApp(t)
	root := app.createRootCommand()

	for _, name := range []string{"import", "match", "merge", "report", "run", "categories", "taxonomy", "provenance", "version"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}

// TestApp_Execute runs a command end to end through the root command.
func TestApp_Execute(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	app := newTestApp(t)

	err := app.Execute(context.Background(), []string{"match", "-o", "json", "--log-level", "error"})
	if err != nil {
		t.Fatalf("Execute(match) failed: %v", err)
	}
	if app.Config().Format != "json" {
		t.Errorf("Format = %s, want json", app.Config().Format)
	}

	if err := app.Execute(context.Background(), []string{"match", "--store", "redis"}); err == nil {
		t.Error("Execute() accepted an unknown store")
	}
}
