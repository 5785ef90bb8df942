// Package analytics reports anonymous usage events to PostHog. One
// client lives for the whole command; every event hangs off a
// per-install identifier minted on first run. Opting out via
// --disable-metrics (or building without a public key) turns every call
// into a no-op.
package analytics

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/posthog/posthog-go"
)

const (
	EventAnalyze = "analyze"
	EventVersion = "version"
	EventError   = "error"
)

// PublicKey is injected at build time; without it telemetry stays off.
var PublicKey string

var (
	client posthog.Client
	id     string
)

// Init opens the shared telemetry client unless the user opted out.
func Init(disableMetrics bool) {
	if disableMetrics || PublicKey == "" {
		return
	}
	c, err := posthog.NewWithConfig(PublicKey, posthog.Config{
		Endpoint: "https://us.i.posthog.com",
	})
	if err != nil {
		return
	}
	client = c
	id = installID()
}

// Close flushes queued events. Call once when the command finishes.
func Close() {
	if client == nil {
		return
	}
	client.Close() //nolint:all
	client = nil
}

// Enabled reports whether events are actually being sent.
func Enabled() bool { return client != nil }

// Analyze records one analyze run: how many functions it covered and
// which optional stages were on.
func Analyze(functions int, sccp bool, format string) {
	capture(EventAnalyze, posthog.NewProperties().
		Set("functions", functions).
		Set("sccp", sccp).
		Set("format", format))
}

// Version records a version lookup.
func Version() {
	capture(EventVersion, nil)
}

// Error records a failed run, tagged with the pipeline stage that
// refused the input.
func Error(stage string) {
	capture(EventError, posthog.NewProperties().Set("stage", stage))
}

func capture(event string, props posthog.Properties) {
	if client == nil {
		return
	}
	// Enqueue only buffers; failures surface on Close and are not worth
	// a user-visible message.
	_ = client.Enqueue(posthog.Capture{
		DistinctId: id,
		Event:      event,
		Properties: props,
	})
}

// installID loads the per-install identifier from ~/.bril-ssa/.env,
// minting and persisting a fresh one on first run. A home directory we
// cannot use degrades to a throwaway id rather than an error.
func installID() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return uuid.New().String()
	}
	envFile := filepath.Join(home, ".bril-ssa", ".env")
	if env, err := godotenv.Read(envFile); err == nil && env["uuid"] != "" {
		return env["uuid"]
	}
	fresh := uuid.New().String()
	if err := os.MkdirAll(filepath.Dir(envFile), os.ModePerm); err != nil {
		return fresh
	}
	_ = godotenv.Write(map[string]string{"uuid": fresh}, envFile)
	return fresh
}
