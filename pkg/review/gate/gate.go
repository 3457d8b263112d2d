package gate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"florence-hq/vesta/pkg/kvstore"
)

// DefaultPromptedAtKey is the storage key under which the timestamp of the
// last successful prompt is persisted.
const DefaultPromptedAtKey = "review.last_prompt_at"

// Reason identifies which guard refused admission.
type Reason string

const (
	// ReasonDebounced means the call arrived within the debounce interval
	// of the previous call.
	ReasonDebounced Reason = "debounced"
	// ReasonLifetime means a prompt was already recorded this process
	// lifetime.
	ReasonLifetime Reason = "lifetime"
	// ReasonCooldown means the last successful prompt is more recent than
	// the cooldown interval.
	ReasonCooldown Reason = "cooldown"
)

// Verdict is the outcome of an admission check.
type Verdict struct {
	// Admitted reports whether the caller may proceed with a prompt cycle.
	Admitted bool
	// Reason identifies the refusing guard when Admitted is false.
	Reason Reason
}

// Config controls the gate's timers.
type Config struct {
	// Debounce is the minimum interval between admission checks. Calls
	// arriving closer together than this are refused, and every call
	// re-arms the interval. Zero disables the guard.
	Debounce time.Duration

	// Cooldown is the minimum interval between successful prompts. Zero
	// disables the guard.
	Cooldown time.Duration

	// DebugBypass disables the lifetime and cooldown guards. The debounce
	// guard applies regardless.
	DebugBypass bool

	// PromptedAtKey is the storage key for the persisted prompt timestamp.
	// Defaults to DefaultPromptedAtKey.
	PromptedAtKey string
}

// DefaultConfig returns a Config with production-ready intervals.
func DefaultConfig() *Config {
	return &Config{
		Debounce: time.Second,
		Cooldown: 24 * time.Hour,
	}
}

// State is a point-in-time snapshot of the gate.
type State struct {
	// LastCheckAt is the time of the most recent admission check, admitted
	// or not. Zero if no check has happened yet.
	LastCheckAt time.Time `json:"last_check_at"`
	// LastPromptAt is the time of the most recent recorded prompt. Zero if
	// no prompt has ever been recorded.
	LastPromptAt time.Time `json:"last_prompt_at"`
	// PromptedThisLifetime reports whether the lifetime latch is set.
	PromptedThisLifetime bool `json:"prompted_this_lifetime"`
	// DebugBypass reports whether the bypass is active.
	DebugBypass bool `json:"debug_bypass"`
}

// Gate enforces the debounce, lifetime and cooldown guards. The prompt
// timestamp is written through to a kvstore.Store so the cooldown survives
// restarts; storage failures degrade the gate to memory-only operation
// rather than blocking the caller.
type Gate struct {
	mu     sync.Mutex
	cfg    Config
	store  kvstore.Store
	logger *slog.Logger

	lastCheckAt  time.Time
	lastPromptAt time.Time
	prompted     bool
}

// New creates a gate backed by the given store. A nil config uses
// DefaultConfig. A nil store falls back to an in-memory store, which makes
// the cooldown process-local. The persisted prompt timestamp, if any, is
// loaded immediately; a load failure is logged and treated as no history.
func New(cfg *Config, store kvstore.Store, logger *slog.Logger) (*Gate, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Debounce < 0 {
		return nil, fmt.Errorf("debounce cannot be negative")
	}
	if cfg.Cooldown < 0 {
		return nil, fmt.Errorf("cooldown cannot be negative")
	}
	if cfg.PromptedAtKey == "" {
		cfg.PromptedAtKey = DefaultPromptedAtKey
	}
	if store == nil {
		store = kvstore.NewMemoryStore()
	}
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gate{
		cfg:    *cfg,
		store:  store,
		logger: logger.With("component", "review.gate"),
	}

	last, err := store.GetTime(context.Background(), cfg.PromptedAtKey)
	if err != nil {
		g.logger.Error("failed to load prompt timestamp, starting with no history",
			"key", cfg.PromptedAtKey,
			"error", err)
	} else {
		g.lastPromptAt = last
	}

	return g, nil
}

// Admit runs the guards against the supplied time and reports whether a
// prompt cycle may proceed. The debounce clock is re-armed on every call,
// so a steady burst of refused calls keeps refusing until the burst stops.
func (g *Gate) Admit(now time.Time) Verdict {
	g.mu.Lock()
	defer g.mu.Unlock()

	prev := g.lastCheckAt
	g.lastCheckAt = now

	if g.cfg.Debounce > 0 && !prev.IsZero() && now.Sub(prev) < g.cfg.Debounce {
		return Verdict{Reason: ReasonDebounced}
	}

	if g.cfg.DebugBypass {
		return Verdict{Admitted: true}
	}

	if g.prompted {
		return Verdict{Reason: ReasonLifetime}
	}

	if g.cfg.Cooldown > 0 && !g.lastPromptAt.IsZero() && now.Sub(g.lastPromptAt) < g.cfg.Cooldown {
		return Verdict{Reason: ReasonCooldown}
	}

	return Verdict{Admitted: true}
}

// RecordPrompt marks a prompt as shown at the supplied time. It sets the
// lifetime latch and advances the persisted prompt timestamp; the timestamp
// never moves backward, so a clock regression cannot shorten the cooldown.
// A persistence failure is logged and the in-memory timestamp stands.
func (g *Gate) RecordPrompt(ctx context.Context, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.prompted = true
	if now.After(g.lastPromptAt) {
		g.lastPromptAt = now
	}

	if err := g.store.SetTime(ctx, g.cfg.PromptedAtKey, g.lastPromptAt); err != nil {
		g.logger.Error("failed to persist prompt timestamp, continuing with in-memory value",
			"key", g.cfg.PromptedAtKey,
			"error", err)
	}
}

// Reset clears the lifetime latch. The persisted prompt timestamp and the
// debounce clock are untouched, so the cooldown still applies across the
// reset.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompted = false
}

// Clear wipes all gate state, in memory and in the store. Intended for
// tests and operator tooling.
func (g *Gate) Clear(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.lastCheckAt = time.Time{}
	g.lastPromptAt = time.Time{}
	g.prompted = false

	if err := g.store.Delete(ctx, g.cfg.PromptedAtKey); err != nil {
		return fmt.Errorf("failed to clear prompt timestamp: %w", err)
	}
	return nil
}

// SetDebugBypass toggles the bypass at runtime.
func (g *Gate) SetDebugBypass(on bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cfg.DebugBypass = on
}

// Bypassed reports whether the bypass is active.
func (g *Gate) Bypassed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg.DebugBypass
}

// UpdateIntervals replaces the debounce and cooldown intervals. Negative
// values are rejected. The bypass flag and persisted state are untouched.
func (g *Gate) UpdateIntervals(debounce, cooldown time.Duration) error {
	if debounce < 0 {
		return fmt.Errorf("debounce cannot be negative")
	}
	if cooldown < 0 {
		return fmt.Errorf("cooldown cannot be negative")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.cfg.Debounce = debounce
	g.cfg.Cooldown = cooldown
	return nil
}

// State returns a snapshot of the gate's current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return State{
		LastCheckAt:          g.lastCheckAt,
		LastPromptAt:         g.lastPromptAt,
		PromptedThisLifetime: g.prompted,
		DebugBypass:          g.cfg.DebugBypass,
	}
}
