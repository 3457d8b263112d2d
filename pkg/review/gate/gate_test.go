package gate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"florence-hq/vesta/pkg/kvstore"
)

var base = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGate(t *testing.T, cfg *Config) *Gate {
	t.Helper()
	g, err := New(cfg, kvstore.NewMemoryStore(), discardLogger())
	if err != nil {
		t.Fatalf("failed to create gate: %v", err)
	}
	return g
}

// failingStore errors on every operation.
type failingStore struct{}

func (failingStore) GetTime(context.Context, string) (time.Time, error) {
	return time.Time{}, errors.New("store down")
}
func (failingStore) SetTime(context.Context, string, time.Time) error { return errors.New("store down") }
func (failingStore) GetStringSet(context.Context, string) ([]string, error) {
	return nil, errors.New("store down")
}
func (failingStore) SetStringSet(context.Context, string, []string) error {
	return errors.New("store down")
}
func (failingStore) GetBool(context.Context, string) (bool, error) { return false, errors.New("store down") }
func (failingStore) SetBool(context.Context, string, bool) error   { return errors.New("store down") }
func (failingStore) Delete(context.Context, string) error          { return errors.New("store down") }
func (failingStore) Close() error                                  { return nil }

func TestGate_FirstCallAdmitted(t *testing.T) {
	g := newTestGate(t, nil)

	v := g.Admit(base)
	if !v.Admitted {
		t.Fatalf("expected first call to be admitted, got refused with %q", v.Reason)
	}
	if v.Reason != "" {
		t.Errorf("expected empty reason on admission, got %q", v.Reason)
	}
}

func TestGate_DebounceRefusesRapidCalls(t *testing.T) {
	g := newTestGate(t, nil)

	if v := g.Admit(base); !v.Admitted {
		t.Fatalf("expected first call admitted, got %q", v.Reason)
	}
	v := g.Admit(base.Add(500 * time.Millisecond))
	if v.Admitted {
		t.Fatal("expected call inside debounce window to be refused")
	}
	if v.Reason != ReasonDebounced {
		t.Errorf("expected reason %q, got %q", ReasonDebounced, v.Reason)
	}
}

func TestGate_DebounceReArmsOnRefusedCalls(t *testing.T) {
	g := newTestGate(t, &Config{Debounce: time.Second, Cooldown: 0})

	if v := g.Admit(base); !v.Admitted {
		t.Fatalf("expected first call admitted, got %q", v.Reason)
	}
	// Refused, but re-arms the debounce clock at +500ms.
	if v := g.Admit(base.Add(500 * time.Millisecond)); v.Admitted {
		t.Fatal("expected second call refused")
	}
	// 1.4s after the first call but only 900ms after the second: a steady
	// burst never ages out.
	if v := g.Admit(base.Add(1400 * time.Millisecond)); v.Admitted {
		t.Fatal("expected call 900ms after previous check to be refused")
	}
	if v := g.Admit(base.Add(2500 * time.Millisecond)); !v.Admitted {
		t.Fatalf("expected call after quiet period to be admitted, got %q", v.Reason)
	}
}

func TestGate_ZeroDebounceDisablesGuard(t *testing.T) {
	g := newTestGate(t, &Config{Debounce: 0, Cooldown: 0})

	if v := g.Admit(base); !v.Admitted {
		t.Fatalf("expected first call admitted, got %q", v.Reason)
	}
	if v := g.Admit(base); !v.Admitted {
		t.Fatalf("expected immediate second call admitted with zero debounce, got %q", v.Reason)
	}
}

func TestGate_LifetimeLatch(t *testing.T) {
	g := newTestGate(t, &Config{Debounce: time.Second, Cooldown: 0})

	if v := g.Admit(base); !v.Admitted {
		t.Fatalf("expected first call admitted, got %q", v.Reason)
	}
	g.RecordPrompt(context.Background(), base)

	v := g.Admit(base.Add(time.Hour))
	if v.Admitted {
		t.Fatal("expected call after recorded prompt to be refused")
	}
	if v.Reason != ReasonLifetime {
		t.Errorf("expected reason %q, got %q", ReasonLifetime, v.Reason)
	}

	g.Reset()
	if v := g.Admit(base.Add(2 * time.Hour)); !v.Admitted {
		t.Fatalf("expected call after reset to be admitted, got %q", v.Reason)
	}
}

func TestGate_CooldownSurvivesReset(t *testing.T) {
	g := newTestGate(t, &Config{Debounce: time.Second, Cooldown: 24 * time.Hour})

	g.RecordPrompt(context.Background(), base)
	g.Reset()

	v := g.Admit(base.Add(12 * time.Hour))
	if v.Admitted {
		t.Fatal("expected call inside cooldown to be refused even after reset")
	}
	if v.Reason != ReasonCooldown {
		t.Errorf("expected reason %q, got %q", ReasonCooldown, v.Reason)
	}

	if v := g.Admit(base.Add(25 * time.Hour)); !v.Admitted {
		t.Fatalf("expected call after cooldown to be admitted, got %q", v.Reason)
	}
}

func TestGate_ZeroCooldownDisablesGuard(t *testing.T) {
	g := newTestGate(t, &Config{Debounce: time.Second, Cooldown: 0})

	g.RecordPrompt(context.Background(), base)
	g.Reset()

	if v := g.Admit(base.Add(2 * time.Second)); !v.Admitted {
		t.Fatalf("expected call to be admitted with zero cooldown, got %q", v.Reason)
	}
}

func TestGate_CooldownPersistsAcrossInstances(t *testing.T) {
	store := kvstore.NewMemoryStore()
	cfg := &Config{Debounce: time.Second, Cooldown: 24 * time.Hour}

	g1, err := New(cfg, store, discardLogger())
	if err != nil {
		t.Fatalf("failed to create gate: %v", err)
	}
	g1.RecordPrompt(context.Background(), base)

	// A fresh instance simulates a restart: the latch is gone but the
	// persisted timestamp still enforces the cooldown.
	g2, err := New(cfg, store, discardLogger())
	if err != nil {
		t.Fatalf("failed to create second gate: %v", err)
	}
	if got := g2.State(); !got.LastPromptAt.Equal(base) {
		t.Fatalf("expected loaded prompt timestamp %v, got %v", base, got.LastPromptAt)
	}
	if got := g2.State(); got.PromptedThisLifetime {
		t.Fatal("expected lifetime latch to be clear in a fresh instance")
	}

	v := g2.Admit(base.Add(time.Hour))
	if v.Admitted || v.Reason != ReasonCooldown {
		t.Fatalf("expected cooldown refusal after restart, got admitted=%v reason=%q", v.Admitted, v.Reason)
	}
	if v := g2.Admit(base.Add(30 * time.Hour)); !v.Admitted {
		t.Fatalf("expected admission once cooldown elapsed, got %q", v.Reason)
	}
}

func TestGate_DebugBypassSkipsLatchAndCooldown(t *testing.T) {
	g := newTestGate(t, &Config{Debounce: time.Second, Cooldown: 24 * time.Hour, DebugBypass: true})

	g.RecordPrompt(context.Background(), base)

	if v := g.Admit(base.Add(2 * time.Second)); !v.Admitted {
		t.Fatalf("expected bypass to admit despite latch and cooldown, got %q", v.Reason)
	}
}

func TestGate_DebugBypassStillDebounces(t *testing.T) {
	g := newTestGate(t, &Config{Debounce: time.Second, DebugBypass: true})

	if v := g.Admit(base); !v.Admitted {
		t.Fatalf("expected first call admitted, got %q", v.Reason)
	}
	v := g.Admit(base.Add(200 * time.Millisecond))
	if v.Admitted {
		t.Fatal("expected debounce to refuse even under bypass")
	}
	if v.Reason != ReasonDebounced {
		t.Errorf("expected reason %q, got %q", ReasonDebounced, v.Reason)
	}
}

func TestGate_SetDebugBypass(t *testing.T) {
	g := newTestGate(t, &Config{Debounce: time.Second, Cooldown: 0})

	g.RecordPrompt(context.Background(), base)

	if v := g.Admit(base.Add(2 * time.Second)); v.Admitted {
		t.Fatal("expected latch refusal before bypass")
	}
	g.SetDebugBypass(true)
	if !g.Bypassed() {
		t.Fatal("expected Bypassed to report true")
	}
	if v := g.Admit(base.Add(4 * time.Second)); !v.Admitted {
		t.Fatalf("expected admission after enabling bypass, got %q", v.Reason)
	}
	g.SetDebugBypass(false)
	if v := g.Admit(base.Add(6 * time.Second)); v.Admitted {
		t.Fatal("expected latch refusal after disabling bypass")
	}
}

func TestGate_RecordPromptIsMonotonic(t *testing.T) {
	g := newTestGate(t, nil)

	g.RecordPrompt(context.Background(), base)
	g.RecordPrompt(context.Background(), base.Add(-time.Hour))

	if got := g.State().LastPromptAt; !got.Equal(base) {
		t.Fatalf("expected prompt timestamp to stay at %v, got %v", base, got)
	}

	g.RecordPrompt(context.Background(), base.Add(time.Hour))
	if got := g.State().LastPromptAt; !got.Equal(base.Add(time.Hour)) {
		t.Fatalf("expected prompt timestamp to advance, got %v", got)
	}
}

func TestGate_PersistenceFailureDegradesToMemory(t *testing.T) {
	g, err := New(&Config{Debounce: time.Second, Cooldown: 0}, failingStore{}, discardLogger())
	if err != nil {
		t.Fatalf("expected construction to succeed despite failing store, got %v", err)
	}

	// The write fails, but the in-memory latch and timestamp stand.
	g.RecordPrompt(context.Background(), base)

	st := g.State()
	if !st.PromptedThisLifetime {
		t.Fatal("expected lifetime latch despite persistence failure")
	}
	if !st.LastPromptAt.Equal(base) {
		t.Fatalf("expected in-memory prompt timestamp %v, got %v", base, st.LastPromptAt)
	}
	if v := g.Admit(base.Add(2 * time.Second)); v.Admitted {
		t.Fatal("expected latch refusal despite persistence failure")
	}
}

func TestGate_Clear(t *testing.T) {
	store := kvstore.NewMemoryStore()
	g, err := New(&Config{Debounce: time.Second, Cooldown: 24 * time.Hour}, store, discardLogger())
	if err != nil {
		t.Fatalf("failed to create gate: %v", err)
	}

	g.RecordPrompt(context.Background(), base)
	if err := g.Clear(context.Background()); err != nil {
		t.Fatalf("failed to clear gate: %v", err)
	}

	st := g.State()
	if !st.LastPromptAt.IsZero() || !st.LastCheckAt.IsZero() || st.PromptedThisLifetime {
		t.Fatalf("expected empty state after clear, got %+v", st)
	}
	if ts, err := store.GetTime(context.Background(), DefaultPromptedAtKey); err != nil || !ts.IsZero() {
		t.Fatalf("expected persisted timestamp removed, got ts=%v err=%v", ts, err)
	}
	if v := g.Admit(base.Add(time.Hour)); !v.Admitted {
		t.Fatalf("expected admission after clear, got %q", v.Reason)
	}
}

func TestGate_UpdateIntervals(t *testing.T) {
	g := newTestGate(t, &Config{Debounce: time.Second, Cooldown: 0})

	if err := g.UpdateIntervals(5*time.Second, time.Hour); err != nil {
		t.Fatalf("failed to update intervals: %v", err)
	}
	if v := g.Admit(base); !v.Admitted {
		t.Fatalf("expected first call admitted, got %q", v.Reason)
	}
	if v := g.Admit(base.Add(3 * time.Second)); v.Admitted {
		t.Fatal("expected refusal under widened debounce")
	}

	if err := g.UpdateIntervals(-time.Second, 0); err == nil {
		t.Fatal("expected error for negative debounce")
	}
	if err := g.UpdateIntervals(0, -time.Hour); err == nil {
		t.Fatal("expected error for negative cooldown")
	}
}

func TestGate_RejectsNegativeIntervals(t *testing.T) {
	if _, err := New(&Config{Debounce: -time.Second}, nil, discardLogger()); err == nil {
		t.Fatal("expected error for negative debounce")
	}
	if _, err := New(&Config{Cooldown: -time.Hour}, nil, discardLogger()); err == nil {
		t.Fatal("expected error for negative cooldown")
	}
}

func TestGate_ConcurrentAdmitSingleWinner(t *testing.T) {
	g := newTestGate(t, &Config{Debounce: time.Second, Cooldown: 0})

	const workers = 32
	var admitted sync.Map
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(n int) {
			defer wg.Done()
			if v := g.Admit(base); v.Admitted {
				admitted.Store(n, true)
			}
		}(i)
	}
	wg.Wait()

	count := 0
	admitted.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count != 1 {
		t.Fatalf("expected exactly one admitted call from a simultaneous burst, got %d", count)
	}
}

func BenchmarkGateAdmit(b *testing.B) {
	g, err := New(nil, kvstore.NewMemoryStore(), discardLogger())
	if err != nil {
		b.Fatalf("failed to create gate: %v", err)
	}

	b.ResetTimer()
	now := base
	for i := 0; i < b.N; i++ {
		now = now.Add(2 * time.Second)
		g.Admit(now)
	}
}
