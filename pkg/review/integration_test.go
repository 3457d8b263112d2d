package review_test

import (
	"context"
	"testing"
	"time"

	"florence-hq/vesta/internal/enginetest"
	"florence-hq/vesta/pkg/kvstore"
	"florence-hq/vesta/pkg/review"
)

// TestIntegration_InitiatorPromptLifecycle walks the full life of a prompt:
// first trigger presents the oldest completed engagement, repeat triggers
// stay quiet, and the next lifecycle prompts for the next engagement once
// the first is reviewed and the cooldown has passed.
func TestIntegration_InitiatorPromptLifecycle(t *testing.T) {
	te := newTestEngine(t, nil)

	s1 := completedEngagement("s1", testBase.Add(-2*time.Hour))
	s2 := completedEngagement("s2", testBase.Add(-time.Hour))
	te.store.SetEngagements(s2, s1)

	// First trigger: s1 ended first, so s1 wins.
	if !te.Decide(context.Background(), review.RoleInitiator, nil) {
		t.Fatal("expected first trigger to present")
	}
	c, _ := te.sink.Last()
	if c.EngagementID != "s1" {
		t.Fatalf("expected s1 to be selected, got %q", c.EngagementID)
	}

	// Repeat triggers in the same lifetime stay quiet.
	te.clock.Advance(2 * time.Second)
	if te.Decide(context.Background(), review.RoleInitiator, nil) {
		t.Fatal("expected repeat trigger to be suppressed")
	}

	// The user reviews s1, the app restarts, the cooldown passes.
	reviewedAt := te.clock.Now()
	s1.ReviewedAt = &reviewedAt
	te.store.SetEngagements(s2, s1)
	te.ResetLifetime()
	te.clock.Advance(25 * time.Hour)

	if !te.Decide(context.Background(), review.RoleInitiator, nil) {
		t.Fatal("expected next lifecycle to present")
	}
	c, _ = te.sink.Last()
	if c.EngagementID != "s2" {
		t.Fatalf("expected s2 once s1 is reviewed, got %q", c.EngagementID)
	}
	if te.sink.Count() != 2 {
		t.Fatalf("expected two presentations total, got %d", te.sink.Count())
	}
}

// TestIntegration_PreSkippedWinnerYieldsNoPrompt: when the would-be winner
// was dismissed in an earlier run, the trigger yields nothing at all, even
// though another eligible engagement exists.
func TestIntegration_PreSkippedWinnerYieldsNoPrompt(t *testing.T) {
	kv := kvstore.NewMemoryStore()

	// Earlier run: the user dismissed s1.
	first, err := review.New(nil, kv, enginetest.NewStore(), enginetest.NewSink(),
		review.WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("failed to create first engine: %v", err)
	}
	first.MarkSkipped(context.Background(), "s1")

	// Current run: s1 still wins selection, so the cycle suppresses.
	store := enginetest.NewStore()
	store.SetEngagements(
		completedEngagement("s1", testBase.Add(-2*time.Hour)),
		completedEngagement("s2", testBase.Add(-time.Hour)),
	)
	sink := enginetest.NewSink()
	clock := enginetest.NewClock(testBase)
	eng, err := review.New(nil, kv, store, sink,
		review.WithLogger(discardLogger()),
		review.WithIdentity(review.StaticIdentity("user-1")),
		review.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	defer eng.Close()

	if eng.Decide(context.Background(), review.RoleInitiator, nil) {
		t.Fatal("expected pre-skipped winner to suppress the prompt")
	}
	if sink.Count() != 0 {
		t.Fatalf("expected no presentations, got %d", sink.Count())
	}
}

// TestIntegration_CooldownSurvivesRestart: the persisted prompt timestamp
// keeps a freshly started process quiet until the cooldown elapses.
func TestIntegration_CooldownSurvivesRestart(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	store := enginetest.NewStore()
	store.SetEngagements(completedEngagement("s1", testBase.Add(-2*time.Hour)))

	clock := enginetest.NewClock(testBase)
	first, err := review.New(nil, kv, store, enginetest.NewSink(),
		review.WithLogger(discardLogger()),
		review.WithIdentity(review.StaticIdentity("user-1")),
		review.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("failed to create first engine: %v", err)
	}
	if !first.Decide(context.Background(), review.RoleInitiator, nil) {
		t.Fatal("expected first engine to present")
	}

	// Restart two hours later: fresh latch, persisted cooldown.
	clock.Advance(2 * time.Hour)
	sink := enginetest.NewSink()
	second, err := review.New(nil, kv, store, sink,
		review.WithLogger(discardLogger()),
		review.WithIdentity(review.StaticIdentity("user-1")),
		review.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("failed to create second engine: %v", err)
	}
	defer second.Close()

	if second.Decide(context.Background(), review.RoleInitiator, nil) {
		t.Fatal("expected cooldown to hold across restart")
	}

	clock.Advance(23 * time.Hour)
	if !second.Decide(context.Background(), review.RoleInitiator, nil) {
		t.Fatal("expected presentation once cooldown elapsed")
	}
	if sink.Count() != 1 {
		t.Fatalf("expected one presentation from the second engine, got %d", sink.Count())
	}
}

// TestIntegration_BypassInspectionFlow: an operator investigating a skipped
// engagement turns the bypass on, reproduces the prompt, and turns it back
// off without disturbing the skip registry.
func TestIntegration_BypassInspectionFlow(t *testing.T) {
	te := newTestEngine(t, &review.Config{Debounce: time.Second, Cooldown: 0})
	te.store.SetEngagements(completedEngagement("s1", testBase.Add(-2*time.Hour)))
	te.MarkSkipped(context.Background(), "s1")

	if te.Decide(context.Background(), review.RoleInitiator, nil) {
		t.Fatal("expected skip to suppress")
	}

	if err := te.SetDebugBypass(context.Background(), true); err != nil {
		t.Fatalf("failed to enable bypass: %v", err)
	}
	te.clock.Advance(2 * time.Second)
	if !te.Decide(context.Background(), review.RoleInitiator, nil) {
		t.Fatal("expected bypass to reproduce the prompt")
	}

	if err := te.SetDebugBypass(context.Background(), false); err != nil {
		t.Fatalf("failed to disable bypass: %v", err)
	}
	te.ResetLifetime()
	te.clock.Advance(2 * time.Second)
	if te.Decide(context.Background(), review.RoleInitiator, nil) {
		t.Fatal("expected skip back in force after bypass is disabled")
	}
	if !te.IsSkipped("s1") {
		t.Fatal("expected skip registry untouched by the bypass flow")
	}
}
