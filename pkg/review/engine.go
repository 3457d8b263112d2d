package review

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"florence-hq/vesta/pkg/kvstore"
	"florence-hq/vesta/pkg/review/eligibility"
	"florence-hq/vesta/pkg/review/gate"
	"florence-hq/vesta/pkg/review/skiplist"
)

// debugBypassKey is the storage key for the persisted bypass override.
const debugBypassKey = "review.debug_bypass"

// DefaultFetchTimeout bounds every provider call made during a cycle.
const DefaultFetchTimeout = 10 * time.Second

// Config controls the engine's timers and failure behavior.
type Config struct {
	// Debounce is the minimum interval between Decide calls. Default 1s.
	Debounce time.Duration `json:"debounce" yaml:"debounce"`

	// Cooldown is the minimum interval between presented prompts. Zero
	// disables it. Default 24h.
	Cooldown time.Duration `json:"cooldown" yaml:"cooldown"`

	// DebugBypass ignores the skip list, cooldown and lifetime latch. The
	// debounce still applies. A persisted override, set via SetDebugBypass,
	// takes precedence at construction.
	DebugBypass bool `json:"debug_bypass" yaml:"debug_bypass"`

	// FetchTimeout bounds each identity, engagement and assignment fetch.
	// Default 10s.
	FetchTimeout time.Duration `json:"fetch_timeout" yaml:"fetch_timeout"`

	// Strict makes invariant violations panic instead of suppressing the
	// cycle. For development and tests.
	Strict bool `json:"strict" yaml:"strict"`
}

// DefaultConfig returns a Config with production-ready values.
func DefaultConfig() *Config {
	return &Config{
		Debounce:     time.Second,
		Cooldown:     24 * time.Hour,
		FetchTimeout: DefaultFetchTimeout,
	}
}

// validate checks intervals and fills in the fetch timeout.
func (c *Config) validate() error {
	if c.Debounce < 0 {
		return fmt.Errorf("debounce cannot be negative")
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("cooldown cannot be negative")
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetch timeout cannot be negative")
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	return nil
}

// Engine decides whether to surface a review prompt right now. It owns the
// admission gate, the skip registry and the decision state machine; hosts
// call Decide at natural trigger points (screen transitions, app focus) and
// the engine guarantees at most one prompt per process lifetime and per
// cooldown window.
//
// # Example
//
//	eng, err := review.New(nil, store, engagements, sink,
//	    review.WithIdentity(review.StaticIdentity("user-1")))
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	if eng.Decide(ctx, review.RoleInitiator, nil) {
//	    // the sink received the candidate
//	}
type Engine struct {
	// mu serializes the full Decide cycle end to end. Correctness over
	// throughput: the decision runs at most once per debounce interval.
	mu sync.Mutex

	gate  *gate.Gate
	skips *skiplist.Registry
	store kvstore.Store

	engagements EngagementStore
	sink        PresentationSink
	identity    IdentityProvider

	clock  func() time.Time
	logger *slog.Logger

	cfgMu        sync.RWMutex
	fetchTimeout time.Duration
	strict       bool

	phaseMu sync.RWMutex
	phase   Phase

	closeOnce sync.Once
	closeErr  error
}

// Option configures optional engine dependencies.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithIdentity sets the identity provider. Without one, every cycle
// suppresses with "no identity".
func WithIdentity(provider IdentityProvider) Option {
	return func(e *Engine) {
		e.identity = provider
	}
}

// WithClock sets the time source, read once per Decide cycle. Defaults to
// time.Now. For tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// New creates an engine. The engagement store and sink are required; a nil
// kv store falls back to in-memory state, which limits the cooldown and
// skip registry to the current process. A nil config uses DefaultConfig.
//
// The engine loads persisted state (last prompt time, skip set, bypass
// override) immediately; load failures are logged and treated as zero
// values. The engine takes ownership of the kv store and closes it in
// Close.
func New(cfg *Config, kv kvstore.Store, engagements EngagementStore, sink PresentationSink, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	applied := *cfg
	if err := applied.validate(); err != nil {
		return nil, err
	}
	if engagements == nil {
		return nil, fmt.Errorf("engagement store is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("presentation sink is required")
	}
	if kv == nil {
		kv = kvstore.NewMemoryStore()
	}

	e := &Engine{
		store:        kv,
		engagements:  engagements,
		sink:         sink,
		identity:     StaticIdentity(""),
		clock:        time.Now,
		logger:       slog.Default(),
		fetchTimeout: applied.FetchTimeout,
		strict:       applied.Strict,
		phase:        PhaseIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.identity == nil {
		e.identity = StaticIdentity("")
	}
	base := e.logger
	e.logger = base.With("component", "review.engine")

	// A persisted bypass, once set, wins over the configured value.
	bypass := applied.DebugBypass
	if on, err := kv.GetBool(context.Background(), debugBypassKey); err != nil {
		e.logger.Error("failed to load persisted debug bypass, using configured value",
			"error", err)
	} else if on {
		bypass = true
	}

	g, err := gate.New(&gate.Config{
		Debounce:    applied.Debounce,
		Cooldown:    applied.Cooldown,
		DebugBypass: bypass,
	}, kv, base)
	if err != nil {
		return nil, fmt.Errorf("failed to create gate: %w", err)
	}
	e.gate = g

	skips, err := skiplist.New(kv, base)
	if err != nil {
		return nil, fmt.Errorf("failed to create skip registry: %w", err)
	}
	e.skips = skips
	skiplistSize.Set(float64(skips.Len()))

	return e, nil
}

// Decide runs one decision cycle: gate, fetch, resolve, filter, commit,
// present. It returns true only when a prompt was committed and handed to
// the sink. Every failure mode short of an invariant violation in strict
// mode collapses to false; errors never escape.
//
// Cycles are serialized: of two concurrent calls, one runs first and the
// other sees its effects. Lock-free state accessors (IsSkipped, State,
// ResetLifetime) are never blocked by an in-flight cycle.
func (e *Engine) Decide(ctx context.Context, role Role, pctx PresentingContext) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	logger := e.logger.With("cycle_id", uuid.NewString(), "role", string(role))
	defer func() {
		e.setPhase(PhaseIdle)
		decisionDuration.WithLabelValues(string(role)).Observe(time.Since(start).Seconds())
	}()

	if !role.Valid() {
		e.invariant(logger, fmt.Sprintf("unknown role %q", role))
		return e.suppress(ctx, logger, role, SuppressInvariant, slog.LevelError,
			"decision suppressed: unknown role")
	}

	// The clock is read once and threads through every gate call.
	now := e.clock()

	e.setPhase(PhaseGating)
	if v := e.gate.Admit(now); !v.Admitted {
		return e.suppress(ctx, logger, role, SuppressReason(v.Reason), slog.LevelDebug,
			"decision suppressed by gate")
	}

	e.setPhase(PhaseFetching)
	fetchCtx, cancel := context.WithTimeout(ctx, e.currentFetchTimeout())
	defer cancel()

	userID, err := e.identity.CurrentUserID(fetchCtx)
	if err != nil {
		ferr := &FetchError{Resource: "identity", Err: err}
		return e.suppress(ctx, logger, role, SuppressFetchError, slog.LevelWarn,
			"decision suppressed: identity lookup failed", "error", ferr)
	}
	if userID == "" {
		return e.suppress(ctx, logger, role, SuppressNoIdentity, slog.LevelWarn,
			"decision suppressed: no identity available")
	}
	logger = logger.With("user_id", userID)

	var (
		engagements []eligibility.Engagement
		records     []eligibility.AssignmentRecord
	)
	switch role {
	case RoleInitiator:
		engagements, err = e.engagements.FetchForInitiator(fetchCtx)
		if err != nil {
			err = &FetchError{Resource: "engagements", Err: err}
		}
	case RoleParticipant:
		g, gctx := errgroup.WithContext(fetchCtx)
		g.Go(func() error {
			var ferr error
			engagements, ferr = e.engagements.FetchForParticipant(gctx, userID)
			if ferr != nil {
				return &FetchError{Resource: "engagements", Err: ferr}
			}
			return nil
		})
		g.Go(func() error {
			var ferr error
			records, ferr = e.engagements.FetchAssignmentRecords(gctx, userID)
			if ferr != nil {
				return &FetchError{Resource: "assignments", Err: ferr}
			}
			return nil
		})
		err = g.Wait()
	}
	if err != nil {
		return e.suppress(ctx, logger, role, SuppressFetchError, slog.LevelWarn,
			"decision suppressed: engagement fetch failed", "error", err)
	}

	e.setPhase(PhaseResolving)
	var cand *eligibility.Candidate
	switch role {
	case RoleInitiator:
		cand = eligibility.SelectForInitiator(engagements)
	case RoleParticipant:
		cand = eligibility.SelectForParticipant(engagements, records)
	}
	if cand == nil {
		return e.suppress(ctx, logger, role, SuppressNoCandidate, slog.LevelDebug,
			"decision suppressed: no eligible engagement", "engagements", len(engagements))
	}
	logger = logger.With("engagement_id", cand.EngagementID)

	e.setPhase(PhaseFiltering)
	if !e.gate.Bypassed() && e.skips.IsSkipped(cand.EngagementID) {
		// No fallback to the next candidate: a skipped pick ends the cycle.
		return e.suppress(ctx, logger, role, SuppressSkipped, slog.LevelInfo,
			"decision suppressed: engagement previously skipped")
	}

	// The commit is the single irreversible step. From here the prompt
	// counts as shown no matter what the sink does.
	e.setPhase(PhaseCommitting)
	e.gate.RecordPrompt(context.Background(), now)

	e.setPhase(PhasePresenting)
	candidate := Candidate{
		EngagementID: cand.EngagementID,
		Role:         role,
		Engagement:   cand.Engagement,
		Context:      pctx,
	}
	if err := e.sink.Present(ctx, candidate); err != nil {
		presentationErrors.WithLabelValues(string(role)).Inc()
		logger.Error("presentation sink failed, prompt already recorded", "error", err)
	} else {
		logger.Info("review prompt presented")
	}

	decisionsTotal.WithLabelValues(string(role), outcomePresented).Inc()
	return true
}

// suppress ends the cycle without a prompt: count it, log it, return false.
func (e *Engine) suppress(ctx context.Context, logger *slog.Logger, role Role, reason SuppressReason, level slog.Level, msg string, args ...any) bool {
	decisionsTotal.WithLabelValues(string(role), outcomeSuppressed).Inc()
	suppressionsTotal.WithLabelValues(string(role), string(reason)).Inc()
	logger.Log(ctx, level, msg, append([]any{"reason", string(reason)}, args...)...)
	return false
}

// invariant reports a programming error: panic in strict mode, log
// otherwise.
func (e *Engine) invariant(logger *slog.Logger, detail string) {
	err := &InvariantError{Detail: detail}
	if e.currentStrict() {
		panic(err)
	}
	logger.Error("invariant violation", "error", err)
}

// MarkSkipped records that the user dismissed the prompt for the given
// engagement. Idempotent. An empty ID is a programming error and is
// handled per the invariant policy.
func (e *Engine) MarkSkipped(ctx context.Context, engagementID string) {
	if err := e.skips.MarkSkipped(ctx, engagementID); err != nil {
		e.invariant(e.logger, err.Error())
		return
	}
	skiplistSize.Set(float64(e.skips.Len()))
}

// IsSkipped reports whether the given engagement has been skipped. Served
// from memory; never blocks behind an in-flight cycle.
func (e *Engine) IsSkipped(engagementID string) bool {
	return e.skips.IsSkipped(engagementID)
}

// SkippedEngagements returns the skipped engagement IDs in lexicographic
// order.
func (e *Engine) SkippedEngagements() []string {
	return e.skips.Entries()
}

// ResetLifetime clears the one-prompt-per-lifetime latch. Hosts call this
// at lifecycle boundaries (new session, app restart semantics). The
// cooldown and skip registry are untouched.
func (e *Engine) ResetLifetime() {
	e.gate.Reset()
	e.logger.Info("lifetime latch reset")
}

// ClearAll wipes all persisted review state: the prompt timestamp, the
// skip set and the bypass override. For tests and operator tooling only.
// The in-memory bypass flag keeps its current value.
func (e *Engine) ClearAll(ctx context.Context) error {
	if err := e.gate.Clear(ctx); err != nil {
		return &PersistenceError{Op: "clear gate state", Err: err}
	}
	if err := e.skips.Clear(ctx); err != nil {
		return &PersistenceError{Op: "clear skip set", Err: err}
	}
	if err := e.store.Delete(ctx, debugBypassKey); err != nil {
		return &PersistenceError{Op: "clear debug bypass", Err: err}
	}
	skiplistSize.Set(0)
	e.logger.Info("cleared all persisted review state")
	return nil
}

// SetDebugBypass toggles the bypass and persists the override. Enabling
// writes the override; disabling removes it so the configured value applies
// on the next start. On a persistence failure the in-memory flag still
// changes and the error is returned for the caller to surface.
func (e *Engine) SetDebugBypass(ctx context.Context, on bool) error {
	e.gate.SetDebugBypass(on)

	var err error
	if on {
		err = e.store.SetBool(ctx, debugBypassKey, true)
	} else {
		err = e.store.Delete(ctx, debugBypassKey)
	}
	if err != nil {
		perr := &PersistenceError{Op: "persist debug bypass", Err: err}
		e.logger.Error("failed to persist debug bypass, in-memory flag stands",
			"on", on, "error", err)
		return perr
	}
	e.logger.Info("debug bypass updated", "on", on)
	return nil
}

// DebugBypass reports whether the bypass is active.
func (e *Engine) DebugBypass() bool {
	return e.gate.Bypassed()
}

// State returns a snapshot for admin surfaces. Never blocks behind an
// in-flight cycle.
func (e *Engine) State() State {
	return State{
		Phase:        e.currentPhase(),
		Gate:         e.gate.State(),
		SkippedCount: e.skips.Len(),
		CapturedAt:   time.Now(),
	}
}

// UpdateConfig applies new intervals, fetch timeout and strict mode at
// runtime. The bypass flag is not touched: it is owned by SetDebugBypass
// and the persisted override.
func (e *Engine) UpdateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	applied := *cfg
	if err := applied.validate(); err != nil {
		return err
	}
	if err := e.gate.UpdateIntervals(applied.Debounce, applied.Cooldown); err != nil {
		return err
	}

	e.cfgMu.Lock()
	e.fetchTimeout = applied.FetchTimeout
	e.strict = applied.Strict
	e.cfgMu.Unlock()

	e.logger.Info("engine configuration updated",
		"debounce", applied.Debounce,
		"cooldown", applied.Cooldown,
		"fetch_timeout", applied.FetchTimeout,
		"strict", applied.Strict)
	return nil
}

// Close releases the backing kv store. Safe to call more than once.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.closeErr = e.store.Close()
	})
	return e.closeErr
}

func (e *Engine) setPhase(p Phase) {
	e.phaseMu.Lock()
	e.phase = p
	e.phaseMu.Unlock()
}

func (e *Engine) currentPhase() Phase {
	e.phaseMu.RLock()
	defer e.phaseMu.RUnlock()
	return e.phase
}

func (e *Engine) currentFetchTimeout() time.Duration {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.fetchTimeout
}

func (e *Engine) currentStrict() bool {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.strict
}
