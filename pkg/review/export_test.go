package review

// DebugBypassKey exposes the storage key for the persisted bypass override
// to external tests.
const DebugBypassKey = debugBypassKey
