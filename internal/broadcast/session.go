package broadcast

import (
	"sync"
	"sync/atomic"
)

// Session holds the state of the one active broadcast: the cached
// initialization unit, the most recent keyframe, the codec identity, and the
// sequence counter. A nil init unit means no broadcast is active.
//
// The multi-field updates run under one mutex so a snapshot can never observe
// a half-applied initialization (new init with the previous session's
// keyframe still attached). The sequence counter is a plain atomic; it is
// assigned by the engine before the session mutation for the same unit.
type Session struct {
	mu       sync.Mutex
	initUnit *MediaUnit
	keyframe *MediaUnit
	codec    string

	sequence atomic.Int64
}

// SessionSnapshot is a consistent view of the cached catch-up state.
type SessionSnapshot struct {
	InitUnit *MediaUnit
	Keyframe *MediaUnit
	Codec    string
}

func NewSession() *Session {
	return &Session{}
}

// NextSequence increments and returns the sequence counter. The first unit
// after construction or Reset gets sequence 1.
func (s *Session) NextSequence() int64 {
	return s.sequence.Add(1)
}

// ApplyInitialization re-arms the session around a new initialization unit.
// Any previously cached keyframe belongs to the old init context and is
// cleared atomically with the codec swap.
func (s *Session) ApplyInitialization(unit *MediaUnit, codec string) {
	s.mu.Lock()
	s.initUnit = unit
	s.keyframe = nil
	s.codec = codec
	s.mu.Unlock()
}

// ApplyKeyframe replaces the cached keyframe. Init unit and codec are untouched.
func (s *Session) ApplyKeyframe(unit *MediaUnit) {
	s.mu.Lock()
	s.keyframe = unit
	s.mu.Unlock()
}

// Reset returns the session to idle: no init, no keyframe, empty codec,
// sequence rewound to zero. Sequence numbers are reused afterwards.
func (s *Session) Reset() {
	s.mu.Lock()
	s.initUnit = nil
	s.keyframe = nil
	s.codec = ""
	s.sequence.Store(0)
	s.mu.Unlock()
}

// Snapshot returns the cached init unit, keyframe, and codec as one
// consistent triple for catch-up seeding.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionSnapshot{InitUnit: s.initUnit, Keyframe: s.keyframe, Codec: s.codec}
}

// Active reports whether an initialization unit has been ingested since the
// last reset.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initUnit != nil
}

// Codec returns the codec identity of the active broadcast, or "" when idle.
func (s *Session) Codec() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codec
}
