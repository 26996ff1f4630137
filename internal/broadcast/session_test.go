package broadcast

import "testing"

func TestSessionSequenceStartsAtOne(t *testing.T) {
	s := NewSession()
	if got := s.NextSequence(); got != 1 {
		t.Fatalf("NextSequence() = %d; want 1", got)
	}
	if got := s.NextSequence(); got != 2 {
		t.Fatalf("NextSequence() = %d; want 2", got)
	}
}

func TestSessionApplyInitializationClearsKeyframe(t *testing.T) {
	s := NewSession()
	s.ApplyInitialization(unit(1), "video/webm;codecs=vp8,opus")
	s.ApplyKeyframe(unit(2))

	s.ApplyInitialization(unit(3), "video/webm;codecs=vp9,opus")

	snap := s.Snapshot()
	if snap.Keyframe != nil {
		t.Fatalf("Snapshot().Keyframe = %v; want nil after re-initialization", snap.Keyframe)
	}
	if snap.InitUnit == nil || snap.InitUnit.Sequence != 3 {
		t.Fatalf("Snapshot().InitUnit = %v; want sequence 3", snap.InitUnit)
	}
	if got, want := snap.Codec, "video/webm;codecs=vp9,opus"; got != want {
		t.Fatalf("Snapshot().Codec = %q; want %q", got, want)
	}
}

func TestSessionApplyKeyframeKeepsInitAndCodec(t *testing.T) {
	s := NewSession()
	s.ApplyInitialization(unit(1), "video/webm;codecs=vp8,opus")
	s.ApplyKeyframe(unit(2))

	snap := s.Snapshot()
	if snap.InitUnit == nil || snap.InitUnit.Sequence != 1 {
		t.Fatalf("Snapshot().InitUnit = %v; want sequence 1", snap.InitUnit)
	}
	if snap.Keyframe == nil || snap.Keyframe.Sequence != 2 {
		t.Fatalf("Snapshot().Keyframe = %v; want sequence 2", snap.Keyframe)
	}
	if got, want := snap.Codec, "video/webm;codecs=vp8,opus"; got != want {
		t.Fatalf("Snapshot().Codec = %q; want %q", got, want)
	}
}

func TestSessionResetReturnsToIdle(t *testing.T) {
	s := NewSession()
	s.NextSequence()
	s.ApplyInitialization(unit(1), "video/webm;codecs=vp8,opus")
	s.ApplyKeyframe(unit(2))

	s.Reset()

	if s.Active() {
		t.Fatal("Active() = true after Reset; want false")
	}
	if got := s.Codec(); got != "" {
		t.Fatalf("Codec() = %q after Reset; want empty", got)
	}
	snap := s.Snapshot()
	if snap.InitUnit != nil || snap.Keyframe != nil {
		t.Fatalf("Snapshot() = %+v after Reset; want empty", snap)
	}
	if got := s.NextSequence(); got != 1 {
		t.Fatalf("NextSequence() = %d after Reset; want 1", got)
	}
}

func TestSessionResetWhileIdleIsNoOp(t *testing.T) {
	s := NewSession()
	s.Reset()
	if s.Active() {
		t.Fatal("Active() = true on fresh session after Reset; want false")
	}
}

func TestSessionIdleUntilInitialization(t *testing.T) {
	s := NewSession()
	if s.Active() {
		t.Fatal("Active() = true before any initialization; want false")
	}
	s.ApplyKeyframe(unit(1)) // keyframe without init context
	if s.Active() {
		t.Fatal("Active() = true after keyframe only; want false")
	}
	s.ApplyInitialization(unit(2), "audio/webm;codecs=opus")
	if !s.Active() {
		t.Fatal("Active() = false after initialization; want true")
	}
}
