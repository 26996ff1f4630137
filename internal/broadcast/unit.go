package broadcast

// UnitKind classifies a media unit. The publisher-side classifier decides
// which units are initialization or keyframe units; the engine trusts it.
type UnitKind int

const (
	// KindDelta is an ordinary media unit dependent on prior decode state.
	KindDelta UnitKind = iota
	// KindKeyframe is a self-contained unit decoding can resume from.
	KindKeyframe
	// KindInit carries the codec setup data a decoder needs before anything else.
	KindInit
)

// EventName returns the wire tag used by the push transports.
func (k UnitKind) EventName() string {
	switch k {
	case KindInit:
		return "init"
	case KindKeyframe:
		return "keyframe"
	default:
		return "chunk"
	}
}

func (k UnitKind) String() string { return k.EventName() }

// MediaUnit is one immutable unit of the broadcast: an opaque payload plus
// the kind assigned at ingest and a sequence number that is strictly
// increasing for the lifetime of one session.
type MediaUnit struct {
	Payload  []byte
	Kind     UnitKind
	Sequence int64
}

// classifyKind maps the caller-supplied flags onto a kind. Init wins when
// both flags are asserted.
func classifyKind(isInit, isKeyframe bool) UnitKind {
	switch {
	case isInit:
		return KindInit
	case isKeyframe:
		return KindKeyframe
	default:
		return KindDelta
	}
}
