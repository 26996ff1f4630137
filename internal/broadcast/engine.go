package broadcast

import "log/slog"

// Transition reports a session lifecycle change: Live is true when the first
// initialization unit after idle arrives, false when an active session is
// reset.
type Transition struct {
	Live  bool
	Codec string
}

// EngineOptions tunes a new engine. The zero value gives the default
// capacity-150 drop-oldest queues with no hooks.
type EngineOptions struct {
	QueueCapacity int
	Policy        OverflowPolicy

	// OnTransition, when set, is called on idle→active and active→idle
	// changes. It runs on the caller's goroutine and must not block.
	OnTransition func(Transition)

	// Tap, when set, observes every accepted unit (with the codec supplied
	// at ingest). Used by the recorder; failures inside the tap must be
	// handled by the tap itself.
	Tap func(unit *MediaUnit, codec string)
}

// Engine is the broadcast fan-out core for a single stream. One instance is
// constructed at startup and passed by reference to every handler; all of
// its state is in-memory and process-lifetime only.
type Engine struct {
	session  *Session
	registry *Registry

	onTransition func(Transition)
	tap          func(*MediaUnit, string)
}

// Status is the observable state of the engine.
type Status struct {
	Active      bool
	Codec       string
	ViewerCount int
}

func NewEngine(opts EngineOptions) *Engine {
	capacity := opts.QueueCapacity
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Engine{
		session:      NewSession(),
		registry:     NewRegistry(capacity, opts.Policy),
		onTransition: opts.OnTransition,
		tap:          opts.Tap,
	}
}

// Ingest accepts one media unit from the publisher, classifies it from the
// caller's flags, updates the cached session state when it is an init or
// keyframe unit, and fans it out to every subscriber queue. Returns the
// subscriber count for the publisher's acknowledgement. Empty payloads are
// rejected with a VALIDATION error and leave session and subscribers
// untouched. Fan-out is best effort: Push never blocks, and drop-oldest
// losses in a slow subscriber's queue are not reported here.
func (e *Engine) Ingest(payload []byte, codec string, isInit, isKeyframe bool) (int, error) {
	if len(payload) == 0 {
		return 0, newError(CodeValidation, "empty media payload", nil)
	}

	unit := &MediaUnit{
		Payload:  payload,
		Kind:     classifyKind(isInit, isKeyframe),
		Sequence: e.session.NextSequence(),
	}

	switch unit.Kind {
	case KindInit:
		wasActive := e.session.Active()
		e.session.ApplyInitialization(unit, codec)
		if !wasActive {
			slog.Info("broadcast live", "codec", codec, "viewers", e.registry.Count())
			if e.onTransition != nil {
				e.onTransition(Transition{Live: true, Codec: codec})
			}
		}
	case KindKeyframe:
		e.session.ApplyKeyframe(unit)
	}

	if e.tap != nil {
		e.tap(unit, codec)
	}

	e.registry.ForEach(unit)
	return e.registry.Count(), nil
}

// Subscribe allocates a new subscriber, seeds its queue with the cached
// init unit and keyframe (in sequence order) so a mid-stream joiner has a
// decodable prefix before any live unit, and then exposes it to fan-out.
func (e *Engine) Subscribe() *Subscriber {
	sub := e.registry.Allocate()

	snap := e.session.Snapshot()
	if snap.InitUnit != nil {
		sub.Queue.Push(snap.InitUnit)
		if snap.Keyframe != nil {
			sub.Queue.Push(snap.Keyframe)
		}
	}

	e.registry.Insert(sub)
	slog.Info("subscriber joined", "subscriber", sub.ID, "viewers", e.registry.Count())
	return sub
}

// Unsubscribe removes a subscriber and closes its queue. Unknown ids are
// tolerated; disconnect teardown may race with itself.
func (e *Engine) Unsubscribe(id string) {
	e.registry.Unregister(id)
	slog.Info("subscriber left", "subscriber", id, "viewers", e.registry.Count())
}

// Reset clears the session back to idle. Connected subscribers stay
// registered; whatever is ingested under the next session still reaches
// them, and any decode mismatch is the consumer's to detect.
func (e *Engine) Reset() {
	wasActive := e.session.Active()
	codec := e.session.Codec()
	e.session.Reset()
	if wasActive {
		slog.Info("broadcast reset", "codec", codec, "viewers", e.registry.Count())
		if e.onTransition != nil {
			e.onTransition(Transition{Live: false, Codec: codec})
		}
	}
}

// Status reports whether a broadcast is active, its codec, and how many
// subscribers are connected.
func (e *Engine) Status() Status {
	snap := e.session.Snapshot()
	return Status{
		Active:      snap.InitUnit != nil,
		Codec:       snap.Codec,
		ViewerCount: e.registry.Count(),
	}
}
