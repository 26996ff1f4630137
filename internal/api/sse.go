package api

import (
	"encoding/base64"
	"fmt"
	"net/http"
)

// SSEHandler returns an http.HandlerFunc that streams media units as
// server-sent events. Each unit becomes one event tagged init/keyframe/chunk
// with the sequence number as the event id and a base64 payload. A new
// connection is seeded with the cached init and keyframe units before any
// live unit, so playback can start mid-stream.
func SSEHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		sub := svc.Subscribe()
		defer svc.Unsubscribe(sub.ID)

		for {
			// Queue close and client disconnect both end the stream
			// normally; neither is a failure of the relay.
			unit, ok := sub.Queue.Pop(r.Context())
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\nid: %d\ndata: %s\n\n",
				unit.Kind.EventName(), unit.Sequence,
				base64.StdEncoding.EncodeToString(unit.Payload))
			flusher.Flush()
		}
	}
}
