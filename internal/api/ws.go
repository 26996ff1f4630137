package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// wsUnit is the JSON frame sent for each media unit on the WebSocket
// transport. Same fields as the SSE encoding: kind tag, sequence id,
// base64 payload.
type wsUnit struct {
	Kind    string `json:"kind"`
	ID      int64  `json:"id"`
	Payload string `json:"payload"`
}

// WSHandler returns an http.HandlerFunc that serves the subscribe sequence
// over a WebSocket. Catch-up seeding and ordering are identical to the SSE
// transport; only the framing differs.
func WSHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			slog.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		defer conn.Close()

		sub := svc.Subscribe()
		defer svc.Unsubscribe(sub.ID)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Drain the client side so control frames are answered and a close
		// from the peer cancels the delivery loop.
		go func() {
			defer cancel()
			for {
				if _, _, err := wsutil.ReadClientData(conn); err != nil {
					return
				}
			}
		}()

		for {
			unit, ok := sub.Queue.Pop(ctx)
			if !ok {
				return
			}
			frame, err := json.Marshal(wsUnit{
				Kind:    unit.Kind.EventName(),
				ID:      unit.Sequence,
				Payload: base64.StdEncoding.EncodeToString(unit.Payload),
			})
			if err != nil {
				slog.Debug("websocket frame marshal failed", "error", err)
				continue
			}
			if err := wsutil.WriteServerText(conn, frame); err != nil {
				// Broken transport is ordinary teardown, not a relay fault.
				return
			}
		}
	}
}
