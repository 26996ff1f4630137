package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/dgnsrekt/webcast/internal/broadcast"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Service is the broadcast surface the transport binds to. Implemented by
// *broadcast.Engine; faked in handler tests.
type Service interface {
	Ingest(payload []byte, codec string, isInit, isKeyframe bool) (int, error)
	Subscribe() *broadcast.Subscriber
	Unsubscribe(id string)
	Reset()
	Status() broadcast.Status
}

// NewServer wires the control-plane API and the two push transports onto
// one router.
func NewServer(svc Service) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Webcast Relay API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})

	registerStreamHandlers(api, svc)

	// The push transports stay outside huma: they hold the connection open
	// and write their own wire formats.
	router.Get("/stream/sse", SSEHandler(svc))
	router.Get("/stream/ws", WSHandler(svc))

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *broadcast.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case broadcast.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
