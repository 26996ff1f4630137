package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func registerStreamHandlers(api huma.API, svc Service) {
	type ingestInput struct {
		Codec    string `header:"X-Cast-Codec" doc:"Codec identity of the stream (e.g. video/webm;codecs=vp8,opus)"`
		Init     bool   `header:"X-Cast-Init" doc:"True when the payload is the stream initialization segment"`
		Keyframe bool   `header:"X-Cast-Keyframe" doc:"True when the payload is a self-contained keyframe"`
		RawBody  []byte `contentType:"application/octet-stream"`
	}
	type ingestOutput struct {
		Body struct {
			ViewerCount int `json:"viewer_count"`
		}
	}

	huma.Register(api, huma.Operation{
		OperationID: "ingest-unit",
		Method:      http.MethodPost,
		Path:        "/api/v1/stream/ingest",
		Summary:     "Publish one media unit to all subscribers",
		Tags:        []string{"Stream"},
	}, func(ctx context.Context, input *ingestInput) (*ingestOutput, error) {
		viewers, err := svc.Ingest(input.RawBody, input.Codec, input.Init, input.Keyframe)
		if err != nil {
			return nil, mapErr(err)
		}
		out := &ingestOutput{}
		out.Body.ViewerCount = viewers
		return out, nil
	})

	type infoOutput struct {
		Body struct {
			Active bool   `json:"active"`
			Codec  string `json:"codec"`
		}
	}
	huma.Register(api, huma.Operation{
		OperationID: "stream-info",
		Method:      http.MethodGet,
		Path:        "/api/v1/stream/info",
		Summary:     "Codec identity of the active broadcast",
		Tags:        []string{"Stream"},
	}, func(ctx context.Context, input *struct{}) (*infoOutput, error) {
		st := svc.Status()
		out := &infoOutput{}
		out.Body.Active = st.Active
		out.Body.Codec = st.Codec
		return out, nil
	})

	type statusOutput struct {
		Body struct {
			Active      bool `json:"active"`
			ViewerCount int  `json:"viewer_count"`
		}
	}
	huma.Register(api, huma.Operation{
		OperationID: "stream-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/stream/status",
		Summary:     "Broadcast liveness and subscriber count",
		Tags:        []string{"Stream"},
	}, func(ctx context.Context, input *struct{}) (*statusOutput, error) {
		st := svc.Status()
		out := &statusOutput{}
		out.Body.Active = st.Active
		out.Body.ViewerCount = st.ViewerCount
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "stream-reset",
		Method:        http.MethodPost,
		Path:          "/api/v1/stream/reset",
		Summary:       "Clear the active broadcast session",
		Description:   "Idempotent. Connected subscribers stay connected and receive whatever the next session publishes.",
		Tags:          []string{"Stream"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct{}) (*struct{}, error) {
		svc.Reset()
		return nil, nil
	})
}
