//go:build integration

package integration

import (
	"bufio"
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"testing"
	"time"
)

const testCodec = "video/webm;codecs=vp8,opus"

func TestStreamLifecycle(t *testing.T) {
	resetStream(env)

	info := decodeJSON[streamInfo](t, env.GET(t, "/api/v1/stream/info"))
	if info.Active {
		t.Fatalf("info.Active = true after reset; want idle")
	}

	resp := env.ingest(t, []byte("init-segment"), testCodec, true, false)
	requireStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	info = decodeJSON[streamInfo](t, env.GET(t, "/api/v1/stream/info"))
	if !info.Active {
		t.Fatal("info.Active = false after init; want live")
	}
	if info.Codec != testCodec {
		t.Fatalf("info.Codec = %q; want %q", info.Codec, testCodec)
	}

	resp = env.POST(t, "/api/v1/stream/reset")
	requireStatus(t, resp, http.StatusNoContent)
	resp.Body.Close()

	info = decodeJSON[streamInfo](t, env.GET(t, "/api/v1/stream/info"))
	if info.Active {
		t.Fatal("info.Active = true after reset; want idle")
	}
}

func TestIngestRejectsEmptyPayload(t *testing.T) {
	resp := env.ingest(t, nil, testCodec, true, false)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400 for empty payload", resp.StatusCode)
	}
}

func TestSSEViewerReceivesCatchUpAndLiveUnits(t *testing.T) {
	resetStream(env)

	resp := env.ingest(t, []byte("init-segment"), testCodec, true, false)
	requireStatus(t, resp, http.StatusOK)
	resp.Body.Close()
	resp = env.ingest(t, []byte("key-segment"), "", false, true)
	requireStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.BaseURL+"/stream/sse", nil)
	if err != nil {
		t.Fatalf("new SSE request: %v", err)
	}
	sseResp, err := env.Client.Do(req)
	if err != nil {
		t.Fatalf("open SSE stream: %v", err)
	}
	defer sseResp.Body.Close()
	requireStatus(t, sseResp, http.StatusOK)

	reader := bufio.NewReader(sseResp.Body)
	first := readEvent(t, reader)
	if first.name != "init" || first.payload != "init-segment" {
		t.Fatalf("first event = %q/%q; want seeded init segment", first.name, first.payload)
	}
	second := readEvent(t, reader)
	if second.name != "keyframe" || second.payload != "key-segment" {
		t.Fatalf("second event = %q/%q; want seeded keyframe", second.name, second.payload)
	}

	resp = env.ingest(t, []byte("delta-segment"), "", false, false)
	requireStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	third := readEvent(t, reader)
	if third.name != "chunk" || third.payload != "delta-segment" {
		t.Fatalf("third event = %q/%q; want the live delta", third.name, third.payload)
	}
}

func TestViewerCountTracksSubscribers(t *testing.T) {
	resetStream(env)

	before := decodeJSON[streamStatus](t, env.GET(t, "/api/v1/stream/status"))

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.BaseURL+"/stream/sse", nil)
	if err != nil {
		cancel()
		t.Fatalf("new SSE request: %v", err)
	}
	sseResp, err := env.Client.Do(req)
	if err != nil {
		cancel()
		t.Fatalf("open SSE stream: %v", err)
	}

	waitViewers(t, before.ViewerCount+1)

	cancel()
	sseResp.Body.Close()
	waitViewers(t, before.ViewerCount)
}

// waitViewers polls the status endpoint until the viewer count matches.
func waitViewers(t *testing.T, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		st := decodeJSON[streamStatus](t, env.GET(t, "/api/v1/stream/status"))
		if st.ViewerCount == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("viewer_count = %d; want %d", st.ViewerCount, want)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

type sseEvent struct {
	name    string
	payload string
}

// readEvent parses one SSE event frame and decodes its base64 data line.
func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read SSE stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if ev.name != "" {
				return ev
			}
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(line, "data: "))
			if err != nil {
				t.Fatalf("decode SSE data: %v", err)
			}
			ev.payload = string(raw)
		}
	}
}
