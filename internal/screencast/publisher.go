package screencast

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// frameCodec is the codec identity advertised for screencast sessions.
// Every JPEG frame is self-contained, so the first frame doubles as the
// initialization unit and all frames are flagged as keyframes.
const frameCodec = "image/jpeg"

// Options configures a Publisher.
type Options struct {
	IngestURL string
	Quality   int           // JPEG quality 1..100
	MinGap    time.Duration // minimum time between uploads (FPS cap)
	Client    *http.Client
}

// Publisher captures a Chromium page via CDP screencast and publishes each
// frame to the relay ingest endpoint. Frames are acked immediately and
// dropped when the uploader is behind; capture never stalls the browser.
type Publisher struct {
	ingestURL string
	quality   int64
	minGap    time.Duration
	client    *http.Client

	frameCh chan []byte // capture→uploader, drop when full
	done    chan struct{}
	wg      sync.WaitGroup

	sent    atomic.Int64
	dropped atomic.Int64
}

func New(opts Options) *Publisher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	quality := int64(opts.Quality)
	if quality < 1 || quality > 100 {
		quality = 70
	}
	return &Publisher{
		ingestURL: opts.IngestURL,
		quality:   quality,
		minGap:    opts.MinGap,
		client:    client,
		frameCh:   make(chan []byte, 32),
		done:      make(chan struct{}),
	}
}

// Start registers the frame listener on the chromedp context, begins the
// screencast, and launches the upload loop.
func (p *Publisher) Start(ctx context.Context) error {
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		frame, ok := ev.(*page.EventScreencastFrame)
		if !ok {
			return
		}
		// Ack first so the browser keeps producing regardless of what
		// happens to this frame.
		go func() {
			if err := chromedp.Run(ctx, page.ScreencastFrameAck(frame.SessionID)); err != nil {
				slog.Debug("screencast frame ack failed", "error", err)
			}
		}()

		decoded, err := base64.StdEncoding.DecodeString(frame.Data)
		if err != nil {
			slog.Warn("screencast frame decode failed", "error", err)
			return
		}
		select {
		case p.frameCh <- decoded:
		default:
			p.dropped.Add(1)
		}
	})

	if err := chromedp.Run(ctx, page.StartScreencast().
		WithFormat(page.ScreencastFormatJpeg).
		WithQuality(p.quality).
		WithEveryNthFrame(1)); err != nil {
		return fmt.Errorf("screencast: start: %w", err)
	}

	p.wg.Add(1)
	go p.uploadLoop(ctx)
	return nil
}

// Stop ends the screencast and waits for the uploader to finish.
func (p *Publisher) Stop(ctx context.Context) {
	if err := chromedp.Run(ctx, page.StopScreencast()); err != nil {
		slog.Debug("screencast stop failed", "error", err)
	}
	select {
	case <-p.done:
	default:
		close(p.done)
	}
	p.wg.Wait()
	slog.Info("screencast publisher stopped", "frames_sent", p.sent.Load(), "frames_dropped", p.dropped.Load())
}

// Sent returns how many frames reached the relay.
func (p *Publisher) Sent() int64 { return p.sent.Load() }

// Dropped returns how many frames were shed because the uploader was behind.
func (p *Publisher) Dropped() int64 { return p.dropped.Load() }

func (p *Publisher) uploadLoop(ctx context.Context) {
	defer p.wg.Done()
	var lastPost time.Time
	for {
		select {
		case <-p.done:
			return
		case <-ctx.Done():
			return
		case frame := <-p.frameCh:
			if p.minGap > 0 && time.Since(lastPost) < p.minGap {
				p.dropped.Add(1)
				continue
			}
			if err := p.publishFrame(ctx, frame); err != nil {
				slog.Warn("screencast frame upload failed", "error", err)
				continue
			}
			lastPost = time.Now()
		}
	}
}

// publishFrame posts one frame to the relay. The very first frame arms the
// relay session as the initialization unit; every frame carries the
// keyframe flag since JPEGs decode independently.
func (p *Publisher) publishFrame(ctx context.Context, frame []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.ingestURL, bytes.NewReader(frame))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Cast-Keyframe", "true")
	if p.sent.Load() == 0 {
		req.Header.Set("X-Cast-Codec", frameCodec)
		req.Header.Set("X-Cast-Init", "true")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ingest rejected frame: status=%d", resp.StatusCode)
	}
	p.sent.Add(1)
	return nil
}
