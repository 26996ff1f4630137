package recorder

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dgnsrekt/webcast/internal/broadcast"
	"github.com/google/uuid"
)

// Meta is the JSON sidecar written next to each recorded session.
type Meta struct {
	ID        string     `json:"id"`
	Codec     string     `json:"codec"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Units     int64      `json:"units"`
	Bytes     int64      `json:"bytes"`
}

type record struct {
	unit  *broadcast.MediaUnit
	codec string
}

// Recorder archives broadcast sessions to disk: one payload file
// concatenating every ingested unit of a session, plus a JSON metadata
// sidecar. Units arrive through OnUnit (wired as the engine's tap) and are
// written by a single goroutine; a full buffer drops the unit rather than
// slowing ingest. Each initialization unit starts a new session file.
type Recorder struct {
	dir     string
	writeCh chan record
	done    chan struct{}
	wg      sync.WaitGroup

	// owned by writeLoop
	payload *os.File
	meta    Meta
}

// New creates a Recorder writing under dir and starts its write loop.
func New(dir string, bufferSize int) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("recorder: mkdir %s: %w", dir, err)
	}
	if bufferSize < 1 {
		bufferSize = 256
	}
	r := &Recorder{
		dir:     dir,
		writeCh: make(chan record, bufferSize),
		done:    make(chan struct{}),
	}
	r.wg.Add(1)
	go r.writeLoop()
	return r, nil
}

// OnUnit queues a unit for archival. Never blocks the ingest path.
func (r *Recorder) OnUnit(unit *broadcast.MediaUnit, codec string) {
	select {
	case r.writeCh <- record{unit: unit, codec: codec}:
	case <-r.done:
	default:
		slog.Warn("recorder buffer full, dropping unit", "sequence", unit.Sequence)
	}
}

// Close stops the write loop, drains what is still buffered, and finalizes
// the open session.
func (r *Recorder) Close() error {
	close(r.done)
	r.wg.Wait()

drain:
	for {
		select {
		case rec := <-r.writeCh:
			r.writeRecord(rec)
		default:
			break drain
		}
	}

	return r.finalize()
}

func (r *Recorder) writeLoop() {
	defer r.wg.Done()
	for {
		select {
		case rec := <-r.writeCh:
			r.writeRecord(rec)
		case <-r.done:
			return
		}
	}
}

func (r *Recorder) writeRecord(rec record) {
	if rec.unit.Kind == broadcast.KindInit {
		if err := r.rotate(rec.codec); err != nil {
			slog.Error("recorder session rotate failed", "error", err)
			return
		}
	}
	if r.payload == nil {
		// Units before the first init have no session to belong to.
		return
	}
	n, err := r.payload.Write(rec.unit.Payload)
	if err != nil {
		slog.Error("recorder write failed", "id", r.meta.ID, "error", err)
		return
	}
	r.meta.Units++
	r.meta.Bytes += int64(n)
}

// rotate finalizes the current session and opens a fresh one.
func (r *Recorder) rotate(codec string) error {
	if err := r.finalize(); err != nil {
		slog.Warn("recorder finalize failed", "id", r.meta.ID, "error", err)
	}

	id := uuid.NewString()
	f, err := os.Create(filepath.Join(r.dir, id+".media"))
	if err != nil {
		return fmt.Errorf("recorder: create payload file: %w", err)
	}
	r.payload = f
	r.meta = Meta{ID: id, Codec: codec, StartedAt: time.Now().UTC()}
	return r.writeSidecar()
}

// finalize closes the open payload file and stamps the sidecar.
func (r *Recorder) finalize() error {
	if r.payload == nil {
		return nil
	}
	now := time.Now().UTC()
	r.meta.EndedAt = &now

	var firstErr error
	if err := r.writeSidecar(); err != nil {
		firstErr = err
	}
	if err := r.payload.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("recorder: close payload file: %w", err)
	}
	r.payload = nil
	return firstErr
}

func (r *Recorder) writeSidecar() error {
	data, err := json.MarshalIndent(r.meta, "", "  ")
	if err != nil {
		return fmt.Errorf("recorder: marshal meta: %w", err)
	}
	path := filepath.Join(r.dir, r.meta.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("recorder: write meta: %w", err)
	}
	return nil
}

// List reads the metadata sidecars under dir, newest first.
func List(dir string) ([]Meta, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("recorder: read dir %s: %w", dir, err)
	}
	var out []Meta
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			slog.Warn("recorder meta unreadable", "file", e.Name(), "error", err)
			continue
		}
		var m Meta
		if err := json.Unmarshal(data, &m); err != nil {
			slog.Warn("recorder meta corrupt", "file", e.Name(), "error", err)
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}
