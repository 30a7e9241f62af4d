// Package recording stores the stepping notifications of a run in a SQLite
// database and replays them into hooks later.
package recording

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/steptrace/stepping"
)

const defaultBatchSize = 10000

// ErrClosed is returned when notifications are flushed into a closed
// Recorder.
var ErrClosed = errors.New("recorder is closed")

type entry struct {
	seq     int64
	worker  int
	pos     string
	payload []byte
}

// A Recorder writes stepping notifications into a SQLite database. It is
// safe to feed it from multiple workers.
type Recorder struct {
	*sql.DB

	lock      sync.Mutex
	path      string
	batchSize int
	seq       int64
	pending   []entry
	err       error
	closed    bool
}

// NewRecorder creates the database <path>.sqlite3. An empty path picks the
// name steptrace_<xid>. An existing file is never overwritten.
func NewRecorder(path string) (*Recorder, error) {
	r := &Recorder{
		path:      path,
		batchSize: defaultBatchSize,
	}

	if err := r.init(); err != nil {
		return nil, err
	}

	atexit.Register(func() { _ = r.Close() })

	return r, nil
}

func (r *Recorder) init() error {
	if r.path == "" {
		r.path = "steptrace_" + xid.New().String()
	}

	filename := r.path + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		return fmt.Errorf("file %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return err
	}

	r.DB = db

	_, err = r.Exec(`CREATE TABLE notification (
	seq     INTEGER PRIMARY KEY,
	worker  INTEGER NOT NULL,
	pos     TEXT NOT NULL,
	payload BLOB NOT NULL
);
CREATE INDEX notification_worker ON notification (worker, seq);`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create notification table: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Notifications are recorded in: %s\n", filename)

	return nil
}

// Path returns the database path without the .sqlite3 extension.
func (r *Recorder) Path() string {
	return r.path
}

// Filename returns the database file name.
func (r *Recorder) Filename() string {
	return r.path + ".sqlite3"
}

// SetBatchSize sets how many notifications are buffered before they are
// written.
func (r *Recorder) SetBatchSize(n int) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if n < 1 {
		n = 1
	}

	r.batchSize = n
}

// ForWorker returns a hook that records the notifications of one worker.
func (r *Recorder) ForWorker(id int) stepping.Hook {
	return &workerHook{recorder: r, worker: id}
}

type workerHook struct {
	recorder *Recorder
	worker   int
}

// Func records the notification. Payloads are encoded right away because
// the host keeps mutating its tracks after the notification returns.
func (h *workerHook) Func(ctx stepping.HookCtx) {
	if ctx.Pos == nil || stepping.HookPosByName(ctx.Pos.Name) != ctx.Pos {
		return
	}

	payload, err := json.Marshal(ctx.Item)
	if err != nil {
		h.recorder.fail(fmt.Errorf("failed to encode %s: %w", ctx.Pos.Name, err))
		return
	}

	h.recorder.add(h.worker, ctx.Pos.Name, payload)
}

func (r *Recorder) add(worker int, pos string, payload []byte) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.closed {
		r.setErr(ErrClosed)
		return
	}

	r.seq++
	r.pending = append(r.pending, entry{
		seq:     r.seq,
		worker:  worker,
		pos:     pos,
		payload: payload,
	})

	if len(r.pending) >= r.batchSize {
		r.setErr(r.flush())
	}
}

func (r *Recorder) fail(err error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.setErr(err)
}

// setErr keeps the first error. Callers hold the lock.
func (r *Recorder) setErr(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Err returns the first error the recorder ran into.
func (r *Recorder) Err() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.err
}

// Flush writes all the buffered notifications to the database.
func (r *Recorder) Flush() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.closed {
		return ErrClosed
	}

	r.setErr(r.flush())

	return r.err
}

func (r *Recorder) flush() error {
	if len(r.pending) == 0 {
		return nil
	}

	tx, err := r.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		"INSERT INTO notification (seq, worker, pos, payload) VALUES (?, ?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, e := range r.pending {
		_, err := stmt.Exec(e.seq, e.worker, e.pos, e.payload)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert notification %d: %w", e.seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	r.pending = nil

	return nil
}

// Close flushes the buffered notifications and closes the database. Closing
// twice is a no-op.
func (r *Recorder) Close() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.closed {
		return nil
	}

	r.setErr(r.flush())
	r.closed = true

	if err := r.DB.Close(); err != nil {
		r.setErr(err)
	}

	return r.err
}
