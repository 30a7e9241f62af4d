package recording

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/sarchlab/steptrace/stepping"
)

// Reader reads a recording written by a Recorder.
type Reader struct {
	*sql.DB
}

// Open opens the recording at path. Both "run" and "run.sqlite3" are
// accepted.
func Open(path string) (*Reader, error) {
	filename := path
	if _, err := os.Stat(filename); err != nil {
		filename = path + ".sqlite3"
		if _, err := os.Stat(filename); err != nil {
			return nil, fmt.Errorf("recording %s not found: %w", path, err)
		}
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, err
	}

	var name string
	err = db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='notification'",
	).Scan(&name)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s is not a steptrace recording: %w", filename, err)
	}

	return &Reader{DB: db}, nil
}

// Workers returns the IDs of the recorded workers in ascending order.
func (r *Reader) Workers() ([]int, error) {
	rows, err := r.Query(
		"SELECT DISTINCT worker FROM notification ORDER BY worker")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workers []int

	for rows.Next() {
		var w int
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}

		workers = append(workers, w)
	}

	return workers, rows.Err()
}

// Count returns the number of notifications recorded for a worker.
func (r *Reader) Count(worker int) (int, error) {
	var n int

	err := r.QueryRow(
		"SELECT COUNT(*) FROM notification WHERE worker = ?", worker,
	).Scan(&n)

	return n, err
}

// Replay invokes the hooks of target with the notifications of a worker, in
// the order they were recorded. It returns the number of notifications
// replayed.
func (r *Reader) Replay(worker int, target stepping.Hookable) (int, error) {
	rows, err := r.Query(
		"SELECT seq, pos, payload FROM notification WHERE worker = ? ORDER BY seq",
		worker)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0

	for rows.Next() {
		var (
			seq     int64
			posName string
			payload []byte
		)

		if err := rows.Scan(&seq, &posName, &payload); err != nil {
			return n, err
		}

		pos := stepping.HookPosByName(posName)
		if pos == nil {
			return n, fmt.Errorf("notification %d: unknown position %q",
				seq, posName)
		}

		item, err := stepping.DecodeItem(pos, payload)
		if err != nil {
			return n, fmt.Errorf("notification %d: %w", seq, err)
		}

		target.InvokeHook(stepping.HookCtx{
			Domain: target,
			Pos:    pos,
			Item:   item,
		})
		n++
	}

	return n, rows.Err()
}
