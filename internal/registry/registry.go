// Package registry records the running web server so that status and stop
// can find it from any directory.
package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
)

// FileName is the record's name inside the config directory.
const FileName = "server.json"

// Record describes a running server.
type Record struct {
	PID         int       `json:"pid"`
	ProjectRoot string    `json:"projectRoot"`
	Address     string    `json:"address"`
	URL         string    `json:"url"`
	StartedAt   time.Time `json:"startedAt"`
}

// State is the outcome of Check.
type State int

// Check outcomes.
const (
	Stopped State = iota // no record
	Running              // record names a live process
	Stale                // record named a dead process and was removed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stale:
		return "stale"
	default:
		return "stopped"
	}
}

// Registry is a single-record store at <dir>/server.json.
type Registry struct {
	path  string
	alive func(pid int) bool
}

// New returns a Registry kept in dir.
func New(dir string) *Registry {
	return &Registry{
		path:  filepath.Join(dir, FileName),
		alive: processAlive,
	}
}

// Path returns the record file path.
func (r *Registry) Path() string { return r.path }

// Save writes rec, replacing any existing record.
func (r *Registry) Save(rec Record) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(r.path), err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding server record: %w", err)
	}
	if err := atomic.WriteFile(r.path, bytes.NewReader(append(data, '\n'))); err != nil {
		return fmt.Errorf("writing %s: %w", r.path, err)
	}
	return nil
}

// Load returns the saved record, or nil when there is none.
func (r *Registry) Load() (*Record, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.path, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", r.path, err)
	}
	return &rec, nil
}

// Check loads the record and checks its process. A record whose process is
// gone, or that cannot be parsed, is deleted and reported as Stale.
func (r *Registry) Check() (*Record, State, error) {
	rec, err := r.Load()
	if err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return nil, Stale, r.Remove()
		}
		return nil, Stopped, err
	}
	if rec == nil {
		return nil, Stopped, nil
	}
	if rec.PID > 0 && r.alive(rec.PID) {
		return rec, Running, nil
	}
	return rec, Stale, r.Remove()
}

// Remove deletes the record. A missing record is not an error.
func (r *Registry) Remove() error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", r.path, err)
	}
	return nil
}

// RemoveIfOwner deletes the record only when it names pid, so a server
// shutting down does not erase a successor's record.
func (r *Registry) RemoveIfOwner(pid int) error {
	rec, err := r.Load()
	if err != nil || rec == nil || rec.PID != pid {
		return err
	}
	return r.Remove()
}

// Terminate asks the process to shut down.
func Terminate(pid int) error {
	return terminate(pid)
}
