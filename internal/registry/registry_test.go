package registry

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestRegistry_SaveLoad(t *testing.T) {
	r := New(t.TempDir())

	rec, err := r.Load()
	if err != nil || rec != nil {
		t.Fatalf("Load() on empty = %v, %v; want nil, nil", rec, err)
	}

	want := Record{
		PID:         4242,
		ProjectRoot: "/work/demo",
		Address:     "127.0.0.1:3001",
		URL:         "http://localhost:3001",
		StartedAt:   time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	if err := r.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := r.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_Check(t *testing.T) {
	tests := []struct {
		name      string
		save      bool
		alive     bool
		wantState State
		wantFile  bool
	}{
		{name: "no record", wantState: Stopped},
		{name: "live process", save: true, alive: true, wantState: Running, wantFile: true},
		{name: "dead process", save: true, alive: false, wantState: Stale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(t.TempDir())
			r.alive = func(int) bool { return tt.alive }
			if tt.save {
				if err := r.Save(Record{PID: 99, ProjectRoot: "/p"}); err != nil {
					t.Fatal(err)
				}
			}

			_, state, err := r.Check()
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if state != tt.wantState {
				t.Errorf("Check() state = %v, want %v", state, tt.wantState)
			}
			_, statErr := os.Stat(r.Path())
			if exists := statErr == nil; exists != tt.wantFile {
				t.Errorf("record exists = %v, want %v", exists, tt.wantFile)
			}
		})
	}
}

func TestRegistry_CheckCorruptRecord(t *testing.T) {
	r := New(t.TempDir())
	if err := os.WriteFile(r.Path(), []byte("{garbage"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, state, err := r.Check()
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if state != Stale {
		t.Errorf("state = %v, want stale", state)
	}
	if _, err := os.Stat(r.Path()); !os.IsNotExist(err) {
		t.Error("corrupt record not removed")
	}
}

func TestRegistry_RemoveIfOwner(t *testing.T) {
	r := New(t.TempDir())
	if err := r.Save(Record{PID: 10}); err != nil {
		t.Fatal(err)
	}

	if err := r.RemoveIfOwner(11); err != nil {
		t.Fatal(err)
	}
	if rec, _ := r.Load(); rec == nil {
		t.Fatal("record removed by non-owner")
	}

	if err := r.RemoveIfOwner(10); err != nil {
		t.Fatal(err)
	}
	if rec, _ := r.Load(); rec != nil {
		t.Error("record not removed by owner")
	}
}

func TestRegistry_RemoveMissing(t *testing.T) {
	if err := New(t.TempDir()).Remove(); err != nil {
		t.Errorf("Remove() error = %v", err)
	}
}

func TestProcessAlive_Self(t *testing.T) {
	if !processAlive(os.Getpid()) {
		t.Error("processAlive(self) = false")
	}
}
