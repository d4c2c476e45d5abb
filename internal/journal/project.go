package journal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Layout names inside a project.
const (
	MarkerDir      = ".bloglog"
	MetadataFile   = "metadata.json"
	TimelineFile   = "timeline.json"
	ScratchpadFile = "scratchpad.md"
	DraftsDir      = "drafts"
	TemplatesDir   = "templates"
	lockFile       = ".lock"
)

// ErrNotInitialized is returned when no marker directory is found.
var ErrNotInitialized = errors.New("no .bloglog directory found")

// ErrAlreadyInitialized is returned by Init when the marker already exists.
var ErrAlreadyInitialized = errors.New(".bloglog directory already exists")

// MarkerPath returns the marker directory for a project root.
func MarkerPath(root string) string {
	return filepath.Join(root, MarkerDir)
}

// FindRoot returns the nearest directory, starting at start and walking up
// through its parents, that contains a marker directory.
// Returns ErrNotInitialized once the filesystem root has been checked.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}

	for {
		if isDir(MarkerPath(dir)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotInitialized
		}
		dir = parent
	}
}

// Init creates the marker directory, an empty drafts directory, the initial
// metadata document and an empty timeline, in that order, and returns the
// marker path. Initialized is set to the current time.
//
// Init fails with ErrAlreadyInitialized, without touching the filesystem, if
// the marker exists. A failure part-way through is not rolled back; see
// Store.EnsureLayout for completing a partial project.
func Init(root string, meta Metadata) (string, error) {
	marker := MarkerPath(root)
	if _, err := os.Lstat(marker); err == nil {
		return "", fmt.Errorf("%w: %s", ErrAlreadyInitialized, marker)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("checking %s: %w", marker, err)
	}

	if err := os.Mkdir(marker, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", marker, err)
	}
	if err := os.Mkdir(filepath.Join(marker, DraftsDir), 0o755); err != nil {
		return "", fmt.Errorf("creating drafts directory: %w", err)
	}

	meta.Initialized = time.Now().UTC().Format(time.RFC3339Nano)
	if err := writeJSON(filepath.Join(marker, MetadataFile), meta); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(marker, TimelineFile), timelineDoc{Entries: []Entry{}}); err != nil {
		return "", err
	}
	return marker, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
