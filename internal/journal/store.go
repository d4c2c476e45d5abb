package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Store reads and writes the documents of one project.
type Store struct {
	root  string
	now   func() time.Time
	newID func() string
}

// New returns a Store for the project at root. It does not check that the
// marker exists.
func New(root string) *Store {
	return &Store{
		root:  root,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Open locates the project containing start and returns its Store.
func Open(start string) (*Store, error) {
	root, err := FindRoot(start)
	if err != nil {
		return nil, err
	}
	return New(root), nil
}

// Root returns the project root.
func (s *Store) Root() string { return s.root }

// Dir returns the marker directory.
func (s *Store) Dir() string { return MarkerPath(s.root) }

func (s *Store) path(name string) string {
	return filepath.Join(s.Dir(), name)
}

// ReadMetadata returns the project metadata, or nil when the document does
// not exist.
func (s *Store) ReadMetadata() (*Metadata, error) {
	var meta Metadata
	found, err := readJSON(s.path(MetadataFile), &meta)
	if err != nil || !found {
		return nil, err
	}
	return &meta, nil
}

// WriteMetadata replaces the metadata document with meta. When meta has no
// Initialized value the existing one is kept, or the current time is used if
// there is none. Returns what was written.
func (s *Store) WriteMetadata(meta Metadata) (*Metadata, error) {
	err := s.locked(func() error {
		if meta.Initialized == "" {
			existing, err := s.ReadMetadata()
			if err != nil {
				return err
			}
			if existing != nil {
				meta.Initialized = existing.Initialized
			}
		}
		if meta.Initialized == "" {
			meta.Initialized = s.now().UTC().Format(time.RFC3339Nano)
		}
		return writeJSON(s.path(MetadataFile), meta)
	})
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// ReadTimeline returns all entries in append order. A missing document is an
// empty timeline.
func (s *Store) ReadTimeline() ([]Entry, error) {
	var doc timelineDoc
	if _, err := readJSON(s.path(TimelineFile), &doc); err != nil {
		return nil, err
	}
	if doc.Entries == nil {
		return []Entry{}, nil
	}
	return doc.Entries, nil
}

// Append stamps p with a new id and the current time, adds it to the end of
// the timeline, and returns the stored entry. Entries already in the
// document are carried over as stored, without being decoded.
func (s *Store) Append(p Partial) (Entry, error) {
	entry := Entry{
		ID:        s.newID(),
		Timestamp: s.now().UTC().Truncate(time.Millisecond),
		Type:      p.Type,
		Fields:    cloneFields(p.Fields),
	}
	encoded, err := json.Marshal(entry)
	if err != nil {
		return Entry{}, fmt.Errorf("encoding entry: %w", err)
	}

	err = s.locked(func() error {
		path := s.path(TimelineFile)
		var doc map[string]json.RawMessage
		if _, err := readJSON(path, &doc); err != nil {
			return err
		}
		if doc == nil {
			doc = map[string]json.RawMessage{}
		}

		var entries []json.RawMessage
		if raw, ok := doc["entries"]; ok {
			if err := json.Unmarshal(raw, &entries); err != nil {
				return fmt.Errorf("parsing %s: entries: %w", path, err)
			}
		}
		entries = append(entries, encoded)

		raw, err := json.Marshal(entries)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", path, err)
		}
		doc["entries"] = raw
		return writeJSON(path, doc)
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// EnsureLayout creates whatever part of the project layout is missing: the
// marker, drafts directory and an empty timeline. Existing files are left
// alone.
func (s *Store) EnsureLayout() error {
	if err := os.MkdirAll(filepath.Join(s.Dir(), DraftsDir), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", s.Dir(), err)
	}
	timeline := s.path(TimelineFile)
	if _, err := os.Stat(timeline); errors.Is(err, fs.ErrNotExist) {
		return writeJSON(timeline, timelineDoc{Entries: []Entry{}})
	} else if err != nil {
		return fmt.Errorf("checking %s: %w", timeline, err)
	}
	return nil
}

// ReadScratchpad returns the scratchpad text, or "" when there is none.
func (s *Store) ReadScratchpad() (string, error) {
	data, err := os.ReadFile(s.path(ScratchpadFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading scratchpad: %w", err)
	}
	return string(data), nil
}

// WriteScratchpad replaces the scratchpad text.
func (s *Store) WriteScratchpad(content string) error {
	return writeFile(s.path(ScratchpadFile), []byte(content))
}

// WriteDraft stores content verbatim under drafts/ and returns its path.
func (s *Store) WriteDraft(name, content string) (string, error) {
	dir := filepath.Join(s.Dir(), DraftsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating drafts directory: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := writeFile(path, []byte(content)); err != nil {
		return "", err
	}
	return path, nil
}

// TimelinePath returns the path of the timeline document.
func (s *Store) TimelinePath() string { return s.path(TimelineFile) }

// TemplatesPath returns the project's template override directory.
func (s *Store) TemplatesPath() string { return s.path(TemplatesDir) }

// locked serializes read-modify-write cycles across processes.
func (s *Store) locked(fn func() error) error {
	if !isDir(s.Dir()) {
		return fmt.Errorf("%w: %s", ErrNotInitialized, s.root)
	}
	return withLock(s.path(lockFile), fn)
}

func cloneFields(fields map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(fields))
	maps.Copy(out, fields)
	return out
}
