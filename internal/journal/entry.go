package journal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"
)

// Known entry types. The store accepts any type string; these are the ones
// with a recognized payload shape.
const (
	TypeCommit       = "commit"
	TypeNote         = "note"
	TypeWin          = "win"
	TypeBlocker      = "blocker"
	TypeConversation = "conversation"
)

// Store-assigned keys. Caller-supplied values for these are discarded.
const (
	keyID        = "id"
	keyTimestamp = "timestamp"
	keyType      = "type"
)

// Entry is one timeline record. ID and Timestamp are assigned by the store;
// every other key of the stored object lives in Fields and round-trips
// verbatim, whether or not the type is known.
//
// An entry read from disk remembers how its id, timestamp and type were
// encoded. Unchanged values are written back byte for byte, and keys the
// stored object never had stay absent.
type Entry struct {
	ID        string
	Timestamp time.Time
	Type      string
	Fields    map[string]json.RawMessage

	reserved map[string]json.RawMessage
}

// TimestampLayout is how the store writes timestamps: UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// CommitPayload is the payload of a commit entry. GitHash is nil when the
// git commit did not happen.
type CommitPayload struct {
	Message string  `json:"message"`
	GitHash *string `json:"gitHash"`
}

// TextPayload is the payload of note, win and blocker entries.
type TextPayload struct {
	Content string `json:"content"`
}

// ConversationPayload is the payload of a captured conversation.
type ConversationPayload struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// OpaquePayload holds the fields of an entry whose type has no known shape.
type OpaquePayload struct {
	Fields map[string]json.RawMessage
}

// Payload decodes the entry's fields into the shape registered for its type:
// *CommitPayload, *TextPayload, *ConversationPayload, or *OpaquePayload for
// anything else.
func (e Entry) Payload() (any, error) {
	var target any
	switch e.Type {
	case TypeCommit:
		target = &CommitPayload{}
	case TypeNote, TypeWin, TypeBlocker:
		target = &TextPayload{}
	case TypeConversation:
		target = &ConversationPayload{}
	default:
		return &OpaquePayload{Fields: maps.Clone(e.Fields)}, nil
	}

	raw, err := json.Marshal(e.Fields)
	if err != nil {
		return nil, fmt.Errorf("encoding %s fields: %w", e.Type, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decoding %s payload: %w", e.Type, err)
	}
	return target, nil
}

// Field decodes a single payload field into dst.
// Reports false when the field is absent.
func (e Entry) Field(key string, dst any) (bool, error) {
	raw, ok := e.Fields[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decoding field %q: %w", key, err)
	}
	return true, nil
}

// String returns a string field, or "" when absent or not a string.
func (e Entry) String(key string) string {
	var s string
	if ok, err := e.Field(key, &s); !ok || err != nil {
		return ""
	}
	return s
}

// MarshalJSON writes the entry as one flat object.
func (e Entry) MarshalJSON() ([]byte, error) {
	obj := make(map[string]json.RawMessage, len(e.Fields)+3)
	maps.Copy(obj, e.Fields)
	delete(obj, keyID)
	delete(obj, keyTimestamp)
	delete(obj, keyType)

	if err := e.putReserved(obj, keyID, e.ID == "", decodeString(e.reserved[keyID]) == e.ID, e.ID); err != nil {
		return nil, err
	}
	stamp := e.Timestamp.UTC().Format(TimestampLayout)
	if err := e.putReserved(obj, keyTimestamp, e.Timestamp.IsZero(), decodeTime(e.reserved[keyTimestamp]).Equal(e.Timestamp), stamp); err != nil {
		return nil, err
	}
	if err := e.putReserved(obj, keyType, e.Type == "", decodeString(e.reserved[keyType]) == e.Type, e.Type); err != nil {
		return nil, err
	}
	return json.Marshal(obj)
}

// putReserved writes the stored encoding of key when the value is
// unchanged, omits a zero value the stored object never had, and encodes
// value otherwise.
func (e Entry) putReserved(obj map[string]json.RawMessage, key string, zero, unchanged bool, value any) error {
	if raw, ok := e.reserved[key]; ok && unchanged {
		obj[key] = raw
		return nil
	}
	if zero {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("entry %s: %w", key, err)
	}
	obj[key] = raw
	return nil
}

// UnmarshalJSON reads a flat entry object. An id, type or timestamp of the
// wrong shape, null, or missing reads as the zero value and never fails the
// decode.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj == nil {
		return errors.New("entry is not a JSON object")
	}

	out := Entry{reserved: map[string]json.RawMessage{}}
	for _, key := range []string{keyID, keyTimestamp, keyType} {
		if raw, ok := obj[key]; ok {
			out.reserved[key] = raw
			delete(obj, key)
		}
	}
	out.ID = decodeString(out.reserved[keyID])
	out.Type = decodeString(out.reserved[keyType])
	out.Timestamp = decodeTime(out.reserved[keyTimestamp])
	out.Fields = obj
	*e = out
	return nil
}

func decodeString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func decodeTime(raw json.RawMessage) time.Time {
	s := decodeString(raw)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Partial is a caller-supplied entry: a type plus payload fields.
// It never carries an id or timestamp.
type Partial struct {
	Type   string
	Fields map[string]json.RawMessage
}

// NewPartial builds a Partial from a payload value that encodes to a JSON
// object, such as CommitPayload or a map. Keys named id, timestamp or type
// are dropped.
func NewPartial(entryType string, payload any) (Partial, error) {
	p := Partial{Type: entryType, Fields: map[string]json.RawMessage{}}
	if payload == nil {
		return p, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Partial{}, fmt.Errorf("encoding %s payload: %w", entryType, err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return Partial{}, fmt.Errorf("%s payload must encode to a JSON object", entryType)
	}
	if err := json.Unmarshal(raw, &p.Fields); err != nil {
		return Partial{}, fmt.Errorf("decoding %s payload: %w", entryType, err)
	}
	delete(p.Fields, keyID)
	delete(p.Fields, keyTimestamp)
	delete(p.Fields, keyType)
	return p, nil
}

// Note, Win and Blocker build text entries.
func Note(content string) Partial    { return textPartial(TypeNote, content) }
func Win(content string) Partial     { return textPartial(TypeWin, content) }
func Blocker(content string) Partial { return textPartial(TypeBlocker, content) }

// Commit builds a commit entry. An empty hash is stored as null.
func Commit(message, gitHash string) Partial {
	payload := CommitPayload{Message: message}
	if gitHash != "" {
		payload.GitHash = &gitHash
	}
	p, _ := NewPartial(TypeCommit, payload)
	return p
}

// Conversation builds a conversation entry. Nil tags are stored as [].
func Conversation(summary string, tags []string) Partial {
	if tags == nil {
		tags = []string{}
	}
	p, _ := NewPartial(TypeConversation, ConversationPayload{Summary: summary, Tags: tags})
	return p
}

func textPartial(entryType, content string) Partial {
	p, _ := NewPartial(entryType, TextPayload{Content: content})
	return p
}
