// Package history keeps the committed documents of an engine as a bounded
// undo log with a cursor.
package history

import (
	"github.com/goliatone/go-uischema/pkg/schema"
)

// DefaultDepth bounds the number of retained documents when New receives a
// non-positive depth.
const DefaultDepth = 50

// Store is an append-only, depth-bounded sequence of committed documents plus
// a cursor. The document at the cursor is the current one. Entries beyond
// the cursor are reachable with Advance until the next Commit discards them.
//
// Store is not safe for concurrent use; callers serialise access.
type Store struct {
	depth   int
	entries []schema.Document
	cursor  int
	last    int
}

// New constructs an empty Store retaining at most depth documents.
func New(depth int) *Store {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Store{depth: depth, cursor: -1}
}

// Commit stores doc as the new current document and returns the committed
// copy. The version is stamped as one past the highest version this store
// has committed so versions increase strictly, even after a rewind.
func (s *Store) Commit(doc schema.Document) schema.Document {
	s.last++
	committed := doc.Clone()
	committed.Version = s.last

	s.entries = append(s.entries[:s.cursor+1], committed)
	if overflow := len(s.entries) - s.depth; overflow > 0 {
		s.entries = append([]schema.Document(nil), s.entries[overflow:]...)
	}
	s.cursor = len(s.entries) - 1
	return committed.Clone()
}

// Current returns the document at the cursor.
func (s *Store) Current() (schema.Document, bool) {
	if s.cursor < 0 {
		return schema.Document{}, false
	}
	return s.entries[s.cursor].Clone(), true
}

// Rewind moves the cursor one step back. It reports false, leaving the cursor
// unchanged, at the oldest retained entry.
func (s *Store) Rewind() (schema.Document, bool) {
	if s.cursor <= 0 {
		return schema.Document{}, false
	}
	s.cursor--
	return s.entries[s.cursor].Clone(), true
}

// Advance moves the cursor one step forward. It reports false when there is
// nothing to redo.
func (s *Store) Advance() (schema.Document, bool) {
	if s.cursor < 0 || s.cursor >= len(s.entries)-1 {
		return schema.Document{}, false
	}
	s.cursor++
	return s.entries[s.cursor].Clone(), true
}

// CanRewind reports whether Rewind would move the cursor.
func (s *Store) CanRewind() bool { return s.cursor > 0 }

// CanAdvance reports whether Advance would move the cursor.
func (s *Store) CanAdvance() bool { return s.cursor >= 0 && s.cursor < len(s.entries)-1 }

// Len returns the number of retained documents.
func (s *Store) Len() int { return len(s.entries) }

// Cursor returns the index of the current document, or -1 when empty.
func (s *Store) Cursor() int { return s.cursor }

// Depth returns the retention bound.
func (s *Store) Depth() int { return s.depth }

// LastVersion returns the highest version committed so far.
func (s *Store) LastVersion() int { return s.last }

// Versions lists the versions of the retained documents, oldest first.
func (s *Store) Versions() []int {
	out := make([]int, len(s.entries))
	for idx, doc := range s.entries {
		out[idx] = doc.Version
	}
	return out
}
