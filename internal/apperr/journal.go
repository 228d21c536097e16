// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package apperr

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultJournalSize is the number of entries a Journal keeps.
const DefaultJournalSize = 100

// Entry is one recorded error.
type Entry struct {
	Time    time.Time `json:"time" yaml:"time"`
	Kind    Kind      `json:"kind" yaml:"kind"`
	Code    string    `json:"code,omitempty" yaml:"code,omitempty"`
	Message string    `json:"message" yaml:"message"`
	Context string    `json:"context,omitempty" yaml:"context,omitempty"`
	Details any       `json:"details,omitempty" yaml:"details,omitempty"`
}

// Journal is a bounded ring of recent errors, oldest evicted first.
// It is safe for concurrent use.
type Journal struct {
	mu      sync.Mutex
	entries []Entry
	start   int
	size    int
	log     zerolog.Logger
	now     func() time.Time
}

// NewJournal returns a journal holding at most capacity entries. A
// non-positive capacity uses DefaultJournalSize.
func NewJournal(capacity int, log zerolog.Logger) *Journal {
	if capacity <= 0 {
		capacity = DefaultJournalSize
	}
	return &Journal{
		entries: make([]Entry, capacity),
		log:     log,
		now:     time.Now,
	}
}

// Record appends err under the given context label.
func (j *Journal) Record(err error, context string) {
	if err == nil {
		return
	}
	e := Entry{Kind: KindUnknown, Message: err.Error(), Context: context}
	if ae, ok := As(err); ok {
		e.Kind = ae.Kind
		e.Code = ae.Code
		e.Message = ae.Message
		e.Details = ae.Details
	}

	j.mu.Lock()
	e.Time = j.now()
	capacity := len(j.entries)
	if j.size < capacity {
		j.entries[(j.start+j.size)%capacity] = e
		j.size++
	} else {
		j.entries[j.start] = e
		j.start = (j.start + 1) % capacity
	}
	j.mu.Unlock()

	j.log.Error().
		Str("kind", string(e.Kind)).
		Str("code", e.Code).
		Str("context", context).
		Msg(e.Message)
}

// Entries returns a copy of the journal, oldest first.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]Entry, j.size)
	for i := range j.size {
		out[i] = j.entries[(j.start+i)%len(j.entries)]
	}
	return out
}

// Len returns the number of entries held.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.size
}

// Clear drops every entry.
func (j *Journal) Clear() {
	j.mu.Lock()
	j.start, j.size = 0, 0
	clear(j.entries)
	j.mu.Unlock()
}
