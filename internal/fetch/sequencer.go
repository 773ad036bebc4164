// Package fetch tracks the load state of list views and orders overlapping
// fetches so that only the latest one for a view is ever rendered.
package fetch

import (
	"context"
	"sync"
)

// State is the load state of one list view
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Resolve maps the outcome of a fetch to its terminal state
func Resolve(err error) State {
	if err != nil {
		return Errored
	}
	return Loaded
}

type inflight struct {
	seq    uint64
	cancel context.CancelFunc
}

// Sequencer hands out sequence numbers per key. Beginning a fetch cancels the
// one it supersedes.
type Sequencer struct {
	mu     sync.Mutex
	next   uint64
	latest map[string]inflight
}

// NewSequencer creates an empty Sequencer
func NewSequencer() *Sequencer {
	return &Sequencer{latest: make(map[string]inflight)}
}

// Ticket identifies one fetch started with Begin
type Ticket struct {
	s   *Sequencer
	key string
	seq uint64
}

// Begin registers a new fetch for key and returns a context that is cancelled
// as soon as a newer fetch for the same key begins.
func (s *Sequencer) Begin(ctx context.Context, key string) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.latest[key]; ok {
		prev.cancel()
	}
	s.next++
	s.latest[key] = inflight{seq: s.next, cancel: cancel}

	return ctx, Ticket{s: s, key: key, seq: s.next}
}

// Seq is the sequence number of the ticket
func (t Ticket) Seq() uint64 { return t.seq }

// Current reports whether the ticket is still the latest fetch for its key.
// A released ticket is never current.
func (t Ticket) Current() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	in, ok := t.s.latest[t.key]
	return ok && in.seq == t.seq
}

// Done releases the ticket and its context. It is safe to call more than once.
func (t Ticket) Done() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	in, ok := t.s.latest[t.key]
	if !ok || in.seq != t.seq {
		return
	}
	in.cancel()
	delete(t.s.latest, t.key)
}

// Len is the number of keys with a fetch in flight
func (s *Sequencer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.latest)
}
