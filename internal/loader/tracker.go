package loader

import (
	"context"
	"errors"
	"image"
	"sync"
)

// ErrSuperseded reports that a newer request replaced this one.
var ErrSuperseded = errors.New("load superseded by a newer request")

// Slot groups requests that replace each other.
type Slot string

const (
	SlotBackground Slot = "background"
	SlotSticker    Slot = "sticker"
)

// Ticket identifies one load request.
type Ticket struct {
	slot   Slot
	seq    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// Context is cancelled as soon as the ticket is superseded or finished.
func (t *Ticket) Context() context.Context { return t.ctx }

// Slot returns the slot the ticket was issued for.
func (t *Ticket) Slot() Slot { return t.slot }

// Result is the outcome of a load started with a ticket.
type Result struct {
	Ticket *Ticket
	Source string
	Image  image.Image
	Err    error
}

// Tracker hands out tickets so that only the most recently requested load in
// each slot may be applied.
type Tracker struct {
	mu      sync.Mutex
	seq     uint64
	current map[Slot]*Ticket
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{current: make(map[Slot]*Ticket)}
}

// Begin issues a ticket for slot and cancels the previous one.
func (tr *Tracker) Begin(parent context.Context, slot Slot) *Ticket {
	ctx, cancel := context.WithCancel(parent)
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if prev := tr.current[slot]; prev != nil {
		prev.cancel()
	}
	tr.seq++
	t := &Ticket{slot: slot, seq: tr.seq, ctx: ctx, cancel: cancel}
	tr.current[slot] = t
	return t
}

// Current reports whether t is still the latest ticket in its slot.
func (tr *Tracker) Current(t *Ticket) bool {
	if t == nil {
		return false
	}
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.current[t.slot] == t
}

// Finish retires t. It returns ErrSuperseded when a newer ticket exists, in
// which case the caller must discard the result.
func (tr *Tracker) Finish(t *Ticket) error {
	if t == nil {
		return ErrSuperseded
	}
	tr.mu.Lock()
	defer tr.mu.Unlock()
	t.cancel()
	if tr.current[t.slot] != t {
		return ErrSuperseded
	}
	delete(tr.current, t.slot)
	return nil
}

// CancelAll cancels every outstanding ticket.
func (tr *Tracker) CancelAll() {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	for slot, t := range tr.current {
		t.cancel()
		delete(tr.current, slot)
	}
}

// Start loads src on a new goroutine and delivers the result to done. The
// result is delivered even when superseded; callers check it with Finish.
func (l *Loader) Start(t *Ticket, src string, done func(Result)) {
	go func() {
		img, err := l.Load(t.Context(), src)
		done(Result{Ticket: t, Source: src, Image: img, Err: err})
	}()
}
