// Package sequence holds the notes the display draws.
package sequence

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
)

var (
	ErrNoteNotFound  = errors.New("note not in sequence")
	ErrNegativeStart = errors.New("note start before beat 0")
	ErrNoNotes       = errors.New("no notes found")
)

// Note is a single note. Start and Length are in beats, Number is the MIDI pitch.
type Note struct {
	Start    float64 `json:"start"`
	Length   float64 `json:"length"`
	Number   int     `json:"number"`
	Velocity uint8   `json:"velocity"`
	Channel  uint8   `json:"channel"`
}

// End returns the beat the note stops sounding
func (n *Note) End() float64 {
	return n.Start + n.Length
}

// Overlaps reports whether the note sounds anywhere in [start, end)
func (n *Note) Overlaps(start, end float64) bool {
	return n.Start < end && n.End() > start
}

// Sequence is an in-memory note list. Notes are identified by pointer.
type Sequence struct {
	mu       sync.RWMutex
	notes    []*Note
	tempo    float64
	onChange []func(*Note)
}

func New() *Sequence {
	return &Sequence{tempo: 120}
}

// Add appends notes and returns the sequence for chaining
func (s *Sequence) Add(notes ...*Note) *Sequence {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, notes...)
	return s
}

// All returns every note in insertion order
func (s *Sequence) All() []*Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notes)
}

// Snapshot copies every note under the read lock
func (s *Sequence) Snapshot() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Note, 0, len(s.notes))
	for _, n := range s.notes {
		out = append(out, *n)
	}
	return out
}

func (s *Sequence) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

func (s *Sequence) Tempo() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tempo
}

func (s *Sequence) SetTempo(bpm float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bpm > 0 {
		s.tempo = bpm
	}
}

// GetNotes returns notes overlapping [startBeat, endBeat), by start then pitch
func (s *Sequence) GetNotes(startBeat, endBeat float64) []*Note {
	s.mu.RLock()
	var out []*Note
	for _, n := range s.notes {
		if n.Overlaps(startBeat, endBeat) {
			out = append(out, n)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].Number < out[j].Number
	})
	return out
}

// MoveNote sets the start of note. The note must belong to this sequence.
func (s *Sequence) MoveNote(note *Note, newStart float64) error {
	if note == nil {
		return ErrNoteNotFound
	}
	if newStart < 0 {
		return fmt.Errorf("%w: %g", ErrNegativeStart, newStart)
	}

	s.mu.Lock()
	if !slices.Contains(s.notes, note) {
		s.mu.Unlock()
		return ErrNoteNotFound
	}
	note.Start = newStart
	subs := slices.Clone(s.onChange)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(note)
	}
	return nil
}

// OnChange registers fn to run after every successful move
func (s *Sequence) OnChange(fn func(*Note)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Demo returns a short three-note phrase inside the first two bars
func Demo() *Sequence {
	return New().Add(
		&Note{Start: 0, Length: 2, Number: 60, Velocity: 100},
		&Note{Start: 2, Length: 1, Number: 64, Velocity: 100},
		&Note{Start: 4, Length: 2, Number: 67, Velocity: 100},
	)
}
