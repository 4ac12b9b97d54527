package sequence

import (
	"time"

	"github.com/bep/debounce"

	"go-noteroll/debug"
)

// AutoSaver writes the sequence to an SMF file once changes settle
type AutoSaver struct {
	seq      *Sequence
	path     string
	debounce func(func())
	saved    chan error
}

// NewAutoSaver subscribes to seq and saves to path after delay of quiet.
// Errors are logged and also sent on Saved() when someone is listening.
func NewAutoSaver(seq *Sequence, path string, delay time.Duration) *AutoSaver {
	a := &AutoSaver{
		seq:      seq,
		path:     path,
		debounce: debounce.New(delay),
		saved:    make(chan error, 1),
	}
	seq.OnChange(func(*Note) { a.Touch() })
	return a
}

// Touch schedules a save
func (a *AutoSaver) Touch() {
	a.debounce(a.save)
}

// Saved delivers the result of each completed save. Results are dropped if
// the previous one was never read.
func (a *AutoSaver) Saved() <-chan error {
	return a.saved
}

func (a *AutoSaver) save() {
	err := a.seq.SaveSMF(a.path)
	if err != nil {
		debug.Log("autosave", "save %s failed: %v", a.path, err)
	} else {
		debug.Log("autosave", "saved %d notes to %s", a.seq.Len(), a.path)
	}
	select {
	case a.saved <- err:
	default:
	}
}

// DefaultDelay is how long the sequence must stay unchanged before a save
const DefaultDelay = 500 * time.Millisecond
