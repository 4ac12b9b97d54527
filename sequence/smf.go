package sequence

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// TicksPerQuarter is the resolution used when writing files
const TicksPerQuarter = 480

// LoadSMF reads a Standard MIDI File from disk
func LoadSMF(path string) (*Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return ReadSMF(bytes.NewReader(data))
}

// ReadSMF builds a sequence from every note in every track. Note-ons are
// paired with the next note-off for the same channel and key; notes left
// open run to the end of their track.
func ReadSMF(r io.Reader) (*Sequence, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	resolution := float64(TicksPerQuarter)
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		resolution = float64(mt.Resolution())
	}

	seq := New()
	if changes := s.TempoChanges(); len(changes) > 0 {
		seq.SetTempo(changes[0].BPM)
	}

	type pending struct {
		tick     int64
		velocity uint8
	}

	for _, track := range s.Tracks {
		open := make(map[[2]uint8][]pending)
		var tick int64

		for _, ev := range track {
			tick += int64(ev.Delta)

			var channel, key, velocity uint8
			switch {
			case ev.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0:
				k := [2]uint8{channel, key}
				open[k] = append(open[k], pending{tick: tick, velocity: velocity})

			case ev.Message.GetNoteOn(&channel, &key, &velocity),
				ev.Message.GetNoteOff(&channel, &key, &velocity):
				k := [2]uint8{channel, key}
				q := open[k]
				if len(q) == 0 {
					continue
				}
				p := q[0]
				open[k] = q[1:]
				seq.Add(newNote(p.tick, tick, resolution, channel, key, p.velocity))
			}
		}

		for k, q := range open {
			for _, p := range q {
				seq.Add(newNote(p.tick, tick, resolution, k[0], k[1], p.velocity))
			}
		}
	}

	if seq.Len() == 0 {
		return nil, ErrNoNotes
	}
	return seq, nil
}

func newNote(from, to int64, resolution float64, channel, key, velocity uint8) *Note {
	return &Note{
		Start:    float64(from) / resolution,
		Length:   float64(to-from) / resolution,
		Number:   int(key),
		Velocity: velocity,
		Channel:  channel,
	}
}

// SaveSMF writes the sequence to path as a single-track file
func (s *Sequence) SaveSMF(path string) error {
	var buf bytes.Buffer
	if err := s.WriteSMF(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// WriteSMF encodes the sequence as a single-track Standard MIDI File.
// Notes outside the MIDI key range are skipped.
func (s *Sequence) WriteSMF(w io.Writer) error {
	// at equal ticks: offs of sounding notes, then zero-length on/off pairs,
	// then ons, so no note-off ever closes the wrong note
	const (
		rankOff = iota
		rankZero
		rankOn
	)
	type event struct {
		tick uint32
		rank int
		note int
		off  bool
		msg  midi.Message
	}

	var events []event
	for i, n := range s.Snapshot() {
		if n.Number < 0 || n.Number > 127 {
			continue
		}
		vel := n.Velocity
		if vel == 0 {
			vel = 100
		}
		key := uint8(n.Number)
		on := beatToTick(n.Start)
		off := beatToTick(n.End())
		onRank, offRank := rankOn, rankOff
		if on == off {
			onRank, offRank = rankZero, rankZero
		}
		events = append(events,
			event{tick: on, rank: onRank, note: i, msg: midi.NoteOn(n.Channel, key, vel)},
			event{tick: off, rank: offRank, note: i, off: true, msg: midi.NoteOff(n.Channel, key)},
		)
	}

	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.tick != b.tick {
			return a.tick < b.tick
		}
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		if a.rank == rankZero && a.note != b.note {
			return a.note < b.note
		}
		return !a.off && b.off
	})

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var track smf.Track
	track.Add(0, smf.MetaMeter(4, 4))
	track.Add(0, smf.MetaTempo(s.Tempo()))

	var last uint32
	for _, ev := range events {
		track.Add(ev.tick-last, ev.msg)
		last = ev.tick
	}
	track.Close(0)

	if err := sm.Add(track); err != nil {
		return fmt.Errorf("failed to add track: %w", err)
	}
	if _, err := sm.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write MIDI: %w", err)
	}
	return nil
}

func beatToTick(beat float64) uint32 {
	if beat <= 0 {
		return 0
	}
	return uint32(math.Round(beat * TicksPerQuarter))
}
