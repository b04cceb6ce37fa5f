package notation

import (
	"cmp"
	"slices"

	"github.com/dqn/midi/smf"
)

// Velocities written for merged note events.
const (
	NoteOnVelocity  = 127
	NoteOffVelocity = 0
)

// Merge combines the events of every channel into a single delta-timed stream.
// Channels are concatenated in argument order and sorted by time with a stable sort,
// so events at the same tick keep their emission order (a note-off before the note-on that replaced it).
// The input slices are not modified.
func Merge(channels ...[]AbsoluteEvent) []smf.Event {
	var total int
	for _, events := range channels {
		total += len(events)
	}

	all := make([]AbsoluteEvent, 0, total)
	for _, events := range channels {
		all = append(all, events...)
	}
	slices.SortStableFunc(all, func(a, b AbsoluteEvent) int {
		return cmp.Compare(a.Time, b.Time)
	})

	out := make([]smf.Event, 0, len(all))
	var previousTime uint32
	for _, e := range all {
		delta := e.Time - previousTime
		previousTime = e.Time

		switch e.Kind {
		case NoteOn:
			out = append(out, smf.NoteOn(delta, e.Channel, e.Pitch, NoteOnVelocity))
		case NoteOff:
			out = append(out, smf.NoteOff(delta, e.Channel, e.Pitch, NoteOffVelocity))
		}
	}
	return out
}
