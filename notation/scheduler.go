package notation

import (
	"fmt"
	"math"
	"strings"
)

const (
	Division    = 960 // Ticks per beat.
	BeatsPerBar = 4   // Bars are always 4/4.
	BarLength   = Division * BeatsPerBar

	// Index of the last bar whose end tick still fits in a uint32.
	MaxBarIndex = math.MaxUint32/BarLength - 1
)

type EventKind int

const (
	NoteOn EventKind = iota
	NoteOff
)

func (k EventKind) String() string {
	switch k {
	case NoteOn:
		return "on"
	case NoteOff:
		return "off"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// A note event at an absolute tick, counted from the start of the score.
type AbsoluteEvent struct {
	Time    uint32
	Channel uint8
	Pitch   uint8
	Kind    EventKind
}

func (e AbsoluteEvent) String() string {
	return fmt.Sprintf("%s(ch %d, %d @ %d)", e.Kind, e.Channel, e.Pitch, e.Time)
}

// The note currently sounding on a channel, waiting for its note-off.
type PendingNote struct {
	Pitch   uint8
	Channel uint8
	OffTime uint32
}

// SchedulingError is returned when a bar cannot be turned into events.
type SchedulingError struct {
	Reason string
	Slot   int // Index of the offending token within its bar, or -1 for the whole bar.
}

func (e *SchedulingError) Error() string {
	if e.Slot < 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s (token %d)", e.Reason, e.Slot+1)
}

// Scheduler turns the bars of a single channel into absolute note events.
// Channels are monophonic: at most one note is pending at a time.
// A Scheduler is owned by one channel and must not be shared.
type Scheduler struct {
	channel uint8

	pending PendingNote
	active  bool // Whether pending holds a sounding note.

	events []AbsoluteEvent
}

// NewScheduler creates a scheduler for the given channel, silent at tick 0.
func NewScheduler(channel uint8) *Scheduler {
	return &Scheduler{channel: channel}
}

// Pending returns the note currently sounding, if any.
func (s *Scheduler) Pending() (PendingNote, bool) {
	return s.pending, s.active
}

// release emits the note-off of the pending note at its scheduled time and clears it.
func (s *Scheduler) release() {
	if !s.active {
		return
	}
	s.events = append(s.events, AbsoluteEvent{
		Time:    s.pending.OffTime,
		Channel: s.pending.Channel,
		Pitch:   s.pending.Pitch,
		Kind:    NoteOff,
	})
	s.pending = PendingNote{}
	s.active = false
}

// ScheduleBar processes the tokens of the bar at barIndex (0-based).
// An empty bar is a no-op; the pending note, if any, keeps sounding.
func (s *Scheduler) ScheduleBar(barIndex int, tokens []Token) error {
	if len(tokens) == 0 {
		return nil
	}
	if BarLength%len(tokens) != 0 {
		return &SchedulingError{
			Reason: fmt.Sprintf("%d tokens do not evenly divide a bar of %d ticks", len(tokens), BarLength),
			Slot:   -1,
		}
	}

	if barIndex < 0 || barIndex > MaxBarIndex {
		return &SchedulingError{
			Reason: fmt.Sprintf("bar %d ends past the last representable tick", barIndex+1),
			Slot:   -1,
		}
	}

	span := uint32(BarLength / len(tokens))
	barStart := uint32(BarLength) * uint32(barIndex)

	for i, token := range tokens {
		switch token.Kind {
		case PitchToken:
			s.release()
			s.events = append(s.events, AbsoluteEvent{
				Time:    barStart + span*uint32(i),
				Channel: s.channel,
				Pitch:   token.Pitch,
				Kind:    NoteOn,
			})
			s.pending = PendingNote{
				Pitch:   token.Pitch,
				Channel: s.channel,
				OffTime: barStart + span*uint32(i+1),
			}
			s.active = true

		case SustainToken:
			if !s.active {
				return &SchedulingError{Reason: "sustain with no active note", Slot: i}
			}
			s.pending.OffTime += span

		case ReleaseToken:
			// Releasing silence is a rest.
			s.release()

		default:
			panic(fmt.Sprintf("unhandled token kind %d", token.Kind))
		}
	}
	return nil
}

// Finish releases the pending note, if any, and returns every event in emission order.
func (s *Scheduler) Finish() []AbsoluteEvent {
	s.release()
	return s.events
}

// ScheduleChannel tokenizes and schedules every bar of one channel.
// lines[i] is the channel's text for bar i; blank text means the channel has no entry for that bar,
// which skips the bar without touching the pending note.
func ScheduleChannel(channel uint8, lines []string) ([]AbsoluteEvent, error) {
	s := NewScheduler(channel)
	for barIndex, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		tokens, err := TokenizeBar(line)
		if err != nil {
			return nil, fmt.Errorf("channel %d, bar %d: %w", channel, barIndex+1, err)
		}
		if err := s.ScheduleBar(barIndex, tokens); err != nil {
			return nil, fmt.Errorf("channel %d, bar %d: %w", channel, barIndex+1, err)
		}
	}
	return s.Finish(), nil
}
