package smf

import (
	"fmt"
	"strings"
)

// Meta event type bytes written by the encoder.
const (
	metaCopyright  = 0x02
	metaTrackName  = 0x03
	metaEndOfTrack = 0x2f
	metaTempo      = 0x51
)

// Status bytes for channel messages (before the channel is OR'd in).
const (
	statusNoteOff = 0x80
	statusNoteOn  = 0x90
)

type EventKind int

const (
	NoteOffEvent   EventKind = iota // Channel message releasing a note.
	NoteOnEvent                     // Channel message starting a note.
	TempoEvent                      // Tempo setting meta event.
	TrackNameEvent                  // Sequence or track name meta event.
	CopyrightEvent                  // Copyright notice meta event.
)

func (k EventKind) String() string {
	switch k {
	case NoteOffEvent:
		return "note-off"
	case NoteOnEvent:
		return "note-on"
	case TempoEvent:
		return "tempo-setting"
	case TrackNameEvent:
		return "sequence-or-track-name"
	case CopyrightEvent:
		return "copyright-notice"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// IsChannelMessage reports whether the kind is encoded as a 3 byte channel message.
func (k EventKind) IsChannelMessage() bool {
	return k == NoteOffEvent || k == NoteOnEvent
}

// A complete MIDI file: the time division and its track chunks, in file order.
type Document struct {
	Division uint16 // Ticks per quarter note.
	Tracks   []Track
}

// A single track chunk. The end-of-track marker is implicit and always written by the encoder.
type Track struct {
	Events []Event
}

// A single track event.
type Event struct {
	DeltaTime uint32    // Ticks since the previous event in the same track.
	Kind      EventKind // Which kind of event this is, and therefore which fields below apply.

	Channel  uint8  // For NoteOn, NoteOff: the channel (0-15).
	Pitch    uint8  // For NoteOn, NoteOff: the note number (0-127).
	Velocity uint8  // For NoteOn, NoteOff: the velocity (0-127).
	Tempo    uint32 // For Tempo: microseconds per quarter note.
	Data     []byte // For TrackName, Copyright: the text, one byte per character.
}

// NoteOn returns a note-on channel message event.
func NoteOn(delta uint32, channel, pitch, velocity uint8) Event {
	return Event{DeltaTime: delta, Kind: NoteOnEvent, Channel: channel, Pitch: pitch, Velocity: velocity}
}

// NoteOff returns a note-off channel message event.
func NoteOff(delta uint32, channel, pitch, velocity uint8) Event {
	return Event{DeltaTime: delta, Kind: NoteOffEvent, Channel: channel, Pitch: pitch, Velocity: velocity}
}

// Tempo returns a tempo setting meta event.
func Tempo(delta uint32, microsecondsPerBeat uint32) Event {
	return Event{DeltaTime: delta, Kind: TempoEvent, Tempo: microsecondsPerBeat}
}

// TrackName returns a sequence/track name meta event. The data is written as is.
func TrackName(delta uint32, data []byte) Event {
	return Event{DeltaTime: delta, Kind: TrackNameEvent, Data: data}
}

// Copyright returns a copyright notice meta event. The data is written as is.
func Copyright(delta uint32, data []byte) Event {
	return Event{DeltaTime: delta, Kind: CopyrightEvent, Data: data}
}

// Append adds events to the end of the track.
func (t *Track) Append(events ...Event) {
	t.Events = append(t.Events, events...)
}

// Duration returns the absolute tick of the last event in the track.
func (t *Track) Duration() uint64 {
	var total uint64
	for _, e := range t.Events {
		total += uint64(e.DeltaTime)
	}
	return total
}

func (e Event) String() string {
	switch e.Kind {
	case NoteOnEvent, NoteOffEvent:
		return fmt.Sprintf("%s %d vel %d", e.Kind, e.Pitch, e.Velocity)
	case TempoEvent:
		return fmt.Sprintf("%s %d us/beat", e.Kind, e.Tempo)
	case TrackNameEvent, CopyrightEvent:
		return fmt.Sprintf("%s %q", e.Kind, string(e.Data))
	default:
		return e.Kind.String()
	}
}

// formatNotesByChannel formats the channel messages of a track into a table,
// one column per channel that appears in the track, one row per absolute tick.
// indent: number of spaces to indent the table.
func formatNotesByChannel(events []Event, indent int) string {
	var channels []uint8
	seen := make(map[uint8]bool)
	for _, e := range events {
		if e.Kind.IsChannelMessage() && !seen[e.Channel] {
			seen[e.Channel] = true
			channels = append(channels, e.Channel)
		}
	}
	if len(channels) == 0 {
		return ""
	}

	type row struct {
		tick  uint64
		cells map[uint8][]string
	}

	// Group by absolute tick. Events at the same tick share a row.
	var rows []*row
	var now uint64
	for _, e := range events {
		now += uint64(e.DeltaTime)
		if !e.Kind.IsChannelMessage() {
			continue
		}
		if len(rows) == 0 || rows[len(rows)-1].tick != now {
			rows = append(rows, &row{tick: now, cells: make(map[uint8][]string)})
		}
		r := rows[len(rows)-1]
		r.cells[e.Channel] = append(r.cells[e.Channel], e.String())
	}

	// Calculate column widths
	tickWidth := len("Tick")
	for _, r := range rows {
		tickWidth = max(tickWidth, len(fmt.Sprint(r.tick)))
	}
	widths := make([]int, len(channels))
	for i, ch := range channels {
		widths[i] = max(len(fmt.Sprintf("Channel %d", ch)), 18)
		for _, r := range rows {
			widths[i] = max(widths[i], len(strings.Join(r.cells[ch], ", ")))
		}
	}

	padRight := func(s string, w int) string {
		if len(s) >= w {
			return s
		}
		return s + strings.Repeat(" ", w-len(s))
	}

	var b strings.Builder
	separator := func() {
		b.WriteString(strings.Repeat(" ", indent))
		b.WriteString("+")
		b.WriteString(strings.Repeat("-", tickWidth+2))
		for i := range channels {
			b.WriteString("+")
			b.WriteString(strings.Repeat("-", widths[i]+2)) // +2 for the space padding either side
		}
		b.WriteString("+\n")
	}

	separator()
	b.WriteString(strings.Repeat(" ", indent))
	b.WriteString("| ")
	b.WriteString(padRight("Tick", tickWidth))
	b.WriteString(" ")
	for i, ch := range channels {
		b.WriteString("| ")
		b.WriteString(padRight(fmt.Sprintf("Channel %d", ch), widths[i]))
		b.WriteString(" ")
	}
	b.WriteString("|\n")
	separator()

	for _, r := range rows {
		b.WriteString(strings.Repeat(" ", indent))
		b.WriteString("| ")
		b.WriteString(padRight(fmt.Sprint(r.tick), tickWidth))
		b.WriteString(" ")
		for i, ch := range channels {
			b.WriteString("| ")
			b.WriteString(padRight(strings.Join(r.cells[ch], ", "), widths[i]))
			b.WriteString(" ")
		}
		b.WriteString("|\n")
	}
	separator()

	return b.String()
}

// Pretty-print
func (d *Document) String() string {
	var b strings.Builder
	b.WriteString("Standard MIDI File:\n")
	fmt.Fprintf(&b, "- Format: 1\n")
	fmt.Fprintf(&b, "- Division: %d ticks per beat\n", d.Division)
	fmt.Fprintf(&b, "- Tracks: %d\n", len(d.Tracks))

	for i := range d.Tracks {
		track := &d.Tracks[i]
		fmt.Fprintf(&b, "\n  - Track #%d: %d events, %d ticks\n", i, len(track.Events), track.Duration())

		for _, e := range track.Events {
			if !e.Kind.IsChannelMessage() {
				fmt.Fprintf(&b, "    - %s\n", e)
			}
		}
		b.WriteString(formatNotesByChannel(track.Events, 6))

		trackSize := track.CalculateSize()
		fmt.Fprintf(&b, "    [Chunk length: %d byte", trackSize)
		if trackSize != 1 {
			b.WriteString("s") // Pluralise the word "byte" if needed.
		}
		b.WriteString("]\n")
	}

	fmt.Fprintf(&b, "[Total file size: %d bytes]\n", d.CalculateSize())

	return b.String()
}
