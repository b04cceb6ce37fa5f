package smf

import (
	"strings"
	"testing"
)

func TestTrackDuration(t *testing.T) {
	var track Track
	track.Append(NoteOn(0, 0, 60, 127), NoteOff(960, 0, 60, 0), NoteOn(480, 1, 62, 127))
	if got := track.Duration(); got != 1440 {
		t.Errorf("Duration() = %d, want 1440", got)
	}
	if len(track.Events) != 3 {
		t.Errorf("len(Events) = %d, want 3", len(track.Events))
	}
}

func TestEventKindIsChannelMessage(t *testing.T) {
	for kind, want := range map[EventKind]bool{
		NoteOffEvent:   true,
		NoteOnEvent:    true,
		TempoEvent:     false,
		TrackNameEvent: false,
		CopyrightEvent: false,
	} {
		if got := kind.IsChannelMessage(); got != want {
			t.Errorf("%v.IsChannelMessage() = %v, want %v", kind, got, want)
		}
	}
}

func TestDocumentString(t *testing.T) {
	doc := &Document{
		Division: 960,
		Tracks: []Track{
			{Events: []Event{TrackName(0, []byte("demo")), Tempo(0, 500000)}},
			{Events: []Event{
				NoteOn(0, 0, 60, 127),
				NoteOn(0, 3, 64, 127),
				NoteOff(960, 0, 60, 0),
				NoteOff(0, 3, 64, 0),
			}},
		},
	}

	out := doc.String()
	for _, want := range []string{
		"Division: 960 ticks per beat",
		"Tracks: 2",
		`sequence-or-track-name "demo"`,
		"tempo-setting 500000 us/beat",
		"Channel 0",
		"Channel 3",
		"note-on 60 vel 127",
		"note-off 64 vel 0",
		"| 960 ",
		"Track #1: 4 events, 960 ticks",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("String() does not contain %q:\n%s", want, out)
		}
	}
}
