package notation

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func on(channel, pitch uint8, time uint32) AbsoluteEvent {
	return AbsoluteEvent{Time: time, Channel: channel, Pitch: pitch, Kind: NoteOn}
}

func off(channel, pitch uint8, time uint32) AbsoluteEvent {
	return AbsoluteEvent{Time: time, Channel: channel, Pitch: pitch, Kind: NoteOff}
}

const (
	c4 = 60
	d4 = 62
	e4 = 64
	f4 = 65
)

func TestScheduleChannel(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []AbsoluteEvent
	}{
		{
			name:  "one note per beat",
			lines: []string{"C4 D4 E4 F4"},
			want: []AbsoluteEvent{
				on(0, c4, 0), off(0, c4, 960),
				on(0, d4, 960), off(0, d4, 1920),
				on(0, e4, 1920), off(0, e4, 2880),
				on(0, f4, 2880), off(0, f4, 3840),
			},
		},
		{
			name:  "sustain then release",
			lines: []string{"C4 - . ."},
			want:  []AbsoluteEvent{on(0, c4, 0), off(0, c4, 1920)},
		},
		{
			name:  "sustain in a three slot bar",
			lines: []string{"C4 - ."},
			want:  []AbsoluteEvent{on(0, c4, 0), off(0, c4, 2560)},
		},
		{
			name:  "leading release is a rest",
			lines: []string{". C4"},
			want:  []AbsoluteEvent{on(0, c4, 1920), off(0, c4, 3840)},
		},
		{
			name:  "repeated pitch restarts the note",
			lines: []string{"C4 C4"},
			want:  []AbsoluteEvent{on(0, c4, 0), off(0, c4, 1920), on(0, c4, 1920), off(0, c4, 3840)},
		},
		{
			name:  "sustain across a bar line",
			lines: []string{"C4 D4", "- E4"},
			want: []AbsoluteEvent{
				on(0, c4, 0), off(0, c4, 1920),
				on(0, d4, 1920), off(0, d4, 5760),
				on(0, e4, 5760), off(0, e4, 7680),
			},
		},
		{
			name:  "skipped bar leaves the pending note alone",
			lines: []string{"C4", "", "D4"},
			want: []AbsoluteEvent{
				on(0, c4, 0), off(0, c4, 3840),
				on(0, d4, 7680), off(0, d4, 11520),
			},
		},
		{
			name:  "whole bar sustain",
			lines: []string{"C4", "-"},
			want:  []AbsoluteEvent{on(0, c4, 0), off(0, c4, 7680)},
		},
		{
			name:  "nothing written",
			lines: []string{"", "  "},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScheduleChannel(0, tt.lines)
			if err != nil {
				t.Fatalf("ScheduleChannel error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ScheduleChannel(%q) =\n%v\nwant\n%v", tt.lines, got, tt.want)
			}
		})
	}
}

func TestScheduleChannelUsesItsChannel(t *testing.T) {
	got, err := ScheduleChannel(9, []string{"C4"})
	if err != nil {
		t.Fatalf("ScheduleChannel error: %v", err)
	}
	want := []AbsoluteEvent{on(9, c4, 0), off(9, c4, 3840)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSustainWithoutNote(t *testing.T) {
	events, err := ScheduleChannel(3, []string{"C4 . . .", "- C4"})
	if events != nil {
		t.Errorf("expected no events, got %v", events)
	}

	var schedErr *SchedulingError
	if !errors.As(err, &schedErr) {
		t.Fatalf("error = %v, want *SchedulingError", err)
	}
	if schedErr.Reason != "sustain with no active note" || schedErr.Slot != 0 {
		t.Errorf("got %+v", schedErr)
	}
	if !strings.HasPrefix(err.Error(), "channel 3, bar 2: ") {
		t.Errorf("error %q does not carry its coordinates", err)
	}
}

func TestUnevenBar(t *testing.T) {
	_, err := ScheduleChannel(0, []string{"C4 D4 E4 F4 G4 A4 B4"})

	var schedErr *SchedulingError
	if !errors.As(err, &schedErr) {
		t.Fatalf("error = %v, want *SchedulingError", err)
	}
	if schedErr.Slot != -1 {
		t.Errorf("Slot = %d, want -1", schedErr.Slot)
	}
}

func TestBarIndexLimit(t *testing.T) {
	s := NewScheduler(0)
	if err := s.ScheduleBar(MaxBarIndex, []Token{{PitchToken, c4}}); err != nil {
		t.Fatalf("ScheduleBar(MaxBarIndex) error: %v", err)
	}
	want := []AbsoluteEvent{
		on(0, c4, MaxBarIndex*BarLength),
		off(0, c4, (MaxBarIndex+1)*BarLength),
	}
	if got := s.Finish(); !reflect.DeepEqual(got, want) {
		t.Errorf("Finish() = %v, want %v", got, want)
	}

	for _, index := range []int{MaxBarIndex + 1, -1} {
		err := NewScheduler(0).ScheduleBar(index, []Token{{PitchToken, c4}})
		var schedErr *SchedulingError
		if !errors.As(err, &schedErr) {
			t.Fatalf("ScheduleBar(%d) error = %v, want *SchedulingError", index, err)
		}
		if schedErr.Slot != -1 {
			t.Errorf("ScheduleBar(%d): Slot = %d, want -1", index, schedErr.Slot)
		}
	}
}

func TestUnknownTokenCoordinates(t *testing.T) {
	_, err := ScheduleChannel(1, []string{"C4", "C4 Z9"})

	var unknown *UnknownTokenError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want *UnknownTokenError", err)
	}
	if unknown.Token != "Z9" {
		t.Errorf("Token = %q, want \"Z9\"", unknown.Token)
	}
	if want := `channel 1, bar 2: unknown note command "Z9"`; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestSchedulerPending(t *testing.T) {
	s := NewScheduler(2)
	if _, ok := s.Pending(); ok {
		t.Fatalf("new scheduler has a pending note")
	}

	if err := s.ScheduleBar(0, []Token{{PitchToken, c4}, {Kind: SustainToken}}); err != nil {
		t.Fatalf("ScheduleBar error: %v", err)
	}
	pending, ok := s.Pending()
	if !ok {
		t.Fatalf("expected a pending note")
	}
	if want := (PendingNote{Pitch: c4, Channel: 2, OffTime: 3840}); pending != want {
		t.Errorf("Pending() = %+v, want %+v", pending, want)
	}

	events := s.Finish()
	if want := []AbsoluteEvent{on(2, c4, 0), off(2, c4, 3840)}; !reflect.DeepEqual(events, want) {
		t.Errorf("Finish() = %v, want %v", events, want)
	}
	if _, ok := s.Pending(); ok {
		t.Errorf("pending note survived Finish")
	}
}
