package notation

import (
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestMergeOrderingProperty tests that merged deltas rebuild a non-decreasing timeline
// in which events at the same tick keep their input order.
func TestMergeOrderingProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300

	properties := gopter.NewProperties(parameters)

	properties.Property("merge is a stable sort by time", prop.ForAll(
		func(firstTimes, secondTimes []uint32) bool {
			// The pitch records the position of every event in the concatenated input.
			var first, second []AbsoluteEvent
			for i, tm := range firstTimes {
				first = append(first, on(0, uint8(i), tm))
			}
			for i, tm := range secondTimes {
				second = append(second, on(1, uint8(len(firstTimes)+i), tm))
			}

			merged := Merge(first, second)
			if len(merged) != len(first)+len(second) {
				return false
			}

			input := append(append([]AbsoluteEvent(nil), first...), second...)

			var now, previousTime uint32
			previousPitch := -1
			for i, e := range merged {
				now += e.DeltaTime
				if i > 0 && now == previousTime && int(e.Pitch) < previousPitch {
					return false
				}
				if source := input[e.Pitch]; source.Time != now || source.Channel != e.Channel {
					return false
				}
				previousTime, previousPitch = now, int(e.Pitch)
			}
			return true
		},
		gen.SliceOfN(50, gen.UInt32Range(0, 8)),
		gen.SliceOfN(50, gen.UInt32Range(0, 8)),
	))

	properties.TestingRun(t)
}

// TestSchedulerPairingProperty tests that every note-on gets exactly one note-off,
// that notes on a channel never overlap, and that time never runs backwards.
func TestSchedulerPairingProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300

	properties := gopter.NewProperties(parameters)

	properties.Property("note events alternate on/off per channel", prop.ForAll(
		func(tokens []string, slotsPerBar int) bool {
			var lines []string
			for len(tokens) >= slotsPerBar {
				lines = append(lines, strings.Join(tokens[:slotsPerBar], " "))
				tokens = tokens[slotsPerBar:]
			}

			events, err := ScheduleChannel(0, lines)
			if err != nil {
				var schedErr *SchedulingError
				return errors.As(err, &schedErr) && schedErr.Reason == "sustain with no active note"
			}

			var lastTime uint32
			for i, e := range events {
				wantKind := NoteOn
				if i%2 == 1 {
					wantKind = NoteOff
				}
				if e.Kind != wantKind || e.Time < lastTime {
					return false
				}
				if e.Kind == NoteOff && (e.Pitch != events[i-1].Pitch || e.Time <= events[i-1].Time) {
					return false
				}
				lastTime = e.Time
			}
			return len(events)%2 == 0
		},
		gen.SliceOf(gen.OneConstOf("C4", "D4", "G#2", SustainSymbol, ReleaseSymbol)),
		gen.OneConstOf(1, 2, 3, 4, 8, 16),
	))

	properties.TestingRun(t)
}
