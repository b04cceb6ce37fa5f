// Package verify reloads compiled MIDI files with independent readers,
// to check that real players accept them.
package verify

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/sinshu/go-meltysynth/meltysynth"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// What the readers found in a MIDI file.
type Report struct {
	Division uint16  // Ticks per beat, from the header chunk.
	Tracks   int     // Number of track chunks.
	NoteOns  int     // Number of note-on messages over all tracks.
	NoteOffs int     // Number of note-off messages over all tracks.
	BPM      float64 // First tempo found, in beats per minute (0 if there is none).

	TrackNames []string // Every track name meta event, in file order.
	Copyright  string   // First copyright notice, if any.

	Length time.Duration // Playing time, as computed by the synthesizer's sequencer.
}

func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d tracks, division %d, %d note-ons, %d note-offs", r.Tracks, r.Division, r.NoteOns, r.NoteOffs)
	if r.BPM > 0 {
		fmt.Fprintf(&b, ", %.2f bpm", r.BPM)
	}
	fmt.Fprintf(&b, ", length %v", r.Length)
	return b.String()
}

// Check parses data with gomidi's SMF reader and meltysynth's MIDI file loader.
// It fails if either reader rejects the file.
func Check(data []byte) (*Report, error) {
	file, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("smf reader: %w", err)
	}

	report := &Report{Tracks: len(file.Tracks)}
	if ticks, ok := file.TimeFormat.(smf.MetricTicks); ok {
		report.Division = ticks.Resolution()
	}

	for _, track := range file.Tracks {
		for _, ev := range track {
			var channel, key, velocity uint8
			var bpm float64
			var text string

			msg := gomidi.Message(ev.Message)
			switch {
			case msg.GetNoteOn(&channel, &key, &velocity):
				report.NoteOns++
			case msg.GetNoteOff(&channel, &key, &velocity):
				report.NoteOffs++
			case ev.Message.GetMetaTempo(&bpm):
				if report.BPM == 0 {
					report.BPM = bpm
				}
			case ev.Message.GetMetaTrackName(&text):
				report.TrackNames = append(report.TrackNames, text)
			case ev.Message.GetMetaCopyright(&text):
				if report.Copyright == "" {
					report.Copyright = text
				}
			}
		}
	}

	midiFile, err := meltysynth.NewMidiFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("meltysynth: %w", err)
	}
	report.Length = midiFile.GetLength()

	return report, nil
}
