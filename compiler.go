// Package midi compiles text scores into Standard MIDI Files.
//
// A score is a list of bars, each holding one line of whitespace-separated
// tokens per channel. A token is a pitch name such as "C4" or "F#3", "-" to
// hold the previous note for one more slot, or "." to end it. Every bar is
// 4/4 and its tokens share the bar evenly.
package midi

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/dqn/midi/notation"
	"github.com/dqn/midi/smf"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"
)

// ErrInvalidTempo is returned when the score's BPM does not give a usable tempo.
var ErrInvalidTempo = errors.New("invalid tempo")

// tempoFromBPM converts beats per minute to microseconds per beat.
func tempoFromBPM(bpm float64) (uint32, error) {
	if math.IsNaN(bpm) || math.IsInf(bpm, 0) || bpm <= 0 {
		return 0, fmt.Errorf("%w: bpm must be a positive number, got %v", ErrInvalidTempo, bpm)
	}
	tempo := 60_000_000 / bpm
	if tempo < 1 || tempo > math.MaxUint32 {
		return 0, fmt.Errorf("%w: bpm %v is out of range", ErrInvalidTempo, bpm)
	}
	return uint32(tempo), nil
}

// metaText encodes text with one byte per character.
func metaText(text string) ([]byte, error) {
	data, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("text %q cannot be written one byte per character: %w", text, err)
	}
	return data, nil
}

// conductorTrack builds the first track, holding only meta events.
func conductorTrack(score *Score) (smf.Track, error) {
	var track smf.Track

	if score.Copyright != "" {
		data, err := metaText(score.Copyright)
		if err != nil {
			return track, fmt.Errorf("copyright: %w", err)
		}
		track.Append(smf.Copyright(0, data))
	}
	if score.TrackName != "" {
		data, err := metaText(score.TrackName)
		if err != nil {
			return track, fmt.Errorf("track name: %w", err)
		}
		track.Append(smf.TrackName(0, data))
	}

	tempo, err := tempoFromBPM(score.BPM)
	if err != nil {
		return track, err
	}
	track.Append(smf.Tempo(0, tempo))

	return track, nil
}

// scheduleChannels schedules every channel of the score independently.
// Channels run concurrently; when several fail, the error of the first one in declaration order is returned.
func scheduleChannels(score *Score) ([][]notation.AbsoluteEvent, error) {
	results := make([][]notation.AbsoluteEvent, len(score.Channels))
	errs := make([]error, len(score.Channels))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, channel := range score.Channels {
		i, channel := i, channel
		lines := score.channelLines(i)
		g.Go(func() error {
			results[i], errs[i] = notation.ScheduleChannel(channel, lines)
			return errs[i]
		})
	}

	if g.Wait() != nil {
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}
	return results, nil
}

// Build converts the score into a two-track MIDI document: a conductor track with the meta events,
// followed by a track with the notes of every channel.
func Build(score Score) (*smf.Document, error) {
	conductor, err := conductorTrack(&score)
	if err != nil {
		return nil, err
	}

	channels, err := scheduleChannels(&score)
	if err != nil {
		return nil, err
	}

	return &smf.Document{
		Division: notation.Division,
		Tracks: []smf.Track{
			conductor,
			{Events: notation.Merge(channels...)},
		},
	}, nil
}

// Compile converts the score into the bytes of a Standard MIDI File.
// Nothing is returned if any part of the score is invalid.
func Compile(score Score) ([]byte, error) {
	doc, err := Build(score)
	if err != nil {
		return nil, err
	}
	return doc.Encode()
}
