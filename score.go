package midi

// A score to compile.
type Score struct {
	BPM float64 // Tempo in quarter notes per minute.

	// The MIDI channel (0-15) of every part, in declaration order.
	// Declaration order decides how events at the same tick are ordered in the output.
	Channels []uint8

	// The bars of the score, in playing order.
	Bars []Bar

	TrackName string // Written as a track name meta event when not empty.
	Copyright string // Written as a copyright notice meta event when not empty.
}

// A single bar of the score.
type Bar struct {
	// The text of each part for this bar, indexed like Score.Channels.
	// A missing or blank entry means the part has nothing written in this bar.
	Notes []string
}

// channelLines returns the text of the part at channelIndex for every bar.
func (s *Score) channelLines(channelIndex int) []string {
	lines := make([]string, len(s.Bars))
	for i, bar := range s.Bars {
		if channelIndex < len(bar.Notes) {
			lines[i] = bar.Notes[channelIndex]
		}
	}
	return lines
}
