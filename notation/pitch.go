package notation

import "strconv"

// Control tokens.
const (
	SustainSymbol = "-" // Extends the sounding note by one more slot.
	ReleaseSymbol = "." // Ends the sounding note early, or rests if nothing is sounding.
)

// Semitone offsets from C of every pitch class spelling the vocabulary accepts.
var pitchClasses = map[string]int{
	"C": 0, "C#": 1, "Db": 1,
	"D": 2, "D#": 3, "Eb": 3,
	"E": 4,
	"F": 5, "F#": 6, "Gb": 6,
	"G": 7, "G#": 8, "Ab": 8,
	"A": 9, "A#": 10, "Bb": 10,
	"B": 11,
}

// pitchNumbers maps every pitch name (e.g. "C4", "F#-1", "Bb3") to its MIDI note number.
// C4 is 60. Only names inside 0..127 are present.
var pitchNumbers = func() map[string]uint8 {
	m := make(map[string]uint8)
	for class, semitone := range pitchClasses {
		for octave := -1; octave <= 9; octave++ {
			n := (octave+1)*12 + semitone
			if n < 0 || n > 127 {
				continue
			}
			m[class+strconv.Itoa(octave)] = uint8(n)
		}
	}
	return m
}()

// LookupPitch returns the MIDI note number for a pitch name.
func LookupPitch(name string) (uint8, bool) {
	n, ok := pitchNumbers[name]
	return n, ok
}
