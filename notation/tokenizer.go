package notation

import (
	"fmt"
	"strings"
)

type TokenKind int

const (
	PitchToken   TokenKind = iota // Starts a new note.
	SustainToken                  // Extends the pending note.
	ReleaseToken                  // Ends the pending note.
)

func (k TokenKind) String() string {
	switch k {
	case PitchToken:
		return "pitch"
	case SustainToken:
		return "sustain"
	case ReleaseToken:
		return "release"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// A single classified bar token.
type Token struct {
	Kind  TokenKind
	Pitch uint8 // For PitchToken: the MIDI note number.
}

func (t Token) String() string {
	switch t.Kind {
	case PitchToken:
		return fmt.Sprintf("pitch %d", t.Pitch)
	default:
		return t.Kind.String()
	}
}

// UnknownTokenError is returned when a bar contains a token that is neither a pitch name nor a control token.
type UnknownTokenError struct {
	Token string
	Slot  int // Index of the token within its bar.
}

func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("unknown note command %q", e.Token)
}

// classify maps a single bar fragment to its token.
func classify(s string) (Token, bool) {
	switch s {
	case SustainSymbol:
		return Token{Kind: SustainToken}, true
	case ReleaseSymbol:
		return Token{Kind: ReleaseToken}, true
	}
	pitch, ok := LookupPitch(s)
	if !ok {
		return Token{}, false
	}
	return Token{Kind: PitchToken, Pitch: pitch}, true
}

// TokenizeBar splits one channel's bar text on whitespace and classifies every fragment.
// It fails on the first fragment outside the vocabulary.
func TokenizeBar(text string) ([]Token, error) {
	fields := strings.Fields(text)
	tokens := make([]Token, 0, len(fields))
	for i, f := range fields {
		token, ok := classify(f)
		if !ok {
			return nil, &UnknownTokenError{Token: f, Slot: i}
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}
