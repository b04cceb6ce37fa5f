package scorefile

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"slices"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/dqn/midi"
)

// Section headers of a score text file.
const (
	songHeader  = "# Song"
	scoreHeader = "# Score"
)

// Highest MIDI channel number.
const maxChannel = 15

type listElement struct {
	key   string
	value string
}

// Small struct for non-fatal warnings
type ParseWarning struct {
	Line    int
	Message string
}

func (pw ParseWarning) String() string {
	return fmt.Sprintf("line %d: %s", pw.Line, pw.Message)
}

type Parser struct {
	scanner    *bufio.Scanner
	logger     *log.Logger
	lineNumber int
	state      string
	score      midi.Score

	// Fields of the song section that have been seen.
	seen map[string]bool

	// Position of every declared channel in score.Channels.
	channelIndex map[uint8]int

	// Channels that already have a line in the current bar.
	barChannels map[uint8]bool

	// Collect any warnings whilst parsing.
	warnings []ParseWarning

	// Whether or not the parser has already been used.
	// Parsing can only be done once per Parser.
	used bool
}

// NewParser creates a new parser to parse a score text file.
func NewParser(r io.Reader, logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.Default()
	}
	return &Parser{
		scanner: bufio.NewScanner(r),
		logger:  logger,
		state:   "signature", // Parser starts looking for the song section header.
		seen: map[string]bool{
			"bpm":      false,
			"channels": false,
		},
		channelIndex: make(map[uint8]int),
	}
}

// Warnings returns the warnings collected by Parse.
func (p *Parser) Warnings() []ParseWarning {
	return p.warnings
}

// addWarning adds to the list of warnings encountered when parsing.
func (p *Parser) addWarning(format string, args ...any) {
	p.warnings = append(p.warnings, ParseWarning{
		Line:    p.lineNumber,
		Message: fmt.Sprintf(format, args...),
	})
}

func (p *Parser) fatalf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", p.lineNumber, fmt.Sprintf(format, args...))
}

// Parses a line containing a list element into a listElement struct.
func parseListElement(s string) (*listElement, error) {
	idx := strings.Index(s, ":")
	if idx == -1 {
		return nil, fmt.Errorf("invalid list element: %s", s)
	}

	key := strings.TrimSpace(s[:idx])
	value := strings.TrimSpace(s[idx+1:])

	key, found := strings.CutPrefix(key, "- ")
	if !found {
		return nil, fmt.Errorf("invalid list element: %s", s)
	}

	return &listElement{key: strings.ToLower(strings.TrimSpace(key)), value: value}, nil
}

// parseChannelList parses a string containing 1..16 unique channel numbers (0-15)
// separated by whitespace.
func parseChannelList(s string) ([]uint8, error) {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("expected 1..16 channel numbers, got none")
	}

	out := make([]uint8, 0, len(tokens))
	for i, token := range tokens {
		v, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("token %d (%q) in channels list is not a valid integer: %w", i+1, token, err)
		}
		if v < 0 || v > maxChannel {
			return nil, fmt.Errorf("token %d (%q) in channels list must be in the range 0..%d", i+1, token, maxChannel)
		}
		if slices.Contains(out, uint8(v)) {
			return nil, fmt.Errorf("channel %d is declared more than once", v)
		}
		out = append(out, uint8(v))
	}

	return out, nil
}

func (p *Parser) parseSongElement(le *listElement) error {
	switch le.key {
	case "bpm":
		bpm, err := strconv.ParseFloat(le.value, 64)
		if err != nil {
			return p.fatalf("error converting bpm in text file to a number: %s", le.value)
		}
		if bpm <= 0 {
			return p.fatalf("bpm must be positive, got %s", le.value)
		}
		p.score.BPM = bpm
	case "channels":
		channels, err := parseChannelList(le.value)
		if err != nil {
			return p.fatalf("error when parsing channels: %v", err)
		}
		p.score.Channels = channels
		p.channelIndex = make(map[uint8]int, len(channels))
		for i, ch := range channels {
			p.channelIndex[ch] = i
		}
	case "title":
		p.score.TrackName = le.value
	case "copyright":
		p.score.Copyright = le.value
	default:
		p.addWarning("unknown option in Song section: %s", le.key)
		return nil
	}

	if p.seen[le.key] {
		p.addWarning("option %s is set more than once, the last value is used", le.key)
	}
	p.seen[le.key] = true
	return nil
}

// startBar opens a new bar. The optional number after "bar" is only checked against the running count.
func (p *Parser) startBar(fields []string) error {
	if len(fields) > 2 {
		return p.fatalf("unexpected text after bar number: %s", strings.Join(fields[2:], " "))
	}
	number := len(p.score.Bars) + 1
	if len(fields) == 2 {
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return p.fatalf("invalid bar number: %s", fields[1])
		}
		if n != number {
			p.addWarning("bar is numbered %d but is bar %d of the score", n, number)
		}
	}

	p.score.Bars = append(p.score.Bars, midi.Bar{Notes: make([]string, len(p.score.Channels))})
	p.barChannels = make(map[uint8]bool)
	return nil
}

// parseNoteLine stores a "<channel>: <tokens>" line into the current bar.
// Tokens are checked later, when the score is compiled.
func (p *Parser) parseNoteLine(line string) error {
	idx := strings.Index(line, ":")
	if idx == -1 {
		return p.fatalf("expected a bar header or a \"<channel>: <notes>\" line, found: %s", line)
	}
	if len(p.score.Bars) == 0 {
		return p.fatalf("notes found before the first bar: %s", line)
	}

	channelString := strings.TrimSpace(line[:idx])
	v, err := strconv.Atoi(channelString)
	if err != nil || v < 0 || v > maxChannel {
		return p.fatalf("invalid channel number: %s", channelString)
	}
	channel := uint8(v)

	index, ok := p.channelIndex[channel]
	if !ok {
		return p.fatalf("channel %d is not declared in the Song section", channel)
	}
	if p.barChannels[channel] {
		return p.fatalf("channel %d appears more than once in bar %d", channel, len(p.score.Bars))
	}
	p.barChannels[channel] = true

	notes := strings.TrimSpace(line[idx+1:])
	if notes == "" {
		p.addWarning("channel %d has an empty line in bar %d", channel, len(p.score.Bars))
	}
	p.score.Bars[len(p.score.Bars)-1].Notes[index] = notes
	return nil
}

func (p *Parser) parseInternal() (*midi.Score, error) {
	if p.used {
		return nil, fmt.Errorf("parser already used")
	}
	p.used = true
	for p.scanner.Scan() {
		p.lineNumber++
		trimmedLine := strings.TrimSpace(p.scanner.Text())

		// Blank lines and comments are always ignored regardless of location in the file.
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, "//") {
			continue
		}

		switch p.state {
		// The very top of the file, before the song section header.
		case "signature":
			if trimmedLine == songHeader {
				p.state = "song"
				continue
			}
			p.addWarning("unexpected text found in file when looking for %q: %s", songHeader, trimmedLine)

		case "song":
			if trimmedLine == scoreHeader { // Next section, check that we've seen everything we need to.
				var missing []string
				for key, seen := range p.seen {
					if !seen {
						missing = append(missing, key)
					}
				}
				if len(missing) > 0 {
					slices.Sort(missing)
					return nil, p.fatalf("missing fields in Song section: %s", strings.Join(missing, ", "))
				}
				p.state = "score"
				continue
			}

			le, err := parseListElement(trimmedLine)
			if err != nil {
				return nil, p.fatalf("error parsing list element in Song section: %s", trimmedLine)
			}
			if err := p.parseSongElement(le); err != nil {
				return nil, err
			}

		case "score":
			fields := strings.Fields(trimmedLine)
			if strings.ToLower(fields[0]) == "bar" {
				if err := p.startBar(fields); err != nil {
					return nil, err
				}
				continue
			}
			if err := p.parseNoteLine(trimmedLine); err != nil {
				return nil, err
			}

		default:
			spew.Dump(p.score)
			return nil, p.fatalf("unknown parser state: %s", p.state)
		}
	}

	if err := p.scanner.Err(); err != nil {
		return nil, p.fatalf("error while reading file: %v", err)
	}

	if p.state != "score" {
		return nil, p.fatalf("unexpected EOF, no %q section found", scoreHeader)
	}
	if len(p.score.Bars) == 0 {
		p.addWarning("score contains no bars")
	}

	return &p.score, nil
}

// Parse reads the whole file and returns the score it describes.
// Warnings are written to the parser's logger.
func (p *Parser) Parse() (*midi.Score, error) {
	score, err := p.parseInternal()
	if err != nil {
		return nil, err
	}

	if len(p.warnings) > 0 {
		p.logger.Println("warnings produced while parsing file:")
		for _, warning := range p.warnings {
			p.logger.Println(warning)
		}
	}

	p.logger.Printf("parsed %d bars for %d channels at %v bpm", len(score.Bars), len(score.Channels), score.BPM)
	return score, nil
}
