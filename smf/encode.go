package smf

import (
	"bytes"
	"fmt"
	"math/bits"
)

// Written after the last event of every track: delta 0, end-of-track meta, zero length.
var endOfTrack = []byte{0x00, 0xff, metaEndOfTrack, 0x00}

// EncodeVLQ encodes n as a MIDI variable-length quantity: big-endian groups of 7 bits,
// with the continuation bit set on every byte except the last.
func EncodeVLQ(n uint32) []byte {
	if n == 0 {
		return []byte{0}
	}

	out := make([]byte, vlqSize(n))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = byte(n & 0x7f)
		if i != len(out)-1 {
			out[i] |= 0x80
		}
		n >>= 7
	}
	return out
}

// EncodeFixedWidth encodes n big-endian, left-padded with zeros to width bytes.
// Values wider than width are never truncated.
// The value 0 always encodes as a single zero byte, whatever the width.
func EncodeFixedWidth(n uint32, width int) []byte {
	if n == 0 {
		return []byte{0}
	}

	out := make([]byte, fixedWidthSize(n, width))
	for i := len(out) - 1; i >= 0 && n != 0; i-- {
		out[i] = byte(n & 0xff)
		n >>= 8
	}
	return out
}

// vlqSize returns the number of bytes EncodeVLQ(n) produces.
func vlqSize(n uint32) int {
	if n == 0 {
		return 1
	}
	return (bits.Len32(n) + 6) / 7
}

// fixedWidthSize returns the number of bytes EncodeFixedWidth(n, width) produces.
func fixedWidthSize(n uint32, width int) int {
	if n == 0 {
		return 1
	}
	return max((bits.Len32(n)+7)/8, width)
}

// payloadSize returns the size in bytes of the event, excluding its delta time.
func (e *Event) payloadSize() int {
	switch e.Kind {
	case NoteOffEvent, NoteOnEvent:
		return 3
	case TempoEvent:
		tempoSize := fixedWidthSize(e.Tempo, 0)
		return 2 + fixedWidthSize(uint32(tempoSize), 0) + tempoSize
	case TrackNameEvent, CopyrightEvent:
		return 2 + vlqSize(uint32(len(e.Data))) + len(e.Data)
	default:
		panic(fmt.Sprintf("unhandled event kind %d", e.Kind))
	}
}

// CalculateSize returns the size in bytes of the event, including its delta time.
func (e *Event) CalculateSize() int {
	return vlqSize(e.DeltaTime) + e.payloadSize()
}

// CalculateSize returns the size in bytes of the track chunk body,
// which is the value stored in the chunk's length field.
func (t *Track) CalculateSize() int {
	size := len(endOfTrack)
	for i := range t.Events {
		size += t.Events[i].CalculateSize()
	}
	return size
}

// CalculateSize returns the total size in bytes of the encoded file.
func (d *Document) CalculateSize() int {
	size := 4 + // MThd
		fixedWidthSize(6, 4) +
		fixedWidthSize(1, 2) +
		fixedWidthSize(uint32(len(d.Tracks)), 2) +
		fixedWidthSize(uint32(d.Division), 2)

	for i := range d.Tracks {
		bodySize := d.Tracks[i].CalculateSize()
		size += 4 + fixedWidthSize(uint32(bodySize), 4) + bodySize // MTrk, length, body
	}
	return size
}

// toBytes converts the event payload (everything after the delta time) into the bytes written to the track.
func (e *Event) toBytes() []byte {
	switch e.Kind {
	case NoteOffEvent, NoteOnEvent:
		// Running status is never used, every channel message carries its status byte.
		status := byte(statusNoteOff)
		if e.Kind == NoteOnEvent {
			status = statusNoteOn
		}
		return []byte{status | e.Channel, e.Pitch, e.Velocity}

	case TempoEvent:
		// The tempo is written in as few bytes as it needs, not the usual fixed 3.
		tempo := EncodeFixedWidth(e.Tempo, 0)
		output := []byte{0xff, metaTempo}
		output = append(output, EncodeFixedWidth(uint32(len(tempo)), 0)...)
		return append(output, tempo...)

	case TrackNameEvent, CopyrightEvent:
		metaType := byte(metaTrackName)
		if e.Kind == CopyrightEvent {
			metaType = metaCopyright
		}
		output := []byte{0xff, metaType}
		output = append(output, EncodeVLQ(uint32(len(e.Data)))...)
		return append(output, e.Data...)

	default:
		panic(fmt.Sprintf("unhandled event kind %d", e.Kind))
	}
}

// writeTo writes the complete track chunk (header, length and body) to the buffer.
func (t *Track) writeTo(buffer *bytes.Buffer) {
	bodySize := t.CalculateSize()

	buffer.WriteString("MTrk")
	buffer.Write(EncodeFixedWidth(uint32(bodySize), 4))
	for i := range t.Events {
		buffer.Write(EncodeVLQ(t.Events[i].DeltaTime))
		buffer.Write(t.Events[i].toBytes())
	}
	buffer.Write(endOfTrack)
}

// Encode converts the document into the bytes of a format 1 Standard MIDI File.
// Tracks are written in the order they appear in the document.
func (d *Document) Encode() ([]byte, error) {
	totalSize := d.CalculateSize()
	buffer := bytes.NewBuffer(make([]byte, 0, totalSize))

	// Header chunk.
	buffer.WriteString("MThd")
	buffer.Write(EncodeFixedWidth(6, 4)) // Header length.
	buffer.Write(EncodeFixedWidth(1, 2)) // Format 1 (multiple tracks).
	buffer.Write(EncodeFixedWidth(uint32(len(d.Tracks)), 2))
	buffer.Write(EncodeFixedWidth(uint32(d.Division), 2))

	for i := range d.Tracks {
		d.Tracks[i].writeTo(buffer)
	}

	// Sanity check to make sure the output is the expected size.
	if buffer.Len() != totalSize {
		return nil, fmt.Errorf("MIDI file size mismatch: got %d bytes, expected %d", buffer.Len(), totalSize)
	}
	return buffer.Bytes(), nil
}
