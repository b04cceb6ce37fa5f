package smf

import (
	"errors"
	"fmt"
)

// ErrTruncatedVLQ is returned when the input ends before the last byte of a variable-length quantity.
var ErrTruncatedVLQ = errors.New("truncated variable-length quantity")

// maxVLQSize is the longest encoding EncodeVLQ produces for a uint32.
const maxVLQSize = 5

// DecodeVLQ reads one variable-length quantity from the start of b.
// It returns the value and the number of bytes consumed.
func DecodeVLQ(b []byte) (uint32, int, error) {
	var value uint64
	for i := 0; i < len(b); i++ {
		if i == maxVLQSize {
			return 0, i, fmt.Errorf("variable-length quantity longer than %d bytes", maxVLQSize)
		}
		value = value<<7 | uint64(b[i]&0x7f)
		if b[i]&0x80 == 0 {
			if value > 0xffffffff {
				return 0, i + 1, fmt.Errorf("variable-length quantity %d overflows 32 bits", value)
			}
			return uint32(value), i + 1, nil
		}
	}
	return 0, len(b), ErrTruncatedVLQ
}
