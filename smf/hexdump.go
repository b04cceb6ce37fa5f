package smf

import (
	"strconv"
	"strings"
)

// HexDump formats b as comma-separated lowercase hex bytes without zero padding,
// e.g. "4d,54,68,64,0,0,0,6".
func HexDump(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = strconv.FormatUint(uint64(v), 16)
	}
	return strings.Join(parts, ",")
}
