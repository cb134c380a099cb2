// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Tidemark Systems

package slip

import (
	"fmt"
	"strings"
	"time"
)

// FormatFrame formats a decoded frame as a timestamped header line followed
// by a hex/ASCII dump of the payload
func FormatFrame(seq uint64, ts time.Time, payload []byte) string {
	header := fmt.Sprintf("[%s] frame %d  len=%d  wire=%d\n",
		ts.Format("15:04:05.000"), seq, len(payload), EncodedLen(payload))
	if len(payload) == 0 {
		return header + "  (empty frame)\n"
	}
	return header + HexDump(payload)
}

// HexDump renders data as 16-byte rows of offset, hex bytes, and printable
// ASCII
func HexDump(data []byte) string {
	var b strings.Builder
	for off := 0; off < len(data); off += 16 {
		row := data[off:]
		if len(row) > 16 {
			row = row[:16]
		}

		b.WriteString(fmt.Sprintf("  %04x  ", off))
		for i := 0; i < 16; i++ {
			if i == 8 {
				b.WriteByte(' ')
			}
			if i < len(row) {
				b.WriteString(fmt.Sprintf("%02x ", row[i]))
			} else {
				b.WriteString("   ")
			}
		}

		b.WriteByte(' ')
		for _, c := range row {
			if c >= 0x20 && c < 0x7F {
				b.WriteByte(c)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
