// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Tidemark Systems

package slip

// Encoder is the SLIP encoding context for one packet. It tracks whether the
// leading frame delimiter has been written, so a packet can be fed to Encode
// in as many chunks as the caller likes. After Finish, obtain a fresh context
// (or call Reset) before starting the next packet.
type Encoder struct {
	headerWritten bool
}

// EncodeTotals reports how much of an Encode or Finish call's buffers was
// used: Read input bytes were fully translated and Written output bytes were
// produced. Totals from successive calls accumulate with Add.
type EncodeTotals struct {
	Read    int
	Written int
}

// Add accumulates the totals of a later call into t.
func (t *EncodeTotals) Add(o EncodeTotals) {
	t.Read += o.Read
	t.Written += o.Written
}

// NewEncoder creates a new context for SLIP encoding.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode translates input into SLIP wire format in output, stuffing the two
// reserved byte values. The first call for a context also writes the leading
// frame delimiter before any payload byte.
//
// Encode stops cleanly when the output buffer cannot hold the next byte's
// full translation (one or two bytes); the returned totals then cover a
// strict prefix of the input and the caller resumes with input[totals.Read:]
// and a fresh output region. A single input byte's two-byte escape sequence
// is never split across calls. The only error is ErrNoOutputSpaceForHeader,
// when the very first call cannot fit the delimiter.
func (e *Encoder) Encode(input, output []byte) (EncodeTotals, error) {
	out := 0
	if !e.headerWritten {
		if len(output) < 1 {
			return EncodeTotals{}, ErrNoOutputSpaceForHeader
		}
		output[0] = End
		out = 1
		e.headerWritten = true
	}

	in := 0
	for in < len(input) {
		switch input[in] {
		case Esc:
			if len(output)-out < 2 {
				return EncodeTotals{Read: in, Written: out}, nil
			}
			output[out] = Esc
			output[out+1] = EscEsc
			out += 2
		case End:
			if len(output)-out < 2 {
				return EncodeTotals{Read: in, Written: out}, nil
			}
			output[out] = Esc
			output[out+1] = EscEnd
			out += 2
		default:
			if len(output)-out < 1 {
				return EncodeTotals{Read: in, Written: out}, nil
			}
			output[out] = input[in]
			out++
		}
		in++
	}

	return EncodeTotals{Read: in, Written: out}, nil
}

// Finish terminates the packet by writing the trailing frame delimiter.
// The context is done afterwards; Reset it or create a new Encoder for the
// next packet. Fails with ErrNoOutputSpaceForEndByte on an empty buffer.
func (e *Encoder) Finish(output []byte) (EncodeTotals, error) {
	if len(output) < 1 {
		return EncodeTotals{}, ErrNoOutputSpaceForEndByte
	}
	output[0] = End
	return EncodeTotals{Written: 1}, nil
}

// Reset returns the context to its initial state so it can encode a new
// packet.
func (e *Encoder) Reset() {
	e.headerWritten = false
}

// EncodedLen returns the exact wire size of p as a single SLIP frame,
// including both delimiters. Useful for sizing output buffers upfront.
func EncodedLen(p []byte) int {
	n := 2
	for _, b := range p {
		if b == End || b == Esc {
			n += 2
		} else {
			n++
		}
	}
	return n
}
