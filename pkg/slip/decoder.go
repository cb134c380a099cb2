// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Tidemark Systems

package slip

// Decoder is the SLIP decoding context. It carries the two pieces of state
// that let decoding resume across arbitrary input chunk boundaries: whether
// the leading frame delimiter has been seen, and an escape marker consumed
// on a previous call whose continuation byte has not arrived yet.
//
// The leading delimiter is only demanded once per context. After a packet
// ends, the terminating delimiter also serves as the separator before the
// next packet, so back-to-back frames decode without a fresh header. Call
// Reset to demand a delimiter again, e.g. when resynchronizing after an
// error.
type Decoder struct {
	headerFound bool
	escSeq      [4]byte // sized defensively; at most one byte is ever pending
	escSeqLen   int
}

// NewDecoder creates a new context for SLIP decoding.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode consumes SLIP wire bytes from input and writes unescaped payload
// into output. It returns the number of leading input bytes fully processed,
// a view over the bytes written to output this call, and whether a frame
// delimiter terminating the packet was consumed.
//
// A call stops cleanly when input is exhausted or output is full; the caller
// resumes with input[n:] and fresh output space. Input may be split anywhere,
// including between an escape marker and its continuation byte.
//
// ErrBadHeaderDecode is returned when a delimiter is required but missing;
// ErrBadEscapeSequenceDecode when an escape marker is followed by anything
// other than EscEnd or EscEsc. Both are fatal to the current packet's
// framing: Reset the context and rescan for the next delimiter.
func (d *Decoder) Decode(input, output []byte) (int, []byte, bool, error) {
	in := 0
	if !d.headerFound {
		if len(input) < 1 || input[0] != End {
			return 0, nil, false, ErrBadHeaderDecode
		}
		d.headerFound = true
		in = 1
	}

	out := 0
	end := false

stream:
	for in < len(input) && out < len(output) {
		b := input[in]
		if d.escSeqLen > 0 {
			switch b {
			case EscEnd:
				output[out] = End
			case EscEsc:
				output[out] = Esc
			default:
				return 0, nil, false, ErrBadEscapeSequenceDecode
			}
			out++
			d.escSeqLen = 0
		} else {
			switch b {
			case Esc:
				d.escSeq[d.escSeqLen] = Esc
				d.escSeqLen++
			case End:
				in++
				end = true
				break stream
			default:
				output[out] = b
				out++
			}
		}
		in++
	}

	return in, output[:out], end, nil
}

// Reset returns the context to its initial state: the next Decode call will
// demand a leading frame delimiter and any pending escape is discarded.
func (d *Decoder) Reset() {
	d.headerFound = false
	d.escSeqLen = 0
}
