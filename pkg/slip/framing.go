// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Tidemark Systems

package slip

import (
	"errors"
	"io"
)

// ErrPacketTooLarge is returned by Reader.ReadPacket when a frame's payload
// does not fit the caller's buffer.
var ErrPacketTooLarge = errors.New("slip: packet exceeds output buffer")

const chunkSize = 1024

// Writer frames whole packets onto an underlying io.Writer using a fixed
// staging buffer and the chunked Encoder. Not safe for concurrent use.
type Writer struct {
	w   io.Writer
	enc *Encoder
	buf [chunkSize]byte
}

// NewWriter returns a Writer framing packets onto w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, enc: NewEncoder()}
}

// WritePacket writes p to the underlying writer as one complete SLIP frame.
func (w *Writer) WritePacket(p []byte) error {
	w.enc.Reset()
	for {
		t, err := w.enc.Encode(p, w.buf[:])
		if err != nil {
			return err
		}
		if t.Written > 0 {
			if _, err := w.w.Write(w.buf[:t.Written]); err != nil {
				return err
			}
		}
		p = p[t.Read:]
		if len(p) == 0 {
			break
		}
	}

	t, err := w.enc.Finish(w.buf[:])
	if err != nil {
		return err
	}
	_, err = w.w.Write(w.buf[:t.Written])
	return err
}

// Reader extracts SLIP packets from an underlying io.Reader, feeding the
// streaming Decoder from a fixed input buffer. Not safe for concurrent use.
type Reader struct {
	r       io.Reader
	dec     *Decoder
	in      [chunkSize]byte
	pos, n  int
	scratch [1]byte
}

// NewReader returns a Reader deframing packets from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, dec: NewDecoder()}
}

// ReadPacket reads one complete packet's payload into buf and returns its
// length. A zero length with a nil error is a legitimate empty frame, which
// occurs between back-to-back delimiters.
//
// On ErrBadHeaderDecode or ErrBadEscapeSequenceDecode the stream is out of
// sync; call Resync to skip forward to the next frame boundary. On
// ErrPacketTooLarge the remainder of the oversized frame is still buffered
// and Resync will discard it.
func (r *Reader) ReadPacket(buf []byte) (int, error) {
	total := 0
	for {
		if r.pos == r.n {
			n, err := r.r.Read(r.in[:])
			if err != nil {
				return total, err
			}
			if n == 0 {
				continue
			}
			r.pos, r.n = 0, n
		}

		// Once buf is full the frame may still end legitimately on the next
		// byte, so probe with a one-byte scratch: any further payload byte
		// means the frame genuinely does not fit.
		dst := buf[total:]
		probing := false
		if len(dst) == 0 {
			dst = r.scratch[:]
			probing = true
		}

		consumed, out, end, err := r.dec.Decode(r.in[r.pos:r.n], dst)
		if err != nil {
			return 0, err
		}
		r.pos += consumed
		if probing && len(out) > 0 {
			return 0, ErrPacketTooLarge
		}
		if !probing {
			total += len(out)
		}
		if end {
			return total, nil
		}
	}
}

// Resync discards buffered and incoming bytes up to (but not including) the
// next frame delimiter and resets the decoder, so the following ReadPacket
// starts on a frame boundary. It blocks on the underlying reader if no
// delimiter is buffered yet.
func (r *Reader) Resync() error {
	r.dec.Reset()
	for {
		for r.pos < r.n {
			if r.in[r.pos] == End {
				return nil
			}
			r.pos++
		}
		n, err := r.r.Read(r.in[:])
		if err != nil {
			return err
		}
		r.pos, r.n = 0, n
	}
}
