// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Tidemark Systems

package slip

import (
	"bytes"
	"strings"
	"testing"
)

// encodeWhole frames payload as a single packet using one large buffer.
func encodeWhole(t *testing.T, payload []byte) []byte {
	t.Helper()
	output := make([]byte, EncodedLen(payload))

	enc := NewEncoder()
	totals, err := enc.Encode(payload, output)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if totals.Read != len(payload) {
		t.Fatalf("Encode consumed %d of %d bytes", totals.Read, len(payload))
	}

	ft, err := enc.Finish(output[totals.Written:])
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	totals.Add(ft)

	if totals.Written != len(output) {
		t.Fatalf("wire length = %d, EncodedLen = %d", totals.Written, len(output))
	}
	return output
}

// decodeWhole unframes one packet from wire in a single call.
func decodeWhole(t *testing.T, wire []byte) []byte {
	t.Helper()
	output := make([]byte, len(wire))

	dec := NewDecoder()
	n, out, end, err := dec.Decode(wire, output)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if n != len(wire) {
		t.Fatalf("Decode consumed %d of %d bytes", n, len(wire))
	}
	if !end {
		t.Fatal("Decode did not reach end of packet")
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"empty", []byte{}},
		{"single zero", []byte{0x00}},
		{"plain", []byte{0x01, 0x02, 0x03}},
		{"single end", []byte{End}},
		{"single esc", []byte{Esc}},
		{"end then esc", []byte{End, Esc}},
		{"interleaved", []byte{0x00, End, 0x00, Esc, 0x00}},
		{"high bytes", []byte{0xFF, 0xFE, 0xFD}},
		{"esc continuations unescaped", []byte{EscEnd, EscEsc}},
		{"large", bytes.Repeat([]byte{0x55}, 300)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire := encodeWhole(t, tt.payload)
			decoded := decodeWhole(t, wire)
			if !bytes.Equal(decoded, tt.payload) {
				t.Errorf("round trip = %v, want %v", decoded, tt.payload)
			}
		})
	}
}

// Reserved bytes encode to exactly two wire bytes each.
func TestEscapingBijection(t *testing.T) {
	for _, b := range []byte{End, Esc} {
		payload := bytes.Repeat([]byte{b}, 16)
		wire := encodeWhole(t, payload)
		if len(wire) != 2+2*len(payload) {
			t.Errorf("wire length for 16x %#02x = %d, want %d", b, len(wire), 2+2*len(payload))
		}
		if !bytes.Equal(decodeWhole(t, wire), payload) {
			t.Errorf("bijection broken for %#02x", b)
		}
	}
}

// Encoding a payload in any two sub-chunks produces byte-identical output to
// encoding it whole.
func TestChunkedEncodeEquivalence(t *testing.T) {
	payload := []byte{0x01, End, 0x03, Esc, 0x05, EscEnd, End, End, 0x09}
	whole := encodeWhole(t, payload)

	for split := 0; split <= len(payload); split++ {
		output := make([]byte, len(whole))

		enc := NewEncoder()
		var totals EncodeTotals
		for _, chunk := range [][]byte{payload[:split], payload[split:]} {
			tt, err := enc.Encode(chunk, output[totals.Written:])
			if err != nil {
				t.Fatalf("split %d: Encode failed: %v", split, err)
			}
			if tt.Read != len(chunk) {
				t.Fatalf("split %d: consumed %d of %d bytes", split, tt.Read, len(chunk))
			}
			totals.Add(tt)
		}
		ft, err := enc.Finish(output[totals.Written:])
		if err != nil {
			t.Fatalf("split %d: Finish failed: %v", split, err)
		}
		totals.Add(ft)

		if !bytes.Equal(output[:totals.Written], whole) {
			t.Errorf("split %d: chunked output %v != whole %v", split, output[:totals.Written], whole)
		}
	}
}

// Decoding a wire stream split at any boundary, including mid-escape and on
// the header byte, reconstructs the same payload.
func TestChunkedDecodeEquivalence(t *testing.T) {
	payload := []byte{0x01, End, 0x03, Esc, 0x05}
	wire := encodeWhole(t, payload)

	for split := 0; split <= len(wire); split++ {
		dec := NewDecoder()
		var decoded []byte
		sawEnd := false

		for _, chunk := range [][]byte{wire[:split], wire[split:]} {
			for len(chunk) > 0 {
				var output [4]byte
				n, out, end, err := dec.Decode(chunk, output[:])
				if err != nil {
					t.Fatalf("split %d: Decode failed: %v", split, err)
				}
				decoded = append(decoded, out...)
				chunk = chunk[n:]
				if end {
					sawEnd = true
				}
			}
		}

		if !sawEnd {
			t.Errorf("split %d: never reached end of packet", split)
		}
		if !bytes.Equal(decoded, payload) {
			t.Errorf("split %d: decoded %v, want %v", split, decoded, payload)
		}
	}
}

// Neither context writes past the end of an undersized output buffer.
func TestBoundsSafety(t *testing.T) {
	payload := []byte{End, Esc, 0x01, End, 0x02}
	wire := encodeWhole(t, payload)

	for size := 1; size < len(wire); size++ {
		backing := make([]byte, size+2)
		backing[size] = 0xA5
		backing[size+1] = 0x5A

		enc := NewEncoder()
		if _, err := enc.Encode(payload, backing[:size]); err != nil {
			t.Fatalf("size %d: Encode failed: %v", size, err)
		}
		if backing[size] != 0xA5 || backing[size+1] != 0x5A {
			t.Fatalf("size %d: Encode wrote past buffer end", size)
		}

		backing[size] = 0xA5
		dec := NewDecoder()
		if _, _, _, err := dec.Decode(wire, backing[:size]); err != nil {
			t.Fatalf("size %d: Decode failed: %v", size, err)
		}
		if backing[size] != 0xA5 || backing[size+1] != 0x5A {
			t.Fatalf("size %d: Decode wrote past buffer end", size)
		}
	}
}

func TestStatistics(t *testing.T) {
	s := NewStatistics()
	s.RecordFrame(7, 5)
	s.RecordFrame(2, 0)
	s.RecordError(ErrBadHeaderDecode)
	s.RecordError(ErrBadEscapeSequenceDecode)
	s.RecordError(ErrPacketTooLarge)
	s.RecordResync()

	if s.TotalFrames != 2 || s.EmptyFrames != 1 {
		t.Errorf("frames = %d/%d empty, want 2/1", s.TotalFrames, s.EmptyFrames)
	}
	if s.WireBytes != 9 || s.PayloadBytes != 5 {
		t.Errorf("bytes = %d wire / %d payload, want 9/5", s.WireBytes, s.PayloadBytes)
	}
	if s.HeaderErrors != 1 || s.EscapeErrors != 1 || s.OtherErrors != 1 {
		t.Errorf("error counts = %d/%d/%d, want 1/1/1", s.HeaderErrors, s.EscapeErrors, s.OtherErrors)
	}
	if s.Errors() != 3 || s.Resyncs != 1 {
		t.Errorf("Errors() = %d, Resyncs = %d, want 3, 1", s.Errors(), s.Resyncs)
	}

	summary := s.String()
	if !strings.Contains(summary, "Frames: 2") || !strings.Contains(summary, "Resyncs: 1") {
		t.Errorf("unexpected summary: %q", summary)
	}
}

func TestHexDump(t *testing.T) {
	dump := HexDump([]byte("SLIP\x00\xc0"))
	if !strings.Contains(dump, "53 4c 49 50 00 c0") {
		t.Errorf("hex column missing: %q", dump)
	}
	if !strings.Contains(dump, "SLIP..") {
		t.Errorf("ascii column missing: %q", dump)
	}
	if dump[len(dump)-1] != '\n' {
		t.Error("dump does not end with newline")
	}

	rows := strings.Count(HexDump(make([]byte, 33)), "\n")
	if rows != 3 {
		t.Errorf("33 bytes produced %d rows, want 3", rows)
	}
}
