// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Tidemark Systems

package slip

import (
	"bytes"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// buildRandomPayload creates a payload biased towards the reserved byte values
func buildRandomPayload(rng *rand.Rand) []byte {
	payload := make([]byte, rng.Intn(256))
	for i := range payload {
		switch rng.Intn(4) {
		case 0:
			payload[i] = End
		case 1:
			payload[i] = Esc
		default:
			payload[i] = byte(rng.Intn(256))
		}
	}
	return payload
}

// TestFuzzRoundTrip_RandomChunks encodes a random payload in random input
// chunks, decodes the wire in random chunks with random output buffer sizes,
// and expects the original payload back.
func TestFuzzRoundTrip_RandomChunks(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		payload := buildRandomPayload(rng)
		wire := make([]byte, EncodedLen(payload))

		// Encode in random chunks
		enc := NewEncoder()
		var totals EncodeTotals
		rest := payload
		for {
			n := rng.Intn(len(rest) + 1)
			tt, err := enc.Encode(rest[:n], wire[totals.Written:])
			if err != nil {
				t.Fatalf("round %d: Encode failed: %v", i, err)
			}
			if tt.Read != n {
				t.Fatalf("round %d: consumed %d of %d with ample output", i, tt.Read, n)
			}
			totals.Add(tt)
			rest = rest[n:]
			if len(rest) == 0 {
				break
			}
		}
		ft, err := enc.Finish(wire[totals.Written:])
		if err != nil {
			t.Fatalf("round %d: Finish failed: %v", i, err)
		}
		totals.Add(ft)
		if totals.Written != len(wire) {
			t.Fatalf("round %d: wire length %d, want %d", i, totals.Written, len(wire))
		}

		// Decode in random chunks with small random output buffers
		dec := NewDecoder()
		var decoded []byte
		sawEnd := false
		pos := 0
		for pos < len(wire) {
			chunk := wire[pos : pos+1+rng.Intn(len(wire)-pos)]
			output := make([]byte, 1+rng.Intn(8))
			n, out, end, err := dec.Decode(chunk, output)
			if err != nil {
				t.Fatalf("round %d: Decode failed at offset %d: %v", i, pos, err)
			}
			decoded = append(decoded, out...)
			pos += n
			if end {
				sawEnd = true
			}
		}

		if !sawEnd {
			t.Fatalf("round %d: never reached end of packet", i)
		}
		if !bytes.Equal(decoded, payload) {
			t.Fatalf("round %d: round trip mismatch (payload %d bytes)", i, len(payload))
		}
	}
}

// TestFuzzDecoder_RandomBytes feeds arbitrary byte soup to a decoder; it must
// never panic and must recover via Reset plus delimiter scan, the same way a
// transport driver resynchronizes.
func TestFuzzDecoder_RandomBytes(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		stream := buildRandomPayload(rng)
		dec := NewDecoder()
		var output [32]byte

		pos := 0
		for pos < len(stream) {
			n, _, _, err := dec.Decode(stream[pos:], output[:])
			pos += n
			if err != nil {
				dec.Reset()
				for pos < len(stream) && stream[pos] != End {
					pos++
				}
			}
		}
	}
}

// TestFuzzEncoder_TinyBuffers drives the encoder with output buffers of 1-3
// bytes; assembled output must match a whole-buffer encode.
func TestFuzzEncoder_TinyBuffers(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		payload := buildRandomPayload(rng)

		var wire []byte
		enc := NewEncoder()
		rest := payload
		for {
			output := make([]byte, 1+rng.Intn(3))
			tt, err := enc.Encode(rest, output)
			if err != nil {
				t.Fatalf("round %d: Encode failed: %v", i, err)
			}
			wire = append(wire, output[:tt.Written]...)
			rest = rest[tt.Read:]
			if len(rest) == 0 {
				break
			}
		}
		var trailer [1]byte
		ft, err := enc.Finish(trailer[:])
		if err != nil {
			t.Fatalf("round %d: Finish failed: %v", i, err)
		}
		wire = append(wire, trailer[:ft.Written]...)

		expected := make([]byte, EncodedLen(payload))
		whole := NewEncoder()
		wt, err := whole.Encode(payload, expected)
		if err != nil {
			t.Fatalf("round %d: reference Encode failed: %v", i, err)
		}
		if _, err := whole.Finish(expected[wt.Written:]); err != nil {
			t.Fatalf("round %d: reference Finish failed: %v", i, err)
		}
		if !bytes.Equal(wire, expected) {
			t.Fatalf("round %d: tiny-buffer output diverges from whole encode", i)
		}
	}
}
