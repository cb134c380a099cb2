// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Tidemark Systems

// Package slip provides a reference Go implementation of SLIP (RFC 1055)
// Serial Line IP framing.
//
// SLIP converts arbitrary binary packets into a delimited byte stream and
// back. It has no addressing, length field, checksum, or retransmission; it
// only solves framing. The package centers on two streaming contexts:
//
//   - Encoder turns payload chunks into a SLIP frame across any number of
//     Encode calls, finished by a trailing delimiter.
//   - Decoder turns a SLIP byte stream back into payload, tolerating input
//     split at any boundary, including in the middle of an escape sequence.
//
// Both operate exclusively on caller-supplied buffers and never allocate,
// which keeps them usable from tight read loops and fixed-memory drivers.
// Reader and Writer wrap the contexts for ordinary io streams.
package slip

// Protocol framing bytes, values per RFC 1055.
const (
	End    = 0xC0 // frame delimiter
	Esc    = 0xDB // escape marker
	EscEnd = 0xDC // stands for a literal End inside a frame
	EscEsc = 0xDD // stands for a literal Esc inside a frame
)
