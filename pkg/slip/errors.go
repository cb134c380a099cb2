// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Tidemark Systems

package slip

import "errors"

// Encoder errors
var (
	// ErrNoOutputSpaceForHeader is returned by Encode when the output buffer
	// cannot hold even the leading frame delimiter on the first call.
	ErrNoOutputSpaceForHeader = errors.New("slip: no output space for header")

	// ErrNoOutputSpaceForEndByte is returned by Finish when the output buffer
	// cannot hold the trailing frame delimiter.
	ErrNoOutputSpaceForEndByte = errors.New("slip: no output space for end byte")
)

// Decoder errors
var (
	// ErrBadHeaderDecode is returned by Decode when a leading frame delimiter
	// is required but the input is empty or starts with a different byte.
	ErrBadHeaderDecode = errors.New("slip: bad header")

	// ErrBadEscapeSequenceDecode is returned by Decode when the byte following
	// an escape marker is neither EscEnd nor EscEsc.
	ErrBadEscapeSequenceDecode = errors.New("slip: bad escape sequence")
)
