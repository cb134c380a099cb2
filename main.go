// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Tidemark Systems
//
// Sliptap - SLIP Serial Line Analyzer
//
// A CLI tool for sniffing, framing, capturing, and analyzing SLIP (RFC 1055)
// byte streams on serial lines and WebSocket bridges.

package main

import (
	"os"

	"github.com/tidemark/sliptap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
