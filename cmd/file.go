// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Tidemark Systems

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/tidemark/sliptap/pkg/slip"
)

var encodeCmd = &cobra.Command{
	Use:   "encode <input> <output>",
	Short: "SLIP-encode a file as a single frame",
	Long: `Read a file and write it to the output file as one SLIP frame.

The input is processed in fixed-size chunks, so arbitrarily large files
can be encoded without loading them into memory.`,
	Args: cobra.ExactArgs(2),
	RunE: runEncodeFile,
}

var decodeCmd = &cobra.Command{
	Use:   "decode <input> <output>",
	Short: "Decode one SLIP frame from a file",
	Long: `Decode the first SLIP frame found in the input file and write its
payload to the output file. Trailing data after the frame is ignored.`,
	Args: cobra.ExactArgs(2),
	RunE: runDecodeFile,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
}

func runEncodeFile(cmd *cobra.Command, args []string) error {
	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open input file: %v", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat input file: %v", err)
	}

	out, err := os.Create(args[1])
	if err != nil {
		return fmt.Errorf("failed to create output file: %v", err)
	}
	defer out.Close()

	bar := progressbar.DefaultBytes(info.Size(), "Encoding")

	enc := slip.NewEncoder()
	inBuf := make([]byte, 4096)
	// Worst case every input byte escapes to two, plus the frame delimiters.
	outBuf := make([]byte, 2*len(inBuf)+2)

	for {
		n, rerr := in.Read(inBuf)
		if n > 0 {
			totals, err := enc.Encode(inBuf[:n], outBuf)
			if err != nil {
				return fmt.Errorf("encode error: %v", err)
			}
			if _, err := out.Write(outBuf[:totals.Written]); err != nil {
				return fmt.Errorf("write error: %v", err)
			}
			bar.Add(totals.Read)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("read error: %v", rerr)
		}
	}

	totals, err := enc.Finish(outBuf)
	if err != nil {
		return fmt.Errorf("encode error: %v", err)
	}
	if _, err := out.Write(outBuf[:totals.Written]); err != nil {
		return fmt.Errorf("write error: %v", err)
	}
	bar.Finish()

	fmt.Printf("Encoded %s -> %s\n", args[0], args[1])
	return nil
}

func runDecodeFile(cmd *cobra.Command, args []string) error {
	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open input file: %v", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat input file: %v", err)
	}

	out, err := os.Create(args[1])
	if err != nil {
		return fmt.Errorf("failed to create output file: %v", err)
	}
	defer out.Close()

	bar := progressbar.DefaultBytes(info.Size(), "Decoding")

	dec := slip.NewDecoder()
	inBuf := make([]byte, 4096)
	outBuf := make([]byte, 4096)
	pending := inBuf[:0]

	for {
		n, rerr := in.Read(inBuf[len(pending):])
		if n == 0 && rerr == io.EOF {
			if len(pending) == 0 {
				return fmt.Errorf("input ended before the frame was terminated")
			}
		} else if rerr != nil && rerr != io.EOF {
			return fmt.Errorf("read error: %v", rerr)
		}
		pending = inBuf[:len(pending)+n]

		for len(pending) > 0 {
			consumed, payload, end, err := dec.Decode(pending, outBuf)
			if err != nil {
				return fmt.Errorf("decode error: %v", err)
			}
			if _, err := out.Write(payload); err != nil {
				return fmt.Errorf("write error: %v", err)
			}
			bar.Add(consumed)
			copy(inBuf, pending[consumed:])
			pending = inBuf[:len(pending)-consumed]
			if end {
				bar.Finish()
				fmt.Printf("Decoded %s -> %s\n", args[0], args[1])
				return nil
			}
		}

		if rerr == io.EOF {
			return fmt.Errorf("input ended before the frame was terminated")
		}
	}
}
