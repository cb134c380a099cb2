// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Tidemark Systems

package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"
	"github.com/tidemark/sliptap/pkg/slip"
)

var (
	captureCount    int
	captureMaxFrame int
)

// captureRecord is one decoded frame in a capture file. Capture files are a
// plain CBOR stream of these records, so they can be read back incrementally
// and survive truncation at any record boundary.
type captureRecord struct {
	Seq     uint64    `cbor:"1,keyasint"`
	Time    time.Time `cbor:"2,keyasint"`
	WireLen int       `cbor:"3,keyasint"`
	Payload []byte    `cbor:"4,keyasint"`
}

var captureCmd = &cobra.Command{
	Use:   "capture <file>",
	Short: "Record decoded frames to a capture file",
	Long: `Decode SLIP frames from the connection and append each one to a CBOR
capture file with its sequence number, timestamp, and on-wire size.

Capture runs until the connection closes or --count frames have been
recorded. Inspect capture files with "sliptap dump".`,
	Args: cobra.ExactArgs(1),
	RunE: runCapture,
}

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Display a capture file in human-readable format",
	Long:  `Print every frame in a capture file recorded by "sliptap capture".`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(dumpCmd)
	captureCmd.Flags().IntVar(&captureCount, "count", 0, "Stop after this many frames (0 = until connection closes)")
	captureCmd.Flags().IntVar(&captureMaxFrame, "max-frame", 4096, "Maximum frame payload size in bytes")
}

func runCapture(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("failed to create capture file: %v", err)
	}
	defer f.Close()

	fmt.Printf("Sliptap - Capture\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Capture file: %s\n", args[0])
	fmt.Printf("Press Ctrl+C to stop\n\n")

	encMode, err := cbor.EncOptions{Time: cbor.TimeUnixMicro}.EncMode()
	if err != nil {
		return fmt.Errorf("failed to configure capture encoder: %v", err)
	}
	enc := encMode.NewEncoder(f)
	reader := slip.NewReader(conn)
	buf := make([]byte, captureMaxFrame)
	var seq uint64

	for {
		n, err := reader.ReadPacket(buf)
		switch err {
		case nil:
		case slip.ErrBadHeaderDecode, slip.ErrBadEscapeSequenceDecode, slip.ErrPacketTooLarge:
			fmt.Printf("[ERROR] %v (resynchronizing)\n", err)
			if rerr := reader.Resync(); rerr != nil {
				return fmt.Errorf("resync failed: %v", rerr)
			}
			continue
		default:
			if err == ErrConnectionClosed || err == io.EOF {
				fmt.Printf("\nConnection closed; captured %d frames\n", seq)
				return nil
			}
			return fmt.Errorf("read error: %v", err)
		}

		if n == 0 {
			continue
		}
		seq++

		rec := captureRecord{
			Seq:     seq,
			Time:    time.Now(),
			WireLen: slip.EncodedLen(buf[:n]),
			Payload: append([]byte(nil), buf[:n]...),
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to write capture record: %v", err)
		}

		if captureCount > 0 && seq >= uint64(captureCount) {
			fmt.Printf("Captured %d frames\n", seq)
			return nil
		}
	}
}

func runDump(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open capture file: %v", err)
	}
	defer f.Close()

	dec := cbor.NewDecoder(f)
	var frames, payloadBytes uint64

	for {
		var rec captureRecord
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("corrupt capture record after frame %d: %v", frames, err)
		}
		frames++
		payloadBytes += uint64(len(rec.Payload))
		fmt.Print(slip.FormatFrame(rec.Seq, rec.Time, rec.Payload))
	}

	fmt.Printf("\n%d frames, %d payload bytes\n", frames, payloadBytes)
	return nil
}
