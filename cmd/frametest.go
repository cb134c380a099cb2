// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Tidemark Systems

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidemark/sliptap/pkg/slip"
)

var frameTestTimeout int

var frameTestCmd = &cobra.Command{
	Use:   "frame_test",
	Short: "Test connection by waiting for a well-framed SLIP packet",
	Long: `Wait for a complete SLIP frame on the connection until timeout.

This command connects to a serial port or WebSocket and waits for any
well-framed, non-empty SLIP packet, resynchronizing past garbage bytes.

Exit codes:
  0 - Frame received before timeout
  1 - Timeout reached without receiving a frame
  2 - Connection error

Useful for checking that a device is talking SLIP at the expected baud rate.`,
	RunE: runFrameTest,
}

func init() {
	rootCmd.AddCommand(frameTestCmd)
	frameTestCmd.Flags().IntVar(&frameTestTimeout, "timeout", 10, "Timeout in seconds to wait for a frame")
}

func runFrameTest(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Sliptap - Frame Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", frameTestTimeout)
	fmt.Printf("Waiting for a SLIP frame...\n\n")

	frameChan := make(chan []byte, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := slip.NewReader(conn)
		buf := make([]byte, 4096)
		resyncs := 0
		for {
			n, err := reader.ReadPacket(buf)
			switch err {
			case nil:
			case slip.ErrBadHeaderDecode, slip.ErrBadEscapeSequenceDecode, slip.ErrPacketTooLarge:
				resyncs++
				if rerr := reader.Resync(); rerr != nil {
					errChan <- rerr
					return
				}
				continue
			default:
				errChan <- err
				return
			}

			if n == 0 {
				continue
			}
			if resyncs > 0 {
				fmt.Printf("(resynchronized %d times before first frame)\n", resyncs)
			}
			frameChan <- append([]byte(nil), buf[:n]...)
			return
		}
	}()

	select {
	case frame := <-frameChan:
		fmt.Printf("SUCCESS: Received frame\n")
		fmt.Printf("  Payload: %d bytes\n", len(frame))
		fmt.Printf("  Wire size: %d bytes\n", slip.EncodedLen(frame))
		fmt.Print(slip.HexDump(frame))
		os.Exit(0)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(frameTestTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No frame received within %d seconds\n", frameTestTimeout)
		os.Exit(1)
	}

	return nil
}
