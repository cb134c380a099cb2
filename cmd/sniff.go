// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Tidemark Systems

package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidemark/sliptap/pkg/slip"
)

var (
	sniffMaxFrame  int
	sniffShowEmpty bool
)

var sniffCmd = &cobra.Command{
	Use:   "sniff",
	Short: "Decode and display SLIP frames as they arrive",
	Long: `Continuously deframe the SLIP byte stream and display each packet as a
timestamped hex/ASCII dump.

When the stream is joined mid-frame or corrupted, sliptap resynchronizes by
scanning forward to the next frame delimiter and reports the framing error.

Supports both serial and WebSocket connections.`,
	RunE: runSniff,
}

func init() {
	rootCmd.AddCommand(sniffCmd)
	sniffCmd.Flags().IntVar(&sniffMaxFrame, "max-frame", 4096, "Maximum frame payload size in bytes")
	sniffCmd.Flags().BoolVar(&sniffShowEmpty, "show-empty", false, "Display zero-length frames")
}

func runSniff(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Sliptap - Frame Sniffer\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	reader := slip.NewReader(conn)
	buf := make([]byte, sniffMaxFrame)
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
			if err == ErrConnectionClosed {
				log.Printf("Connection closed")
				return nil
			}
			return fmt.Errorf("read error: %v", err)
		}

		if n == 0 && !sniffShowEmpty {
			continue
		}
		seq++
		fmt.Print(slip.FormatFrame(seq, time.Now(), buf[:n]))
	}
}
