// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Tidemark Systems

package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidemark/sliptap/pkg/slip"
)

var (
	sendFile     string
	sendRepeat   int
	sendInterval int
)

var sendCmd = &cobra.Command{
	Use:   "send [hex-payload]",
	Short: "SLIP-frame a payload and write it to the line",
	Long: `Encode a payload as a single SLIP frame and transmit it.

The payload is given either as a hex string argument (spaces and 0x prefixes
are ignored) or read from a file with --file; "-" reads from stdin.

Examples:
  sliptap send --port /dev/ttyUSB0 "01 c0 03"
  sliptap send --url ws://bridge.local/line --file payload.bin
  cat payload.bin | sliptap send --port /dev/ttyUSB0 --file -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sendFile, "file", "f", "", "Read payload from file (- for stdin)")
	sendCmd.Flags().IntVar(&sendRepeat, "repeat", 1, "Number of times to send the frame")
	sendCmd.Flags().IntVar(&sendInterval, "interval", 100, "Delay between repeats (milliseconds)")
}

// parseHexPayload converts a hex string into payload bytes, tolerating
// whitespace and 0x prefixes
func parseHexPayload(s string) ([]byte, error) {
	cleaned := strings.NewReplacer(" ", "", "\t", "", "\n", "", "0x", "", "0X", "").Replace(s)
	if cleaned == "" {
		return nil, fmt.Errorf("empty payload")
	}
	payload, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid hex payload: %v", err)
	}
	return payload, nil
}

func loadPayload(args []string) ([]byte, error) {
	if sendFile != "" {
		if sendFile == "-" {
			return io.ReadAll(os.Stdin)
		}
		return os.ReadFile(sendFile)
	}
	if len(args) == 1 {
		return parseHexPayload(args[0])
	}
	return nil, fmt.Errorf("either a hex payload argument or --file must be given")
}

func runSend(cmd *cobra.Command, args []string) error {
	payload, err := loadPayload(args)
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Sliptap - Send\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Payload: %d bytes -> %d bytes on the wire\n\n", len(payload), slip.EncodedLen(payload))

	writer := slip.NewWriter(conn)
	for i := 0; i < sendRepeat; i++ {
		if i > 0 {
			time.Sleep(time.Duration(sendInterval) * time.Millisecond)
		}
		if err := writer.WritePacket(payload); err != nil {
			return fmt.Errorf("send failed: %v", err)
		}
		fmt.Printf("Sent frame %d/%d\n", i+1, sendRepeat)
	}

	return nil
}
