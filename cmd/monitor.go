// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Tidemark Systems

package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tidemark/sliptap/pkg/slip"
)

var (
	monitorShowAll  bool
	monitorInterval int
	monitorUseTUI   bool
	monitorMaxFrame int
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Monitor stream health with statistics and an event log",
	Long: `Track SLIP stream health in real time: frame and byte rates, framing
errors broken down by kind, and resynchronization events.

By default only errors are logged. Use --show-all to log every frame.

Runs a terminal UI by default; --tui=false falls back to plain text with
periodic statistics summaries.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&monitorShowAll, "show-all", false, "Log all frames (not just errors)")
	monitorCmd.Flags().IntVar(&monitorInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	monitorCmd.Flags().BoolVar(&monitorUseTUI, "tui", true, "Use terminal UI (false for text mode)")
	monitorCmd.Flags().IntVar(&monitorMaxFrame, "max-frame", 4096, "Maximum frame payload size in bytes")
}

// streamEvent is one decode outcome delivered from the reader goroutine
type streamEvent struct {
	payloadLen int
	wireLen    int
	err        error
	resynced   bool
}

func runMonitor(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	events := make(chan streamEvent, 64)
	readErr := make(chan error, 1)
	go readStream(conn, events, readErr)

	if monitorUseTUI {
		return runMonitorTUI(connInfo, events, readErr)
	}
	return runMonitorText(connInfo, events, readErr)
}

// readStream drives the SLIP reader and reports one event per frame or
// framing error, resynchronizing after errors so monitoring continues.
func readStream(conn Connection, events chan<- streamEvent, readErr chan<- error) {
	reader := slip.NewReader(conn)
	buf := make([]byte, monitorMaxFrame)

	for {
		n, err := reader.ReadPacket(buf)
		switch err {
		case nil:
			events <- streamEvent{payloadLen: n, wireLen: slip.EncodedLen(buf[:n])}
		case slip.ErrBadHeaderDecode, slip.ErrBadEscapeSequenceDecode, slip.ErrPacketTooLarge:
			resynced := reader.Resync() == nil
			events <- streamEvent{err: err, resynced: resynced}
			if !resynced {
				readErr <- fmt.Errorf("resync failed after %v", err)
				return
			}
		default:
			readErr <- err
			return
		}
	}
}

func runMonitorText(connInfo string, events <-chan streamEvent, readErr <-chan error) error {
	fmt.Printf("Sliptap - Stream Monitor\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Statistics interval: %d seconds\n", monitorInterval)
	if monitorShowAll {
		fmt.Printf("Mode: All frames\n")
	} else {
		fmt.Printf("Mode: Errors only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	stats := slip.NewStatistics()
	statsTicker := time.NewTicker(time.Duration(monitorInterval) * time.Second)
	defer statsTicker.Stop()

	for {
		select {
		case ev := <-events:
			applyEvent(stats, ev)
			timestamp := time.Now().Format("15:04:05.000")
			if ev.err != nil {
				fmt.Printf("[%s] \033[1;31mFRAMING ERROR:\033[0m %v (resynchronized)\n", timestamp, ev.err)
			} else if monitorShowAll {
				fmt.Printf("[%s] frame: %d payload bytes (%d on wire)\n", timestamp, ev.payloadLen, ev.wireLen)
			}

		case <-statsTicker.C:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()

		case err := <-readErr:
			if err == ErrConnectionClosed {
				fmt.Println("Connection closed")
				return nil
			}
			return fmt.Errorf("read error: %v", err)
		}
	}
}

// applyEvent folds one stream event into the statistics tracker
func applyEvent(stats *slip.Statistics, ev streamEvent) {
	if ev.err != nil {
		stats.RecordError(ev.err)
		if ev.resynced {
			stats.RecordResync()
		}
		return
	}
	stats.RecordFrame(ev.wireLen, ev.payloadLen)
}

// runMonitorTUI runs the monitor under Bubble Tea, pumping reader events
// into the program
func runMonitorTUI(connInfo string, events <-chan streamEvent, readErr <-chan error) error {
	p := tea.NewProgram(newMonitorModel(connInfo))

	go func() {
		for {
			select {
			case ev := <-events:
				p.Send(monitorEventMsg(ev))
			case err := <-readErr:
				p.Send(monitorReadErrMsg{err: err})
				return
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}
