// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Tidemark Systems

package slip

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks frame and error counts for a decoded SLIP stream
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalFrames  uint64
	EmptyFrames  uint64
	WireBytes    uint64
	PayloadBytes uint64
	HeaderErrors uint64
	EscapeErrors uint64
	OtherErrors  uint64
	Resyncs      uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ByteRate  float64 // payload bytes/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// RecordFrame records a completed frame with its on-wire and payload sizes
func (s *Statistics) RecordFrame(wireLen, payloadLen int) {
	s.TotalFrames++
	s.WireBytes += uint64(wireLen)
	s.PayloadBytes += uint64(payloadLen)
	if payloadLen == 0 {
		s.EmptyFrames++
	}
}

// RecordError records a decode failure by kind
func (s *Statistics) RecordError(err error) {
	switch {
	case errors.Is(err, ErrBadHeaderDecode):
		s.HeaderErrors++
	case errors.Is(err, ErrBadEscapeSequenceDecode):
		s.EscapeErrors++
	default:
		s.OtherErrors++
	}
}

// RecordResync records a stream resynchronization
func (s *Statistics) RecordResync() {
	s.Resyncs++
}

// Errors returns the total number of recorded decode failures
func (s *Statistics) Errors() uint64 {
	return s.HeaderErrors + s.EscapeErrors + s.OtherErrors
}

// CalculateRates updates the frame, byte, and error rates from the elapsed time
func (s *Statistics) CalculateRates() {
	now := time.Now()
	elapsed := now.Sub(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames) / elapsed
		s.ByteRate = float64(s.PayloadBytes) / elapsed
		s.ErrorRate = float64(s.Errors()) / elapsed
	}
	s.LastUpdateTime = now
}

// String returns a human-readable statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()
	result := "=== Stream Statistics ===\n"
	result += fmt.Sprintf("Frames: %d (%d empty)  Payload: %d bytes  Wire: %d bytes\n",
		s.TotalFrames, s.EmptyFrames, s.PayloadBytes, s.WireBytes)
	if s.Errors() > 0 || s.Resyncs > 0 {
		result += fmt.Sprintf("Errors: %d (header: %d, escape: %d, other: %d)  Resyncs: %d\n",
			s.Errors(), s.HeaderErrors, s.EscapeErrors, s.OtherErrors, s.Resyncs)
	}
	result += fmt.Sprintf("Rates: %.1f frames/s  %.1f B/s  %.2f err/s\n",
		s.FrameRate, s.ByteRate, s.ErrorRate)
	return result
}
