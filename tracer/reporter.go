// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/gitter-badger/tapper/internal/log"
)

// Reporter is the pluggable sink a trace actor hands its finished batch
// to at sweep time (spec.md §4.5). Ingest must not block the actor for
// long and must never panic across the call boundary — the actor
// recovers a panic defensively, but a well-behaved Reporter handles its
// own errors.
type Reporter interface {
	Ingest(batch []WireSpan)
}

// NopReporter discards every batch. Useful as a default before process
// configuration has loaded a real one.
type NopReporter struct{}

// Ingest implements Reporter by doing nothing.
func (NopReporter) Ingest(batch []WireSpan) {}

// JSONLogReporter writes each batch as a JSON line through internal/log,
// the simplest reporter for local development (spec.md §4.5's "any
// concrete transport is out of scope" leaves the wire payload itself as
// the only testable contract, so a logging reporter exercises exactly
// that).
type JSONLogReporter struct{}

// Ingest implements Reporter.
func (JSONLogReporter) Ingest(batch []WireSpan) {
	b, err := json.Marshal(batch)
	if err != nil {
		log.Error("tapper: failed to marshal batch: %v", err)
		return
	}
	log.Debug("tapper: reporting batch: %s", b)
}

// MsgpackReporter encodes each batch with msgpack instead of JSON and
// hands the bytes to Sink (or drops them if Sink is nil), letting a
// caller wire a real transport without this package needing to know
// about it.
type MsgpackReporter struct {
	Sink func([]byte)
}

// Ingest implements Reporter.
func (r MsgpackReporter) Ingest(batch []WireSpan) {
	b, err := msgpack.Marshal(batch)
	if err != nil {
		log.Error("tapper: failed to msgpack-encode batch: %v", err)
		return
	}
	if r.Sink != nil {
		r.Sink(b)
	}
}

// ChanReporter delivers each batch on a buffered channel, for tests and
// in-process consumers. A full buffer drops the batch rather than
// blocking the reporting trace actor.
type ChanReporter struct {
	ch chan []WireSpan
}

// NewChanReporter builds a ChanReporter with the given channel buffer
// size.
func NewChanReporter(buffer int) *ChanReporter {
	return &ChanReporter{ch: make(chan []WireSpan, buffer)}
}

// Batches returns the channel batches are delivered on.
func (r *ChanReporter) Batches() <-chan []WireSpan { return r.ch }

// Ingest implements Reporter.
func (r *ChanReporter) Ingest(batch []WireSpan) {
	select {
	case r.ch <- batch:
	default:
		log.Warn("tapper: chan reporter buffer full, dropping batch of %d spans", len(batch))
	}
}
