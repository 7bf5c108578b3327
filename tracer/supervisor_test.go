// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupervisorRegistersAndDeregistersOnFinish(t *testing.T) {
	registry := NewRegistry()
	sv := NewSupervisor(registry)
	reporter := NewChanReporter(1)
	args := newTestArgs(reporter, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	actor := sv.Start(ctx, args)

	_, ok := registry.lookup(args.traceID.Key())
	assert.True(t, ok)

	actor.post(finishTraceEvent{ts: time.Now()})

	select {
	case <-reporter.Batches():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for finish to report")
	}

	require.Eventually(t, func() bool {
		_, ok := registry.lookup(args.traceID.Key())
		return !ok
	}, time.Second, time.Millisecond)
}

func TestSupervisorCallerContextCancelSweeps(t *testing.T) {
	registry := NewRegistry()
	sv := NewSupervisor(registry)
	reporter := NewChanReporter(1)
	args := newTestArgs(reporter, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	sv.Start(ctx, args)
	cancel()

	select {
	case batch := <-reporter.Batches():
		found := false
		for _, ann := range batch[0].Annotations {
			if ann.Value == "error" {
				found = true
			}
		}
		assert.True(t, found, "caller context cancellation must stamp an error annotation")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for caller-crash sweep")
	}
}
