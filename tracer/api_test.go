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

	"github.com/gitter-badger/tapper/ddtrace/ext"
)

func withTestConfig(t *testing.T, reporter Reporter) {
	t.Helper()
	SetProcessConfig(&ProcessConfig{ServiceName: "test-svc", DefaultTTL: time.Hour, Reporter: reporter})
}

// TestUnsampledStartIsANoop covers the "unsampled, non-debug caller" case:
// Start must hand back the ignore handle and never touch the registry.
func TestUnsampledStartIsANoop(t *testing.T) {
	reporter := NewChanReporter(1)
	withTestConfig(t, reporter)

	h := Start(context.Background(), Name("skip-me"), Sample(false))
	assert.True(t, h.IsIgnored())

	FinishSpan(h)
	Finish(h)

	select {
	case <-reporter.Batches():
		t.Fatal("an ignored handle must never produce a report")
	case <-time.After(20 * time.Millisecond):
	}
}

// TestClientTraceWithRemoteEndpoint covers spec.md §8 scenario 2: a
// locally originated client span seeded with a remote peer, finishing
// with exactly the initial cs annotation — no cr is ever added — plus
// the sa binary annotation naming the peer.
func TestClientTraceWithRemoteEndpoint(t *testing.T) {
	reporter := NewChanReporter(1)
	withTestConfig(t, reporter)

	remote := &Endpoint{ServiceName: "downstream"}
	h := Start(context.Background(), Name("call-downstream"), AsClient(), Remote(remote))
	Finish(h)

	batch := requireBatch(t, reporter)
	require.Len(t, batch, 1)
	assertHasAnnotation(t, batch[0], ext.ClientSend)
	assertNoAnnotation(t, batch[0], ext.ClientRecv)
	require.Len(t, batch[0].BinaryAnnotations, 1)
	assert.Equal(t, ext.ServerAddr, batch[0].BinaryAnnotations[0].Key)
	assert.Equal(t, "BOOL", batch[0].BinaryAnnotations[0].Type)
}

// TestStartSpanWithLocalComponent covers spec.md §6's startSpan "local"
// option: it adds a string binary annotation keyed lc.
func TestStartSpanWithLocalComponent(t *testing.T) {
	reporter := NewChanReporter(1)
	withTestConfig(t, reporter)

	h := Start(context.Background(), Name("root"))
	child := StartSpan(h, SpanName("cache-lookup"), Local("cache"))
	FinishSpan(child)
	Finish(h)

	batch := requireBatch(t, reporter)
	require.Len(t, batch, 2)
	span := findSpan(batch, "cache-lookup")
	require.NotNil(t, span)
	require.Len(t, span.BinaryAnnotations, 1)
	assert.Equal(t, ext.LocalComponent, span.BinaryAnnotations[0].Key)
	assert.Equal(t, "cache", span.BinaryAnnotations[0].Value)
}

// TestServerTraceWithChildSpan covers Join seeding a server root from a
// propagated parent, with one child span finishing before the root.
func TestServerTraceWithChildSpan(t *testing.T) {
	reporter := NewChanReporter(1)
	withTestConfig(t, reporter)

	remoteTrace := NewTraceID128()
	remoteParent := newSpanID()
	h := Join(context.Background(), remoteTrace, remoteParent, true, false, Name("handle-request"))
	require.False(t, h.IsIgnored())

	child := StartSpan(h, SpanName("load-user"))
	child = FinishSpan(child)
	Finish(child)

	batch := requireBatch(t, reporter)
	require.Len(t, batch, 2)
	root := findSpan(batch, "handle-request")
	require.NotNil(t, root)
	assert.Equal(t, remoteParent.WireHex(), root.ParentID)
	assertHasAnnotation(t, *root, ext.ServerRecv)
	assertNoAnnotation(t, *root, ext.ServerSend)
}

// TestAsyncCompletion covers a root marked async: the first Finish is
// provisional and reports nothing; only the second Finish reports.
func TestAsyncCompletion(t *testing.T) {
	reporter := NewChanReporter(1)
	withTestConfig(t, reporter)

	h := Start(context.Background(), Name("kick-off-job"))
	UpdateSpan(h, Async())
	Finish(h)

	select {
	case <-reporter.Batches():
		t.Fatal("an async root must not report before its real completion")
	case <-time.After(20 * time.Millisecond):
	}

	Finish(h)
	batch := requireBatch(t, reporter)
	require.Len(t, batch, 1)
}

// TestTTLExpiryWithOpenChild covers a trace whose child span never
// finishes: TTL expiry must sweep it with a timeout annotation.
func TestTTLExpiryWithOpenChild(t *testing.T) {
	reporter := NewChanReporter(1)
	SetProcessConfig(&ProcessConfig{ServiceName: "test-svc", DefaultTTL: 20 * time.Millisecond, Reporter: reporter})

	h := Start(context.Background(), Name("leaky"))
	StartSpan(h, SpanName("never-finishes"))

	batch := requireBatch(t, reporter)
	require.Len(t, batch, 2)
	child := findSpan(batch, "never-finishes")
	require.NotNil(t, child)
	assertHasAnnotation(t, *child, ext.AnnTimeout)
}

// TestParallelSiblingSpans covers two children started under the same
// parent from different goroutines, both finishing before the root.
func TestParallelSiblingSpans(t *testing.T) {
	reporter := NewChanReporter(1)
	withTestConfig(t, reporter)

	h := Start(context.Background(), Name("fan-out"))
	done := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		name := "worker"
		go func(n string) {
			child := StartSpan(h, SpanName(n))
			FinishSpan(child)
			done <- struct{}{}
		}(name)
	}
	<-done
	<-done
	Finish(h)

	batch := requireBatch(t, reporter)
	require.Len(t, batch, 3)
}

func requireBatch(t *testing.T, reporter *ChanReporter) []WireSpan {
	t.Helper()
	select {
	case batch := <-reporter.Batches():
		return batch
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a reported batch")
		return nil
	}
}

func findSpan(batch []WireSpan, name string) *WireSpan {
	for i := range batch {
		if batch[i].Name == name {
			return &batch[i]
		}
	}
	return nil
}

func assertHasAnnotation(t *testing.T, span WireSpan, value string) {
	t.Helper()
	for _, a := range span.Annotations {
		if a.Value == value {
			return
		}
	}
	t.Fatalf("span %q missing annotation %q", span.Name, value)
}

func assertNoAnnotation(t *testing.T, span WireSpan, value string) {
	t.Helper()
	for _, a := range span.Annotations {
		if a.Value == value {
			t.Fatalf("span %q must not carry annotation %q", span.Name, value)
		}
	}
}
