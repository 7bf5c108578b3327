// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"time"

	"github.com/gitter-badger/tapper/ddtrace/ext"
	"github.com/gitter-badger/tapper/internal/eventing"
)

// annotation is one timed entry on a span (spec.md §3).
type annotation struct {
	value    annotationValue
	ts       time.Time
	endpoint *Endpoint
}

// binaryAnnotation is one typed, keyed tag on a span (spec.md §3).
type binaryAnnotation struct {
	kind     ext.BinaryAnnotationKind
	key      string
	value    interface{}
	endpoint *Endpoint
}

// spanRecord is the mutable in-actor representation of one span
// (spec.md §3). It is owned exclusively by its trace actor's goroutine;
// nothing outside that goroutine ever touches it, so unlike SpanContext
// in the teacher's spancontext.go it needs no mutex of its own.
type spanRecord struct {
	name      string
	id        SpanID
	parentID  SpanID
	hasParent bool // false means parentID is the root sentinel

	start time.Time
	end   time.Time // zero value means still open

	annotations       []annotation
	binaryAnnotations []binaryAnnotation

	async bool

	// op mirrors this span's position in the trace's span tree as a
	// parent-chain event node (internal/eventing), so a listener
	// registered on an ancestor observes every descendant's lifecycle.
	op *eventing.Operation
}

func (s *spanRecord) isOpen() bool { return s.end.IsZero() }

// applyDelta mutates the span record per the uniform delta vocabulary of
// spec.md §4.1. ts is the event's timestamp, used for annotate deltas.
func (s *spanRecord) applyDelta(d delta, ts time.Time) {
	switch v := d.(type) {
	case NameDelta:
		s.name = string(v)
	case AsyncDelta:
		s.async = true
	case AnnotateDelta:
		s.annotations = append(s.annotations, annotation{value: v.Value, ts: ts, endpoint: v.Endpoint})
	case BinaryAnnotateDelta:
		s.setBinaryAnnotation(v)
	}
}

// setBinaryAnnotation implements the "later writes on the same key
// supersede earlier ones" replacement policy from spec.md §4.1.
func (s *spanRecord) setBinaryAnnotation(v BinaryAnnotateDelta) {
	for i := range s.binaryAnnotations {
		if s.binaryAnnotations[i].key == v.Key {
			s.binaryAnnotations[i] = binaryAnnotation{kind: v.Kind, key: v.Key, value: v.Value, endpoint: v.Endpoint}
			return
		}
	}
	s.binaryAnnotations = append(s.binaryAnnotations, binaryAnnotation{kind: v.Kind, key: v.Key, value: v.Value, endpoint: v.Endpoint})
}

// spanLifecycleArgs/spanLifecycleResult are the payloads passed through
// the span's eventing.Operation start/finish events.
type spanLifecycleArgs struct {
	span *spanRecord
}

type spanLifecycleResult struct {
	span      *spanRecord
	timedOut  bool
	errored   bool
}
