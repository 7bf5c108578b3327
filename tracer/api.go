// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"context"
	"time"

	"github.com/gitter-badger/tapper/ddtrace/ext"
	"github.com/gitter-badger/tapper/internal/log"
)

// StartOption configures a new or joined trace's root span (spec.md
// §4.2's caller surface for Start/Join).
type StartOption func(*startArgs)

// Name sets the root span's name.
func Name(name string) StartOption {
	return func(a *startArgs) { a.rootName = name }
}

// Sample sets whether the trace records at all.
func Sample(sampled bool) StartOption {
	return func(a *startArgs) { a.sampled = sampled }
}

// Debug forces recording regardless of Sample.
func Debug(debug bool) StartOption {
	return func(a *startArgs) { a.debug = debug }
}

// TTL overrides the process default idle timeout for this trace.
func TTL(d time.Duration) StartOption {
	return func(a *startArgs) { a.ttl = d }
}

// WithReporter overrides the process default reporter for this trace.
func WithReporter(r Reporter) StartOption {
	return func(a *startArgs) { a.reporter = r }
}

// WithEndpoint sets the local endpoint stamped onto this trace's
// implicit annotations.
func WithEndpoint(e *Endpoint) StartOption {
	return func(a *startArgs) { a.endpoint = e }
}

// AsServer marks the root span as the server side of an RPC, adding the
// implicit sr annotation at creation; no ss is ever added (spec.md §4.1).
func AsServer() StartOption {
	return func(a *startArgs) { a.kind = kindServer }
}

// AsClient marks the root span as the client side of an RPC, adding the
// implicit cs annotation at creation; no cr is ever added (spec.md §4.1).
func AsClient() StartOption {
	return func(a *startArgs) { a.kind = kindClient }
}

// Remote names the peer endpoint on the other end of this trace's root
// span, adding a boolean binary annotation at creation (spec.md §4.1's
// "Initial content": sa for a client root, ca for a server root).
func Remote(peer *Endpoint) StartOption {
	return func(a *startArgs) { a.remoteEndpoint = peer }
}

// WithAnnotations attaches extra deltas to the root span at creation
// time, applied after any implicit cs/sr annotation.
func WithAnnotations(deltas ...delta) StartOption {
	return func(a *startArgs) { a.annotations = append(a.annotations, deltas...) }
}

// Start begins a brand-new, locally originated trace (spec.md §4.2). The
// returned Handle is Ignore() if Sample(false) leaves the trace
// unsampled and Debug is not set, matching the "operations on an
// unsampled, non-debug handle never touch the registry" rule — even then
// a real trace id is not minted, since nothing will ever read it.
func Start(ctx context.Context, opts ...StartOption) Handle {
	cfg := CurrentProcessConfig()
	args := startArgs{
		rootSpanID: newSpanID(),
		sampled:    true,
		ttl:        cfg.DefaultTTL,
		reporter:   cfg.Reporter,
		endpoint:   &Endpoint{IPv4: cfg.IPv4, ServiceName: cfg.ServiceName},
	}
	for _, opt := range opts {
		opt(&args)
	}
	if !args.sampled && !args.debug {
		return Ignore()
	}
	args.traceID = NewTraceID128()
	globalSupervisor.Start(ctx, args)
	return newHandle(args.traceID, args.rootSpanID, args.sampled, args.debug)
}

// Join begins a trace seeded from a propagated identifier (spec.md
// §4.2): the trace id and parent span id come from the remote peer, and
// sampled/debug are whatever the peer decided, honoring the propagated
// sampling decision rather than resampling locally.
func Join(ctx context.Context, traceID TraceID, parentSpanID SpanID, sampled, debug bool, opts ...StartOption) Handle {
	if !sampled && !debug {
		return Ignore()
	}
	cfg := CurrentProcessConfig()
	traceID.U = newUniquifier()
	args := startArgs{
		traceID:    traceID,
		rootSpanID: newSpanID(),
		parentID:   parentSpanID,
		hasParent:  true,
		sampled:    sampled,
		debug:      debug,
		ttl:        cfg.DefaultTTL,
		reporter:   cfg.Reporter,
		endpoint:   &Endpoint{IPv4: cfg.IPv4, ServiceName: cfg.ServiceName},
		kind:       kindServer,
	}
	for _, opt := range opts {
		opt(&args)
	}
	globalSupervisor.Start(ctx, args)
	return newHandle(args.traceID, args.rootSpanID, args.sampled, args.debug)
}

// SpanOption configures a child span at StartSpan/FinishSpan/UpdateSpan
// time.
type SpanOption func(*spanOptions)

type spanOptions struct {
	name   string
	ts     time.Time
	deltas []delta
}

// SpanName sets the child span's name (StartSpan only).
func SpanName(name string) SpanOption {
	return func(o *spanOptions) { o.name = name }
}

// Local tags the span with the given local component name, a string
// binary annotation keyed lc (spec.md §6's startSpan "local" option).
func Local(component string) SpanOption {
	return func(o *spanOptions) {
		o.deltas = append(o.deltas, BinaryAnnotateDelta{Kind: ext.KindString, Key: ext.LocalComponent, Value: component})
	}
}

// At overrides the event's timestamp; defaults to time.Now() when unset.
func At(ts time.Time) SpanOption {
	return func(o *spanOptions) { o.ts = ts }
}

// Annotations attaches deltas to the event.
func Annotations(deltas ...delta) SpanOption {
	return func(o *spanOptions) { o.deltas = append(o.deltas, deltas...) }
}

// Async marks the current span as completing asynchronously (spec.md
// §4.1). Passed to UpdateSpan (on any span), to Finish, or to FinishSpan
// on the root, it also makes the trace's next root finish provisional;
// passed to StartSpan, or to FinishSpan on a child, it only flags that
// span.
func Async() SpanOption {
	return func(o *spanOptions) { o.deltas = append(o.deltas, AsyncDelta{}) }
}

func buildSpanOptions(opts []SpanOption) spanOptions {
	o := spanOptions{ts: time.Now()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ts.IsZero() {
		o.ts = time.Now()
	}
	return o
}

// StartSpan opens a new child span under h's current span, returning a
// handle with the child pushed on as current (spec.md §4.2). A no-op on
// an inactive handle.
func StartSpan(h Handle, opts ...SpanOption) Handle {
	if !h.active() {
		return h
	}
	o := buildSpanOptions(opts)
	id := newSpanID()
	actor, ok := lookupActor(h.traceID)
	if !ok {
		log.Warn("tapper: StartSpan on unknown trace %s", h.traceID.Hex())
		return h.Push(id)
	}
	reply := make(chan SpanID, 1)
	actor.post(startSpanEvent{id: id, parentID: h.current, name: o.name, ts: o.ts, deltas: o.deltas, reply: reply})
	return h.Push(id)
}

// UpdateSpan applies deltas to h's current span without changing h
// itself (spec.md §4.2). A no-op on an inactive handle.
func UpdateSpan(h Handle, opts ...SpanOption) {
	if !h.active() {
		return
	}
	o := buildSpanOptions(opts)
	actor, ok := lookupActor(h.traceID)
	if !ok {
		return
	}
	actor.post(updateEvent{id: h.current, ts: o.ts, deltas: o.deltas})
}

// FinishSpan closes h's current span and returns a handle with it popped
// back to the parent (spec.md §4.2). Finishing the root span this way is
// equivalent to calling Finish. A no-op on an inactive handle.
func FinishSpan(h Handle, opts ...SpanOption) Handle {
	if !h.active() {
		return h
	}
	o := buildSpanOptions(opts)
	actor, ok := lookupActor(h.traceID)
	if ok {
		if h.current == actor.rootSpanID {
			actor.post(finishTraceEvent{ts: o.ts, deltas: o.deltas})
		} else {
			actor.post(finishSpanEvent{id: h.current, ts: o.ts, deltas: o.deltas})
		}
	}
	return h.Pop()
}

// Finish closes the trace's root span, marking the whole trace complete
// unless an Async delta elsewhere is still holding it open (spec.md
// §4.1). A no-op on an inactive handle.
func Finish(h Handle, opts ...SpanOption) {
	if !h.active() {
		return
	}
	o := buildSpanOptions(opts)
	actor, ok := lookupActor(h.traceID)
	if !ok {
		return
	}
	actor.post(finishTraceEvent{ts: o.ts, deltas: o.deltas})
}
