// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"time"

	"github.com/gitter-badger/tapper/ddtrace/ext"
	"github.com/gitter-badger/tapper/internal/eventing"
	"github.com/gitter-badger/tapper/internal/log"
)

// startArgs is the retained constructor state for one trace actor. The
// supervisor keeps a copy so a transient restart (spec.md §5) can rebuild
// an equivalent actor from scratch after a panic.
type startArgs struct {
	traceID        TraceID
	rootName       string
	rootSpanID     SpanID
	parentID       SpanID
	hasParent      bool
	sampled        bool
	debug          bool
	ttl            time.Duration
	reporter       Reporter
	endpoint       *Endpoint
	remoteEndpoint *Endpoint
	kind           rootKind
	annotations    []delta
}

type rootKind int

const (
	kindLocal rootKind = iota
	kindServer
	kindClient
)

// actorEvent is the mailbox message vocabulary a trace actor's run loop
// consumes (spec.md §4.1/§5). Every field needed to apply the event is
// carried on the event itself; the actor never reaches back into caller
// memory.
type actorEvent interface{ isActorEvent() }

type startSpanEvent struct {
	id        SpanID
	parentID  SpanID
	name      string
	ts        time.Time
	deltas    []delta
	reply     chan SpanID
}

func (startSpanEvent) isActorEvent() {}

type updateEvent struct {
	id     SpanID
	ts     time.Time
	deltas []delta
}

func (updateEvent) isActorEvent() {}

type finishSpanEvent struct {
	id     SpanID
	ts     time.Time
	deltas []delta
}

func (finishSpanEvent) isActorEvent() {}

// finishTraceEvent is the caller's explicit Finish on the root span, or a
// synthetic event the supervisor posts when it observes the caller's
// context cancelled before the trace finished on its own (spec.md §5's
// caller-crash handling).
type finishTraceEvent struct {
	ts          time.Time
	deltas      []delta
	callerCrash bool
}

func (finishTraceEvent) isActorEvent() {}

// traceActor owns every spanRecord of one trace. It is never touched
// from outside its own goroutine; all external interaction happens by
// posting actorEvent values to its mailbox (spec.md §5's per-trace actor
// design).
type traceActor struct {
	args startArgs

	spans      map[SpanID]*spanRecord
	spanOps    map[SpanID]*eventing.Operation
	order      []SpanID
	rootSpanID SpanID
	rootOp     *eventing.Operation

	// finishedOrder collects every spanRecord as it actually finishes, in
	// finish order, via the root operation's OnFinish hook (fed by every
	// descendant through the eventing parent-chain walk). sweep encodes
	// this rather than a.order so the batch handed to the reporter is the
	// one the hooks actually observed finishing, not a parallel recount.
	finishedOrder []*spanRecord

	reporter Reporter
	endpoint *Endpoint
	ttl      time.Duration

	mailbox chan actorEvent
	done    chan struct{}

	registry *Registry
	key      TraceKey

	terminating bool
	// asyncPending is set by an Async delta and consumed by the very next
	// finishTrace: that finish is treated as provisional (the trace stays
	// open) and only the finish after it can actually close the trace.
	// This lets a caller mark a span's completion as arriving out of band
	// without racing the root's own Finish call (spec.md §4.1).
	asyncPending bool
	lastActivity time.Time
}

const mailboxBuffer = 64

func newTraceActor(args startArgs, registry *Registry) *traceActor {
	a := &traceActor{
		args:       args,
		spans:      make(map[SpanID]*spanRecord),
		spanOps:    make(map[SpanID]*eventing.Operation),
		rootSpanID: args.rootSpanID,
		reporter:   args.reporter,
		endpoint:   args.endpoint,
		ttl:        args.ttl,
		mailbox:    make(chan actorEvent, mailboxBuffer),
		done:       make(chan struct{}),
		registry:   registry,
		key:        args.traceID.Key(),
	}
	a.seedRoot()
	return a
}

// seedRoot creates the root span with its implicit cs/sr annotation per
// spec.md §4.1, then applies any StartOption-supplied annotations on top.
func (a *traceActor) seedRoot() {
	now := time.Now()
	root := &spanRecord{
		name:      a.args.rootName,
		id:        a.args.rootSpanID,
		parentID:  a.args.parentID,
		hasParent: a.args.hasParent,
		start:     now,
	}
	switch a.args.kind {
	case kindServer:
		root.annotations = append(root.annotations, annotation{value: ServerRecvValue(), ts: now, endpoint: a.endpoint})
	case kindClient:
		root.annotations = append(root.annotations, annotation{value: ClientSendValue(), ts: now, endpoint: a.endpoint})
	}
	if a.args.remoteEndpoint != nil {
		key := ext.ServerAddr
		if a.args.kind == kindServer {
			key = ext.ClientAddr
		}
		root.setBinaryAnnotation(BinaryAnnotateDelta{Kind: ext.KindBool, Key: key, Value: true, Endpoint: a.args.remoteEndpoint})
	}
	for _, d := range a.args.annotations {
		root.applyDelta(d, now)
	}
	a.spans[root.id] = root
	a.order = append(a.order, root.id)
	// rootOp is a trace-level operation that is never finished, so its
	// listeners keep firing for spans that finish after the root span.
	a.rootOp = eventing.NewOperation(nil)
	root.op = eventing.NewOperation(a.rootOp)
	a.spanOps[root.id] = root.op
	a.rootOp.OnFinish(func(_ *eventing.Operation, res spanLifecycleResult) {
		a.finishedOrder = append(a.finishedOrder, res.span)
	})
	if a.args.debug {
		a.installDebugListeners()
	}
	root.op.Start(spanLifecycleArgs{span: root})
	a.lastActivity = now
}

// installDebugListeners registers root-level start/finish hooks so every
// descendant span's lifecycle is logged without the actor threading a
// callback through each StartSpan/FinishSpan call by hand — the same
// parent-chain fan-out appsec/dyngo uses to let one outer listener
// observe every nested operation.
func (a *traceActor) installDebugListeners() {
	traceID := a.args.traceID
	a.rootOp.OnStart(func(_ *eventing.Operation, args spanLifecycleArgs) {
		log.Debug("tapper: span start trace=%s span=%s name=%q", traceID.Hex(), args.span.id.LogHex(), args.span.name)
	})
	a.rootOp.OnFinish(func(_ *eventing.Operation, res spanLifecycleResult) {
		log.Debug("tapper: span finish trace=%s span=%s timedOut=%v", traceID.Hex(), res.span.id.LogHex(), res.timedOut)
	})
}

// post delivers ev to the actor's mailbox, returning false if the actor
// has already terminated (spec.md §5: a message to a dead actor is
// silently dropped, never a panic on a closed channel).
func (a *traceActor) post(ev actorEvent) bool {
	select {
	case a.mailbox <- ev:
		return true
	case <-a.done:
		return false
	}
}

// run is the trace actor's goroutine body: a single-threaded FIFO event
// loop with an idle-TTL timer, per spec.md §5.
func (a *traceActor) run() {
	timer := time.NewTimer(a.ttl)
	defer timer.Stop()
	defer close(a.done)

	for {
		select {
		case ev, ok := <-a.mailbox:
			if !ok {
				return
			}
			a.lastActivity = time.Now()
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			if a.handle(ev) {
				a.sweep(false)
				return
			}
			timer.Reset(a.ttl)
		case <-timer.C:
			a.sweep(false)
			return
		}
	}
}

// handle applies one event to the actor's state, returning true when the
// trace is now fully finished and should sweep immediately.
func (a *traceActor) handle(ev actorEvent) bool {
	switch e := ev.(type) {
	case startSpanEvent:
		a.startSpan(e)
		return false
	case updateEvent:
		a.update(e)
		return false
	case finishSpanEvent:
		a.finishSpan(e)
		return a.rootFinishedAndClosed()
	case finishTraceEvent:
		return a.finishTrace(e)
	default:
		return false
	}
}

func (a *traceActor) startSpan(e startSpanEvent) {
	s := &spanRecord{
		name:      e.name,
		id:        e.id,
		parentID:  e.parentID,
		hasParent: true,
		start:     e.ts,
	}
	for _, d := range e.deltas {
		s.applyDelta(d, e.ts)
	}
	a.spans[s.id] = s
	a.order = append(a.order, s.id)

	parentOp := a.rootOp
	if pop, ok := a.spanOps[e.parentID]; ok {
		parentOp = pop
	}
	op := eventing.NewOperation(parentOp)
	s.op = op
	a.spanOps[s.id] = op
	op.Start(spanLifecycleArgs{span: s})

	if e.reply != nil {
		e.reply <- s.id
	}
}

func (a *traceActor) update(e updateEvent) {
	s, ok := a.spans[e.id]
	if !ok {
		log.Warn("tapper: update for unknown span %s on trace %s", e.id.LogHex(), a.args.traceID.Hex())
		return
	}
	for _, d := range e.deltas {
		s.applyDelta(d, e.ts)
		if _, isAsync := d.(AsyncDelta); isAsync {
			a.asyncPending = true
		}
	}
}

func (a *traceActor) finishSpan(e finishSpanEvent) {
	s, ok := a.spans[e.id]
	if !ok || !s.isOpen() {
		return
	}
	for _, d := range e.deltas {
		s.applyDelta(d, e.ts)
	}
	s.end = e.ts
	if op, ok := a.spanOps[e.id]; ok {
		op.Finish(spanLifecycleResult{span: s})
	}
}

// finishTrace handles an explicit Finish on the root span, or a caller
// crash. It returns true when the actor should sweep and terminate now.
func (a *traceActor) finishTrace(e finishTraceEvent) bool {
	if e.callerCrash {
		return a.callerCrashSweep()
	}
	root, ok := a.spans[a.rootSpanID]
	if !ok {
		return true
	}
	for _, d := range e.deltas {
		root.applyDelta(d, e.ts)
		if _, isAsync := d.(AsyncDelta); isAsync {
			a.asyncPending = true
		}
	}
	if a.asyncPending {
		// An Async delta — applied earlier through an update on any span
		// or arriving with this very finish — makes this finish
		// provisional: the trace
		// stays open for the real completion that follows, per spec.md
		// §4.1. Only one finish is swallowed per Async delta.
		a.asyncPending = false
		return false
	}
	if root.isOpen() {
		root.end = e.ts
	}
	if rop, ok := a.spanOps[a.rootSpanID]; ok {
		rop.Finish(spanLifecycleResult{span: root})
	}
	return a.rootFinishedAndClosed()
}

func (a *traceActor) rootFinishedAndClosed() bool {
	root, ok := a.spans[a.rootSpanID]
	if !ok || root.isOpen() {
		return false
	}
	return a.allSpansClosed()
}

func (a *traceActor) allSpansClosed() bool {
	for _, id := range a.order {
		if a.spans[id].isOpen() {
			return false
		}
	}
	return true
}

func (a *traceActor) callerCrashSweep() bool {
	now := time.Now()
	root, ok := a.spans[a.rootSpanID]
	if ok {
		root.annotations = append(root.annotations, annotation{value: errorValue(), ts: now, endpoint: a.endpoint})
	}
	return true
}

// sweep closes every still-open span with a timeout annotation, encodes
// the trace, hands it to the reporter, and deregisters the actor
// (spec.md §4.1 "terminal sweep", §5 TTL expiry and caller-crash paths).
func (a *traceActor) sweep(_ bool) {
	if a.terminating {
		return
	}
	a.terminating = true
	now := time.Now()
	for _, id := range a.order {
		s := a.spans[id]
		if s.isOpen() {
			s.annotations = append(s.annotations, annotation{value: timeoutValue(), ts: now, endpoint: a.endpoint})
			s.end = now
			if op, ok := a.spanOps[id]; ok {
				op.Finish(spanLifecycleResult{span: s, timedOut: true})
			}
		}
	}

	batch := EncodeTrace(a.args.traceID, a.finishedOrder, a.args.debug)
	a.reportSafely(batch)

	if a.registry != nil {
		a.registry.deregister(a.key)
	}
}

// reportSafely calls the reporter's Ingest, recovering and logging any
// panic rather than letting a misbehaving Reporter take the actor down
// (spec.md §6: a reporter failure must never affect the caller's control
// flow, since by the time a batch reaches it the caller has already
// moved on).
func (a *traceActor) reportSafely(batch []WireSpan) {
	if a.reporter == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("tapper: reporter panic for trace %s: %v", a.args.traceID.Hex(), r)
		}
	}()
	a.reporter.Ingest(batch)
}
