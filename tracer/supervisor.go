// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"context"

	"github.com/gitter-badger/tapper/internal/log"
)

// Supervisor spawns and restarts trace actors under a "transient" policy
// (spec.md §5): a panicking actor is restarted from its original start
// arguments; an actor that exits normally (it finished its sweep) is
// never restarted. A caller's context going Done before the trace
// finishes is treated the same as a crash — Go has no built-in
// bidirectional process link, so a goroutine watching ctx.Done() stands
// in for the monitor the original design assumes.
type Supervisor struct {
	registry *Registry
}

// NewSupervisor builds a supervisor bound to registry.
func NewSupervisor(registry *Registry) *Supervisor {
	return &Supervisor{registry: registry}
}

// Start spawns a new trace actor for args under ctx and registers it.
// The actor's goroutine (and its caller-exit monitor, when ctx can be
// cancelled) outlive this call; Start returns as soon as the actor has
// seeded its root span.
func (sv *Supervisor) Start(ctx context.Context, args startArgs) *traceActor {
	actor := sv.spawn(args)
	sv.registry.register(args.traceID.Key(), actor)
	go sv.watch(ctx, actor)
	go sv.runSupervised(args, actor)
	return actor
}

func (sv *Supervisor) spawn(args startArgs) *traceActor {
	return newTraceActor(args, sv.registry)
}

// runSupervised runs actor.run(), restarting a fresh actor from args on
// panic. A normal return (actor finished and swept itself) ends
// supervision with no restart.
func (sv *Supervisor) runSupervised(args startArgs, actor *traceActor) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("tapper: trace actor %s panicked, restarting: %v", args.traceID.Hex(), r)
			fresh := sv.spawn(args)
			sv.registry.register(args.traceID.Key(), fresh)
			go sv.runSupervised(args, fresh)
		}
	}()
	actor.run()
}

// watch posts a synthetic caller-crash finishTraceEvent if ctx is
// cancelled before the actor terminates on its own.
func (sv *Supervisor) watch(ctx context.Context, actor *traceActor) {
	if ctx == nil || ctx.Done() == nil {
		return
	}
	select {
	case <-ctx.Done():
		actor.post(finishTraceEvent{callerCrash: true})
	case <-actor.done:
	}
}
