// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"sync"
	"sync/atomic"
)

var (
	globalRegistry   = NewRegistry()
	globalSupervisor = NewSupervisor(globalRegistry)
	globalConfig     atomic.Pointer[ProcessConfig]
	configOnce       sync.Once
)

// CurrentProcessConfig returns the active process configuration, loading
// it from the environment on first use.
func CurrentProcessConfig() *ProcessConfig {
	configOnce.Do(func() {
		globalConfig.Store(LoadProcessConfig())
	})
	return globalConfig.Load()
}

// SetProcessConfig installs cfg as the active process configuration,
// overriding whatever LoadProcessConfig would otherwise produce. Intended
// for tests and for processes that build configuration programmatically.
func SetProcessConfig(cfg *ProcessConfig) {
	configOnce.Do(func() {})
	globalConfig.Store(cfg)
}

func lookupActor(id TraceID) (*traceActor, bool) {
	return globalRegistry.lookup(id.Key())
}
