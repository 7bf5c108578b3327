// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package log is the leveled logger the trace actor, supervisor, caller
// API, config loader and reporters use for diagnostics that must never reach the caller
// (spec.md §7: nothing on the recording path is fatal). The call shape
// (Debug/Error, printf-style) matches what ddtrace/tracer's tests expect
// of the teacher's own internal/log package; the backing implementation
// here is github.com/rs/zerolog, per Sergey-Bar-Alfred's gateway service.
package log

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var logger atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger().
		Level(zerolog.InfoLevel)
	logger.Store(&l)
}

// SetLogger replaces the package-wide logger, e.g. to raise the level or
// redirect output in tests.
func SetLogger(l zerolog.Logger) {
	logger.Store(&l)
}

// SetLevel adjusts the minimum emitted level.
func SetLevel(lvl zerolog.Level) {
	l := logger.Load().Level(lvl)
	logger.Store(&l)
}

func Debug(format string, args ...interface{}) {
	logger.Load().Debug().Msg(fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	logger.Load().Error().Msg(fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	logger.Load().Warn().Msg(fmt.Sprintf(format, args...))
}
