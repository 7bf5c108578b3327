// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetenvFallback(t *testing.T) {
	t.Setenv("TAPPER_TEST_UNSET", "")
	assert.Equal(t, "fallback", getenv("TAPPER_TEST_UNSET", "fallback"))
}

func TestGetenvOverride(t *testing.T) {
	t.Setenv("TAPPER_TEST_SET", "custom")
	assert.Equal(t, "custom", getenv("TAPPER_TEST_SET", "fallback"))
}

func TestGetenvDurationParsesMilliseconds(t *testing.T) {
	t.Setenv("TAPPER_TEST_TTL", "5000")
	assert.Equal(t, 5*time.Second, getenvDuration("TAPPER_TEST_TTL", time.Second))
}

func TestGetenvDurationFallsBackOnGarbage(t *testing.T) {
	t.Setenv("TAPPER_TEST_TTL_BAD", "not-a-number")
	assert.Equal(t, time.Second, getenvDuration("TAPPER_TEST_TTL_BAD", time.Second))
}

func TestLoadProcessConfigDefaultsTTL(t *testing.T) {
	t.Setenv("TAPPER_DEFAULT_TTL", "")
	cfg := LoadProcessConfig()
	assert.Equal(t, defaultTTL, cfg.DefaultTTL)
	assert.NotNil(t, cfg.Reporter)
}
