// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gitter-badger/tapper/ddtrace/ext"
)

func TestApplyNameDelta(t *testing.T) {
	s := &spanRecord{}
	s.applyDelta(NameDelta("get-user"), time.Now())
	assert.Equal(t, "get-user", s.name)
}

func TestApplyAsyncDelta(t *testing.T) {
	s := &spanRecord{}
	assert.False(t, s.async)
	s.applyDelta(AsyncDelta{}, time.Now())
	assert.True(t, s.async)
}

func TestApplyAnnotateDeltaAppends(t *testing.T) {
	s := &spanRecord{}
	now := time.Now()
	s.applyDelta(AnnotateDelta{Value: ClientSendValue()}, now)
	s.applyDelta(AnnotateDelta{Value: FreeAnnotation("cache.hit")}, now)
	if assert.Len(t, s.annotations, 2) {
		assert.Equal(t, ext.ClientSend, s.annotations[0].value.wireString())
		assert.Equal(t, "cache.hit", s.annotations[1].value.wireString())
	}
}

func TestBinaryAnnotateLaterKeySupersedesEarlier(t *testing.T) {
	s := &spanRecord{}
	now := time.Now()
	s.applyDelta(BinaryAnnotateDelta{Kind: ext.KindString, Key: "http.status_code", Value: "200"}, now)
	s.applyDelta(BinaryAnnotateDelta{Kind: ext.KindString, Key: "http.status_code", Value: "500"}, now)
	if assert.Len(t, s.binaryAnnotations, 1) {
		assert.Equal(t, "500", s.binaryAnnotations[0].value)
	}
}

func TestIsOpenUntilEndStamped(t *testing.T) {
	s := &spanRecord{start: time.Now()}
	assert.True(t, s.isOpen())
	s.end = time.Now()
	assert.False(t, s.isOpen())
}
