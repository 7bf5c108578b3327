// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointToWireOmitsUnsetFields(t *testing.T) {
	e := &Endpoint{ServiceName: "checkout"}
	w := e.toWire()
	require.NotNil(t, w)
	assert.Equal(t, "checkout", w.ServiceName)
	assert.Empty(t, w.IPv4)
	assert.Empty(t, w.IPv6)
	assert.Zero(t, w.Port)
}

func TestEndpointToWireIPv4Only(t *testing.T) {
	e := &Endpoint{IPv4: net.ParseIP("10.0.0.1"), ServiceName: "svc"}
	w := e.toWire()
	require.NotNil(t, w)
	assert.Equal(t, "10.0.0.1", w.IPv4)
	assert.Empty(t, w.IPv6)
}

func TestEndpointToWireIPv6Only(t *testing.T) {
	e := &Endpoint{IPv6: net.ParseIP("::1"), ServiceName: "svc"}
	w := e.toWire()
	require.NotNil(t, w)
	assert.Empty(t, w.IPv4)
	assert.Equal(t, "::1", w.IPv6)
}

func TestNilEndpointToWireIsNil(t *testing.T) {
	var e *Endpoint
	assert.Nil(t, e.toWire())
}

func TestEmptyEndpointToWireIsNil(t *testing.T) {
	e := &Endpoint{}
	assert.Nil(t, e.toWire())
}
