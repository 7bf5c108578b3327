// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import "net"

// Endpoint names a network peer, per spec.md §4.4/GLOSSARY: optional
// IPv4, optional IPv6, optional port, and a service name. A peer with
// only one IP family set must round-trip without the other appearing on
// the wire (spec.md §8 round-trip law).
type Endpoint struct {
	IPv4        net.IP
	IPv6        net.IP
	Port        uint16
	ServiceName string
}

// wireEndpoint is the JSON projection of Endpoint: unset fields are
// omitted, never emitted as null or zero values (spec.md §4.4).
type wireEndpoint struct {
	IPv4        string `json:"ipv4,omitempty"`
	IPv6        string `json:"ipv6,omitempty"`
	Port        uint16 `json:"port,omitempty"`
	ServiceName string `json:"serviceName,omitempty"`
}

func (e *Endpoint) toWire() *wireEndpoint {
	if e == nil {
		return nil
	}
	w := &wireEndpoint{ServiceName: e.ServiceName, Port: e.Port}
	if v4 := e.IPv4.To4(); v4 != nil {
		w.IPv4 = v4.String()
	}
	if e.IPv6 != nil {
		if v6 := e.IPv6.To16(); v6 != nil && v6.To4() == nil {
			w.IPv6 = v6.String()
		}
	}
	if w.IPv4 == "" && w.IPv6 == "" && w.Port == 0 && w.ServiceName == "" {
		return nil
	}
	return w
}
