// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// TraceID is the pair (T, U) from spec.md §3: T is the 128-bit,
// big-endian on-the-wire trace identifier (only the low 64 bits
// populated when peers use 64-bit ids), U is a 64-bit process-local
// uniquifier that disambiguates two local traces sharing the same T.
// T is reported externally; the pair indexes the registry.
type TraceID struct {
	T [16]byte
	U uint64
}

// TraceKey is the registry index: the full (T, U) pair.
type TraceKey struct {
	T [16]byte
	U uint64
}

// Key returns the registry index for this trace id.
func (id TraceID) Key() TraceKey {
	return TraceKey{T: id.T, U: id.U}
}

// HasUpper reports whether the high 64 bits of T are non-zero, i.e.
// whether this is a 128-bit trace id rather than one propagated from a
// 64-bit-only peer.
func (id TraceID) HasUpper() bool {
	for _, b := range id.T[:8] {
		if b != 0 {
			return true
		}
	}
	return false
}

// Lower returns the low 64 bits of T.
func (id TraceID) Lower() uint64 { return binary.BigEndian.Uint64(id.T[8:]) }

// Upper returns the high 64 bits of T.
func (id TraceID) Upper() uint64 { return binary.BigEndian.Uint64(id.T[:8]) }

// Hex renders T as lowercase hex: 32 nibbles if HasUpper, else 16.
func (id TraceID) Hex() string {
	if id.HasUpper() {
		return hex.EncodeToString(id.T[:])
	}
	return hex.EncodeToString(id.T[8:])
}

// ParseTraceIDHex parses a 16- or 32-nibble lowercase hex trace id, the
// inverse of Hex. The round trip Hex(ParseTraceIDHex(s)) == s is an
// invariant from spec.md §8; this constructor never mints a U, since a
// parsed id is always either a fresh local trace id (use NewTraceID) or
// a propagated one about to be joined (use Join, which mints its own U).
func ParseTraceIDHex(s string) (TraceID, error) {
	var id TraceID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("tapper: malformed trace id %q: %w", s, err)
	}
	switch len(b) {
	case 8:
		copy(id.T[8:], b)
	case 16:
		copy(id.T[:], b)
	default:
		return id, fmt.Errorf("tapper: trace id %q must be 16 or 32 hex nibbles, got %d", s, len(s))
	}
	return id, nil
}

// newUniquifier mints a fresh process-local uniquifier from a random
// UUID's low 8 bytes.
func newUniquifier() uint64 {
	id := uuid.New()
	return binary.BigEndian.Uint64(id[8:])
}

// newRandomLower64 mints a fresh low-64-bits value for a locally
// originated trace id's T.
func newRandomLower64() uint64 {
	id := uuid.New()
	return binary.BigEndian.Uint64(id[:8])
}

// NewTraceID builds a locally originated trace id: the given lower-64
// value in T's low bytes (T's upper 64 stay zero, i.e. a 64-bit-capable
// id per spec.md §8's "64-bit trace ID → 16 hex nibbles" boundary case)
// and a freshly minted uniquifier.
func NewTraceID(lower64 uint64) TraceID {
	var id TraceID
	binary.BigEndian.PutUint64(id.T[8:], lower64)
	id.U = newUniquifier()
	return id
}

// NewTraceID128 builds a locally originated 128-bit trace id: both
// halves of T are random, plus a freshly minted uniquifier.
func NewTraceID128() TraceID {
	id := NewTraceID(newRandomLower64())
	binary.BigEndian.PutUint64(id.T[:8], newRandomLower64())
	return id
}

// SpanID is the 64-bit span identifier from spec.md §3.
type SpanID uint64

func newSpanID() SpanID {
	return SpanID(newRandomLower64())
}

const hexDigits = "0123456789abcdef"

// spanIDHexEncoded renders u as lowercase hex, left-padded with zeros to
// padding nibbles (0 means "no padding"). Adapted from
// kmrgirish-dd-trace-go/ddtrace/tracer/spancontext.go's
// spanIDHexEncoded, itself borrowed from fmt.fmtInteger in the standard
// library.
func spanIDHexEncoded(u uint64, padding int) string {
	var intbuf [16]byte
	buf := intbuf[:]
	i := len(buf)
	for u >= 16 {
		i--
		buf[i] = hexDigits[u&0xF]
		u >>= 4
	}
	i--
	buf[i] = hexDigits[u]
	for i > 0 && padding > len(buf)-i {
		i--
		buf[i] = '0'
	}
	return string(buf[i:])
}

// WireHex renders the span id the way the protocol expects it: lowercase
// hex, zero-padded to 16 nibbles (spec.md §4.4/§6).
func (s SpanID) WireHex() string { return spanIDHexEncoded(uint64(s), 16) }

// LogHex renders the span id for the identifier handle's log format
// (spec.md §4.2): lowercase hex, unpadded.
func (s SpanID) LogHex() string { return spanIDHexEncoded(uint64(s), 0) }

// ParseSpanIDHex is the inverse of WireHex/LogHex.
func ParseSpanIDHex(s string) (SpanID, error) {
	u, err := parseHexUint64(s)
	if err != nil {
		return 0, fmt.Errorf("tapper: malformed span id %q: %w", s, err)
	}
	return SpanID(u), nil
}

func parseHexUint64(s string) (uint64, error) {
	var u uint64
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		var v uint64
		switch {
		case c >= '0' && c <= '9':
			v = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			v = uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v = uint64(c-'A') + 10
		default:
			return 0, fmt.Errorf("invalid hex digit %q", c)
		}
		u = u<<4 | v
	}
	return u, nil
}
