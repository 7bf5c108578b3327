// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package ext contains the wire-level annotation and binary-annotation
// string constants used by the Zipkin v1 protocol this module speaks.
package ext

// Shorthand annotation values (spec.md §4.1/§6). These are the only
// symbols the wire encoder ever expands from a tagged shorthand value;
// everything else passes through as a free-form string.
const (
	ClientSend   = "cs"
	ClientRecv   = "cr"
	ServerSend   = "ss"
	ServerRecv   = "sr"
	WireSend     = "ws"
	WireRecv     = "wr"
	AnnTimeout   = "timeout"
	AnnError     = "error"
)

// Binary-annotation keys.
const (
	// LocalComponent tags a span with a free-form local component name;
	// set automatically by StartSpan's Local option.
	LocalComponent = "lc"

	// ServerAddr marks a boolean binary annotation identifying the remote
	// service a client span talks to.
	ServerAddr = "sa"

	// ClientAddr marks a boolean binary annotation identifying the remote
	// client a server span was invoked by.
	ClientAddr = "ca"

	// HTTPMethod specifies the HTTP method used in a span.
	HTTPMethod = "http.method"

	// HTTPPath is the request path of an HTTP span.
	HTTPPath = "http.path"

	// HTTPStatusCode sets the HTTP status code as a tag.
	HTTPStatusCode = "http.status_code"

	// HTTPURL sets the full HTTP URL for a span.
	HTTPURL = "http.url"
)

// BinaryAnnotationKind enumerates the typed values a binary annotation
// may carry, per spec.md §3.
type BinaryAnnotationKind int

const (
	KindString BinaryAnnotationKind = iota
	KindBool
	KindInt16
	KindInt32
	KindInt64
	KindDouble
	KindBytes
)

// WireName renders the kind the way the wire encoder does: uppercase,
// per spec.md §4.4 ("type rendered uppercase").
func (k BinaryAnnotationKind) WireName() string {
	switch k {
	case KindString:
		return "STRING"
	case KindBool:
		return "BOOL"
	case KindInt16:
		return "I16"
	case KindInt32:
		return "I32"
	case KindInt64:
		return "I64"
	case KindDouble:
		return "DOUBLE"
	case KindBytes:
		return "BYTES"
	default:
		return "STRING"
	}
}
