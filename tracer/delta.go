// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import "github.com/gitter-badger/tapper/ddtrace/ext"

// shorthandSymbol is the tagged variant design note §9 calls for: a
// standard Zipkin v1 annotation value stays a symbol until encode time,
// so a reader of the span record can tell a standard value apart from a
// free-form one.
type shorthandSymbol int

const (
	symNone shorthandSymbol = iota
	symClientSend
	symClientRecv
	symServerSend
	symServerRecv
	symWireSend
	symWireRecv
	symTimeout
	symError
)

// annotationValue is a timed annotation's value: either one of the
// standard shorthand symbols or a free-form string. The span record keeps
// the symbol; the expansion table is wireString below, which only the
// encoder (encoder.go) calls.
type annotationValue struct {
	shorthand shorthandSymbol
	free      string
}

func (v annotationValue) wireString() string {
	switch v.shorthand {
	case symClientSend:
		return ext.ClientSend
	case symClientRecv:
		return ext.ClientRecv
	case symServerSend:
		return ext.ServerSend
	case symServerRecv:
		return ext.ServerRecv
	case symWireSend:
		return ext.WireSend
	case symWireRecv:
		return ext.WireRecv
	case symTimeout:
		return ext.AnnTimeout
	case symError:
		return ext.AnnError
	default:
		return v.free
	}
}

// Shorthand annotation constructors (spec.md §4.1: client_send → cs,
// client_recv → cr, server_send → ss, server_recv → sr, wire_send → ws,
// wire_recv → wr).
func ClientSendValue() annotationValue { return annotationValue{shorthand: symClientSend} }
func ClientRecvValue() annotationValue { return annotationValue{shorthand: symClientRecv} }
func ServerSendValue() annotationValue { return annotationValue{shorthand: symServerSend} }
func ServerRecvValue() annotationValue { return annotationValue{shorthand: symServerRecv} }
func WireSendValue() annotationValue   { return annotationValue{shorthand: symWireSend} }
func WireRecvValue() annotationValue   { return annotationValue{shorthand: symWireRecv} }
func timeoutValue() annotationValue    { return annotationValue{shorthand: symTimeout} }
func errorValue() annotationValue      { return annotationValue{shorthand: symError} }

// FreeAnnotation wraps an arbitrary string annotation value.
func FreeAnnotation(s string) annotationValue { return annotationValue{free: s} }

// delta is the uniform mutation vocabulary from spec.md §4.1, shared by
// StartSpan's initial annotations, UpdateSpan's delta list, and
// FinishSpan's attached annotations.
type delta interface{ isDelta() }

// NameDelta replaces the span's name.
type NameDelta string

func (NameDelta) isDelta() {}

// AsyncDelta marks the span async. Applied through an update on any span,
// or with the root's finish, it also makes the next root finish
// provisional (see Async).
type AsyncDelta struct{}

func (AsyncDelta) isDelta() {}

// AnnotateDelta appends a timed annotation.
type AnnotateDelta struct {
	Value    annotationValue
	Endpoint *Endpoint
}

func (AnnotateDelta) isDelta() {}

// Annotate builds an AnnotateDelta, the public constructor for the
// {annotate, (value, endpoint?)} delta of spec.md §4.1.
func Annotate(value annotationValue, endpoint *Endpoint) delta {
	return AnnotateDelta{Value: value, Endpoint: endpoint}
}

// BinaryAnnotateDelta appends or replaces a keyed tag on the span; later
// writes on the same key supersede earlier ones (spec.md §4.1).
type BinaryAnnotateDelta struct {
	Kind     ext.BinaryAnnotationKind
	Key      string
	Value    interface{}
	Endpoint *Endpoint
}

func (BinaryAnnotateDelta) isDelta() {}

// BinaryAnnotate builds a BinaryAnnotateDelta, the public constructor
// for the {binary_annotate, (type, key, value, endpoint?)} delta.
func BinaryAnnotate(kind ext.BinaryAnnotationKind, key string, value interface{}, endpoint *Endpoint) delta {
	return BinaryAnnotateDelta{Kind: kind, Key: key, Value: value, Endpoint: endpoint}
}
