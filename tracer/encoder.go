// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

// WireSpan is the external protocol span emitted to a Reporter, per the
// field table in spec.md §4.4.
type WireSpan struct {
	TraceID           string                 `json:"traceId" msgpack:"traceId"`
	ID                string                 `json:"id" msgpack:"id"`
	ParentID          string                 `json:"parentId,omitempty" msgpack:"parentId,omitempty"`
	Name              string                 `json:"name" msgpack:"name"`
	Timestamp         int64                  `json:"timestamp" msgpack:"timestamp"`
	Duration          int64                  `json:"duration,omitempty" msgpack:"duration,omitempty"`
	Debug             bool                   `json:"debug" msgpack:"debug"`
	Annotations       []WireAnnotation       `json:"annotations" msgpack:"annotations"`
	BinaryAnnotations []WireBinaryAnnotation `json:"binaryAnnotations" msgpack:"binaryAnnotations"`
}

// WireAnnotation is one timed annotation on the wire.
type WireAnnotation struct {
	Value     string        `json:"value" msgpack:"value"`
	Timestamp int64         `json:"timestamp" msgpack:"timestamp"`
	Endpoint  *wireEndpoint `json:"endpoint,omitempty" msgpack:"endpoint,omitempty"`
}

// WireBinaryAnnotation is one typed, keyed tag on the wire.
type WireBinaryAnnotation struct {
	Key      string        `json:"key" msgpack:"key"`
	Value    interface{}   `json:"value" msgpack:"value"`
	Type     string        `json:"type" msgpack:"type"`
	Endpoint *wireEndpoint `json:"endpoint,omitempty" msgpack:"endpoint,omitempty"`
}

// EncodeTrace converts one trace's finished span tree into the external
// protocol span list, per spec.md §4.4. spans should be in a stable
// order (the actor hands them in the order they finished); the encoder
// does not reorder them.
func EncodeTrace(traceID TraceID, spans []*spanRecord, debug bool) []WireSpan {
	out := make([]WireSpan, 0, len(spans))
	for _, s := range spans {
		out = append(out, encodeSpan(traceID, s, debug))
	}
	return out
}

func encodeSpan(traceID TraceID, s *spanRecord, debug bool) WireSpan {
	name := s.name
	if name == "" {
		name = "unknown"
	}
	w := WireSpan{
		TraceID:           traceID.Hex(),
		ID:                s.id.WireHex(),
		Name:              name,
		Timestamp:         s.start.UnixMicro(),
		Debug:             debug,
		Annotations:       make([]WireAnnotation, 0, len(s.annotations)),
		BinaryAnnotations: make([]WireBinaryAnnotation, 0, len(s.binaryAnnotations)),
	}
	if s.hasParent {
		w.ParentID = s.parentID.WireHex()
	}
	if !s.end.IsZero() {
		w.Duration = s.end.UnixMicro() - s.start.UnixMicro()
	}
	for _, a := range s.annotations {
		w.Annotations = append(w.Annotations, WireAnnotation{
			Value:     a.value.wireString(),
			Timestamp: a.ts.UnixMicro(),
			Endpoint:  a.endpoint.toWire(),
		})
	}
	for _, ba := range s.binaryAnnotations {
		w.BinaryAnnotations = append(w.BinaryAnnotations, WireBinaryAnnotation{
			Key:      ba.key,
			Value:    ba.value,
			Type:     ba.kind.WireName(),
			Endpoint: ba.endpoint.toWire(),
		})
	}
	return w
}
