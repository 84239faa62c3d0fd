package measurements

import "go.opentelemetry.io/otel/attribute"

const attrKeyProtocol = "protocol"

// Must panics if err is non-nil, otherwise returns v.
func Must[V any](v V, err error) V {
	if err != nil {
		panic(err)
	}
	return v
}

// AttrProtocol labels a measurement with the name of the simulated protocol.
func AttrProtocol(name string) attribute.KeyValue {
	return attribute.String(attrKeyProtocol, name)
}
