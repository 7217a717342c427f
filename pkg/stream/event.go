package stream

import "encoding/json"

// Event is one parsed frame from a streaming response: the JSON payload
// carried by a single "data: " line. The payload schema is caller-defined;
// nothing is assumed beyond "valid JSON".
type Event struct {
	// Data holds the raw JSON payload as it appeared on the wire.
	Data json.RawMessage
}

// Decode unmarshals the event payload into v.
func (e *Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}
