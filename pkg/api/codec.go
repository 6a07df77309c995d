package api

import "encoding/json"

// JSONCodec marshals messages with encoding/json. It registers under the
// name "json" so Connect serves and sends application/json.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
