// Package rpcjson provides a connect codec that serializes plain Go structs as JSON.
package rpcjson

import (
	"encoding/json"
	"fmt"
)

// Name is registered in place of connect's protojson codec.
const Name = "json"

// Codec implements connect.Codec with encoding/json.
type Codec struct{}

func (Codec) Name() string {
	return Name
}

func (Codec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", msg, err)
	}
	return data, nil
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", msg, err)
	}
	return nil
}
