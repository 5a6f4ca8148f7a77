package types

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// PayloadKind tells how a response body was parsed.
type PayloadKind string

const (
	PayloadJSON PayloadKind = "json"
	PayloadText PayloadKind = "text"
)

// displayAPI renders structured payloads with sorted keys and no HTML escaping.
var displayAPI = sonic.Config{SortMapKeys: true}.Froze()

// Payload is a normalized server response: structured data or raw text.
type Payload struct {
	Kind PayloadKind `json:"kind"`
	JSON any         `json:"json,omitempty"`
	Text string      `json:"text,omitempty"`
}

func JSONPayload(v any) Payload {
	return Payload{Kind: PayloadJSON, JSON: v}
}

func TextPayload(s string) Payload {
	return Payload{Kind: PayloadText, Text: s}
}

// Display returns structured data as two-space indented JSON and text verbatim.
func (p Payload) Display() string {
	if p.Kind != PayloadJSON {
		return p.Text
	}
	out, err := displayAPI.MarshalIndent(p.JSON, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", p.JSON)
	}
	return string(out)
}
