package types

import "encoding/json"

// SuccessEnvelope is the backend's success wrapper. Payloads arrive as
// raw JSON so the caller decodes them in a single typed step.
type SuccessEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// APIError is the backend's error payload. Older endpoints send a bare
// `error` string instead of the structured shape.
type APIError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorEnvelope covers both error shapes the backend emits.
type ErrorEnvelope struct {
	Error   json.RawMessage `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}
