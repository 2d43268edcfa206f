package dto

import "encoding/json"

// Envelope is the standard response wrapper used by the backend.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// ErrorBody captures every place the backend has been seen to put an error
// message: auth endpoints nest it under data.message, the rest use message.
type ErrorBody struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// DataMessage returns data.message when data is an object carrying one.
func (b ErrorBody) DataMessage() string {
	if len(b.Data) == 0 || b.Data[0] != '{' {
		return ""
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b.Data, &nested); err != nil {
		return ""
	}
	return nested.Message
}

// BestMessage picks the most specific message available.
func (b ErrorBody) BestMessage() string {
	if msg := b.DataMessage(); msg != "" {
		return msg
	}
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}
