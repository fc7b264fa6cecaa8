package bridge

import (
	"encoding/json"

	"github.com/gogpu/gpubridge"
)

// Request is one call from the host. ID is echoed back verbatim and may be
// any JSON value; Params is decoded by the method.
type Request struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response answers a Request. Exactly one of Result and Error is set.
type Response struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Result any             `json:"result,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

// Error is the error body of a failed Response.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return string(e.Code) + ": " + e.Message }

// Event is a frame pushed to the host without a request.
type Event struct {
	Event gpubridge.EventType `json:"event"`
	Data  any                 `json:"data"`
}

// EncodeEvent renders a registry event as an event frame.
func EncodeEvent(e gpubridge.Event) ([]byte, error) {
	return json.Marshal(Event{Event: e.Type, Data: struct {
		ID gpubridge.ID `json:"id"`
	}{e.ID}})
}

// ok is the result of methods that return nothing.
type ok struct {
	OK bool `json:"ok"`
}

var done = ok{OK: true}
