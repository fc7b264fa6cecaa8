// Package bridge exposes a gpubridge.Registry as JSON request/response
// messages, for hosts that drive the registry over a socket.
//
// A request names a method and carries its params:
//
//	{"id": 7, "method": "createTexture", "params": {"width": 64, "height": 64}}
//
// and is answered with either a result or an error:
//
//	{"id": 7, "result": {"id": "0000000100000001", ...}}
//	{"id": 7, "error": {"code": "INVALID_DESCRIPTOR", "message": "..."}}
//
// Byte fields travel as base64 strings.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/gogpu/gpubridge"
)

type handler func(ctx context.Context, params json.RawMessage) (any, error)

// Dispatcher routes requests to registry methods.
//
// Thread Safety: Dispatcher is safe for concurrent use; the registry
// serializes its own state.
type Dispatcher struct {
	reg     *gpubridge.Registry
	log     *slog.Logger
	methods map[string]handler
}

// NewDispatcher returns a dispatcher for reg. A nil log uses gpubridge.Logger.
func NewDispatcher(reg *gpubridge.Registry, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = gpubridge.Logger()
	}
	d := &Dispatcher{reg: reg, log: log, methods: make(map[string]handler)}
	d.register()
	return d
}

// Methods returns the method names in sorted order.
func (d *Dispatcher) Methods() []string {
	names := make([]string, 0, len(d.methods))
	for name := range d.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs one request. It never returns a nil Response.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) *Response {
	resp := &Response{ID: req.ID}
	h, found := d.methods[req.Method]
	if !found {
		resp.Error = &Error{Code: CodeUnknownMethod, Message: fmt.Sprintf("unknown method %q", req.Method)}
		return resp
	}
	result, err := h(ctx, req.Params)
	if err != nil {
		resp.Error = &Error{Code: CodeOf(err), Message: err.Error()}
		d.log.Debug("bridge: call failed", "method", req.Method, "code", resp.Error.Code, "err", err)
		return resp
	}
	resp.Result = result
	return resp
}

// Handle decodes one JSON request, dispatches it and encodes the response.
func (d *Dispatcher) Handle(ctx context.Context, msg []byte) []byte {
	var req Request
	if err := json.Unmarshal(msg, &req); err != nil {
		return d.encode(&Response{Error: &Error{Code: CodeInvalidDescriptor, Message: "malformed request: " + err.Error()}})
	}
	return d.encode(d.Dispatch(ctx, req))
}

func (d *Dispatcher) encode(resp *Response) []byte {
	out, err := json.Marshal(resp)
	if err != nil {
		d.log.Warn("bridge: encode response", "err", err)
		out, _ = json.Marshal(&Response{ID: resp.ID, Error: &Error{Code: CodeInternal, Message: err.Error()}})
	}
	return out
}

// call adapts a typed method. Params are decoded strictly: unknown fields
// are rejected.
func call[P, R any](fn func(context.Context, P) (R, error)) handler {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var p P
		if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&p); err != nil {
				return nil, fmt.Errorf("%w: %w", errBadParams, err)
			}
		}
		return fn(ctx, p)
	}
}

// exec adapts a method that returns only an error.
func exec[P any](fn func(context.Context, P) error) handler {
	return call(func(ctx context.Context, p P) (ok, error) {
		if err := fn(ctx, p); err != nil {
			return ok{}, err
		}
		return done, nil
	})
}
