// Package channel implements a typed request/response channel between a
// front-end and a backend service.
//
// Handlers are registered per message code and receive the channel's shared
// context value plus the codec-encoded argument. Send encodes the typed
// argument, calls the handler and decodes the typed result. Payload and
// ReadPayload provide the framing used when the bytes cross a process
// boundary; the transport itself is up to the caller.
package channel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rescp17/tunePlayer/pkg/orderedmap"
)

// HandlerFunc serves one message code. s is the channel's context value.
type HandlerFunc[S any] func(ctx context.Context, s S, data []byte) ([]byte, error)

type route[S any] struct {
	name string
	fn   HandlerFunc[S]
}

// Builder collects handlers. Build freezes them into a Channel.
type Builder[S any] struct {
	codec   Codec
	routes  *orderedmap.Map[uint32, route[S]]
	logger  *slog.Logger
	metrics *Metrics
}

// NewBuilder returns a builder using codec for every message. A nil codec
// means msgpack.
func NewBuilder[S any](codec Codec) *Builder[S] {
	if codec == nil {
		codec = NewMsgpackCodec()
	}
	return &Builder[S]{
		codec:  codec,
		routes: orderedmap.New[uint32, route[S]](),
		logger: slog.Default(),
	}
}

func (b *Builder[S]) WithLogger(logger *slog.Logger) *Builder[S] {
	if logger != nil {
		b.logger = logger
	}
	return b
}

func (b *Builder[S]) WithMetrics(m *Metrics) *Builder[S] {
	b.metrics = m
	return b
}

// Codec returns the codec handlers must use.
func (b *Builder[S]) Codec() Codec {
	return b.codec
}

// Add registers a raw handler. It panics if code is already taken.
func (b *Builder[S]) Add(code uint32, name string, fn HandlerFunc[S]) *Builder[S] {
	if existing, ok := b.routes.Get(code); ok {
		panic(fmt.Errorf("%w: %d (%s, already used by %s)", ErrDuplicateCode, code, name, existing.name))
	}
	b.routes.Set(code, route[S]{name: name, fn: fn})
	return b
}

// Handle registers a typed handler for msg.
func Handle[S, A, R any](b *Builder[S], msg Message[A, R], fn func(ctx context.Context, s S, arg A) (R, error)) {
	codec := b.codec
	b.Add(msg.Code, msg.Name, func(ctx context.Context, s S, data []byte) ([]byte, error) {
		var arg A
		if err := codec.Unmarshal(data, &arg); err != nil {
			return nil, &Error{Kind: ErrDecode, Code: msg.Code, Err: err}
		}
		ret, err := fn(ctx, s, arg)
		if err != nil {
			return nil, &Error{Kind: ErrHandler, Code: msg.Code, Err: err}
		}
		out, err := codec.Marshal(ret)
		if err != nil {
			return nil, &Error{Kind: ErrEncode, Code: msg.Code, Err: err}
		}
		return out, nil
	})
}

// Build returns the immutable channel. Every handler call receives s.
func (b *Builder[S]) Build(s S) *Channel[S] {
	routes := orderedmap.New[uint32, route[S]]()
	for code, r := range b.routes.All() {
		routes.Set(code, r)
	}
	return &Channel[S]{
		state:   s,
		codec:   b.codec,
		routes:  routes,
		logger:  b.logger,
		metrics: b.metrics,
	}
}

// Channel dispatches requests to registered handlers. It is safe for
// concurrent use.
type Channel[S any] struct {
	state   S
	codec   Codec
	routes  *orderedmap.Map[uint32, route[S]]
	logger  *slog.Logger
	metrics *Metrics
}

func (c *Channel[S]) Codec() Codec {
	return c.codec
}

// Codes lists registered codes in registration order.
func (c *Channel[S]) Codes() []uint32 {
	return c.routes.Keys()
}

// Dispatch serves a raw payload, as received from a transport.
func (c *Channel[S]) Dispatch(ctx context.Context, p Payload) (Payload, error) {
	start := time.Now()
	data, err := c.call(ctx, p.Code, p.Data)
	c.metrics.observe(p.Code, start, err)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Code: p.Code, Data: data}, nil
}

func (c *Channel[S]) call(ctx context.Context, code uint32, data []byte) ([]byte, error) {
	r, ok := c.routes.Get(code)
	if !ok {
		return nil, HandlerNotFound(code)
	}
	out, err := r.fn(ctx, c.state, data)
	if err != nil {
		return nil, wrapError(ErrHandler, code, err)
	}
	return out, nil
}

// Send encodes arg, runs the handler for msg.Code and decodes its result.
// Errors are *Error values.
func Send[S, A, R any](ctx context.Context, c *Channel[S], msg Message[A, R], arg A) (R, error) {
	var zero R
	start := time.Now()
	requestID := uuid.New().String()

	c.logger.Debug("Channel request",
		"request_id", requestID,
		"code", msg.Code,
		"message", msg.Name,
		"argument", arg,
	)

	ret, err := send(ctx, c, msg, arg)
	c.metrics.observe(msg.Code, start, err)
	if err != nil {
		c.logger.Debug("Channel request failed",
			"request_id", requestID,
			"code", msg.Code,
			"message", msg.Name,
			"error", err,
		)
		return zero, err
	}

	c.logger.Debug("Channel response",
		"request_id", requestID,
		"code", msg.Code,
		"message", msg.Name,
		"return", ret,
		"duration", time.Since(start),
	)
	return ret, nil
}

func send[S, A, R any](ctx context.Context, c *Channel[S], msg Message[A, R], arg A) (R, error) {
	var ret R
	if !c.routes.Has(msg.Code) {
		return ret, HandlerNotFound(msg.Code)
	}
	data, err := c.codec.Marshal(arg)
	if err != nil {
		return ret, &Error{Kind: ErrEncode, Code: msg.Code, Err: err}
	}
	out, err := c.call(ctx, msg.Code, data)
	if err != nil {
		return ret, err
	}
	if err := c.codec.Unmarshal(out, &ret); err != nil {
		return ret, &Error{Kind: ErrDecode, Code: msg.Code, Err: err}
	}
	return ret, nil
}
