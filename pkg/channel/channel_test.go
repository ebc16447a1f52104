package channel

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addArgs struct {
	A uint32 `json:"a" msgpack:"a"`
	B uint32 `json:"b" msgpack:"b"`
}

type backend struct {
	offset uint32
}

var (
	addNumbers = NewMessage[addArgs, uint32](7, "add_numbers")
	echo       = NewMessage[string, string](9, "echo")
	failing    = NewMessage[string, string](10, "failing")
)

func newTestChannel(codec Codec, opts ...func(*Builder[backend])) *Channel[backend] {
	b := NewBuilder[backend](codec)
	for _, opt := range opts {
		opt(b)
	}
	Handle(b, addNumbers, func(ctx context.Context, s backend, arg addArgs) (uint32, error) {
		return arg.A + arg.B + s.offset, nil
	})
	Handle(b, echo, func(ctx context.Context, s backend, arg string) (string, error) {
		return arg, nil
	})
	Handle(b, failing, func(ctx context.Context, s backend, arg string) (string, error) {
		return "", errors.New("disk on fire")
	})
	return b.Build(backend{})
}

func TestSend_RoundTrip(t *testing.T) {
	for _, codec := range []Codec{NewJSONCodec(), NewMsgpackCodec()} {
		t.Run(codec.Name(), func(t *testing.T) {
			ch := newTestChannel(codec)

			sum, err := Send(context.Background(), ch, addNumbers, addArgs{A: 2, B: 3})
			require.NoError(t, err)
			assert.Equal(t, uint32(5), sum)

			out, err := Send(context.Background(), ch, echo, "héllo")
			require.NoError(t, err)
			assert.Equal(t, "héllo", out)
		})
	}
}

func TestSend_SharedContextValue(t *testing.T) {
	b := NewBuilder[backend](NewJSONCodec())
	Handle(b, addNumbers, func(ctx context.Context, s backend, arg addArgs) (uint32, error) {
		return arg.A + arg.B + s.offset, nil
	})
	ch := b.Build(backend{offset: 10})

	sum, err := Send(context.Background(), ch, addNumbers, addArgs{A: 2, B: 3})
	require.NoError(t, err)
	assert.Equal(t, uint32(15), sum)
}

func TestSend_HandlerNotFound(t *testing.T) {
	ch := NewBuilder[backend](nil).Build(backend{})

	_, err := Send(context.Background(), ch, addNumbers, addArgs{A: 2, B: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHandlerNotFound)

	var chErr *Error
	require.ErrorAs(t, err, &chErr)
	assert.Equal(t, uint32(7), chErr.Code)
	assert.Equal(t, HandlerNotFound(7).Error(), err.Error())
}

func TestSend_HandlerError(t *testing.T) {
	ch := newTestChannel(NewMsgpackCodec())

	_, err := Send(context.Background(), ch, failing, "x")
	assert.ErrorIs(t, err, ErrHandler)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestSend_DecodeErrorOnTypeMismatch(t *testing.T) {
	ch := newTestChannel(NewJSONCodec())
	wrong := NewMessage[addArgs, string](echo.Code, "echo_with_wrong_types")

	_, err := Send(context.Background(), ch, wrong, addArgs{A: 1})
	assert.ErrorIs(t, err, ErrDecode)
	assert.False(t, errors.Is(err, ErrHandler))
}

func TestSend_EncodeError(t *testing.T) {
	b := NewBuilder[backend](NewJSONCodec())
	fnMsg := NewMessage[func(), string](11, "unencodable")
	b.Add(fnMsg.Code, fnMsg.Name, func(ctx context.Context, s backend, data []byte) ([]byte, error) {
		return nil, nil
	})
	ch := b.Build(backend{})

	_, err := Send(context.Background(), ch, fnMsg, func() {})
	assert.ErrorIs(t, err, ErrEncode)
}

func TestBuilder_DuplicateCodePanics(t *testing.T) {
	b := NewBuilder[backend](nil)
	Handle(b, addNumbers, func(ctx context.Context, s backend, arg addArgs) (uint32, error) {
		return 0, nil
	})

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, ErrDuplicateCode)
	}()
	Handle(b, NewMessage[string, string](7, "other"), func(ctx context.Context, s backend, arg string) (string, error) {
		return arg, nil
	})
}

func TestChannel_Codes(t *testing.T) {
	ch := newTestChannel(nil)
	assert.Equal(t, []uint32{7, 9, 10}, ch.Codes())
	assert.Equal(t, "msgpack", ch.Codec().Name())
	assert.True(t, ch.Codec().IsBinary())
}

func TestChannel_DispatchOverFramedPayloads(t *testing.T) {
	ch := newTestChannel(NewMsgpackCodec())
	codec := ch.Codec()

	arg, err := codec.Marshal(addArgs{A: 20, B: 22})
	require.NoError(t, err)

	var wire bytes.Buffer
	_, err = Payload{Code: addNumbers.Code, Data: arg}.WriteTo(&wire)
	require.NoError(t, err)

	req, err := ReadPayload(&wire)
	require.NoError(t, err)
	resp, err := ch.Dispatch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, addNumbers.Code, resp.Code)

	var sum uint32
	require.NoError(t, codec.Unmarshal(resp.Data, &sum))
	assert.Equal(t, uint32(42), sum)

	_, err = ch.Dispatch(context.Background(), Payload{Code: 99})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
}

func TestPayload_Framing(t *testing.T) {
	tests := []struct {
		name string
		p    Payload
	}{
		{name: "empty", p: Payload{Code: 1, Data: []byte{}}},
		{name: "small", p: Payload{Code: 7, Data: []byte{0x01, 0x02, 0x03}}},
		{name: "long prefix", p: Payload{Code: 0xFFFFFFFF, Data: bytes.Repeat([]byte{0xAB}, 300)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := tt.p.MarshalBinary()
			require.NoError(t, err)

			var decoded Payload
			require.NoError(t, decoded.UnmarshalBinary(frame))
			assert.Equal(t, tt.p.Code, decoded.Code)
			assert.Equal(t, tt.p.Data, decoded.Data)

			// two frames back to back through a reader with no ReadByte
			stream := append(append([]byte(nil), frame...), frame...)
			r := iotest.OneByteReader(bytes.NewReader(stream))
			for range 2 {
				got, err := ReadPayload(r)
				require.NoError(t, err)
				assert.Equal(t, tt.p.Code, got.Code)
				assert.Equal(t, tt.p.Data, got.Data)
			}
		})
	}
}

func TestPayload_BigEndianCode(t *testing.T) {
	frame, err := Payload{Code: 7, Data: []byte("hi")}.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 7, 2, 'h', 'i'}, frame)
}

func TestPayload_RejectsMalformedFrames(t *testing.T) {
	var p Payload
	assert.Error(t, p.UnmarshalBinary([]byte{0, 0}))
	assert.Error(t, p.UnmarshalBinary([]byte{0, 0, 0, 7, 5, 'h'}))

	oversized := []byte{0, 0, 0, 1}
	oversized = append(oversized, 0x80, 0x80, 0x80, 0x10) // 32 MiB
	assert.ErrorIs(t, p.UnmarshalBinary(oversized), ErrPayloadTooLarge)
	_, err := ReadPayload(bytes.NewReader(oversized))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	_, err = Payload{Data: make([]byte, MaxPayloadSize+1)}.MarshalBinary()
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestCodecByName(t *testing.T) {
	c, err := CodecByName("json")
	require.NoError(t, err)
	assert.False(t, c.IsBinary())

	c, err = CodecByName("msgpack")
	require.NoError(t, err)
	assert.True(t, c.IsBinary())

	_, err = CodecByName("xml")
	assert.Error(t, err)
}

func TestChannel_MetricsAndTracing(t *testing.T) {
	reg := prometheus.NewRegistry()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ch := newTestChannel(NewJSONCodec(), func(b *Builder[backend]) {
		b.WithLogger(logger).WithMetrics(NewMetrics(reg))
	})

	_, err := Send(context.Background(), ch, addNumbers, addArgs{A: 1, B: 1})
	require.NoError(t, err)
	_, err = Send(context.Background(), ch, failing, "x")
	require.Error(t, err)

	m := ch.metrics
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("7", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("10", "handler_error")))

	out := logs.String()
	assert.Contains(t, out, "Channel request")
	assert.Contains(t, out, "Channel response")
	assert.Contains(t, out, "request_id=")
	assert.Equal(t, 2, strings.Count(out, "code=7"))
}
