package channel

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxPayloadSize bounds the data section of a framed payload.
const MaxPayloadSize = 16 << 20

// Payload is the wire form of one request or response: the message code and
// the codec-encoded value.
//
// Framed, it is a big-endian uint32 code, a uvarint data length, then the
// data bytes.
type Payload struct {
	Code uint32
	Data []byte
}

// MarshalBinary returns the framed payload.
func (p Payload) MarshalBinary() ([]byte, error) {
	if len(p.Data) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(p.Data))
	}
	buf := make([]byte, 4, 4+binary.MaxVarintLen64+len(p.Data))
	binary.BigEndian.PutUint32(buf, p.Code)
	buf = binary.AppendUvarint(buf, uint64(len(p.Data)))
	return append(buf, p.Data...), nil
}

// UnmarshalBinary parses a framed payload. Trailing bytes are an error.
func (p *Payload) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("payload frame too short: %d bytes", len(data))
	}
	code := binary.BigEndian.Uint32(data)
	n, k := binary.Uvarint(data[4:])
	if k <= 0 {
		return fmt.Errorf("invalid payload length prefix")
	}
	if n > MaxPayloadSize {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, n)
	}
	rest := data[4+k:]
	if uint64(len(rest)) != n {
		return fmt.Errorf("payload length mismatch: header says %d, got %d", n, len(rest))
	}
	p.Code = code
	p.Data = append([]byte(nil), rest...)
	return nil
}

// WriteTo writes the framed payload to w.
func (p Payload) WriteTo(w io.Writer) (int64, error) {
	buf, err := p.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// ReadPayload reads exactly one framed payload from r.
func ReadPayload(r io.Reader) (Payload, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Payload{}, err
	}
	br, ok := r.(io.ByteReader)
	if !ok {
		br = &byteReader{r: r}
	}
	n, err := binary.ReadUvarint(br)
	if err != nil {
		return Payload{}, fmt.Errorf("reading payload length: %w", err)
	}
	if n > MaxPayloadSize {
		return Payload{}, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, n)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return Payload{}, fmt.Errorf("reading payload data: %w", err)
	}
	return Payload{Code: binary.BigEndian.Uint32(header[:]), Data: data}, nil
}

// byteReader reads one byte at a time so nothing past the length prefix is
// consumed from the underlying reader.
type byteReader struct {
	r   io.Reader
	buf [1]byte
}

func (b *byteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(b.r, b.buf[:]); err != nil {
		return 0, err
	}
	return b.buf[0], nil
}
