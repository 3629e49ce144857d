package realtime

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
)

// Codec converts frames to and from their wire form.
type Codec interface {
	Encode(Frame) ([]byte, error)
	Decode([]byte) (Frame, error)
}

// jsonCodec is the default wire form: one JSON object per message.
type jsonCodec struct{}

func (jsonCodec) Encode(f Frame) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return data, nil
}

func (jsonCodec) Decode(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}

// gzipMinSize is the encoded size below which compression is skipped;
// small frames grow under gzip.
const gzipMinSize = 512

// gzipCodec wraps another codec with gzip. Messages below gzipMinSize
// pass through uncompressed; Decode sniffs the gzip magic bytes so both
// forms are accepted on the same connection.
type gzipCodec struct {
	inner Codec
}

func (c gzipCodec) Encode(f Frame) ([]byte, error) {
	data, err := c.inner.Encode(f)
	if err != nil {
		return nil, err
	}
	if len(data) < gzipMinSize {
		return data, nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("compress frame: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress frame: %w", err)
	}
	return buf.Bytes(), nil
}

func (c gzipCodec) Decode(data []byte) (Frame, error) {
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return c.inner.Decode(data)
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return Frame{}, fmt.Errorf("decompress frame: %w", err)
	}
	raw, err := io.ReadAll(zr)
	if cerr := zr.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Frame{}, fmt.Errorf("decompress frame: %w", err)
	}
	return c.inner.Decode(raw)
}

// newCodec selects the wire codec for a config.
func newCodec(cfg Config) Codec {
	if cfg.Compression {
		return gzipCodec{inner: jsonCodec{}}
	}
	return jsonCodec{}
}
