package persistent

import (
	"encoding/binary"
	"fmt"

	"github.com/flier/shuffle/pkg/untrust"
)

// maxRecordSize bounds any single key or value this package will attempt
// to decode.
const maxRecordSize = 8 << 20

// DeserializationError reports that a record read from a Store could not
// be decoded.
type DeserializationError struct {
	Record string
	Cause  error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("persistent: deserializing %s: %v", e.Record, e.Cause)
}

func (e *DeserializationError) Unwrap() error { return e.Cause }

// Codec encodes and decodes items for the backing store. Callers supply
// one per item type; this package ships codecs for string, int64, and
// uint64.
type Codec[Item any] interface {
	Encode(item Item) ([]byte, error)
	Decode(data []byte) (Item, error)
}

func checkSize(data []byte) error {
	if len(data) > maxRecordSize {
		return fmt.Errorf("persistent: record of %d bytes exceeds the %d byte limit", len(data), maxRecordSize)
	}

	return nil
}

// EncodeGeneration encodes a generation as 8-byte big-endian.
func EncodeGeneration(generation uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, generation)

	return buf
}

// DecodeGeneration decodes a generation previously produced by
// EncodeGeneration, surfacing malformed input as a DeserializationError
// rather than panicking.
func DecodeGeneration(data []byte) (gen uint64, err error) {
	if err := checkSize(data); err != nil {
		return 0, &DeserializationError{Record: "generation", Cause: err}
	}

	defer func() {
		if r := recover(); r != nil {
			gen, err = 0, &DeserializationError{Record: "generation", Cause: fmt.Errorf("%v", r)}
		}
	}()

	r := untrust.NewReader(untrust.Input(data))

	b, decodeErr := r.ReadBytes(8)
	if decodeErr != nil {
		return 0, &DeserializationError{Record: "generation", Cause: decodeErr}
	}

	if !r.AtEnd() {
		return 0, &DeserializationError{Record: "generation", Cause: fmt.Errorf("trailing bytes")}
	}

	return binary.BigEndian.Uint64(b.AsSliceLessSafe()), nil
}

// StringCodec encodes items as their raw UTF-8 bytes.
type StringCodec struct{}

func (StringCodec) Encode(item string) ([]byte, error) { return []byte(item), nil }

func (StringCodec) Decode(data []byte) (string, error) {
	if err := checkSize(data); err != nil {
		return "", &DeserializationError{Record: "string item", Cause: err}
	}

	return string(data), nil
}

// Int64Codec encodes items as 8-byte big-endian two's complement.
type Int64Codec struct{}

func (Int64Codec) Encode(item int64) ([]byte, error) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(item))

	return buf, nil
}

func (Int64Codec) Decode(data []byte) (item int64, err error) {
	if err := checkSize(data); err != nil {
		return 0, &DeserializationError{Record: "int64 item", Cause: err}
	}

	if len(data) != 8 {
		return 0, &DeserializationError{
			Record: "int64 item",
			Cause:  fmt.Errorf("want 8 bytes, got %d", len(data)),
		}
	}

	return int64(binary.BigEndian.Uint64(data)), nil
}

// Uint64Codec encodes items as 8-byte big-endian.
type Uint64Codec struct{}

func (Uint64Codec) Encode(item uint64) ([]byte, error) {
	return EncodeGeneration(item), nil
}

func (Uint64Codec) Decode(data []byte) (uint64, error) {
	v, err := DecodeGeneration(data)
	if err != nil {
		return 0, fmt.Errorf("uint64 item: %w", err)
	}

	return v, nil
}
