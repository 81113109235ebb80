package multiformat

import (
	"bytes"
	"fmt"

	"github.com/multiformats/go-varint"
)

// TagWith prefixes bytes with the varint encoded multicodec code.
func TagWith(code uint64, bytes []byte) []byte {
	offset := varint.UvarintSize(code)
	tagged := make([]byte, len(bytes)+offset)
	varint.PutUvarint(tagged, code)
	copy(tagged[offset:], bytes)
	return tagged
}

// UntagWith checks that the bytes at offset carry the expected multicodec tag
// and returns the bytes following it.
func UntagWith(code uint64, source []byte, offset int) ([]byte, error) {
	if offset > len(source) {
		return nil, fmt.Errorf("offset %d out of range for %d bytes", offset, len(source))
	}
	b := source[offset:]

	tag, err := varint.ReadUvarint(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}

	if tag != code {
		return nil, fmt.Errorf("expected multiformat with 0x%x tag instead got 0x%x", code, tag)
	}

	size := varint.UvarintSize(code)
	return b[size:], nil
}
