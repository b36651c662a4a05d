// Package record defines the client directory entry and its fixed-width
// binary encoding.
package record

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Field layout of one encoded record. Names occupy a fixed 20-byte field:
// up to NameCap visible characters followed by zero padding. The phone
// number is a big-endian int64. The on-disk file is a plain concatenation
// of Size-byte blocks with no header or count.
const (
	// NameCap is the maximum number of visible name characters stored.
	NameCap = 19

	nameField  = NameCap + 1
	phoneField = 8

	// Size is the encoded width of one record in bytes.
	Size = 2*nameField + phoneField
)

// ErrShortRecord indicates a byte block shorter than one full record.
// Scanners treat it as end-of-data rather than a failure: a truncated
// trailing block marks the end of the store.
var ErrShortRecord = errors.New("record: short record")

// Client is one directory entry. The (LastName, FirstName) pair identifies
// a record for search and update; Phone is the only mutable field.
type Client struct {
	LastName  string
	FirstName string
	Phone     int64
}

// Key reports whether c matches the (last, first) search key.
func (c Client) Key(last, first string) bool {
	return c.LastName == Truncate(last) && c.FirstName == Truncate(first)
}

// Truncate applies the name truncation policy: characters beyond NameCap
// are silently dropped.
func Truncate(name string) string {
	if len(name) > NameCap {
		return name[:NameCap]
	}
	return name
}

// Encode serializes c into a Size-byte block. Names longer than NameCap
// are truncated; shorter names are zero-padded to the field width.
// Encoding is total and deterministic.
func Encode(c Client) [Size]byte {
	var b [Size]byte
	copy(b[0:nameField], Truncate(c.LastName))
	copy(b[nameField:2*nameField], Truncate(c.FirstName))
	binary.BigEndian.PutUint64(b[2*nameField:], uint64(c.Phone))
	return b
}

// Decode deserializes one record from b, which must hold at least Size
// bytes. A shorter block returns ErrShortRecord.
func Decode(b []byte) (Client, error) {
	if len(b) < Size {
		return Client{}, fmt.Errorf("%w: got %d bytes, want %d", ErrShortRecord, len(b), Size)
	}
	return Client{
		LastName:  trimPadding(b[0:nameField]),
		FirstName: trimPadding(b[nameField : 2*nameField]),
		Phone:     int64(binary.BigEndian.Uint64(b[2*nameField : 2*nameField+phoneField])),
	}, nil
}

// trimPadding returns the field text up to the first zero byte.
func trimPadding(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
