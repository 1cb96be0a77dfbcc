package entry

import (
	"bytes"
	"encoding/binary"
	"io"
)

// HeaderSize is the encoded length of Header. There's a test that will
// fail if this changes without updating it deliberately.
const HeaderSize = 25

// sizedHeader is implemented by any on-disk header struct encoded
// directly via encoding/binary, checked by cmd/headercheck for
// fixed-size fields only.
type sizedHeader interface {
	headerLen() int
}

func (h Header) headerLen() int { return HeaderSize }

// Encode writes the header, then the raw key bytes, then the raw value
// bytes (empty for a tombstone) to buf.
func (e *Entry) Encode(buf *bytes.Buffer) error {
	if err := binary.Write(buf, binary.LittleEndian, e.Header); err != nil {
		return err
	}
	if _, err := buf.WriteString(e.Key); err != nil {
		return err
	}
	if _, err := buf.Write(e.Value); err != nil {
		return err
	}
	return nil
}

// Decode reads one Entry from r: a fixed header, then KeySize bytes of
// key, then ValSize bytes of value. It returns io.ErrUnexpectedEOF (via
// io.ReadFull) if r runs dry mid-record, and io.EOF if r is empty.
func Decode(r io.Reader) (Entry, error) {
	headerBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return Entry{}, err
	}

	var h Header
	if err := binary.Read(bytes.NewReader(headerBuf), binary.LittleEndian, &h); err != nil {
		return Entry{}, err
	}

	rest := make([]byte, int(h.KeySize)+int(h.ValSize))
	if len(rest) > 0 {
		if _, err := io.ReadFull(r, rest); err != nil {
			return Entry{}, err
		}
	}

	e := Entry{Header: h, Key: string(rest[:h.KeySize])}
	if h.ValSize > 0 {
		e.Value = make([]byte, h.ValSize)
		copy(e.Value, rest[h.KeySize:])
	}
	return e, nil
}

// EncodedLen returns the number of bytes Encode will write for e.
func (e *Entry) EncodedLen() int {
	return HeaderSize + len(e.Key) + len(e.Value)
}
