package entry

import (
	"bytes"
	"io"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
	}{
		{"simple put", NewPut("key", []byte("value"), 1234567890, 1)},
		{"empty value put", NewPut("k", []byte(""), 1, 2)},
		{"tombstone", NewTombstone("deleted-key", 42, 3)},
		{"large key and value", NewPut(string(make([]byte, 512)), make([]byte, 4096), 1, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			if err := tt.entry.Encode(buf); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}

			got, err := Decode(buf)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}

			if got.Key != tt.entry.Key {
				t.Errorf("Key = %q, want %q", got.Key, tt.entry.Key)
			}
			if !bytes.Equal(got.Value, tt.entry.Value) {
				t.Errorf("Value = %v, want %v", got.Value, tt.entry.Value)
			}
			if got.Timestamp != tt.entry.Timestamp || got.Seq != tt.entry.Seq {
				t.Errorf("Timestamp/Seq = %d/%d, want %d/%d", got.Timestamp, got.Seq, tt.entry.Timestamp, tt.entry.Seq)
			}
			if got.Deleted != tt.entry.Deleted {
				t.Errorf("Deleted = %v, want %v", got.Deleted, tt.entry.Deleted)
			}
		})
	}
}

func TestDecodeTornRecord(t *testing.T) {
	e := NewPut("key", []byte("value"), 1, 1)
	buf := &bytes.Buffer{}
	if err := e.Encode(buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	full := buf.Bytes()
	torn := bytes.NewReader(full[:len(full)-2])

	if _, err := Decode(torn); err != io.ErrUnexpectedEOF && err != io.EOF {
		t.Errorf("Decode() on torn record error = %v, want io.ErrUnexpectedEOF or io.EOF", err)
	}
}

func TestNewer(t *testing.T) {
	a := NewPut("k", []byte("1"), 10, 1)
	b := NewPut("k", []byte("2"), 10, 2)
	c := NewPut("k", []byte("3"), 11, 1)

	if !Newer(b, a) {
		t.Errorf("expected b (higher seq, same ts) to be newer than a")
	}
	if !Newer(c, b) {
		t.Errorf("expected c (higher ts) to be newer than b")
	}
	if Newer(a, b) {
		t.Errorf("expected a to not be newer than b")
	}
}
