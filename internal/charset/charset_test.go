package charset

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/simonhull/vcardtool/internal/types"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"", false},
		{"UTF-8", false},
		{"utf-8", false},
		{"ISO-8859-1", false},
		{"windows-1252", false},
		{"latin1", false},
		{"no-such-charset", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := Lookup(tt.name)
			if tt.wantErr {
				var encErr *types.UnsupportedEncodingError
				if !errors.As(err, &encErr) {
					t.Fatalf("expected *UnsupportedEncodingError, got %T: %v", err, err)
				}
				if encErr.Name != tt.name {
					t.Errorf("Name = %q, want %q", encErr.Name, tt.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if enc == nil {
				t.Fatal("Lookup() returned nil encoding")
			}
		})
	}
}

func TestDecode_UTF8(t *testing.T) {
	enc, _ := Lookup("UTF-8")

	got, err := Decode(enc, []byte("J\xc3\xbcrgen"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Jürgen" {
		t.Errorf("Decode() = %q, want %q", got, "Jürgen")
	}

	if _, err := Decode(enc, []byte{0xc3, 0x28}); err == nil {
		t.Error("expected error for invalid UTF-8")
	}
}

func TestDecode_Latin1(t *testing.T) {
	enc, err := Lookup("ISO-8859-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := Decode(enc, []byte{'J', 0xfc, 'r', 'g', 'e', 'n'})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Jürgen" {
		t.Errorf("Decode() = %q, want %q", got, "Jürgen")
	}

	back, err := Encode(enc, got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(back, []byte{'J', 0xfc, 'r', 'g', 'e', 'n'}) {
		t.Errorf("Encode() = %x", back)
	}
}

func TestReaderWriter_Latin1(t *testing.T) {
	enc, err := Lookup("ISO-8859-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	w := NewWriter(&buf, enc)
	if _, err := io.WriteString(w, "FN:Jürgen\r\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte("FN:J\xfcrgen\r\n")) {
		t.Errorf("encoded = %q", buf.Bytes())
	}

	decoded, err := io.ReadAll(NewReader(&buf, enc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(decoded) != "FN:Jürgen\r\n" {
		t.Errorf("decoded = %q", decoded)
	}
}

func TestReader_UTF8Passthrough(t *testing.T) {
	enc, _ := Lookup("")
	src := strings.NewReader("FN:Jürgen\n")
	if r := NewReader(src, enc); r != io.Reader(src) {
		t.Error("UTF-8 reader should pass the source through")
	}
}
