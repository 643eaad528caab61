// Package encoding normalises uploaded text files to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffSize is how much of the input is inspected before decoding.
const sniffSize = 8192

// Fallback is assumed when nothing else matches. Spreadsheet exports on
// Windows default to it.
const Fallback = "windows-1252"

var boms = []struct {
	prefix  []byte
	charset string
}{
	{[]byte{0xEF, 0xBB, 0xBF}, "UTF-8"},
	{[]byte{0xFF, 0xFE}, "UTF-16LE"},
	{[]byte{0xFE, 0xFF}, "UTF-16BE"},
}

var decoders = map[string]xencoding.Encoding{
	"UTF-16LE":     unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"UTF-16BE":     unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-9":   charmap.ISO8859_9,
	"ISO-8859-15":  charmap.ISO8859_15,
}

// Detection reports how an input was decoded.
type Detection struct {
	Charset string
	BOM     bool
}

// Decode sniffs the charset of r and returns a reader yielding UTF-8. A
// UTF-8 byte order mark is dropped.
func Decode(r io.Reader) (io.Reader, Detection, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, Detection{}, fmt.Errorf("peeking input: %w", err)
	}

	for _, b := range boms {
		if !bytes.HasPrefix(head, b.prefix) {
			continue
		}

		det := Detection{Charset: b.charset, BOM: true}
		if b.charset == "UTF-8" {
			_, _ = br.Discard(len(b.prefix))
			return br, det, nil
		}

		return transform.NewReader(br, decoders[b.charset].NewDecoder()), det, nil
	}

	if utf8.Valid(trimPartialRune(head)) {
		return br, Detection{Charset: "UTF-8"}, nil
	}

	charset := Fallback

	if res, err := chardet.NewTextDetector().DetectBest(head); err == nil {
		if _, ok := decoders[res.Charset]; ok {
			charset = res.Charset
		}
	}

	return transform.NewReader(br, decoders[charset].NewDecoder()), Detection{Charset: charset}, nil
}

// trimPartialRune drops a multi-byte sequence cut off by the sniff window.
func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		c := b[len(b)-i]
		if !utf8.RuneStart(c) {
			continue
		}

		if !utf8.FullRune(b[len(b)-i:]) {
			return b[:len(b)-i]
		}

		break
	}

	return b
}
