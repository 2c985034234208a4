package importer

// text.go prepares raw CSV bytes for encoding/csv: size limiting while
// reading, BOM removal, Windows-1251 detection and delimiter sniffing.

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encoding selects how CSV bytes are decoded.
type Encoding string

const (
	EncodingAuto        Encoding = "auto"
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1251 Encoding = "windows-1251"
)

// ParseEncoding normalises a configured encoding name. Unknown names mean auto.
func ParseEncoding(s string) Encoding {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "utf-8", "utf8":
		return EncodingUTF8
	case "windows-1251", "cp1251", "1251":
		return EncodingWindows1251
	default:
		return EncodingAuto
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// limitedReader fails with ErrFileTooLarge once more than limit bytes are read.
type limitedReader struct {
	r     io.Reader
	n     int64
	limit int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.n += int64(n)
	if l.limit > 0 && l.n > l.limit {
		return n, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, l.limit)
	}
	return n, err
}

// readAll reads r fully, enforcing limit when positive.
func readAll(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(&limitedReader{r: r, limit: limit})
}

// decodeText returns data as UTF-8 text with any BOM removed.
// In auto mode bytes that are not valid UTF-8 are taken to be Windows-1251,
// the encoding Excel uses for Cyrillic CSV exports.
func decodeText(data []byte, enc Encoding) ([]byte, Encoding, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if enc == EncodingAuto || enc == "" {
		if utf8.Valid(data) {
			enc = EncodingUTF8
		} else {
			enc = EncodingWindows1251
		}
	}

	switch enc {
	case EncodingWindows1251:
		out, err := charmap.Windows1251.NewDecoder().Bytes(data)
		if err != nil {
			return nil, enc, fmt.Errorf("encoding error: %w", err)
		}
		return out, enc, nil
	default:
		return bytes.ToValidUTF8(data, []byte("\uFFFD")), EncodingUTF8, nil
	}
}

// sniffDelimiter picks ';', ',' or tab by counting unquoted occurrences in
// the first line. Ties and empty input default to ','.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	counts := map[rune]int{}
	inQuotes := false
	for _, r := range string(line) {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case inQuotes:
		case r == ';' || r == ',' || r == '\t':
			counts[r]++
		}
	}

	best, bestN := ',', counts[',']
	for _, r := range []rune{';', '\t'} {
		if counts[r] > bestN {
			best, bestN = r, counts[r]
		}
	}
	return best
}
