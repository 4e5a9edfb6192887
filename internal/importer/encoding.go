package importer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// detectSampleSize bounds how much of the payload is fed to the statistical
// detector. Statements are front-loaded with headers, so a prefix is enough.
const detectSampleSize = 4096

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectEncoding guesses the charset of raw statement bytes. When detection is
// inconclusive or reports plain text/UTF-8, the variant's configured fallback wins.
func DetectEncoding(data []byte, fallback string) string {
	if fallback == "" {
		fallback = "utf-8"
	}
	sample := data
	if len(sample) > detectSampleSize {
		sample = sample[:detectSampleSize]
	}
	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || result == nil || result.Charset == "" {
		return fallback
	}
	name := strings.ToLower(result.Charset)
	// The detector reports ASCII-only payloads as UTF-8 with low confidence;
	// defer to the variant default so e.g. GBK statements with ASCII headers
	// are not mis-decoded.
	if name == "utf-8" || name == "ascii" || result.Confidence < 50 {
		return fallback
	}
	return name
}

// DecodeText converts statement bytes in the named charset to a UTF-8 string.
// A leading byte-order mark is stripped.
func DecodeText(data []byte, charset string) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	switch strings.ToLower(charset) {
	case "", "utf-8", "ascii", "us-ascii":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("payload is not valid UTF-8")
		}
		return string(data), nil
	case "utf-16", "utf-16le", "utf-16be":
		endian := unicode.LittleEndian
		if strings.EqualFold(charset, "utf-16be") {
			endian = unicode.BigEndian
		}
		dec := unicode.UTF16(endian, unicode.UseBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return "", fmt.Errorf("failed to decode %s payload: %w", charset, err)
		}
		return string(out), nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s payload: %w", charset, err)
	}
	return string(out), nil
}

// DecodeStatement applies encoding detection (honoring the variant config) and
// returns the statement as UTF-8 text.
func DecodeStatement(data []byte, cfg FormatConfig) (string, error) {
	charset := cfg.Encoding
	if charset == "" || strings.EqualFold(charset, "auto") {
		charset = DetectEncoding(data, cfg.FallbackEncoding)
	}
	return DecodeText(data, charset)
}
