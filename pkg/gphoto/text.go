package gphoto

import (
	"golang.org/x/text/encoding/unicode"
)

// decodeText converts driver text to a string. Invalid UTF-8 sequences are
// replaced by U+FFFD; decoding never fails.
func decodeText(raw []byte) string {
	out, err := unicode.UTF8.NewDecoder().Bytes(raw)
	if err != nil {
		return string([]rune(string(raw)))
	}
	return string(out)
}
