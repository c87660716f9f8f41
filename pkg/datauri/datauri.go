// Package datauri converts file contents to base64 data URIs
// (data:<mediatype>;base64,<payload>), the same form a browser produces
// when reading a file as a data URL.
package datauri

import (
	"encoding/base64"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	scheme       = "data:"
	base64Marker = ";base64"
)

// Encode builds a data URI from raw bytes. Parameters of mediaType are
// dropped. When mediaType is empty or unparseable the type is sniffed
// from the content.
func Encode(mediaType string, data []byte) string {
	mediaType = bareType(mediaType)
	if mediaType == "" {
		mediaType = Detect(data)
	}

	var b strings.Builder
	b.Grow(len(scheme) + len(mediaType) + len(base64Marker) + 1 + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString(scheme)
	b.WriteString(mediaType)
	b.WriteString(base64Marker)
	b.WriteByte(',')
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

func bareType(mediaType string) string {
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		return ""
	}
	parsed, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return ""
	}
	return parsed
}

// Detect returns the bare media type of data, without parameters
func Detect(data []byte) string {
	detected := mimetype.Detect(data).String()
	base, _, _ := strings.Cut(detected, ";")
	return strings.TrimSpace(base)
}
