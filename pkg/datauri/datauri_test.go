package datauri

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name      string
		mediaType string
		data      []byte
		expected  string
	}{
		{
			name:      "declared text type",
			mediaType: "text/plain",
			data:      []byte("A"),
			expected:  "data:text/plain;base64,QQ==",
		},
		{
			name:      "declared pdf type",
			mediaType: "application/pdf",
			data:      []byte("%PDF"),
			expected:  "data:application/pdf;base64,JVBERg==",
		},
		{
			name:      "empty file keeps declared type",
			mediaType: "text/plain",
			data:      []byte{},
			expected:  "data:text/plain;base64,",
		},
		{
			name:      "declared type parameters dropped",
			mediaType: "text/plain; charset=utf-8",
			data:      []byte("A"),
			expected:  "data:text/plain;base64,QQ==",
		},
		{
			name:      "declared type normalised to lower case",
			mediaType: " Application/PDF ",
			data:      []byte("%PDF"),
			expected:  "data:application/pdf;base64,JVBERg==",
		},
		{
			name:      "unparseable declared type falls back to sniffing",
			mediaType: "text/",
			data:      []byte("A"),
			expected:  "data:text/plain;base64,QQ==",
		},
		{
			name:      "sniffed text without parameters",
			mediaType: "",
			data:      []byte("hello"),
			expected:  "data:text/plain;base64,aGVsbG8=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Encode(tt.mediaType, tt.data))
		})
	}
}

func TestDetect_PDF(t *testing.T) {
	assert.Equal(t, "application/pdf", Detect([]byte("%PDF-1.7\n%âãÏÓ\n")))
}
