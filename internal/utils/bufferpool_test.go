package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetBuffer(t *testing.T) {
	buf := GetBuffer(1024)
	assert.Len(t, buf, 1024)
	ReleaseBuffer(buf)

	// Requests beyond the pooled capacity still get a correctly sized slice.
	big := GetBuffer(10000)
	assert.Len(t, big, 10000)
	ReleaseBuffer(big)
}

func TestBufferReuse(t *testing.T) {
	buf := GetBuffer(16)
	for i := range buf {
		buf[i] = 0xFF
	}
	ReleaseBuffer(buf)

	// A fresh request must honor its length regardless of prior contents.
	again := GetBuffer(32)
	assert.Len(t, again, 32)
	ReleaseBuffer(again)
}
