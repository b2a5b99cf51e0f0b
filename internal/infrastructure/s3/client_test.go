package s3infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhotoKey(t *testing.T) {
	assert.Equal(t, "listings/L1/01ABC.jpg", PhotoKey("L1", "01ABC", "Dal.JPG"))
	assert.Equal(t, "listings/L1/01ABC", PhotoKey("L1", "01ABC", "noext"))
}

func TestKeyFromURL(t *testing.T) {
	key, ok := KeyFromURL("s3://photos/listings/L1/x.png")
	assert.True(t, ok)
	assert.Equal(t, "listings/L1/x.png", key)

	_, ok = KeyFromURL("https://example.com/x.png")
	assert.False(t, ok)
	_, ok = KeyFromURL("s3://photos")
	assert.False(t, ok)
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", DetectContentType("a.jpeg"))
	assert.Equal(t, "image/png", DetectContentType("a.PNG"))
	assert.Equal(t, "image/webp", DetectContentType("a.webp"))
	assert.Equal(t, "application/octet-stream", DetectContentType("a.pdf"))
}
