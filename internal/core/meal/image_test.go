package meal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestEncodeImage(t *testing.T) {
	uri, err := EncodeImage(pngHeader)
	require.NoError(t, err)
	assert.Contains(t, uri, "data:image/png")
	assert.Contains(t, uri, ";base64,")

	img, err := DecodeImage(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, pngHeader, img.Data)
}

func TestEncodeImage_RejectsNonImages(t *testing.T) {
	_, err := EncodeImage([]byte("just some text"))
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = EncodeImage(nil)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestDecodeImage(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		wantErr bool
	}{
		{name: "png", uri: "data:image/png;base64,iVBORw0KGgo=", wantErr: false},
		{name: "text", uri: "data:text/plain;base64,aGVsbG8=", wantErr: true},
		{name: "not a data uri", uri: "https://example.com/pizza.png", wantErr: true},
		{name: "placeholder", uri: "placeholder", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeImage(tt.uri)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidImage)
				return
			}
			assert.NoError(t, err)
		})
	}
}
