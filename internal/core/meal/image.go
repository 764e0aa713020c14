package meal

import (
	"errors"
	"fmt"

	"github.com/vincent-petithory/dataurl"
)

// ErrInvalidImage is returned for data that is not an image data URI.
var ErrInvalidImage = errors.New("invalid image")

// Image is a decoded image data URI.
type Image struct {
	MIMEType string
	Data     []byte
}

// EncodeImage returns data as a base64 data URI. The media type is sniffed
// from the content and must be an image.
func EncodeImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrInvalidImage)
	}

	uri := dataurl.EncodeBytes(data)
	if _, err := DecodeImage(uri); err != nil {
		return "", err
	}
	return uri, nil
}

// DecodeImage parses a data URI and checks that it holds an image.
func DecodeImage(uri string) (Image, error) {
	d, err := dataurl.DecodeString(uri)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	if d.MediaType.Type != "image" {
		return Image{}, fmt.Errorf("%w: media type %q is not an image", ErrInvalidImage, d.ContentType())
	}

	if len(d.Data) == 0 {
		return Image{}, fmt.Errorf("%w: no image data", ErrInvalidImage)
	}

	return Image{MIMEType: d.ContentType(), Data: d.Data}, nil
}
