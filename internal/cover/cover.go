package cover

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"mime"
	"net/http"
	"strings"
)

const kittyChunkSize = 4096

var ErrNotDataURI = errors.New("not a base64 data uri")

// Image is a cover transcoded to PNG, the only format kitty accepts inline.
type Image struct {
	PNG    []byte
	Width  int
	Height int
}

// EncodeDataURI wraps raw bytes in a data: URI. An empty or generic content
// type is replaced by the sniffed one.
func EncodeDataURI(contentType string, data []byte) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType == "" || mediaType == "application/octet-stream" {
		mediaType, _, _ = mime.ParseMediaType(http.DetectContentType(data))
	}

	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI returns the media type and payload of a base64 data: URI.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrNotDataURI
	}

	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURI
	}

	mediaType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return "", nil, ErrNotDataURI
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("invalid data uri payload: %w", err)
	}

	return mediaType, data, nil
}

// IsImageDataURI reports whether uri is a base64 data: URI of an image type.
func IsImageDataURI(uri string) bool {
	return strings.HasPrefix(uri, "data:image/") && strings.Contains(uri, ";base64,")
}

// FromDataURI decodes a cover data URI and re-encodes it as PNG.
func FromDataURI(uri string) (Image, error) {
	_, data, err := DecodeDataURI(uri)
	if err != nil {
		return Image{}, err
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("empty image data")
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("unable to decode cover image: %w", err)
	}

	var buffer bytes.Buffer
	if err := png.Encode(&buffer, decoded); err != nil {
		return Image{}, fmt.Errorf("unable to encode cover png: %w", err)
	}

	bounds := decoded.Bounds()
	return Image{PNG: buffer.Bytes(), Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

// RenderKitty returns the kitty graphics escape sequence that transmits and
// places img over cols x rows cells without moving the cursor.
func RenderKitty(img Image, cols, rows int) (string, error) {
	if len(img.PNG) == 0 {
		return "", fmt.Errorf("cover image missing")
	}
	if cols <= 0 {
		cols = 20
	}
	if rows <= 0 {
		rows = 10
	}

	encoded := base64.StdEncoding.EncodeToString(img.PNG)
	var builder strings.Builder
	first := true
	for len(encoded) > 0 {
		chunk := encoded
		if len(chunk) > kittyChunkSize {
			chunk = chunk[:kittyChunkSize]
		}
		encoded = encoded[len(chunk):]

		more := 0
		if len(encoded) > 0 {
			more = 1
		}
		if first {
			fmt.Fprintf(&builder, "\x1b_Ga=T,f=100,t=d,c=%d,r=%d,q=2,C=1,m=%d;%s\x1b\\", cols, rows, more, chunk)
			first = false
			continue
		}
		fmt.Fprintf(&builder, "\x1b_Gm=%d;%s\x1b\\", more, chunk)
	}

	return builder.String(), nil
}

// ClearKitty deletes every image placed by the kitty protocol.
func ClearKitty() string {
	return "\x1b_Ga=d,d=A,q=2\x1b\\"
}
