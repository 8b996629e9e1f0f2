package domain

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// ImagePayload is how an image crosses the API boundary: inline base64
// (list/filter responses) or a multipart file part (create/update).
type ImagePayload interface {
	imagePayload()
}

// InlineBase64 base64 text, optionally as a data URL
type InlineBase64 string

// MultipartFile a file part; Reader is consumed once
type MultipartFile struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

func (InlineBase64) imagePayload()  {}
func (MultipartFile) imagePayload() {}

const placeholderName = "placeholder.png"

// PlaceholderImage empty image part sent when the user attached nothing
func PlaceholderImage() MultipartFile {
	return MultipartFile{Filename: placeholderName, ContentType: "image/png", Reader: strings.NewReader("")}
}

// ImageBytes normalises any payload to raw bytes; nil yields nil
func ImageBytes(p ImagePayload) ([]byte, error) {
	switch v := p.(type) {
	case nil:
		return nil, nil
	case InlineBase64:
		s := string(v)
		if i := strings.Index(s, ";base64,"); i >= 0 && strings.HasPrefix(s, "data:") {
			s = s[i+len(";base64,"):]
		}
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("%w: bad base64 image: %v", ErrInvalidInput, err)
		}
		return b, nil
	case MultipartFile:
		if v.Reader == nil {
			return nil, nil
		}
		return io.ReadAll(v.Reader)
	case *MultipartFile:
		if v == nil || v.Reader == nil {
			return nil, nil
		}
		return io.ReadAll(v.Reader)
	default:
		return nil, fmt.Errorf("%w: unsupported image payload %T", ErrInvalidInput, p)
	}
}

// AsMultipart turns any payload into a file part; nil becomes the placeholder
func AsMultipart(p ImagePayload) (MultipartFile, error) {
	switch v := p.(type) {
	case nil:
		return PlaceholderImage(), nil
	case MultipartFile:
		if v.Reader == nil {
			return PlaceholderImage(), nil
		}
		if v.Filename == "" {
			v.Filename = "image"
		}
		return v, nil
	case *MultipartFile:
		if v == nil {
			return PlaceholderImage(), nil
		}
		return AsMultipart(*v)
	default:
		b, err := ImageBytes(p)
		if err != nil {
			return MultipartFile{}, err
		}
		if len(b) == 0 {
			return PlaceholderImage(), nil
		}
		return MultipartFile{Filename: "image", ContentType: "application/octet-stream", Reader: bytes.NewReader(b)}, nil
	}
}
