package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrImageTooLarge indicates the uploaded file exceeded the configured cap.
var ErrImageTooLarge = errors.New("media: image exceeds size limit")

// ErrNotAnImage indicates the uploaded bytes do not look like an image.
var ErrNotAnImage = errors.New("media: file is not an image")

// Image is an owned copy of an uploaded reference image. The buffer belongs
// to the job that carries it; nothing else retains the reader it came from.
type Image struct {
	Data     []byte
	MIMEType string
	Filename string
}

// ReadLimited drains r into an owned buffer, refusing payloads larger than
// limit bytes. The MIME type is taken from the declared content type when it
// names an image, otherwise sniffed from the leading bytes.
func ReadLimited(r io.Reader, limit int64, filename, declaredMIME string) (*Image, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("media: non-positive size limit %d", limit)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("media: read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrImageTooLarge
	}
	if len(data) == 0 {
		return nil, ErrNotAnImage
	}

	mime := normalizeMIME(declaredMIME)
	if mime == "" {
		mime = normalizeMIME(http.DetectContentType(data))
	}
	if mime == "" {
		return nil, ErrNotAnImage
	}

	return &Image{Data: data, MIMEType: mime, Filename: filename}, nil
}

// Base64 returns the standard-encoded payload for JSON transport.
func (i *Image) Base64() string {
	if i == nil || len(i.Data) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(i.Data)
}

func normalizeMIME(v string) string {
	mime := strings.ToLower(strings.TrimSpace(v))
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	if !strings.HasPrefix(mime, "image/") {
		return ""
	}
	return mime
}
