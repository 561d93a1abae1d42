package imagestore

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophsocial/internal/common"
)

// Image is a decoded and validated upload.
type Image struct {
	Data        []byte
	ContentType string
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Ext returns the file extension for the image's content type.
func (i *Image) Ext() string {
	return extensions[i.ContentType]
}

// DecodePayload turns a client image payload into an Image. Accepted forms
// are a "data:<mime>;base64,<data>" URI or bare base64. The decoded bytes
// must be non-empty, at most maxBytes long and sniff as JPEG, PNG, GIF or
// WebP. A declared MIME type must match the sniffed one.
func DecodePayload(payload string, maxBytes int64) (*Image, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", common.ErrInvalidImage)
	}

	declared := ""
	data := payload
	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		header, body, found := strings.Cut(rest, ",")
		if !found {
			return nil, fmt.Errorf("%w: malformed data URI", common.ErrInvalidImage)
		}
		mime, enc, _ := strings.Cut(header, ";")
		if enc != "base64" {
			return nil, fmt.Errorf("%w: data URI must be base64 encoded", common.ErrInvalidImage)
		}
		declared = strings.ToLower(mime)
		data = body
	}

	if maxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(data))) > maxBytes+2 {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", common.ErrInvalidImage, maxBytes)
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("%w: not base64", common.ErrInvalidImage)
		}
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty payload", common.ErrInvalidImage)
	}
	if maxBytes > 0 && int64(len(raw)) > maxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", common.ErrInvalidImage, maxBytes)
	}

	sniffed := http.DetectContentType(raw)
	if _, ok := extensions[sniffed]; !ok {
		return nil, fmt.Errorf("%w: unsupported content type %s", common.ErrInvalidImage, sniffed)
	}
	if declared != "" && declared != sniffed && !(declared == "image/jpg" && sniffed == "image/jpeg") {
		return nil, fmt.Errorf("%w: declared %s but content is %s", common.ErrInvalidImage, declared, sniffed)
	}

	return &Image{Data: raw, ContentType: sniffed}, nil
}
