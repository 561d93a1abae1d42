// Package imagestore uploads profile and cover images to S3-compatible
// object storage and removes them by public id.
package imagestore

import (
	"context"
	"path"
	"strings"
)

// Store is the image hosting collaborator.
type Store interface {
	// Upload stores img and returns its public URL.
	Upload(ctx context.Context, img *Image) (string, error)
	// Delete removes the image with the given public id. Deleting an
	// unknown id is not an error.
	Delete(ctx context.Context, publicID string) error
}

// PublicIDFromURL returns the last path segment of url with everything from
// the first "." removed.
//
//	PublicIDFromURL("https://cdn/x/abc.png") == "abc"
func PublicIDFromURL(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	base := path.Base(url)
	if base == "." || base == "/" {
		return ""
	}
	id, _, _ := strings.Cut(base, ".")
	return id
}
