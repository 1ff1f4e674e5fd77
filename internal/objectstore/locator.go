// Package objectstore resolves object locators and issues presigned download
// URLs for stored renditions.
package objectstore

import (
	"fmt"
	"path"
	"strings"

	"sanchaar/internal/services"
)

const scheme = "s3://"

// Locator names one object as a (bucket, key) pair.
type Locator struct {
	Bucket string
	Key    string
}

// ParseLocator accepts "s3://bucket/key" or "bucket/key".
func ParseLocator(uri string) (Locator, error) {
	trimmed := strings.TrimSpace(uri)
	trimmed = strings.TrimPrefix(trimmed, scheme)
	bucket, key, ok := strings.Cut(trimmed, "/")
	if !ok || bucket == "" || strings.Trim(key, "/") == "" {
		return Locator{}, services.Wrap(services.ErrValidation, "objectstore", "parse locator",
			fmt.Sprintf("expected bucket/key, got %q", uri), nil)
	}
	return Locator{Bucket: bucket, Key: key}, nil
}

// String renders the locator as an s3:// URI.
func (l Locator) String() string {
	return scheme + l.Bucket + "/" + l.Key
}

// Basename returns the final key segment without its extension.
func (l Locator) Basename() string {
	base := path.Base(l.Key)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Prefix returns the s3:// URI for a key prefix inside bucket. The result
// always ends with a slash.
func Prefix(bucket string, segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		if trimmed := strings.Trim(segment, "/"); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return scheme + bucket + "/"
	}
	return scheme + bucket + "/" + strings.Join(parts, "/") + "/"
}
