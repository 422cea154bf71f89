package gcs

import (
	"fmt"
	"path"
	"strings"
)

const scheme = "gs://"

// IsURI reports whether s looks like a gs:// URI.
func IsURI(s string) bool {
	return strings.HasPrefix(s, scheme)
}

// ParseURI splits gs://bucket/path/to/object into bucket and object path.
func ParseURI(uri string) (bucket, object string, err error) {
	if !IsURI(uri) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, scheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// FormatURI builds gs://bucket/object.
func FormatURI(bucket, object string) string {
	return scheme + bucket + "/" + strings.TrimPrefix(object, "/")
}

// Filename returns the last path element of the object in a URI.
// e.g., "gs://bucket/snapshots/2024-05.json" → "2024-05.json"
func Filename(uri string) string {
	trimmed := strings.TrimPrefix(uri, scheme)
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}
