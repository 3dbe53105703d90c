// internal/adapters/out/gcs/common/gcs_repository.go
package common

import (
	"fmt"
	"net/url"
	"strings"
)

const DefaultPublicBaseURL = "https://storage.googleapis.com"

// GCSPublicURL builds a public object URL.
// - baseURL が空なら https://storage.googleapis.com
// - objectPath の先頭の "/" は除去
func GCSPublicURL(baseURL, bucket, objectPath string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultPublicBaseURL
	}
	obj := strings.TrimLeft(strings.TrimSpace(objectPath), "/")
	return fmt.Sprintf("%s/%s/%s", base, strings.TrimSpace(bucket), obj)
}

// ParseGCSURL parses a GCS-like URL and returns (bucket, objectPath, ok).
// 対応例:
//   - https://storage.googleapis.com/<bucket>/<object>
//   - https://storage.cloud.google.com/<bucket>/<object>
//   - <baseURL>/<bucket>/<object> when baseURL is a custom public host
func ParseGCSURL(u, baseURL string) (string, string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(u))
	if err != nil {
		return "", "", false
	}

	host := strings.ToLower(parsed.Host)
	known := host == "storage.googleapis.com" || host == "storage.cloud.google.com"
	if !known && strings.TrimSpace(baseURL) != "" {
		if b, err := url.Parse(strings.TrimSpace(baseURL)); err == nil && strings.ToLower(b.Host) == host {
			known = true
		}
	}
	if !known {
		return "", "", false
	}

	p := strings.TrimLeft(parsed.EscapedPath(), "/")
	parts := strings.SplitN(p, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}

	objectPath, err := url.PathUnescape(parts[1])
	if err != nil {
		return "", "", false
	}
	return parts[0], objectPath, true
}
