// internal/adapters/out/gcs/helper_repository_gcs.go
package gcs

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"
)

// sanitizePathSegment normalizes a path segment for GCS object paths.
// - removes separators
// - trims dots/spaces
func sanitizePathSegment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, " ", "-")
	return strings.Trim(s, ". ")
}

// ensureExtensionByMIME replaces or appends the extension that matches mime.
func ensureExtensionByMIME(fileName string, mime string) string {
	ext := ""
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	case "image/webp":
		ext = ".webp"
	case "image/gif":
		ext = ".gif"
	}
	if ext == "" {
		return fileName
	}

	cur := strings.ToLower(path.Ext(fileName))
	if cur == ext || (ext == ".jpg" && cur == ".jpeg") {
		return fileName
	}
	return strings.TrimSuffix(fileName, path.Ext(fileName)) + ext
}

// newObjectID generates a random-ish id for object paths.
func newObjectID() string {
	// 12 bytes random => 24 hex chars
	b := make([]byte, 12)
	if _, err := rand.Read(b); err == nil {
		return hex.EncodeToString(b)
	}
	return fmt.Sprintf("%d", time.Now().UTC().UnixNano())
}

// objectPathFor builds "<folder>/<yyyymmdd>/<id>-<fileName>".
func objectPathFor(folder, fileName, mime string, now time.Time) string {
	name := sanitizePathSegment(fileName)
	if name == "" {
		name = "image"
	}
	name = ensureExtensionByMIME(name, mime)
	return path.Join(
		sanitizePathSegment(folder),
		now.UTC().Format("20060102"),
		newObjectID()+"-"+name,
	)
}
