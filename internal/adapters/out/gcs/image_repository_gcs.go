// internal/adapters/out/gcs/image_repository_gcs.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	gcscommon "talentagency/internal/adapters/out/gcs/common"
)

var (
	errNilStorage  = errors.New("image_repository_gcs: storage client is nil")
	errEmptyBucket = errors.New("image_repository_gcs: bucket is empty")
	ErrForeignURL  = errors.New("image_repository_gcs: url does not belong to the image bucket")
)

// ImageRepositoryGCS hosts product and news images in a single bucket.
//
// objectPath: {folder}/{yyyyMMdd}/{random}-{fileName}
//
// The bucket is expected to grant allUsers "Storage Object Viewer" (uniform
// access), so objects are public without per-object ACLs.
type ImageRepositoryGCS struct {
	Client *storage.Client
	Bucket string
	// Optional: if empty, uses https://storage.googleapis.com
	PublicBaseURL string

	now func() time.Time
}

func NewImageRepositoryGCS(client *storage.Client, bucket, publicBaseURL string) *ImageRepositoryGCS {
	return &ImageRepositoryGCS{
		Client:        client,
		Bucket:        strings.TrimSpace(bucket),
		PublicBaseURL: strings.TrimSpace(publicBaseURL),
		now:           time.Now,
	}
}

func (r *ImageRepositoryGCS) bucket() (*storage.BucketHandle, error) {
	if r == nil || r.Client == nil {
		return nil, errNilStorage
	}
	if strings.TrimSpace(r.Bucket) == "" {
		return nil, errEmptyBucket
	}
	return r.Client.Bucket(r.Bucket), nil
}

// Put uploads data and returns the public URL of the new object.
func (r *ImageRepositoryGCS) Put(ctx context.Context, folder, fileName, contentType string, data []byte) (string, error) {
	bh, err := r.bucket()
	if err != nil {
		return "", err
	}
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	objPath := objectPathFor(folder, fileName, contentType, now())

	w := bh.Object(objPath).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000, immutable"
	w.Metadata = map[string]string{"originalName": strings.TrimSpace(fileName)}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs write %s: %w", objPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs close %s: %w", objPath, err)
	}

	return gcscommon.GCSPublicURL(r.PublicBaseURL, r.Bucket, objPath), nil
}

// Delete removes the object behind a URL previously returned by Put.
// A missing object is not an error.
func (r *ImageRepositoryGCS) Delete(ctx context.Context, url string) error {
	bh, err := r.bucket()
	if err != nil {
		return err
	}
	b, obj, ok := gcscommon.ParseGCSURL(url, r.PublicBaseURL)
	if !ok || b != r.Bucket {
		return ErrForeignURL
	}
	if err := bh.Object(obj).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return err
	}
	return nil
}
