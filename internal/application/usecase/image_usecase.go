// internal/application/usecase/image_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"

	authdom "talentagency/internal/domain/auth"

	"github.com/gabriel-vasile/mimetype"
)

// ImageStore hosts binary images and returns their public URL.
type ImageStore interface {
	Put(ctx context.Context, folder, fileName, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

const MaxImageBytes = 10 << 20

var (
	ErrImageEmpty       = errors.New("image: empty file")
	ErrImageTooLarge    = errors.New("image: file too large")
	ErrImageUnsupported = errors.New("image: unsupported content type")
	ErrImageFolder      = errors.New("image: unknown folder")
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

var allowedImageFolders = map[string]struct{}{
	"products": {},
	"news":     {},
}

// ImageUpload is what the upload endpoint returns.
type ImageUpload struct {
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

type ImageUsecase struct {
	store ImageStore
}

func NewImageUsecase(store ImageStore) *ImageUsecase {
	return &ImageUsecase{store: store}
}

// Upload sniffs the real content type instead of trusting the client header.
func (uc *ImageUsecase) Upload(ctx context.Context, caller authdom.Identity, folder, fileName string, data []byte) (ImageUpload, error) {
	if err := requireAdmin(caller); err != nil {
		return ImageUpload{}, err
	}
	folder = strings.ToLower(strings.TrimSpace(folder))
	if folder == "" {
		folder = "products"
	}
	if _, ok := allowedImageFolders[folder]; !ok {
		return ImageUpload{}, ErrImageFolder
	}
	if len(data) == 0 {
		return ImageUpload{}, ErrImageEmpty
	}
	if len(data) > MaxImageBytes {
		return ImageUpload{}, ErrImageTooLarge
	}

	mt := mimetype.Detect(data)
	ct := mt.String()
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	if _, ok := allowedImageTypes[ct]; !ok {
		return ImageUpload{}, ErrImageUnsupported
	}

	url, err := uc.store.Put(ctx, folder, fileName, ct, data)
	if err != nil {
		return ImageUpload{}, err
	}
	return ImageUpload{URL: url, ContentType: ct, Size: len(data)}, nil
}
