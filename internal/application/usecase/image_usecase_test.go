package usecase

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImageStore struct {
	folder, name, contentType string
	err                       error
}

func (s *fakeImageStore) Put(_ context.Context, folder, fileName, contentType string, _ []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.folder, s.name, s.contentType = folder, fileName, contentType
	return "https://cdn.example/" + folder + "/" + fileName, nil
}

func (s *fakeImageStore) Delete(context.Context, string) error { return nil }

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestImageUsecase_Upload(t *testing.T) {
	ctx := context.Background()
	store := &fakeImageStore{}
	uc := NewImageUsecase(store)

	up, err := uc.Upload(ctx, admin, "", "hero.png", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", up.ContentType)
	assert.Equal(t, "products", store.folder)
	assert.Equal(t, "https://cdn.example/products/hero.png", up.URL)
}

func TestImageUsecase_Upload_Rejects(t *testing.T) {
	ctx := context.Background()
	uc := NewImageUsecase(&fakeImageStore{})

	_, err := uc.Upload(ctx, buyer, "products", "a.png", pngHeader)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = uc.Upload(ctx, admin, "avatars", "a.png", pngHeader)
	assert.ErrorIs(t, err, ErrImageFolder)

	_, err = uc.Upload(ctx, admin, "news", "a.png", nil)
	assert.ErrorIs(t, err, ErrImageEmpty)

	_, err = uc.Upload(ctx, admin, "news", "a.png", []byte("%PDF-1.7 not an image"))
	assert.ErrorIs(t, err, ErrImageUnsupported)

	big := append(bytes.Clone(pngHeader), make([]byte, MaxImageBytes)...)
	_, err = uc.Upload(ctx, admin, "news", "a.png", big)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}
