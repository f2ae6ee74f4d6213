package images

import (
	"bytes"
	"context"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUploader(t *testing.T) *Uploader {
	t.Helper()
	u := NewUploader(NewCompressor(0, 0, nil), setupTestStorage(t), nil)
	u.now = func() time.Time { return fixedTime }
	return u
}

func TestUploader_Upload(t *testing.T) {
	u := newTestUploader(t)

	out, err := u.Upload(context.Background(), PurposeCreate, "Tonkotsu Bowl.png", encodePNG(t, gradient(900, 600)))
	require.NoError(t, err)

	assert.Equal(t, "restaurants/1792238400000-Tonkotsu Bowl.webp", out.ObjectName)
	assert.Equal(t, "http://localhost:8080/images/restaurants/1792238400000-Tonkotsu%20Bowl.webp", out.URL)
	assert.NotEmpty(t, out.BlurHash)
	assert.True(t, u.storage.Exists(out.ObjectName))
}

func TestUploader_ThaiFileNameRoundTrips(t *testing.T) {
	u := newTestUploader(t)

	out, err := u.Upload(context.Background(), PurposeCreate, "ราเมน.jpg", encodePNG(t, gradient(64, 64)))
	require.NoError(t, err)
	assert.Equal(t, "restaurants/1792238400000-ราเมน.webp", out.ObjectName)

	data, err := u.storage.Get("restaurants/1792238400000-ราเมน.webp")
	require.NoError(t, err)
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "webp", format)
}

func TestUploader_SameNameSameMillisecond(t *testing.T) {
	u := newTestUploader(t)
	data := encodePNG(t, gradient(32, 32))

	first, err := u.Upload(context.Background(), PurposeCreate, "a.png", data)
	require.NoError(t, err)
	second, err := u.Upload(context.Background(), PurposeCreate, "a.png", data)
	require.NoError(t, err)

	assert.Equal(t, "restaurants/1792238400000-a.webp", first.ObjectName)
	assert.Equal(t, "restaurants/1792238400000-a-2.webp", second.ObjectName)
}

func TestUploader_EditUsesLargerBudget(t *testing.T) {
	u := newTestUploader(t)
	u.WithEditCompressor(NewCompressor(DefaultEditMaxDimension, DefaultEditMaxBytes, nil))
	data := encodePNG(t, gradient(1600, 1200))

	created, err := u.Upload(context.Background(), PurposeCreate, "a.png", data)
	require.NoError(t, err)
	edited, err := u.Upload(context.Background(), PurposeEdit, "b.png", data)
	require.NoError(t, err)

	width := func(name string) int {
		raw, err := u.storage.Get(name)
		require.NoError(t, err)
		cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
		require.NoError(t, err)
		return cfg.Width
	}
	assert.Equal(t, DefaultMaxDimension, width(created.ObjectName))
	assert.Equal(t, DefaultEditMaxDimension, width(edited.ObjectName))
}

func TestUploader_RejectsGarbage(t *testing.T) {
	u := newTestUploader(t)

	_, err := u.Upload(context.Background(), PurposeCreate, "notes.txt", []byte("hello"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestUploader_CanceledContext(t *testing.T) {
	u := newTestUploader(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := u.Upload(ctx, PurposeCreate, "a.png", encodePNG(t, gradient(8, 8)))
	assert.ErrorIs(t, err, context.Canceled)
}
