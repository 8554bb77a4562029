package storage

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/coffee-audit-api/internal/pkg/errors"
)

func newTestStore(t *testing.T, maxBytes int) (*FSImageStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFSImageStore(dir, "/static/uploads/", maxBytes)
	require.NoError(t, err)
	return store, dir
}

func TestFSImageStore_SaveDataURI_PNG(t *testing.T) {
	// Arrange
	store, dir := newTestStore(t, 0)
	raw := []byte("\x89PNG fake image bytes")
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	// Act
	url, err := store.SaveDataURI(payload)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, url)
	assert.True(t, strings.HasPrefix(*url, "/static/uploads/"))
	assert.True(t, strings.HasSuffix(*url, ".png"))

	saved, err := os.ReadFile(filepath.Join(dir, filepath.Base(*url)))
	require.NoError(t, err)
	assert.Equal(t, raw, saved)
}

func TestFSImageStore_SaveDataURI_ExtensionDetection(t *testing.T) {
	store, _ := newTestStore(t, 0)
	encoded := base64.StdEncoding.EncodeToString([]byte("img"))

	tests := []struct {
		payload string
		ext     string
	}{
		{"data:image/webp;base64," + encoded, ".webp"},
		{"data:image/jpeg;base64," + encoded, ".jpg"},
		{"data:image/gif;base64," + encoded, ".jpg"},
		{encoded, ".jpg"},
	}
	for _, tt := range tests {
		url, err := store.SaveDataURI(tt.payload)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(*url, tt.ext), "payload=%s url=%s", tt.payload, *url)
	}
}

func TestFSImageStore_SaveDataURI_Empty(t *testing.T) {
	store, _ := newTestStore(t, 0)

	url, err := store.SaveDataURI("   ")

	assert.NoError(t, err)
	assert.Nil(t, url)
}

func TestFSImageStore_SaveDataURI_Invalid(t *testing.T) {
	store, _ := newTestStore(t, 4)

	_, err := store.SaveDataURI("data:image/png;base64,@@not-base64@@")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	tooBig := base64.StdEncoding.EncodeToString([]byte("12345"))
	_, err = store.SaveDataURI(tooBig)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestFSImageStore_Remove(t *testing.T) {
	store, dir := newTestStore(t, 0)
	url, err := store.SaveDataURI(base64.StdEncoding.EncodeToString([]byte("x")))
	require.NoError(t, err)

	require.NoError(t, store.Remove(*url))

	_, statErr := os.Stat(filepath.Join(dir, filepath.Base(*url)))
	assert.True(t, os.IsNotExist(statErr))

	// Повторное удаление и чужие URL не являются ошибкой
	assert.NoError(t, store.Remove(*url))
	assert.NoError(t, store.Remove("https://cdn.example.com/a.png"))
}
