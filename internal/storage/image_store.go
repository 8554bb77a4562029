// Package storage хранит фотографии аудитов, пришедшие как base64 data-URI.
package storage

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/yourusername/coffee-audit-api/internal/pkg/errors"
)

// ImageStore сохраняет изображения и возвращает публичный URL
type ImageStore interface {
	// SaveDataURI декодирует payload и сохраняет его. Пустой payload дает nil без ошибки.
	SaveDataURI(payload string) (*string, error)
	// Remove удаляет ранее сохраненное изображение по его URL
	Remove(url string) error
}

// FSImageStore хранит изображения в каталоге на диске
type FSImageStore struct {
	dir       string
	urlPrefix string
	maxBytes  int
}

// NewFSImageStore создает каталог (если нужно) и возвращает хранилище.
// urlPrefix - путь, под которым каталог раздается статикой, например /static/uploads.
func NewFSImageStore(dir, urlPrefix string, maxBytes int) (*FSImageStore, error) {
	if dir == "" {
		dir = "./static/uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &FSImageStore{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		maxBytes:  maxBytes,
	}, nil
}

// SaveDataURI реализует ImageStore
func (s *FSImageStore) SaveDataURI(payload string) (*string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, nil
	}

	ext, encoded := splitDataURI(payload)
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 image: %v", apperrors.ErrValidation, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", apperrors.ErrValidation)
	}
	if s.maxBytes > 0 && len(data) > s.maxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", apperrors.ErrValidation, s.maxBytes)
	}

	filename := uuid.NewString() + "." + ext
	if err := s.write(filename, bytes.NewReader(data)); err != nil {
		return nil, err
	}

	url := s.urlPrefix + "/" + filename
	return &url, nil
}

// Remove реализует ImageStore. Файлы вне каталога хранилища не трогаются.
func (s *FSImageStore) Remove(url string) error {
	if !strings.HasPrefix(url, s.urlPrefix+"/") {
		return nil
	}
	name := path.Base(url)
	if name == "." || name == "/" || strings.Contains(name, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FSImageStore) write(filename string, r io.Reader) error {
	dst := filepath.Join(s.dir, filename)
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		log.Printf("[ImageStore] Ошибка записи %s: %v", dst, err)
		_ = os.Remove(dst)
		return fmt.Errorf("write image file: %w", err)
	}
	return nil
}

// splitDataURI отделяет заголовок data:image/...;base64, и определяет расширение.
// Без заголовка payload считается jpeg.
func splitDataURI(payload string) (ext string, encoded string) {
	ext = "jpg"
	header, data, found := strings.Cut(payload, "base64,")
	if !found {
		return ext, payload
	}
	switch {
	case strings.Contains(header, "image/png"):
		ext = "png"
	case strings.Contains(header, "image/webp"):
		ext = "webp"
	case strings.Contains(header, "image/jpeg"):
		ext = "jpg"
	}
	return ext, data
}
