package assets

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"etalase/internal/models"
)

// ImageManager owns the lifecycle of item images on a Store.
type ImageManager struct {
	store Store
	now   func() time.Time
}

// NewImageManager creates a new ImageManager.
func NewImageManager(store Store) *ImageManager {
	return &ImageManager{store: store, now: time.Now}
}

// Store writes data under a fresh unique name and returns its reference.
func (m *ImageManager) Store(ctx context.Context, data []byte, originalFilename string) (string, error) {
	if len(data) == 0 {
		return "", models.NewValidationError("image", "image file is empty")
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", models.NewValidationError("image", fmt.Sprintf("unsupported content type %s", mt.String()))
	}

	// Static serving derives Content-Type from the extension, so it must
	// agree with the sniffed content.
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalFilename)))
	if ext == "" || !mt.Is(mime.TypeByExtension(ext)) {
		ext = mt.Extension()
	}
	name := m.newName(ext)
	if err := m.store.Write(ctx, name, mt.String(), data); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrAssetWrite, err)
	}
	return m.store.URL(name), nil
}

// Replace stores the new image. The superseded asset at oldRef is left in
// place; the caller deletes it once the record points at the new reference.
func (m *ImageManager) Replace(ctx context.Context, oldRef string, data []byte, originalFilename string) (string, error) {
	ref, err := m.Store(ctx, data, originalFilename)
	if err != nil {
		return "", fmt.Errorf("failed to replace %s: %w", oldRef, err)
	}
	return ref, nil
}

// Delete removes the asset behind ref. Absent assets and refs that do not
// belong to this store are ignored.
func (m *ImageManager) Delete(ctx context.Context, ref string) error {
	name, ok := m.store.Name(ref)
	if !ok {
		return nil
	}
	if err := m.store.Delete(ctx, name); err != nil {
		return fmt.Errorf("%w: %v", models.ErrAssetDelete, err)
	}
	return nil
}

// newName is "<unix nanos>_<8 random hex><ext>".
func (m *ImageManager) newName(ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d_%s%s", m.now().UnixNano(), suffix, ext)
}
