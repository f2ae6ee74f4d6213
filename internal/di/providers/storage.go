package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/hitorimeshi/hitori-server/internal/config"
	"github.com/hitorimeshi/hitori-server/internal/logger"
	"github.com/hitorimeshi/hitori-server/internal/media/images"
)

// ProvideImageStorage provides the blob store for restaurant photos.
func ProvideImageStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := images.NewStorage(cfg.ImagesPath(), cfg.Server.PublicURL)
	if err != nil {
		return nil, fmt.Errorf("image storage: %w", err)
	}

	log.Info("Image storage initialized", "path", cfg.ImagesPath())
	return storage, nil
}

// ProvideImageUploader provides the compress-then-store pipeline for uploads.
func ProvideImageUploader(i do.Injector) (*images.Uploader, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storage := do.MustInvoke[*images.Storage](i)

	create := images.NewCompressor(cfg.Media.MaxDimension, int(cfg.Media.MaxBytes), log.Logger)
	edit := images.NewCompressor(cfg.Media.EditMaxDimension, int(cfg.Media.EditMaxBytes), log.Logger)
	return images.NewUploader(create, storage, log.Logger).WithEditCompressor(edit), nil
}
