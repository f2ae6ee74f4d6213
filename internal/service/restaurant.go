// Package service holds the catalog's use cases: browsing, search and the
// create and PIN-gated edit flows.
package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/hitorimeshi/hitori-server/internal/domain"
	"github.com/hitorimeshi/hitori-server/internal/errors"
	"github.com/hitorimeshi/hitori-server/internal/id"
	"github.com/hitorimeshi/hitori-server/internal/media/images"
	"github.com/hitorimeshi/hitori-server/internal/search"
	"github.com/hitorimeshi/hitori-server/internal/store"
	"github.com/hitorimeshi/hitori-server/internal/validation"
)

// ImageUploader stores one image and returns where it ended up. The purpose
// selects the compression budget of the add or edit form.
type ImageUploader interface {
	Upload(ctx context.Context, purpose images.Purpose, filename string, data []byte) (*images.Uploaded, error)
}

// SearchIndexer keeps the search index in step with writes.
type SearchIndexer interface {
	IndexRestaurant(r *domain.Restaurant) error
	Search(ctx context.Context, params search.Params) (*search.Result, error)
}

// ImageFile is one uploaded file from the edit form.
type ImageFile struct {
	Filename string
	Data     []byte
}

// UploadResult reports the outcome for a single image.
type UploadResult struct {
	Index    int    `json:"index"`
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
	BlurHash string `json:"blurhash,omitempty"`
	Error    string `json:"error,omitempty"`
}

// MutationResult is returned by create and update.
type MutationResult struct {
	Restaurant *domain.Restaurant `json:"restaurant"`
	Uploads    []UploadResult     `json:"uploads"`
}

// RestaurantService validates drafts, uploads images and persists restaurants.
// Subscribers are notified by the store's emitter after each write.
type RestaurantService struct {
	repo      store.Repository
	uploader  ImageUploader
	index     SearchIndexer
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewRestaurantService creates a RestaurantService.
func NewRestaurantService(repo store.Repository, uploader ImageUploader, index SearchIndexer, logger *slog.Logger) *RestaurantService {
	return &RestaurantService{
		repo:      repo,
		uploader:  uploader,
		index:     index,
		validator: validation.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// CreateRestaurant validates the draft, uploads images one at a time and stores a new restaurant.
func (s *RestaurantService) CreateRestaurant(ctx context.Context, draft *RestaurantDraft, files []ImageFile) (*MutationResult, error) {
	r, err := s.prepare(draft)
	if err != nil {
		return nil, err
	}

	uploads := s.uploadAll(ctx, images.PurposeCreate, files, r)

	restaurantID, err := id.Generate(id.PrefixRestaurant)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to generate restaurant id")
	}
	r.ID = restaurantID
	r.InitTimestamps(s.now())

	if err := s.repo.CreateRestaurant(ctx, r); err != nil {
		return nil, mapStoreError(err, r.ID)
	}

	s.reindex(r)
	s.logger.Info("restaurant created",
		"restaurant_id", r.ID,
		"name", r.Name,
		"images", len(r.ImageURLs),
	)

	return &MutationResult{Restaurant: r, Uploads: uploads}, nil
}

// UpdateRestaurant overwrites an existing restaurant. Image URLs become the
// retained URLs from the draft followed by the new uploads in order.
func (s *RestaurantService) UpdateRestaurant(ctx context.Context, restaurantID string, draft *RestaurantDraft, files []ImageFile) (*MutationResult, error) {
	r, err := s.prepare(draft)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, mapStoreError(err, restaurantID)
	}

	uploads := s.uploadAll(ctx, images.PurposeEdit, files, r)

	r.ID = existing.ID
	r.CreatedAt = existing.CreatedAt
	r.Touch(s.now())

	if err := s.repo.UpdateRestaurant(ctx, r); err != nil {
		return nil, mapStoreError(err, r.ID)
	}

	s.reindex(r)
	s.logger.Info("restaurant updated",
		"restaurant_id", r.ID,
		"name", r.Name,
		"images", len(r.ImageURLs),
	)

	return &MutationResult{Restaurant: r, Uploads: uploads}, nil
}

// GetRestaurant returns one restaurant.
func (s *RestaurantService) GetRestaurant(ctx context.Context, restaurantID string) (*domain.Restaurant, error) {
	r, err := s.repo.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, mapStoreError(err, restaurantID)
	}
	return r, nil
}

// Search runs a full-text query over the catalog.
func (s *RestaurantService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	if s.index == nil {
		return nil, errors.Unavailable("search is not available")
	}
	res, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "search failed")
	}
	return res, nil
}

// prepare validates the draft and returns the normalized restaurant.
// Nothing is uploaded or written when it fails.
func (s *RestaurantService) prepare(draft *RestaurantDraft) (*domain.Restaurant, error) {
	if draft == nil {
		return nil, errors.Validation("restaurant draft is required")
	}
	if len(MergeCities(draft.SelectedCities, draft.CustomCity)) == 0 {
		return nil, ErrNoCity
	}
	if err := s.validator.Validate(draft); err != nil {
		return nil, err
	}
	return draft.normalize(s.logger), nil
}

// uploadAll uploads files sequentially, appending each URL to r.ImageURLs.
// A failed image is logged and reported; the rest still upload.
func (s *RestaurantService) uploadAll(ctx context.Context, purpose images.Purpose, files []ImageFile, r *domain.Restaurant) []UploadResult {
	results := make([]UploadResult, 0, len(files))
	for i, f := range files {
		res := UploadResult{Index: i, Filename: f.Filename}

		out, err := s.uploader.Upload(ctx, purpose, f.Filename, f.Data)
		if err != nil {
			s.logger.Warn("image upload failed",
				"index", i,
				"filename", f.Filename,
				"error", err,
			)
			res.Error = uploadErrorMessage(err)
			results = append(results, res)
			continue
		}

		res.URL = out.URL
		res.BlurHash = out.BlurHash
		r.ImageURLs = append(r.ImageURLs, out.URL)
		results = append(results, res)
	}
	return results
}

func (s *RestaurantService) reindex(r *domain.Restaurant) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexRestaurant(r); err != nil {
		s.logger.Warn("failed to index restaurant", "restaurant_id", r.ID, "error", err)
	}
}

func uploadErrorMessage(err error) string {
	switch {
	case stderrors.Is(err, images.ErrUnsupportedImage):
		return "unsupported image format"
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return "upload canceled"
	default:
		return "upload failed"
	}
}

// mapStoreError converts store errors into domain errors.
func mapStoreError(err error, restaurantID string) error {
	switch {
	case stderrors.Is(err, store.ErrNotFound):
		return errors.NotFoundf("restaurant %s not found", restaurantID).WithCause(err)
	case stderrors.Is(err, store.ErrAlreadyExists):
		return errors.ErrAlreadyExists.WithCause(err)
	case stderrors.Is(err, store.ErrInvalidInput):
		return errors.Validation(err.Error())
	case stderrors.Is(err, store.ErrClosed):
		return errors.Wrap(err, errors.CodeUnavailable, "catalog store is closed")
	default:
		return errors.Wrap(err, errors.CodeInternal, "catalog store failure")
	}
}
