package api

import (
	"encoding/json/v2"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hitorimeshi/hitori-server/internal/errors"
	"github.com/hitorimeshi/hitori-server/internal/http/response"
	"github.com/hitorimeshi/hitori-server/internal/service"
)

// Multipart field names of the restaurant form.
const (
	fieldName              = "name"
	fieldSelectedCities    = "selected_cities"
	fieldCustomCity        = "custom_city"
	fieldCuisine           = "cuisine"
	fieldStyle             = "style"
	fieldAlcoholType       = "alcohol_type"
	fieldDescription       = "description"
	fieldDescriptionFormat = "description_format"
	fieldTagsInput         = "tags_input"
	fieldExistingImageURLs = "existing_image_urls"
	fieldPrice             = "price"
	fieldAlcoholPrice      = "alcohol_price"
	fieldSoloRating        = "solo_rating"
	fieldImages            = "images"
)

// handleCreateRestaurant handles POST /api/v1/restaurants.
// Accepts multipart/form-data with images, or a JSON draft without images.
func (s *Server) handleCreateRestaurant(w http.ResponseWriter, r *http.Request) {
	draft, files, err := decodeRestaurantForm(r)
	if err != nil {
		s.writeFormError(w, err)
		return
	}

	result, err := s.services.Restaurants.CreateRestaurant(r.Context(), draft, files)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, result, s.logger)
}

// handleUpdateRestaurant handles PUT /api/v1/restaurants/{id}.
// The record is overwritten; existing_image_urls lists the images to keep, in order.
func (s *Server) handleUpdateRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurantID := chi.URLParam(r, "id")

	draft, files, err := decodeRestaurantForm(r)
	if err != nil {
		s.writeFormError(w, err)
		return
	}

	result, err := s.services.Restaurants.UpdateRestaurant(r.Context(), restaurantID, draft, files)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

func (s *Server) writeFormError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		response.RequestTooLarge(w, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), s.logger)
		return
	}
	response.HandleError(w, err, s.logger)
}

// decodeRestaurantForm reads the draft and any uploaded images from the request.
func decodeRestaurantForm(r *http.Request) (*service.RestaurantDraft, []service.ImageFile, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json":
		var draft service.RestaurantDraft
		if err := json.UnmarshalRead(r.Body, &draft); err != nil {
			var tooLarge *http.MaxBytesError
			if stderrors.As(err, &tooLarge) {
				return nil, nil, err
			}
			return nil, nil, errors.Validation("request body is not a valid restaurant")
		}
		return &draft, nil, nil

	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if stderrors.As(err, &tooLarge) {
				return nil, nil, err
			}
			return nil, nil, errors.Validation("malformed multipart form")
		}
		return draftFromForm(r.MultipartForm)

	default:
		return nil, nil, errors.Validation("expected multipart/form-data or application/json")
	}
}

func draftFromForm(form *multipart.Form) (*service.RestaurantDraft, []service.ImageFile, error) {
	first := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	invalid := map[string]string{}
	number := func(key string) int64 {
		raw := strings.TrimSpace(first(key))
		if raw == "" {
			return 0
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			invalid[key] = "must be a whole number"
		}
		return n
	}

	draft := &service.RestaurantDraft{
		Name:              first(fieldName),
		SelectedCities:    form.Value[fieldSelectedCities],
		CustomCity:        first(fieldCustomCity),
		Cuisine:           first(fieldCuisine),
		Style:             first(fieldStyle),
		AlcoholType:       first(fieldAlcoholType),
		Description:       first(fieldDescription),
		DescriptionFormat: first(fieldDescriptionFormat),
		TagsInput:         first(fieldTagsInput),
		ExistingImageURLs: form.Value[fieldExistingImageURLs],
		Price:             number(fieldPrice),
		AlcoholPrice:      number(fieldAlcoholPrice),
		SoloRating:        int(number(fieldSoloRating)),
	}
	if len(invalid) > 0 {
		return nil, nil, errors.ValidationWithDetails("Please check the highlighted fields.", invalid)
	}

	headers := form.File[fieldImages]
	files := make([]service.ImageFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readFormFile(fh)
		if err != nil {
			return nil, nil, errors.Wrapf(err, errors.CodeValidation, "could not read image %q", fh.Filename)
		}
		files = append(files, service.ImageFile{Filename: fh.Filename, Data: data})
	}

	return draft, files, nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
