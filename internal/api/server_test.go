package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/hitorimeshi/hitori-server/internal/auth"
	"github.com/hitorimeshi/hitori-server/internal/domain"
	"github.com/hitorimeshi/hitori-server/internal/exchange"
	"github.com/hitorimeshi/hitori-server/internal/logger"
	"github.com/hitorimeshi/hitori-server/internal/media/images"
	"github.com/hitorimeshi/hitori-server/internal/search"
	"github.com/hitorimeshi/hitori-server/internal/service"
	"github.com/hitorimeshi/hitori-server/internal/sse"
	"github.com/hitorimeshi/hitori-server/internal/store"
)

const testPIN = "2468"

// testEnvelope decodes the response envelope around a typed payload.
type testEnvelope[T any] struct {
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Version int    `json:"v"`
	Success bool   `json:"success"`
}

// testServer wraps the API server with direct handles on its dependencies.
type testServer struct {
	*Server
	api     humatest.TestAPI
	repo    *store.Store
	index   *search.Index
	storage *images.Storage
	rates   *exchange.HTTPProvider
	manager *sse.Manager
}

// setupTestServer wires a server over an in-memory store and index, a temp
// image directory and a stub rate API that answers 0.25.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.Discard()

	repo, err := store.NewInMemory(log, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	manager := sse.NewManager(repo.ListRestaurants, log)
	repo.SetEmitter(manager)
	ctx, cancel := context.WithCancel(context.Background())
	manager.Start(ctx)
	t.Cleanup(func() {
		cancel()
		_ = manager.Shutdown(context.Background())
	})

	index, err := search.NewInMemory(log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	storage, err := images.NewStorage(t.TempDir(), "")
	require.NoError(t, err)
	uploader := images.NewUploader(images.NewCompressor(images.DefaultMaxDimension, images.DefaultMaxBytes, log), storage, log)

	rateAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"amount":1.0,"base":"JPY","rates":{"THB":0.25}}`))
	}))
	t.Cleanup(rateAPI.Close)
	rates := exchange.NewHTTPProvider(exchange.Config{BaseURL: rateAPI.URL}, log)

	tokens, err := auth.NewTokenService(bytes.Repeat([]byte{7}, 32), time.Minute)
	require.NoError(t, err)
	gate, err := auth.NewGate(testPIN, 5, tokens, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = gate.Shutdown() })

	services := &Services{
		Catalog:     service.NewCatalogService(repo, rates, manager, "en", log),
		Restaurants: service.NewRestaurantService(repo, uploader, index, log),
	}
	infra := Infrastructure{
		Store:  repo,
		Search: index,
		Rates:  rates,
		Images: storage,
		Stream: manager,
	}

	s := NewServer(services, infra, gate, Options{AllowedOrigins: []string{"*"}}, log)
	t.Cleanup(s.Close)

	return &testServer{
		Server:  s,
		api:     humatest.Wrap(t, s.api),
		repo:    repo,
		index:   index,
		storage: storage,
		rates:   rates,
		manager: manager,
	}
}

// seed stores restaurants with increasing created_at and indexes them.
func (ts *testServer) seed(t *testing.T, restaurants ...*domain.Restaurant) {
	t.Helper()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	for i, r := range restaurants {
		r.InitTimestamps(base.Add(time.Duration(i) * time.Minute))
		require.NoError(t, ts.repo.CreateRestaurant(context.Background(), r))
		require.NoError(t, ts.index.IndexRestaurant(r))
	}
}

// unlock exchanges the PIN for an edit token.
func (ts *testServer) unlock(t *testing.T) string {
	t.Helper()
	resp := ts.api.Post("/api/v1/auth/pin", "X-Forwarded-For: 192.0.2.200", map[string]any{"pin": testPIN})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var env testEnvelope[EditTokenResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	return env.Data.Token
}

// do sends a raw request through the router.
func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

type formFile struct {
	name string
	data []byte
}

// multipartRequest builds a restaurant form request.
func multipartRequest(t *testing.T, method, path, token string, fields map[string][]string, files ...formFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for key, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(key, v))
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(fieldImages, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// validForm returns the fields of a complete restaurant form.
func validForm() map[string][]string {
	return map[string][]string{
		fieldName:           {"  Ichiran Dotonbori  "},
		fieldSelectedCities: {"Osaka"},
		fieldCustomCity:     {""},
		fieldCuisine:        {"Ramen"},
		fieldStyle:          {"AlaCarte"},
		fieldAlcoholType:    {"PayPerGlass"},
		fieldDescription:    {"Booth seating, made for eating alone."},
		fieldTagsInput:      {"Dotonbori, , booths"},
		fieldPrice:          {"1200"},
		fieldAlcoholPrice:   {"500"},
		fieldSoloRating:     {"5"},
	}
}

// testPNG encodes a small gradient.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeEnvelope[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env
}
