package mongostore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/hitorimeshi/hitori-server/internal/domain"
	"github.com/hitorimeshi/hitori-server/internal/id"
	"github.com/hitorimeshi/hitori-server/internal/store"
)

func sampleRestaurant(created time.Time) *domain.Restaurant {
	return &domain.Restaurant{
		ID:           "rst-1",
		Name:         "Sushiro",
		Cities:       []string{"Osaka", "อารีย์"},
		Cuisine:      domain.CuisineSushi,
		Style:        domain.StyleAlaCarte,
		Price:        1800,
		AlcoholType:  domain.AlcoholPayPerGlass,
		AlcoholPrice: 450,
		SoloRating:   5,
		Description:  "Conveyor belt.",
		Tags:         []string{"conveyor"},
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func TestDocument_BSONRoundTrip(t *testing.T) {
	created := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)
	r := sampleRestaurant(created)

	raw, err := bson.Marshal(toDocument(r))
	require.NoError(t, err)

	var fields bson.M
	require.NoError(t, bson.Unmarshal(raw, &fields))
	assert.Equal(t, "rst-1", fields["_id"])
	assert.Contains(t, fields, "createdAt")
	assert.Contains(t, fields, "imageUrls")

	var doc restaurantDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	got := doc.toDomain()

	assert.Equal(t, r.Name, got.Name)
	assert.Equal(t, r.Cities, got.Cities)
	assert.Equal(t, domain.CuisineSushi, got.Cuisine)
	assert.NotNil(t, got.ImageURLs)
	assert.Empty(t, got.ImageURLs)
	assert.True(t, created.Equal(got.CreatedAt))
}

// TestStore_Integration runs against a live server when HITORI_TEST_MONGO_URI is set.
func TestStore_Integration(t *testing.T) {
	uri := os.Getenv("HITORI_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("HITORI_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := Open(ctx, uri, "hitori_test_"+id.MustGenerate("db")[3:11], nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.coll.Database().Drop(context.Background())
		_ = s.Close()
	})

	created := time.Now().UTC().Truncate(time.Millisecond)
	r := sampleRestaurant(created)
	require.NoError(t, s.CreateRestaurant(ctx, r))
	assert.ErrorIs(t, s.CreateRestaurant(ctx, r), store.ErrAlreadyExists)

	r.Name = "Sushiro Namba"
	r.UpdatedAt = created.Add(time.Minute)
	require.NoError(t, s.UpdateRestaurant(ctx, r))

	got, err := s.GetRestaurant(ctx, "rst-1")
	require.NoError(t, err)
	assert.Equal(t, "Sushiro Namba", got.Name)

	_, err = s.GetRestaurant(ctx, "missing")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	list, err := s.ListRestaurants(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
