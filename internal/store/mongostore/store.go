// Package mongostore is a Repository backed by a MongoDB collection, for
// deployments that keep the catalog in a managed document database.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hitorimeshi/hitori-server/internal/domain"
	"github.com/hitorimeshi/hitori-server/internal/store"
)

// CollectionName is the collection restaurants are stored in.
const CollectionName = "restaurants"

// restaurantDocument is the stored shape of a restaurant.
type restaurantDocument struct {
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Cuisine      string    `bson:"cuisine"`
	Style        string    `bson:"style"`
	AlcoholType  string    `bson:"alcohol_type"`
	Description  string    `bson:"description"`
	Cities       []string  `bson:"cities"`
	Tags         []string  `bson:"tags"`
	ImageURLs    []string  `bson:"imageUrls"`
	Price        int64     `bson:"price"`
	AlcoholPrice int64     `bson:"alcohol_price"`
	SoloRating   int       `bson:"solo_rating"`
}

func toDocument(r *domain.Restaurant) restaurantDocument {
	return restaurantDocument{
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
		ID:           r.ID,
		Name:         r.Name,
		Cuisine:      string(r.Cuisine),
		Style:        string(r.Style),
		AlcoholType:  string(r.AlcoholType),
		Description:  r.Description,
		Cities:       nonNil(r.Cities),
		Tags:         nonNil(r.Tags),
		ImageURLs:    nonNil(r.ImageURLs),
		Price:        r.Price,
		AlcoholPrice: r.AlcoholPrice,
		SoloRating:   r.SoloRating,
	}
}

func (d restaurantDocument) toDomain() *domain.Restaurant {
	return &domain.Restaurant{
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		ID:           d.ID,
		Name:         d.Name,
		Cuisine:      domain.Cuisine(d.Cuisine),
		Style:        domain.Style(d.Style),
		AlcoholType:  domain.AlcoholType(d.AlcoholType),
		Description:  d.Description,
		Cities:       nonNil(d.Cities),
		Tags:         nonNil(d.Tags),
		ImageURLs:    nonNil(d.ImageURLs),
		Price:        d.Price,
		AlcoholPrice: d.AlcoholPrice,
		SoloRating:   d.SoloRating,
	}
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// Store provides MongoDB-backed persistence.
type Store struct {
	client  *mongo.Client
	coll    *mongo.Collection
	logger  *slog.Logger
	emitter store.EventEmitter
}

// Open connects to uri, verifies the connection and ensures the ordering index.
func Open(ctx context.Context, uri, database string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(database).Collection(CollectionName)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}},
		Options: options.Index().SetName("newest_first"),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}

	logger.Info("mongo connected", "database", database, "collection", CollectionName)

	return &Store{
		client:  client,
		coll:    coll,
		logger:  logger,
		emitter: store.NewNoopEmitter(),
	}, nil
}

// SetEmitter sets the change emitter notified after writes.
func (s *Store) SetEmitter(emitter store.EventEmitter) {
	if emitter == nil {
		emitter = store.NewNoopEmitter()
	}
	s.emitter = emitter
}

// CreateRestaurant inserts a restaurant document.
func (s *Store) CreateRestaurant(ctx context.Context, r *domain.Restaurant) error {
	if r == nil || strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("restaurant id is required: %w", store.ErrInvalidInput)
	}

	if _, err := s.coll.InsertOne(ctx, toDocument(r)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("insert restaurant: %w", err)
	}

	s.emitter.Emit(store.Change{Kind: store.ChangeCreated, RestaurantID: r.ID})
	return nil
}

// UpdateRestaurant replaces the document, keeping the stored createdAt.
func (s *Store) UpdateRestaurant(ctx context.Context, r *domain.Restaurant) error {
	if r == nil || strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("restaurant id is required: %w", store.ErrInvalidInput)
	}

	doc := toDocument(r)
	set := bson.M{
		"name":          doc.Name,
		"cities":        doc.Cities,
		"cuisine":       doc.Cuisine,
		"style":         doc.Style,
		"price":         doc.Price,
		"alcohol_type":  doc.AlcoholType,
		"alcohol_price": doc.AlcoholPrice,
		"solo_rating":   doc.SoloRating,
		"description":   doc.Description,
		"tags":          doc.Tags,
		"imageUrls":     doc.ImageURLs,
		"updatedAt":     doc.UpdatedAt,
	}

	res, err := s.coll.UpdateByID(ctx, r.ID, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update restaurant: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}

	s.emitter.Emit(store.Change{Kind: store.ChangeUpdated, RestaurantID: r.ID})
	return nil
}

// GetRestaurant fetches a restaurant by id.
func (s *Store) GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error) {
	var doc restaurantDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	return doc.toDomain(), nil
}

// ListRestaurants returns every restaurant, newest first, ties by id.
func (s *Store) ListRestaurants(ctx context.Context) ([]*domain.Restaurant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}

	var docs []restaurantDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode restaurants: %w", err)
	}

	out := make([]*domain.Restaurant, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Ping checks the server connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close() error {
	s.logger.Info("disconnecting mongo")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ store.Repository = (*Store)(nil)
