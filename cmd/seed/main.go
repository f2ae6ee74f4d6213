// Package main provides a tool to seed the catalog with sample restaurants.
//
// It opens the store and search index the server would use, so all server
// flags and environment variables apply.
//
// Usage:
//
//	DATA_PATH=~/Hitori/data go run ./cmd/seed
//	go run ./cmd/seed --store sqlite --data-path /tmp/hitori
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/samber/do/v2"

	"github.com/hitorimeshi/hitori-server/internal/di/providers"
	"github.com/hitorimeshi/hitori-server/internal/domain"
	"github.com/hitorimeshi/hitori-server/internal/id"
)

func sampleRestaurants() []*domain.Restaurant {
	return []*domain.Restaurant{
		{
			Name: "Ichiran Dotonbori", Cuisine: domain.CuisineRamen,
			Style: domain.StyleAlaCarte, AlcoholType: domain.AlcoholPayPerGlass,
			Cities: []string{"Osaka"}, Tags: []string{"booths", "24h"},
			Description: "Tonkotsu ramen eaten in single **flavour concentration booths**.",
			Price:       1180, AlcoholPrice: 550, SoloRating: 5,
		},
		{
			Name: "Yakiniku Like Shinbashi", Cuisine: domain.CuisineYakiniku,
			Style: domain.StyleAlaCarte, AlcoholType: domain.AlcoholPayPerGlass,
			Cities: []string{"Tokyo"}, Tags: []string{"solo grill"},
			Description: "Every seat gets its own smokeless grill.",
			Price:       1500, AlcoholPrice: 390, SoloRating: 5,
		},
		{
			Name: "Kura Sushi Kyoto Shijo", Cuisine: domain.CuisineSushi,
			Style: domain.StyleAlaCarte, AlcoholType: domain.AlcoholPayPerGlass,
			Cities: []string{"Kyoto"}, Tags: []string{"conveyor", "counter"},
			Price: 1400, AlcoholPrice: 480, SoloRating: 4,
		},
		{
			Name: "Kushikatsu Daruma", Cuisine: domain.CuisineFried,
			Style: domain.StyleAlaCarte, AlcoholType: domain.AlcoholPayPerGlass,
			Cities: []string{"Osaka", "Kobe"}, Tags: []string{"no double dipping"},
			Price: 2500, AlcoholPrice: 600, SoloRating: 4,
		},
		{
			Name: "Torikizoku Tenjin", Cuisine: domain.CuisineIzakaya,
			Style: domain.StyleBuffet, AlcoholType: domain.AlcoholNomihodai,
			Cities: []string{"Fukuoka"}, Tags: []string{"yakitori"},
			Price: 3800, SoloRating: 3,
		},
		{
			Name: "Matsuya Ari", Cuisine: domain.CuisineRice,
			Style: domain.StyleAlaCarte, AlcoholType: domain.AlcoholPayPerGlass,
			Cities: []string{"อารีย์"}, Tags: []string{"gyudon"},
			Price: 620, SoloRating: 4,
		},
	}
}

func main() {
	injector := do.New()
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	defer func() {
		if err := injector.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	storeHandle, err := do.Invoke[*providers.StoreHandle](injector)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	indexHandle, err := do.Invoke[*providers.SearchIndexHandle](injector)
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}

	ctx := context.Background()
	now := time.Now().UTC()

	created := 0
	for n, r := range sampleRestaurants() {
		r.ID = id.MustGenerate(id.PrefixRestaurant)
		// Space creation times so the newest-first order is stable.
		r.InitTimestamps(now.Add(time.Duration(n) * time.Second))

		if err := storeHandle.CreateRestaurant(ctx, r); err != nil {
			log.Printf("Failed to create %s: %v", r.Name, err)
			continue
		}
		if err := indexHandle.IndexRestaurant(r); err != nil {
			log.Printf("Failed to index %s: %v", r.Name, err)
		}
		created++
		fmt.Printf("  + %-28s %-9s %6d JPY  %s\n", r.Name, r.Cuisine, r.Price, r.ID)
	}

	fmt.Printf("\nSeeded %d restaurants\n", created)
}
