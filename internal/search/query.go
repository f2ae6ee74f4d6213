package search

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search.
type Params struct {
	Query   string
	Cuisine string // exact cuisine label, case-insensitive
	Style   string
	City    string

	Limit  int
	Offset int

	Facets    bool
	Highlight bool
}

// DefaultParams returns the defaults used by the API.
func DefaultParams() Params {
	return Params{
		Limit:     20,
		Facets:    true,
		Highlight: true,
	}
}

// Result is a page of search hits.
type Result struct {
	Query    string       `json:"query"`
	Hits     []Hit        `json:"hits"`
	Cuisines []FacetCount `json:"cuisines,omitempty"`
	Total    uint64       `json:"total"`
	TookMs   int64        `json:"took_ms"`
}

// Hit is a single matching restaurant.
type Hit struct {
	Highlights map[string]string `json:"highlights,omitempty"`
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Cuisine    string            `json:"cuisine"`
	Style      string            `json:"style"`
	Score      float64           `json:"score"`
	Price      int64             `json:"price"`
}

// FacetCount is a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a query. Results are ordered by relevance, then by newest.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = DefaultParams().Limit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	req.SortBy([]string{"-_score", "-created_at"})
	req.Fields = []string{"name", "cuisine", "style", "price"}

	if params.Facets {
		req.AddFacet("cuisine_key", bleve.NewFacetRequest("cuisine_key", 20))
	}
	if params.Highlight && params.Query != "" {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("name")
		req.Highlight.AddField("tags")
		req.Highlight.AddField("description")
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}

	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if v, ok := h.Fields["name"].(string); ok {
			hit.Name = v
		}
		if v, ok := h.Fields["cuisine"].(string); ok {
			hit.Cuisine = v
		}
		if v, ok := h.Fields["style"].(string); ok {
			hit.Style = v
		}
		if v, ok := h.Fields["price"].(float64); ok {
			hit.Price = int64(v)
		}
		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}
		out.Hits = append(out.Hits, hit)
	}

	if f, ok := res.Facets["cuisine_key"]; ok && f.Terms != nil {
		for _, term := range f.Terms.Terms() {
			out.Cuisines = append(out.Cuisines, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return out, nil
}

// buildQuery matches the text across name (boosted), tags, cities, cuisine and
// description, and ANDs in any exact filters.
func buildQuery(params Params) query.Query {
	var must []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		match := func(field string, boost float64) query.Query {
			m := bleve.NewMatchQuery(q)
			m.SetField(field)
			m.SetBoost(boost)
			return m
		}

		text := []query.Query{
			match("name", 3.0),
			match("tags", 1.5),
			match("cities", 1.5),
			match("cuisine", 1.2),
			match("description", 1.0),
		}

		if utf8.RuneCountInString(q) >= 4 {
			fuzzy := bleve.NewMatchQuery(q)
			fuzzy.SetField("name")
			fuzzy.SetFuzziness(1)
			fuzzy.SetBoost(0.8)
			text = append(text, fuzzy)
		}
		if utf8.RuneCountInString(q) >= 2 && !strings.ContainsRune(q, ' ') {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			text = append(text, prefix)
		}

		must = append(must, bleve.NewDisjunctionQuery(text...))
	}

	term := func(value, field string) query.Query {
		t := bleve.NewTermQuery(value)
		t.SetField(field)
		return t
	}
	if params.Cuisine != "" {
		must = append(must, term(strings.ToLower(strings.TrimSpace(params.Cuisine)), "cuisine_key"))
	}
	if params.Style != "" {
		must = append(must, term(params.Style, "style"))
	}
	if params.City != "" {
		must = append(must, term(params.City, "city_keys"))
	}

	switch len(must) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return must[0]
	default:
		return bleve.NewConjunctionQuery(must...)
	}
}
