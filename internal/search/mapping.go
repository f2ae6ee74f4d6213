package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for restaurant documents.
//
// Names, tags and cities mix English, Japanese romanization and Thai, so text
// fields use the standard analyzer rather than English stemming.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()

	text := func(field string, store, vectors bool) {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
		fm.Store = store
		fm.IncludeTermVectors = vectors
		docMapping.AddFieldMappingsAt(field, fm)
	}
	exact := func(field string, store bool) {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = store
		docMapping.AddFieldMappingsAt(field, fm)
	}
	number := func(field string) {
		fm := bleve.NewNumericFieldMapping()
		fm.Store = true
		docMapping.AddFieldMappingsAt(field, fm)
	}

	text("name", true, true)
	text("description", false, true)
	text("tags", true, true)
	text("cities", true, false)
	text("cuisine", true, false)

	exact("id", false)
	exact("cuisine_key", false)
	exact("style", true)
	exact("alcohol", false)
	exact("city_keys", false)

	number("price")
	number("solo_rating")
	number("created_at")
	number("updated_at")

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}
