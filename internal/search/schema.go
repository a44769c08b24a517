package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// FieldType selects how a document field is analyzed.
type FieldType int

const (
	// FieldKeyword is matched as a single exact term (codes, enums, ids).
	FieldKeyword FieldType = iota
	// FieldText is tokenized for free-text matching.
	FieldText
	// FieldNumeric supports range queries such as price:>10.
	FieldNumeric
	// FieldDateTime holds RFC 3339 strings and supports date ranges.
	FieldDateTime
)

// Field declares one searchable document field.
type Field struct {
	Name string
	Type FieldType
}

// Schema lists the searchable fields of a kind. The id field is implicit.
type Schema []Field

const (
	idField     = "id"
	sourceField = "_source"
)

// indexMapping builds the bleve mapping for a schema. Unknown fields are not
// indexed, and every document keeps its JSON in a stored-only _source field.
func indexMapping(schema Schema) mapping.IndexMapping {
	doc := bleve.NewDocumentStaticMapping()

	id := bleve.NewKeywordFieldMapping()
	doc.AddFieldMappingsAt(idField, id)

	for _, field := range schema {
		doc.AddFieldMappingsAt(field.Name, fieldMapping(field.Type))
	}

	source := bleve.NewTextFieldMapping()
	source.Index = false
	source.Store = true
	source.IncludeInAll = false
	source.IncludeTermVectors = false
	source.DocValues = false
	doc.AddFieldMappingsAt(sourceField, source)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	im.DefaultAnalyzer = standard.Name
	return im
}

func fieldMapping(t FieldType) *mapping.FieldMapping {
	var fm *mapping.FieldMapping
	switch t {
	case FieldText:
		fm = bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
	case FieldNumeric:
		fm = bleve.NewNumericFieldMapping()
	case FieldDateTime:
		fm = bleve.NewDateTimeFieldMapping()
	default:
		fm = bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
	}
	fm.Store = false
	return fm
}
