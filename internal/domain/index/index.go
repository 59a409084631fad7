package index

import "strings"

const (
	// EngineDatasourcePrefix marks datasources that read documents straight from the engine.
	EngineDatasourcePrefix = "solr_"
	// DocumentDatasource is the pass-through datasource exposing raw engine documents.
	DocumentDatasource = "solr_document"
)

// Index describes the datasources feeding a search index.
type Index struct {
	DatasourceIDs []string
}

// New creates an Index over the given datasource IDs.
func New(datasourceIDs ...string) Index {
	return Index{DatasourceIDs: datasourceIDs}
}

// HasJustDocumentDatasource reports whether the only datasource is the pass-through document datasource.
func (i Index) HasJustDocumentDatasource() bool {
	return len(i.DatasourceIDs) == 1 && i.DatasourceIDs[0] == DocumentDatasource
}

// HasJustEngineDatasources reports whether every datasource reads from the engine.
// An index without datasources qualifies.
func (i Index) HasJustEngineDatasources() bool {
	for _, id := range i.DatasourceIDs {
		if !strings.HasPrefix(id, EngineDatasourcePrefix) {
			return false
		}
	}
	return true
}

// HasEngineDatasources reports whether at least one datasource reads from the engine.
func (i Index) HasEngineDatasources() bool {
	for _, id := range i.DatasourceIDs {
		if strings.HasPrefix(id, EngineDatasourcePrefix) {
			return true
		}
	}
	return false
}
