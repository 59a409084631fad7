package compile

import (
	"github.com/kailas-cloud/solrkeys/internal/domain/keys"
	"github.com/kailas-cloud/solrkeys/internal/domain/parsemode"
	"github.com/kailas-cloud/solrkeys/internal/sortfield"
)

// Flattener compiles key trees into query strings.
type Flattener interface {
	Flatten(k keys.Child, fields []string, m parsemode.Mode) (string, error)
	PayloadScore(k keys.Child, m parsemode.Mode) (string, error)
}

// SortResolver picks the engine field to sort a logical field by.
type SortResolver interface {
	Resolve(name string, candidates map[string][]string, justDocumentDatasource bool, q sortfield.Query) (string, error)
}

// TypeRegistry builds engine field names from data types.
type TypeRegistry interface {
	FieldName(dataType string, multiValued bool, name string) (string, error)
}
