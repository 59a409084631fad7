package health

import (
	compileuc "github.com/kailas-cloud/solrkeys/internal/usecase/compile"
)

// Compiler compiles the canary query of the self-test.
type Compiler interface {
	Compile(req compileuc.FlattenRequest) (string, error)
}

// TypeRegistry lists the registered data types.
type TypeRegistry interface {
	Types() []string
}
