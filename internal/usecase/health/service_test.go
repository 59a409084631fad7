package health

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/solrkeys/internal/datatype"
	"github.com/kailas-cloud/solrkeys/internal/flatten"
	"github.com/kailas-cloud/solrkeys/internal/sortfield"
	compileuc "github.com/kailas-cloud/solrkeys/internal/usecase/compile"
)

// --- Mocks ---

type mockCompiler struct {
	query string
	err   error
}

func (m *mockCompiler) Compile(_ compileuc.FlattenRequest) (string, error) {
	return m.query, m.err
}

type mockRegistry struct {
	types []string
}

func (m *mockRegistry) Types() []string { return m.types }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	reg := datatype.New(nil)
	compiler := compileuc.New(flatten.New(), sortfield.New(), reg)

	r := New(compiler, reg).Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["compiler"] != CheckOK {
		t.Errorf("expected compiler %q, got %q", CheckOK, r.Checks["compiler"])
	}
	if r.Checks["data_types"] != CheckOK {
		t.Errorf("expected data_types %q, got %q", CheckOK, r.Checks["data_types"])
	}
}

func TestCheck_CompilerError(t *testing.T) {
	svc := New(&mockCompiler{err: errors.New("boom")}, &mockRegistry{types: requiredTypes})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["compiler"] != CheckError {
		t.Errorf("expected compiler %q, got %q", CheckError, r.Checks["compiler"])
	}
}

func TestCheck_CompilerWrongOutput(t *testing.T) {
	svc := New(&mockCompiler{query: "id:*"}, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_MissingDataTypes(t *testing.T) {
	svc := New(&mockCompiler{query: canaryWant}, &mockRegistry{types: []string{"string"}})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["data_types"] != CheckError {
		t.Errorf("expected data_types %q, got %q", CheckError, r.Checks["data_types"])
	}
	if r.Checks["compiler"] != CheckOK {
		t.Errorf("expected compiler %q, got %q", CheckOK, r.Checks["compiler"])
	}
}

func TestCheck_NoRegistry(t *testing.T) {
	svc := New(&mockCompiler{query: canaryWant}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["data_types"]; ok {
		t.Error("data_types check should be absent when the registry is nil")
	}
}
