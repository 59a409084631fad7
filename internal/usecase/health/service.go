package health

import (
	"context"
	"slices"

	"github.com/kailas-cloud/solrkeys/internal/domain/keys"
	"github.com/kailas-cloud/solrkeys/internal/domain/parsemode"
	compileuc "github.com/kailas-cloud/solrkeys/internal/usecase/compile"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the compiler itself is broken.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Canary query compiled by every check. Direct mode never escapes, so the
// expected output does not depend on the configured escaper.
const (
	canaryQuery = "*:*"
	canaryField = "id"
	canaryWant  = "id:(*:*)"
)

// Data types sort resolution and field naming cannot work without.
var requiredTypes = []string{"string", "text"}

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	compiler Compiler
	types    TypeRegistry
}

// New creates a Service. types can be nil.
func New(compiler Compiler, types TypeRegistry) *Service {
	return &Service{compiler: compiler, types: types}
}

// Check runs the self-test against all components.
func (s *Service) Check(_ context.Context) Report {
	checks := make(map[string]CheckResult)

	q, err := s.compiler.Compile(compileuc.FlattenRequest{
		Keys:   keys.Term(canaryQuery),
		Fields: []string{canaryField},
		Mode:   parsemode.Direct,
	})
	if err != nil || q != canaryWant {
		checks["compiler"] = CheckError
	} else {
		checks["compiler"] = CheckOK
	}

	if s.types != nil {
		checks["data_types"] = CheckOK
		registered := s.types.Types()
		for _, t := range requiredTypes {
			if !slices.Contains(registered, t) {
				checks["data_types"] = CheckError
				break
			}
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks["compiler"] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}
