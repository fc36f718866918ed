package fake

import (
	"context"
	"sync"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
)

// Oracle is a scriptable adapters.Oracle keyed by stage name. Tests
// preload a verdict per stage; unscripted stages return a zero-value
// (failing) result rather than an error, matching an oracle that
// genuinely has no opinion.
type Oracle struct {
	mu       sync.Mutex
	byStage  map[string]*domain.OracleResult
	Requests []OracleRequest
}

// OracleRequest records one Judge call for assertions.
type OracleRequest struct {
	Stage      string
	Submission string
	GroundTruth any
}

// NewOracle creates a fake Oracle with the given stage->verdict map.
func NewOracle(byStage map[string]*domain.OracleResult) *Oracle {
	if byStage == nil {
		byStage = make(map[string]*domain.OracleResult)
	}
	return &Oracle{byStage: byStage}
}

func (o *Oracle) Judge(_ context.Context, stage, submission string, groundTruth any) (*domain.OracleResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Requests = append(o.Requests, OracleRequest{Stage: stage, Submission: submission, GroundTruth: groundTruth})

	stage = domain.NormalizeStage(stage)
	if result, ok := o.byStage[stage]; ok {
		return result, nil
	}
	return &domain.OracleResult{Success: false}, nil
}
