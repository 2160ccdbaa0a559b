// Package api provides the gRPC DosageService implementation.
package api

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/solatis/dosecalc/internal/localize"
	"github.com/solatis/dosecalc/internal/rules"
	"github.com/solatis/dosecalc/internal/types"
)

// RuleSource supplies a drug's rules in evaluation order. Unknown drugs
// return types.ErrDrugNotFound.
type RuleSource interface {
	Rules(ctx context.Context, drugID types.DrugID) ([]types.Rule, error)
}

// DosageService implements DosageServer.
// Thin orchestration layer delegating to the store, rules and localize packages.
type DosageService struct {
	source    RuleSource
	engine    *rules.Engine
	localizer *localize.Localizer
	log       logrus.FieldLogger
}

// NewDosageService creates service instance with dependencies.
func NewDosageService(source RuleSource, engine *rules.Engine, localizer *localize.Localizer, log logrus.FieldLogger) (*DosageService, error) {
	if source == nil {
		return nil, fmt.Errorf("source cannot be nil")
	}
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if localizer == nil {
		return nil, fmt.Errorf("localizer cannot be nil")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &DosageService{
		source:    source,
		engine:    engine,
		localizer: localizer,
		log:       log,
	}, nil
}
