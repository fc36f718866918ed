// Package orchestrator implements the Learning Orchestrator (C6): it
// drives the multi-round loop — seed or carry over points, run every
// problem for a round through the agent pipeline, validate which points
// were used, then run the learning cycle (pattern analysis, LLM
// optimization, prompt rebuild) before persisting the round and moving
// on. It is the only component that writes to a round's directories;
// every other component only reads within a round.
package orchestrator

import (
	"log/slog"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/analyzer"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/guideline"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/interceptor"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/optimizer"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/points"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/trace"
)

// Deps are the Orchestrator's collaborators. Every field is required
// except Logger, which defaults to slog.Default().
type Deps struct {
	Store       *trace.Store
	Points      *points.Manager
	Generator   *guideline.Generator
	Analyzer    *analyzer.Analyzer
	Optimizer   *optimizer.Optimizer
	Interceptor *interceptor.Interceptor
	Runtime     adapters.AgentRuntime
	Oracle      adapters.Oracle
	Logger      *slog.Logger

	// OnRound, if set, is invoked synchronously after each round finishes
	// (whether it succeeded or failed) — wired by cmd/metalearn to update
	// the optional HTTP status surface an operator can poll mid-run.
	OnRound func(RoundInfo)
}

// Orchestrator is the Learning Orchestrator (C6).
type Orchestrator struct {
	store       *trace.Store
	points      *points.Manager
	generator   *guideline.Generator
	analyzer    *analyzer.Analyzer
	optimizer   *optimizer.Optimizer
	interceptor *interceptor.Interceptor
	runtime     adapters.AgentRuntime
	oracle      adapters.Oracle
	log         *slog.Logger
	onRound     func(RoundInfo)
}

// New creates an Orchestrator over deps.
func New(deps Deps) *Orchestrator {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		store:       deps.Store,
		points:      deps.Points,
		generator:   deps.Generator,
		analyzer:    deps.Analyzer,
		optimizer:   deps.Optimizer,
		interceptor: deps.Interceptor,
		runtime:     deps.Runtime,
		oracle:      deps.Oracle,
		log:         log,
		onRound:     deps.OnRound,
	}
}
