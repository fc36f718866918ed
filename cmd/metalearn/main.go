// Command metalearn drives the closed-loop meta-learning engine: it
// wires the Trace Store, Point Manager, Guideline Generator, Pattern
// Analyzer, LLM Optimizer, Tool-Call Interceptor and Learning
// Orchestrator together, then runs the multi-round loop described by a
// YAML run config and a set of CLI flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters/fake"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/analyzer"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/config"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/guideline"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/httpapi"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/interceptor"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/llmclient"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/masking"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/optimizer"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/orchestrator"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/points"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/trace"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/version"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if len(os.Args) < 2 || os.Args[1] != "run" {
		fmt.Fprintln(os.Stderr, "usage: metalearn run [flags]")
		os.Exit(2)
	}

	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", getEnv("METALEARN_CONFIG", "./metalearn.yaml"), "path to the YAML run config")
	envPath := fs.String("env-file", getEnv("METALEARN_ENV_FILE", ".env"), "path to a .env file to load before reading configuration")
	rounds := fs.Int("rounds", 0, "number of rounds to run (overrides the YAML config's rounds)")
	delayBetweenProblems := fs.Duration("delay-between-problems", 0, "delay between problems within a round (overrides the YAML config)")
	delayBetweenRounds := fs.Duration("delay-between-rounds", 0, "delay between rounds (overrides the YAML config)")
	model := fs.String("model", "", "LLM model id (overrides LLM_MODEL)")
	successWeight := fs.Float64("success-weight", 0, "reward success weight (overrides the YAML config's reward.success_weight)")
	latencyWeight := fs.Float64("latency-weight", 0, "reward latency weight (overrides the YAML config's reward.latency_weight)")
	attemptsWeight := fs.Float64("attempts-weight", 0, "reward attempts weight (overrides the YAML config's reward.attempts_weight)")
	startRound := fs.Int("start-round", 0, "round number to start at; requires --resume-from unless it is 1")
	resumeFrom := fs.String("resume-from", "", "path to a previous round's prompts/ directory; learned points are copied from the sibling points/ directory")
	httpAddr := fs.String("http-addr", "", "optional address to serve the read-only status HTTP surface on (e.g. :8090)")
	if err := fs.Parse(os.Args[2:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	if err := godotenv.Load(*envPath); err != nil {
		log.Printf("no .env file loaded from %s: %v (continuing with existing environment)", *envPath, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config %s: %v", *configPath, err)
	}
	applyFlagOverrides(cfg, *rounds, *delayBetweenProblems, *delayBetweenRounds, *successWeight, *latencyWeight, *attemptsWeight, *startRound, *resumeFrom)

	llmCfg := llmclient.FromEnv()
	if *model != "" {
		llmCfg.Model = *model
	}
	llm, err := llmclient.New(llmCfg)
	if err != nil {
		log.Fatalf("build LLM client: %v", err)
	}

	logger := slog.Default()
	logger.Info("starting metalearn", "version", version.Full(), "model", llmCfg.Model, "rounds", cfg.Orchestrator.Rounds)

	orch, status := buildOrchestrator(cfg, llm, logger)

	var httpSrv *httpapi.Server
	addr := *httpAddr
	if addr == "" {
		addr = cfg.HTTPAddr
	}
	if addr != "" {
		httpSrv = httpapi.New(status, cfg.HTTPMode)
		go func() {
			if err := httpSrv.Start(addr); err != nil {
				logger.Warn("status HTTP server stopped", "error", err)
			}
		}()
		logger.Info("status HTTP surface listening", "addr", addr)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	summary, runErr := orch.Run(ctx, cfg.Orchestrator)
	if httpSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = httpSrv.Shutdown(shutdownCtx)
		shutdownCancel()
	}

	if summary != nil {
		logger.Info("run finished", "run_root", summary.RunRoot, "rounds_completed", len(summary.Rounds))
	}
	if runErr != nil {
		log.Fatalf("run failed: %v", runErr)
	}
}

func applyFlagOverrides(cfg *config.RunConfig, rounds int, delayProblems, delayRounds time.Duration, successW, latencyW, attemptsW float64, startRound int, resumeFrom string) {
	if rounds > 0 {
		cfg.Orchestrator.Rounds = rounds
	}
	if delayProblems > 0 {
		cfg.Orchestrator.InterProblemDelay = delayProblems
	}
	if delayRounds > 0 {
		cfg.Orchestrator.InterRoundDelay = delayRounds
	}
	if successW != 0 {
		cfg.Orchestrator.Reward.SuccessWeight = successW
	}
	if latencyW != 0 {
		cfg.Orchestrator.Reward.LatencyWeight = latencyW
	}
	if attemptsW != 0 {
		cfg.Orchestrator.Reward.AttemptsWeight = attemptsW
	}
	if startRound > 0 {
		cfg.Orchestrator.StartRound = startRound
	}
	if resumeFrom != "" {
		cfg.Orchestrator.ResumeFromPromptsDir = resumeFrom
		cfg.Orchestrator.ResumeFromPointsDir = filepath.Join(filepath.Dir(resumeFrom), "points")
	}
}

// buildOrchestrator wires every in-repo component together. The four
// genuinely external collaborators this system treats as fixed
// interfaces (cluster/fault-injector access, the tool/MCP surface, the
// task-agent runtime, and oracle judging) have no production
// implementation in this repo by design — pkg/adapters/fake stands in
// for them here so the binary is runnable standalone; a real deployment
// substitutes its own adapters.AgentRuntime, adapters.Oracle and
// adapters.ToolCaller wired in their place.
func buildOrchestrator(cfg *config.RunConfig, llm adapters.LLM, logger *slog.Logger) (*orchestrator.Orchestrator, *httpapi.Status) {
	store := trace.NewStore("")
	pointsMgr := points.New(points.WithConflictJudge(llm), points.WithUsageClassifier(llm))
	gen := guideline.New(pointsMgr, cfg.BasePrompts)
	an := analyzer.New()
	opt := optimizer.New(llm)

	toolCaller := fake.NewToolCaller(nil)
	icpt := interceptor.New(toolCaller, store, masking.NewService(true), true)
	runtime := fake.NewAgentRuntime(icpt)
	oracle := fake.NewOracle(nil)

	status := httpapi.NewStatus()

	orch := orchestrator.New(orchestrator.Deps{
		Store:       store,
		Points:      pointsMgr,
		Generator:   gen,
		Analyzer:    an,
		Optimizer:   opt,
		Interceptor: icpt,
		Runtime:     runtime,
		Oracle:      oracle,
		Logger:      logger,
		OnRound:     status.RecordRound,
	})
	if cfg.Orchestrator.OutputRoot != "" {
		status.SetRunRoot(cfg.Orchestrator.OutputRoot)
	}
	return orch, status
}
