package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/optimizer"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/orchestrator"
)

// RunConfig is the fully resolved, ready-to-use configuration for one
// invocation of cmd/metalearn: the Orchestrator.Run parameters plus the
// ambient pieces the Orchestrator doesn't own (base prompts, the
// optional status HTTP surface).
type RunConfig struct {
	Orchestrator orchestrator.RunConfig
	BasePrompts  map[domain.AgentKind]string
	HTTPAddr     string
	HTTPMode     string
}

// Load reads, expands, parses, defaults, and validates the run config
// at path. Relative base_prompts entries are resolved against path's
// directory, so a run config and its prompt files can move together.
func Load(path string) (*RunConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, NewLoadError(path, err)
	}
	raw = ExpandEnv(raw)

	var yc RunYAMLConfig
	if err := yaml.Unmarshal(raw, &yc); err != nil {
		return nil, NewLoadError(path, fmt.Errorf("%w: %v", ErrInvalidYAML, err))
	}

	cfg, err := resolve(&yc, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolve(yc *RunYAMLConfig, baseDir string) (*RunConfig, error) {
	interProblem, err := defaultDuration(yc.InterProblemDelay, defaultInterProblemDelay)
	if err != nil {
		return nil, NewValidationError("inter_problem_delay", err)
	}
	interRound, err := defaultDuration(yc.InterRoundDelay, defaultInterRoundDelay)
	if err != nil {
		return nil, NewValidationError("inter_round_delay", err)
	}

	reward, err := resolveReward(yc.Reward)
	if err != nil {
		return nil, err
	}

	basePrompts, err := resolveBasePrompts(yc.BasePrompts, baseDir)
	if err != nil {
		return nil, err
	}

	problems, err := resolveProblems(yc.Problems)
	if err != nil {
		return nil, err
	}

	rc := orchestrator.RunConfig{
		OutputRoot:         yc.OutputRoot,
		Problems:           problems,
		Rounds:             yc.Rounds,
		StartRound:         yc.StartRound,
		InterProblemDelay:  interProblem,
		InterRoundDelay:    interRound,
		OptimizerMinTraces: yc.OptimizerMinTraces,
		Reward:             reward,
	}

	if yc.Resume != nil {
		rc.RunRootPath = yc.Resume.RunRootPath
		rc.ResumeFromPointsDir = yc.Resume.FromPointsDir
		rc.ResumeFromPromptsDir = yc.Resume.FromPromptsDir
		if len(yc.Resume.FromVersions) > 0 {
			rc.ResumeFromVersions = make(map[domain.AgentKind]string, len(yc.Resume.FromVersions))
			for k, v := range yc.Resume.FromVersions {
				kind, err := domain.ParseAgentKind(k)
				if err != nil {
					return nil, NewValidationError("resume.from_versions", err)
				}
				rc.ResumeFromVersions[kind] = v
			}
		}
	}

	cfg := &RunConfig{
		Orchestrator: rc,
		BasePrompts:  basePrompts,
		HTTPMode:     defaultHTTPMode,
	}
	if yc.HTTP != nil {
		cfg.HTTPAddr = yc.HTTP.Addr
		if yc.HTTP.Mode != "" {
			cfg.HTTPMode = yc.HTTP.Mode
		}
	}
	return cfg, nil
}

// resolveReward starts from optimizer.DefaultRewardSpec and overrides
// only the weights the YAML actually set — pointer fields so an
// explicit zero weight is distinguishable from "not set", which rules
// out mergo's zero-value-means-unset merge semantics here.
func resolveReward(y *RewardYAMLConfig) (optimizer.RewardSpec, error) {
	spec := optimizer.DefaultRewardSpec()
	if y == nil {
		return spec, nil
	}
	if y.SuccessWeight != nil {
		spec.SuccessWeight = *y.SuccessWeight
	}
	if y.LatencyWeight != nil {
		spec.LatencyWeight = *y.LatencyWeight
	}
	if y.AttemptsWeight != nil {
		spec.AttemptsWeight = *y.AttemptsWeight
	}
	return spec, nil
}

func resolveBasePrompts(paths map[string]string, baseDir string) (map[domain.AgentKind]string, error) {
	result := make(map[domain.AgentKind]string, len(paths))
	for k, p := range paths {
		kind, err := domain.ParseAgentKind(k)
		if err != nil {
			return nil, NewValidationError("base_prompts", err)
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, NewLoadError(p, err)
		}
		result[kind] = string(data)
	}
	return result, nil
}

func resolveProblems(yps []ProblemYAMLConfig) ([]orchestrator.ProblemSpec, error) {
	specs := make([]orchestrator.ProblemSpec, 0, len(yps))
	for _, yp := range yps {
		if yp.ProblemID == "" {
			return nil, NewValidationError("problems[].problem_id", fmt.Errorf("must not be empty"))
		}
		specs = append(specs, orchestrator.ProblemSpec{
			Context: domain.ProblemContext{
				ProblemID:   yp.ProblemID,
				Application: yp.Application,
				Namespace:   yp.Namespace,
				Description: yp.Description,
				FaultTag:    yp.FaultTag,
				Snapshot:    yp.Snapshot,
			},
			GroundTruth: yp.GroundTruth,
		})
	}
	return specs, nil
}
