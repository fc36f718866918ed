package config

// RunYAMLConfig is the top-level shape of a run's YAML configuration
// file: where to write round output, how many rounds to run, the fixed
// problem list, each AgentKind's base prompt, reward shaping, and the
// optional status HTTP surface.
type RunYAMLConfig struct {
	OutputRoot         string              `yaml:"output_root"`
	Rounds             int                 `yaml:"rounds"`
	StartRound         int                 `yaml:"start_round,omitempty"`
	InterProblemDelay  string              `yaml:"inter_problem_delay,omitempty"`
	InterRoundDelay    string              `yaml:"inter_round_delay,omitempty"`
	OptimizerMinTraces int                 `yaml:"optimizer_min_traces,omitempty"`
	Reward             *RewardYAMLConfig   `yaml:"reward,omitempty"`
	BasePrompts        map[string]string   `yaml:"base_prompts"`
	Problems           []ProblemYAMLConfig `yaml:"problems"`
	HTTP               *HTTPYAMLConfig     `yaml:"http,omitempty"`
	Resume             *ResumeYAMLConfig   `yaml:"resume,omitempty"`
}

// RewardYAMLConfig overrides optimizer.DefaultRewardSpec's weights.
type RewardYAMLConfig struct {
	SuccessWeight  *float64 `yaml:"success_weight,omitempty"`
	LatencyWeight  *float64 `yaml:"latency_weight,omitempty"`
	AttemptsWeight *float64 `yaml:"attempts_weight,omitempty"`
}

// ProblemYAMLConfig is one fixed problem run every round.
type ProblemYAMLConfig struct {
	ProblemID   string         `yaml:"problem_id"`
	Application string         `yaml:"application"`
	Namespace   string         `yaml:"namespace"`
	Description string         `yaml:"description"`
	FaultTag    string         `yaml:"fault_tag,omitempty"`
	Snapshot    map[string]any `yaml:"initial_snapshot,omitempty"`
	// GroundTruth is passed through to the oracle verbatim; its shape is
	// oracle-specific so it is left untyped here.
	GroundTruth any `yaml:"ground_truth,omitempty"`
}

// HTTPYAMLConfig configures the optional status HTTP surface.
type HTTPYAMLConfig struct {
	Addr string `yaml:"addr,omitempty"`
	Mode string `yaml:"mode,omitempty"`
}

// ResumeYAMLConfig points a run at a previous run's output to continue
// from, instead of starting fresh at round 1.
type ResumeYAMLConfig struct {
	RunRootPath    string            `yaml:"run_root_path,omitempty"`
	FromPointsDir  string            `yaml:"from_points_dir,omitempty"`
	FromPromptsDir string            `yaml:"from_prompts_dir,omitempty"`
	FromVersions   map[string]string `yaml:"from_versions,omitempty"`
}
