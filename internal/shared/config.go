package shared

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Project struct {
		Visibility  string `yaml:"visibility"`  // "proprietary"|"open-source"
		Environment string `yaml:"environment"` // "production"|"internal"
	} `yaml:"project"`

	Analysis struct {
		Workers                 int      `yaml:"workers"`                    // 0 = NumCPU
		MaxFileBytes            int64    `yaml:"max_file_bytes"`             // 1 MiB
		MaxMatchesPerCheckpoint int      `yaml:"max_matches_per_checkpoint"` // per file
		MaxEvidenceLines        int      `yaml:"max_evidence_lines"`
		CheckpointPacks         []string `yaml:"checkpoint_packs"` // YAML pack paths
	} `yaml:"analysis"`

	Rules struct {
		SeverityThreshold string   `yaml:"severity_threshold"` // "INFO" (default)
		Disabled          []string `yaml:"disabled"`
		Gate              string   `yaml:"gate"` // severity that blocks, "CRITICAL"
	} `yaml:"rules"`

	Severity struct {
		// ContextRules replaces the built-in table when non-empty.
		ContextRules []ContextRuleConfig `yaml:"context_rules"`
	} `yaml:"severity"`

	Database struct {
		Driver string `yaml:"driver"` // "sqlite" (default)
		DSN    string `yaml:"dsn"`    // "./oversight.db"
	} `yaml:"database"`

	Reporting struct {
		OutDir string `yaml:"out_dir"` // "./reports"
	} `yaml:"reporting"`

	Logging struct {
		Format string `yaml:"format"` // "json"|"console"
		Level  string `yaml:"level"`  // "info"|"debug"|"warn"|"error"
	} `yaml:"logging"`

	API struct {
		Addr           string        `yaml:"addr"`
		SessionTTL     time.Duration `yaml:"session_ttl"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
	} `yaml:"api"`
}

// ContextRuleConfig is the YAML form of a severity context rule.
type ContextRuleConfig struct {
	Checkpoint  string `yaml:"checkpoint"`
	Category    string `yaml:"category"`
	Visibility  string `yaml:"visibility"`
	Environment string `yaml:"environment"`
	Set         string `yaml:"set"`
	Shift       int    `yaml:"shift"`
}

func DefaultConfig() Config {
	var c Config
	c.Project.Visibility = "proprietary"
	c.Project.Environment = "production"
	c.Analysis.MaxFileBytes = 1 << 20
	c.Analysis.MaxMatchesPerCheckpoint = 50
	c.Analysis.MaxEvidenceLines = 12
	c.Rules.SeverityThreshold = "INFO"
	c.Rules.Gate = "CRITICAL"
	c.Database.Driver = "sqlite"
	c.Database.DSN = "./oversight.db"
	c.Reporting.OutDir = "./reports"
	c.Logging.Format = "json"
	c.Logging.Level = "info"
	c.API.Addr = ":8080"
	c.API.SessionTTL = 12 * time.Hour
	return c
}

// LoadConfig applies defaults, then the YAML file (if path is set), then
// environment overrides. A missing file is an error; an empty path is not.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	// Env overrides (simple, explicit)
	if v := os.Getenv("OVERSIGHT_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("OVERSIGHT_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("OVERSIGHT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("OVERSIGHT_OUT_DIR"); v != "" {
		c.Reporting.OutDir = v
	}
	if v := os.Getenv("OVERSIGHT_VISIBILITY"); v != "" {
		c.Project.Visibility = v
	}
	if v := os.Getenv("OVERSIGHT_ENVIRONMENT"); v != "" {
		c.Project.Environment = v
	}
	if v := os.Getenv("OVERSIGHT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Analysis.Workers = n
		}
	}
	c.Project.Visibility = strings.ToLower(strings.TrimSpace(c.Project.Visibility))
	c.Project.Environment = strings.ToLower(strings.TrimSpace(c.Project.Environment))
	return c, nil
}
