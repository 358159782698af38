package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/gitcat/schema"
)

// Default values for configuration.
const (
	DefaultDebounce = 150 * time.Millisecond
	MaxWorkers      = 256
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for gitcat.
// This struct is the "final, validated" config.
type Config struct {
	RepoPath    string // empty means discover the repository from each file
	Revision    string
	Output      schema.OutputMode
	OutputFile  string
	Workers     int
	Timeout     time.Duration
	GitBinary   string
	WithContent bool
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool
	LogLevel    string
	Debounce    time.Duration

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Repo          string `mapstructure:"repo"`
	Rev           string `mapstructure:"rev"`
	Output        string `mapstructure:"output"`
	OutputFile    string `mapstructure:"output-file"`
	Timeout       string `mapstructure:"timeout"`
	GitBinary     string `mapstructure:"git-binary"`
	Width         int    `mapstructure:"width"`
	Color         string `mapstructure:"color"`
	LogLevel      string `mapstructure:"log-level"`
	RunsBackend   string `mapstructure:"runs-backend"`
	RunsDBConnect string `mapstructure:"runs-db-connect"`

	// --- Fields from batchCmd.Flags() ---
	Workers int  `mapstructure:"workers"`
	Content bool `mapstructure:"content"`

	// --- Fields from watchCmd.Flags() ---
	Debounce string `mapstructure:"debounce"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// NewExecutor builds the executor described by the config.
func (c *Config) NewExecutor() *LocalGitExecutor {
	return NewLocalGitExecutor(c.GitBinary, c.Timeout)
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, executor Executor, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := resolveRepoPath(ctx, cfg, executor, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("runs-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("runs-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates the run tracking backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend := strings.ToLower(strings.TrimSpace(input.RunsBackend))
	if backend == "" {
		backend = string(schema.NoneBackend)
	}
	cfg.RunsBackend = schema.DatabaseBackend(backend)
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	return ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect)
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.Revision = strings.TrimSpace(input.Rev)
	cfg.OutputFile = input.OutputFile
	cfg.GitBinary = input.GitBinary
	cfg.WithContent = input.Content
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	// --- 2. Workers Validation ---
	if input.Workers <= 0 || input.Workers > MaxWorkers {
		return fmt.Errorf("workers must be greater than 0 and cannot exceed %d (received %d)", MaxWorkers, input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Durations ---
	cfg.Timeout = DefaultTimeout
	if input.Timeout != "" {
		timeout, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid --timeout value '%s': %w", input.Timeout, err)
		}
		if timeout < 0 {
			return fmt.Errorf("timeout cannot be negative (received %s)", input.Timeout)
		}
		cfg.Timeout = timeout
	}

	cfg.Debounce = DefaultDebounce
	if input.Debounce != "" {
		debounce, err := time.ParseDuration(input.Debounce)
		if err != nil {
			return fmt.Errorf("invalid --debounce value '%s': %w", input.Debounce, err)
		}
		if debounce <= 0 {
			return fmt.Errorf("debounce must be positive (received %s)", input.Debounce)
		}
		cfg.Debounce = debounce
	}

	// --- 4. Log Level ---
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(input.LogLevel))
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "warn"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level '%s'. must be debug, info, warn, error", input.LogLevel)
	}

	return nil
}

// resolveRepoPath resolves an explicit --repo to its repository root.
func resolveRepoPath(ctx context.Context, cfg *Config, executor Executor, input *ConfigRawInput) error {
	if strings.TrimSpace(input.Repo) == "" {
		cfg.RepoPath = ""
		return nil
	}
	absRepo, err := filepath.Abs(input.Repo)
	if err != nil {
		return err
	}
	root, err := RepoRoot(ctx, executor, absRepo)
	if err != nil {
		return fmt.Errorf("%q is not inside a Git repository: %w", input.Repo, err)
	}
	cfg.RepoPath = root
	return nil
}

// BuildRequest turns a user-supplied path into a content request. The path is
// made absolute and, when no repository is configured, the repository is
// discovered from the nearest existing ancestor directory of the file.
func BuildRequest(ctx context.Context, cfg *Config, executor Executor, path string) (schema.ContentRequest, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return schema.ContentRequest{}, err
	}
	absPath = canonicalPath(absPath)

	root := cfg.RepoPath
	if root == "" {
		root, err = RepoRoot(ctx, executor, nearestExistingDir(filepath.Dir(absPath)))
		if err != nil {
			return schema.ContentRequest{}, fmt.Errorf("cannot find the Git repository for %q: %w", path, err)
		}
	}
	root = filepath.FromSlash(root)

	return schema.ContentRequest{
		FilePath:       absPath,
		RepoRoot:       root,
		SourceRevision: cfg.Revision,
	}, nil
}

// nearestExistingDir walks up from dir until it finds a directory on disk.
func nearestExistingDir(dir string) string {
	for {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

// canonicalPath resolves symlinks in the existing part of path so it lines up
// with the root git reports.
func canonicalPath(path string) string {
	existing := nearestExistingDir(filepath.Dir(path))
	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return path
	}
	rest, err := filepath.Rel(existing, path)
	if err != nil {
		return path
	}
	return filepath.Join(resolved, rest)
}
