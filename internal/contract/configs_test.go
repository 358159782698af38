package contract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/gitcat/schema"
)

// validInput returns raw input matching the CLI defaults.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Output:      "text",
		Workers:     4,
		Color:       "yes",
		LogLevel:    "warn",
		RunsBackend: "none",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*ConfigRawInput)
		expectError string
		check       func(*testing.T, *Config)
	}{
		{
			name: "valid minimal config",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.TextOut, cfg.Output)
				assert.Equal(t, 4, cfg.Workers)
				assert.Equal(t, DefaultTimeout, cfg.Timeout)
				assert.Equal(t, DefaultDebounce, cfg.Debounce)
				assert.Equal(t, schema.NoneBackend, cfg.RunsBackend)
				assert.True(t, cfg.UseColors)
				assert.Empty(t, cfg.RepoPath)
			},
		},
		{
			name: "custom durations and revision",
			modify: func(in *ConfigRawInput) {
				in.Timeout = "5s"
				in.Debounce = "1s"
				in.Rev = "  HEAD~3 "
				in.Color = "no"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 5*time.Second, cfg.Timeout)
				assert.Equal(t, time.Second, cfg.Debounce)
				assert.Equal(t, "HEAD~3", cfg.Revision)
				assert.False(t, cfg.UseColors)
			},
		},
		{
			name:   "zero timeout disables the limit",
			modify: func(in *ConfigRawInput) { in.Timeout = "0s" },
			check: func(t *testing.T, cfg *Config) {
				assert.Zero(t, cfg.Timeout)
			},
		},
		{
			name:   "empty backend means none",
			modify: func(in *ConfigRawInput) { in.RunsBackend = "" },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.NoneBackend, cfg.RunsBackend)
			},
		},
		{
			name:        "invalid output",
			modify:      func(in *ConfigRawInput) { in.Output = "xml" },
			expectError: "invalid output format",
		},
		{
			name:        "parquet needs a file",
			modify:      func(in *ConfigRawInput) { in.Output = "parquet" },
			expectError: "parquet output requires --output-file",
		},
		{
			name:        "zero workers",
			modify:      func(in *ConfigRawInput) { in.Workers = 0 },
			expectError: "workers must be greater than 0",
		},
		{
			name:        "too many workers",
			modify:      func(in *ConfigRawInput) { in.Workers = MaxWorkers + 1 },
			expectError: "cannot exceed",
		},
		{
			name:        "bad timeout",
			modify:      func(in *ConfigRawInput) { in.Timeout = "soon" },
			expectError: "invalid --timeout value",
		},
		{
			name:        "negative timeout",
			modify:      func(in *ConfigRawInput) { in.Timeout = "-1s" },
			expectError: "timeout cannot be negative",
		},
		{
			name:        "zero debounce",
			modify:      func(in *ConfigRawInput) { in.Debounce = "0s" },
			expectError: "debounce must be positive",
		},
		{
			name:        "bad color",
			modify:      func(in *ConfigRawInput) { in.Color = "maybe" },
			expectError: "invalid --color value",
		},
		{
			name:        "bad log level",
			modify:      func(in *ConfigRawInput) { in.LogLevel = "chatty" },
			expectError: "invalid log level",
		},
		{
			name:        "bad backend",
			modify:      func(in *ConfigRawInput) { in.RunsBackend = "oracle" },
			expectError: "invalid runs backend",
		},
		{
			name: "mysql without connection",
			modify: func(in *ConfigRawInput) {
				in.RunsBackend = "mysql"
			},
			expectError: "runs-db-connect is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			if tt.modify != nil {
				tt.modify(input)
			}
			cfg := &Config{}
			err := ProcessAndValidate(context.Background(), cfg, new(MockExecutor), input)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestProcessAndValidate_Repo(t *testing.T) {
	ctx := context.Background()
	absRepo, err := filepath.Abs("some/repo")
	require.NoError(t, err)

	t.Run("resolved to root", func(t *testing.T) {
		mockExec := new(MockExecutor)
		mockExec.On("Execute", ctx, absRepo, "rev-parse", "--show-toplevel").Return("/mock/root\n", nil).Once()

		input := validInput()
		input.Repo = "some/repo"
		cfg := &Config{}
		require.NoError(t, ProcessAndValidate(ctx, cfg, mockExec, input))
		assert.Equal(t, "/mock/root", cfg.RepoPath)
		mockExec.AssertExpectations(t)
	})

	t.Run("not a repository", func(t *testing.T) {
		mockExec := new(MockExecutor)
		mockExec.On("Execute", ctx, absRepo, "rev-parse", "--show-toplevel").
			Return("", errors.New("fatal: not a git repository")).Once()

		input := validInput()
		input.Repo = "some/repo"
		err := ProcessAndValidate(ctx, &Config{}, mockExec, input)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not inside a Git repository")
	})
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none empty", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/gitcat", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/gitcat", true},
		{"mysql missing db", schema.MySQLBackend, "user@tcp(localhost:3306)", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost dbname=gitcat", false},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=gitcat", true},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
		{"postgres empty", schema.PostgreSQLBackend, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("configured repository", func(t *testing.T) {
		cfg := &Config{RepoPath: "/mock/root", Revision: "v1"}
		req, err := BuildRequest(ctx, cfg, new(MockExecutor), "/mock/root/src/a.go")
		require.NoError(t, err)
		assert.Equal(t, filepath.FromSlash("/mock/root"), req.RepoRoot)
		assert.Equal(t, "v1", req.SourceRevision)
		assert.Equal(t, "src/a.go", req.RelativePath())
	})

	t.Run("discovered from nearest existing directory", func(t *testing.T) {
		dir, err := filepath.EvalSymlinks(t.TempDir())
		require.NoError(t, err)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))

		mockExec := new(MockExecutor)
		mockExec.On("Execute", ctx, filepath.Join(dir, "src"), "rev-parse", "--show-toplevel").
			Return(filepath.ToSlash(dir)+"\n", nil).Once()

		// The "deleted" directory does not exist, so discovery starts from src.
		req, err := BuildRequest(ctx, &Config{}, mockExec, filepath.Join(dir, "src", "deleted", "a.go"))
		require.NoError(t, err)
		assert.Equal(t, dir, req.RepoRoot)
		assert.Equal(t, "src/deleted/a.go", req.RelativePath())
		assert.Empty(t, req.SourceRevision)
		mockExec.AssertExpectations(t)
	})

	t.Run("no repository", func(t *testing.T) {
		mockExec := new(MockExecutor)
		mockExec.On("Execute", ctx, mock.Anything, "rev-parse", "--show-toplevel").
			Return("", errors.New("fatal: not a git repository")).Once()

		_, err := BuildRequest(ctx, &Config{}, mockExec, filepath.Join(t.TempDir(), "a.go"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot find the Git repository")
	})
}

func TestConfig_Clone(t *testing.T) {
	cfg := &Config{Revision: "HEAD", Workers: 2}
	clone := cfg.Clone()
	clone.Revision = "v2"
	assert.Equal(t, "HEAD", cfg.Revision)
	assert.Equal(t, 2, clone.Workers)
}

func TestConfig_NewExecutor(t *testing.T) {
	cfg := &Config{GitBinary: "", Timeout: time.Second}
	executor := cfg.NewExecutor()
	assert.Equal(t, DefaultGitBinary, executor.Binary)
	assert.Equal(t, time.Second, executor.Timeout)
}
