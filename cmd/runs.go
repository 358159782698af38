package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/gitcat/internal/contract"
	"github.com/huangsam/gitcat/internal/iostore"
	"github.com/huangsam/gitcat/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsBackendConfig reads and validates the run tracking backend settings.
func runsBackendConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	// Handle empty backend as NoneBackend
	backendStr := strings.ToLower(strings.TrimSpace(viper.GetString("runs-backend")))
	backend := schema.NoneBackend
	if backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", backendStr)
	}

	connStr := viper.GetString("runs-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run store operations.
// This is used by commands that need store access without full shared setup.
func runsSetup() error {
	backend, connStr, err := runsBackendConfig()
	if err != nil {
		return err
	}

	if err := iostore.InitStore(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run tracking: %w", err)
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads the backend settings without opening the store,
// so migrations can run on a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := runsBackendConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunsDBFilePath()
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	return nil
}

// runsCmd focused on run tracking management.
//
// Note: Runs subcommands use minimal initialization (runsSetup) instead of
// the full sharedSetup. This avoids Git repo validation and complex config
// processing for simple store operations.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage run tracking and exports",
	Long: `Manage the history of gitcat runs.

When enabled with --runs-backend, gitcat records every show and batch run:
- Run metadata (command, timestamps, configuration, duration)
- The outcome of every file resolution (source, size, status, error)

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show run tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  GITCAT_RUNS_BACKEND=sqlite gitcat runs status

  # Export for analysis in pandas/DuckDB
  gitcat runs export --output-file gitcat-runs`,
}

// runsStatusCmd shows run tracking status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show detailed information about run tracking.

Displays:
- Backend type and connection status
- Total number of runs stored
- Last and oldest run timestamps
- Total and failed resolutions
- Database table sizes

Examples:
  # Check run tracking status
  gitcat runs status --runs-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iostore.Manager.GetRunStore()
		if store == nil {
			contract.LogFatal("Failed to get runs status", fmt.Errorf("run tracking is not initialized"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get runs status", err)
		}
		iostore.PrintRunsStatus(os.Stdout, status)
	},
}

// runsClearCmd clears the run tracking data.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all run tracking data",
	Long: `Delete all stored runs and resolutions.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the run tables and the migration version table

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  gitcat runs export --output-file backup
  gitcat runs clear`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the SQLite file before removing it
		iostore.CloseStore()
		if err := iostore.ClearRuns(cfg.RunsBackend, iostore.RunsDBFilePath(cfg.RunsDBConnect), cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsExportCmd exports run tracking data to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored run data to Parquet format.

Exports two datasets:
- <output-file>.runs.parquet - metadata about each run
- <output-file>.resolutions.parquet - the outcome of every resolution

Requires: --output-file parameter

Examples:
  # Export all data
  gitcat runs export --output-file gitcat-data

  # Use with DuckDB for analysis
  duckdb -c "SELECT source, count(*) FROM read_parquet('gitcat-data.resolutions.parquet') GROUP BY 1"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iostore.ExecuteRunsExport(os.Stdout, iostore.Manager.GetRunStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run data", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  gitcat runs migrate --runs-backend sqlite

  # Migrate to specific version
  gitcat runs migrate --target-version 2

  # Rollback to initial state
  gitcat runs migrate --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iostore.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
