package iostore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/gitcat/internal/contract"
	"github.com/huangsam/gitcat/schema"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
// The none backend yields a store whose writes are no-ops.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		return &RunStoreImpl{backend: backend}, nil
	}

	driverName, err := driverFor(backend)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetRunsDBFilePath()
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		dsn, dsnErr := dataSourceName(backend, connStr)
		if dsnErr != nil {
			return nil, dsnErr
		}
		db, err = sql.Open(driverName, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=... user=... password=...", err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{resolutionsTable, getCreateResolutionsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for gitcat_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				command VARCHAR(32) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_files INT NOT NULL DEFAULT 0,
				failed_files INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				command TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_files INT NOT NULL DEFAULT 0,
				failed_files INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				command TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_files INTEGER NOT NULL DEFAULT 0,
				failed_files INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateResolutionsQuery returns the CREATE TABLE query for gitcat_resolutions.
// A run may resolve the same path more than once, so rows get their own key.
func getCreateResolutionsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(resolutionsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				resolution_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_id BIGINT NOT NULL,
				file_path VARCHAR(1024) NOT NULL,
				repo_root VARCHAR(1024) NOT NULL,
				source_revision VARCHAR(255),
				source VARCHAR(16) NOT NULL,
				status VARCHAR(16) NOT NULL,
				byte_count BIGINT NOT NULL,
				error_message TEXT,
				resolve_time_ms INT NOT NULL,
				resolved_at DATETIME(6) NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				resolution_id BIGSERIAL PRIMARY KEY,
				run_id BIGINT NOT NULL,
				file_path TEXT NOT NULL,
				repo_root TEXT NOT NULL,
				source_revision TEXT,
				source TEXT NOT NULL,
				status TEXT NOT NULL,
				byte_count BIGINT NOT NULL,
				error_message TEXT,
				resolve_time_ms INT NOT NULL,
				resolved_at TIMESTAMPTZ NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				resolution_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id INTEGER NOT NULL,
				file_path TEXT NOT NULL,
				repo_root TEXT NOT NULL,
				source_revision TEXT,
				source TEXT NOT NULL,
				status TEXT NOT NULL,
				byte_count INTEGER NOT NULL,
				error_message TEXT,
				resolve_time_ms INTEGER NOT NULL,
				resolved_at TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

// disabled reports whether writes should be skipped.
func (rs *RunStoreImpl) disabled() bool {
	return rs.backend == schema.NoneBackend || rs.db == nil
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(command string, startTime time.Time, configParams map[string]any) (int64, error) {
	if rs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (command, start_time, config_params) VALUES ($1, $2, $3) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, command, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (command, start_time, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, command, formatTime(startTime, rs.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	return runID, nil
}

// RecordResolution stores the outcome of one resolution.
func (rs *RunStoreImpl) RecordResolution(record schema.ResolutionRecord) error {
	if rs.disabled() {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, file_path, repo_root, source_revision, source, status,
		                byte_count, error_message, resolve_time_ms, resolved_at)
		VALUES (%s)
	`, quoteTableName(resolutionsTable, rs.backend), placeholders(rs.backend, 10))

	_, err := rs.db.Exec(query,
		record.RunID, record.FilePath, record.RepoRoot, record.SourceRevision, record.Source, record.Status,
		record.ByteCount, record.ErrorMessage, record.ResolveTimeMs, formatTime(record.ResolvedAt, rs.backend),
	)
	if err != nil {
		return fmt.Errorf("failed to insert resolution for %s: %w", record.FilePath, err)
	}

	return nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, totalFiles, failedFiles int) error {
	if rs.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholder(rs.backend, 1))
	startTime, err := rs.scanTime(rs.db.QueryRow(query, runID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_files = %s, failed_files = %s WHERE run_id = %s`,
		quotedTableName,
		placeholder(rs.backend, 1), placeholder(rs.backend, 2), placeholder(rs.backend, 3),
		placeholder(rs.backend, 4), placeholder(rs.backend, 5))

	if _, err := rs.db.Exec(updateQuery, formatTime(endTime, rs.backend), durationMs, totalFiles, failedFiles, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStoreStatus, error) {
	status := schema.RunStoreStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.disabled() {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, rs.backend)

	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := rs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns))
		lastRunTime, err := rs.scanTime(row, &status.LastRunID)
		if err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = lastRunTime

		row = rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns))
		oldestRunTime, err := rs.scanTime(row)
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime
	}

	quotedResolutions := quoteTableName(resolutionsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedResolutions)).Scan(&status.TotalResolutions); err != nil {
		return status, fmt.Errorf("failed to get total resolutions: %w", err)
	}

	failedQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE status = %s", quotedResolutions, placeholder(rs.backend, 1))
	if err := rs.db.QueryRow(failedQuery, string(schema.StatusFailed)).Scan(&status.FailedCount); err != nil {
		return status, fmt.Errorf("failed to get failed resolutions: %w", err)
	}

	for _, table := range trackedTables {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))
		if err := rs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, command, start_time, end_time, run_duration_ms, total_files, failed_files, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord

		switch rs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &record.Command, &startTimeStr, &endTimeStr,
				&record.RunDurationMs, &record.TotalFiles, &record.FailedFiles, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if record.StartTime, err = parseTime(startTimeStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endTimeStr != nil {
				endTime, err := parseTime(*endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.Command, &record.StartTime, &record.EndTime,
				&record.RunDurationMs, &record.TotalFiles, &record.FailedFiles, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return results, nil
}

// GetAllResolutions retrieves all resolutions from the store.
func (rs *RunStoreImpl) GetAllResolutions() ([]schema.ResolutionRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, file_path, repo_root, source_revision, source, status,
		byte_count, error_message, resolve_time_ms, resolved_at
		FROM %s ORDER BY resolution_id`, quoteTableName(resolutionsTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query resolutions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ResolutionRecord
	for rows.Next() {
		var record schema.ResolutionRecord
		dest := []any{
			&record.RunID, &record.FilePath, &record.RepoRoot, &record.SourceRevision, &record.Source,
			&record.Status, &record.ByteCount, &record.ErrorMessage, &record.ResolveTimeMs,
		}

		switch rs.backend {
		case schema.SQLiteBackend:
			var resolvedAtStr string
			if err := rows.Scan(append(dest, &resolvedAtStr)...); err != nil {
				return nil, fmt.Errorf("failed to scan resolution: %w", err)
			}
			if record.ResolvedAt, err = parseTime(resolvedAtStr); err != nil {
				return nil, fmt.Errorf("failed to parse resolved_at: %w", err)
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(append(dest, &record.ResolvedAt)...); err != nil {
				return nil, fmt.Errorf("failed to scan resolution: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resolutions: %w", err)
	}

	return results, nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// scanTime scans a row whose last column is a timestamp, handling the
// string storage SQLite uses. Any leading columns are scanned into dest.
func (rs *RunStoreImpl) scanTime(row *sql.Row, dest ...any) (time.Time, error) {
	if rs.backend == schema.SQLiteBackend {
		var value string
		if err := row.Scan(append(dest, &value)...); err != nil {
			return time.Time{}, err
		}
		return parseTime(value)
	}

	var value time.Time
	if err := row.Scan(append(dest, &value)...); err != nil {
		return time.Time{}, err
	}
	return value, nil
}
