package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string

	// ContentSource represents where resolved content came from.
	ContentSource string

	// ResolutionStatus represents the outcome of a single resolution.
	ResolutionStatus string
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All run tracking backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// All content sources supported.
const (
	SourceNone    ContentSource = "none"    // empty input or missing index entry at a revision
	SourceHistory ContentSource = "history" // object database, file absent on disk
	SourceIndex   ContentSource = "index"   // staging area or explicit revision
	SourceDisk    ContentSource = "disk"    // raw working-tree bytes
)

// All resolution statuses supported.
const (
	StatusOK     ResolutionStatus = "ok"
	StatusFailed ResolutionStatus = "failed"
)

// Git invocation constants.
const (
	ShowSubcommand   = "show"
	HistoryRevision  = "HEAD"
	IndexStageMarker = ":0"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid run tracking backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
