package iostore

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/gitcat/internal/contract"
	"github.com/huangsam/gitcat/internal/parquet"
)

// ExecuteRunsExport exports every tracked run and resolution to Parquet files
// named after outputFile.
func ExecuteRunsExport(w io.Writer, store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get runs status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total resolutions: %d\n", status.TableSizes[resolutionsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	resolutions, err := store.GetAllResolutions()
	if err != nil {
		return fmt.Errorf("failed to retrieve resolutions: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), runsFile)

	resolutionsFile := outputFile + ".resolutions.parquet"
	if err := parquet.WriteResolutionsParquet(parquet.ConvertResolutionRecords(resolutions), resolutionsFile); err != nil {
		return fmt.Errorf("failed to write resolutions: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d resolutions to: %s\n", len(resolutions), resolutionsFile)

	return nil
}
