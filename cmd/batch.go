package cmd

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/huangsam/gitcat/core"
	"github.com/spf13/cobra"
)

// batchCmd resolves many files concurrently.
var batchCmd = &cobra.Command{
	Use:   "batch <files...>",
	Short: "Resolve many files concurrently and summarize the results.",
	Long: `Resolve the content of many files on a pool of workers.

Results keep the order of the arguments. A file that cannot be resolved is
reported in its row and does not stop the others; the command exits non-zero
when any file failed.

Pass "-" to read newline-separated paths from stdin.

Examples:
  # Summarize where each file's content comes from
  gitcat batch cmd/*.go

  # Export the content of every tracked Go file at a tag
  git ls-files '*.go' | gitcat batch - --rev v1.0.0 --content --output json

  # Write a Parquet file for analytics
  gitcat batch - --output parquet --output-file batch.parquet < paths.txt`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		paths, err := readPaths(os.Stdin, args)
		if err != nil {
			return err
		}
		return core.ExecuteBatch(rootCtx, cfg, storeManager, logger, paths)
	},
}

// readPaths expands a "-" argument into the non-blank lines of stdin.
func readPaths(stdin io.Reader, args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if arg != "-" {
			paths = append(paths, arg)
			continue
		}
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				paths = append(paths, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}
	return paths, nil
}
