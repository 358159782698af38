package cmd

import (
	"github.com/huangsam/gitcat/core"
	"github.com/spf13/cobra"
)

// watchCmd reprints a file whenever its content changes.
var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Print a file every time its content changes.",
	Long: `Watch a file and print its content whenever it changes.

Changes on disk and in the Git index (git add, git restore --staged) both
trigger a re-read. Identical content is not printed twice. Errors are
reported and watching continues until interrupted.

Examples:
  # Follow the staged version of a file
  gitcat watch main.go

  # Stream changes as JSON lines
  gitcat watch main.go --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return core.ExecuteWatch(rootCtx, cfg, logger, args[0])
	},
}
