package cmd

import (
	"github.com/huangsam/gitcat/core"
	"github.com/spf13/cobra"
)

// showCmd prints the content of a single file.
var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print the content of a file as Git sees it.",
	Long: `Print the content of a file the way Git sees it.

Where the content comes from depends on the file and the revision:
- File present on disk: the staged version, or the version at --rev
- File present on disk but never staged: the bytes on disk
- File present on disk, never staged, with --rev: nothing
- File deleted from disk: the version at HEAD, or at --rev

Files present on disk are looked up in Git by their absolute path. Git
releases that only match repository-relative paths report no entry for
them, so such files print their bytes on disk, and print nothing with
--rev. Use --rev on deleted files to read their history. A repository
without commits behaves the same way.

Text output is the content itself, byte for byte.

Examples:
  # Print a file as Git sees it
  gitcat show main.go

  # Print a deleted file as it was two commits ago
  gitcat show old/main.go --rev HEAD~2

  # Recover a deleted file
  gitcat show old/config.yaml > config.yaml

  # Print metadata and content as JSON
  gitcat show main.go --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return core.ExecuteShow(rootCtx, cfg, storeManager, logger, args[0])
	},
}
