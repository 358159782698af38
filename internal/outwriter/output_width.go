package outwriter

import (
	"os"

	"github.com/huangsam/gitcat/internal/contract"
	"golang.org/x/term"
)

// GetMaxTablePathWidth calculates the maximum width for file paths in the
// batch table based on terminal width and which columns are shown.
func GetMaxTablePathWidth(cfg *contract.Config, withErrors bool) int {
	termWidth := cfg.Width

	if termWidth <= 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// # + Source + Bytes + Status with borders/padding
	baseWidth := 45
	if withErrors {
		baseWidth += 40
	}

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 80 {
		return 80
	}
	return available
}
