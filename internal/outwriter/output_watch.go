package outwriter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/huangsam/gitcat/internal/contract"
	"github.com/huangsam/gitcat/schema"
)

// watchEvent is one JSON line of watch output.
type watchEvent struct {
	Time     time.Time            `json:"time"`
	FilePath string               `json:"file_path"`
	Source   schema.ContentSource `json:"source,omitempty"`
	Bytes    int                  `json:"bytes"`
	Content  string               `json:"content,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// newWatchPrinter builds a watch callback writing content to out and
// failures to errOut. JSON output is one compact document per line.
func newWatchPrinter(out, errOut io.Writer, req schema.ContentRequest, cfg *contract.Config, now func() time.Time) func(schema.ContentResult, error) {
	path := displayPath(req)

	if cfg.Output == schema.JSONOut {
		return func(res schema.ContentResult, err error) {
			event := watchEvent{Time: now(), FilePath: req.FilePath, Source: res.Source, Bytes: len(res.Content), Content: res.Content}
			if err != nil {
				event = watchEvent{Time: now(), FilePath: req.FilePath, Error: err.Error()}
			}
			if encErr := writeJSONLine(out, event); encErr != nil {
				contract.LogWarn("Failed to write watch event", encErr)
			}
		}
	}

	return func(res schema.ContentResult, err error) {
		stamp := now().Format("15:04:05")
		if err != nil {
			_, _ = fmt.Fprintf(errOut, "%s %s\n", contract.MutedColor.Sprint(stamp), contract.FailedColor.Sprint(errorLine(path, err)))
			return
		}
		header := fmt.Sprintf("── %s (%s, %s) ", path, contract.GetColorSource(res.Source), formatBytes(len(res.Content)))
		_, _ = fmt.Fprintf(out, "%s %s\n", contract.MutedColor.Sprint(stamp), header+strings.Repeat("─", 8))
		_, _ = io.WriteString(out, res.Content)
		if res.Content != "" && !strings.HasSuffix(res.Content, "\n") {
			_, _ = io.WriteString(out, "\n")
		}
	}
}

// writeJSONLine encodes data as a single line of JSON.
func writeJSONLine(w io.Writer, data any) error {
	line, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = w.Write(append(line, '\n'))
	return err
}
