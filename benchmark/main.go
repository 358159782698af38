// Package main provides a performance benchmarking tool for the gitcat CLI.
// It measures how long `gitcat batch` takes to resolve the tracked files of
// several repositories at different worker counts, with and without run
// tracking, and writes the averages to a CSV file.
//
// Prerequisites:
// - gitcat binary installed and available in PATH
// - Test repositories cloned to the specified base directory
// - Git repositories: csv-parser, fd, git, kubernetes
//
// Usage: go run benchmark/main.go [repo-base-dir]
//
//	repo-base-dir: Directory containing test repositories
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the averages for one repository and worker count.
type BenchmarkResult struct {
	Repository   string
	Files        int
	Workers      int
	UntrackedAvg string
	TrackedAvg   string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase  string
	Timeout   time.Duration
	Runs      int
	MaxFiles  int
	Workers   []int
	TestRepos []string
	RepoRevs  map[string]string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		RepoBase:  os.Args[1],
		Timeout:   5 * time.Minute,
		Runs:      3,
		MaxFiles:  2000,
		Workers:   []int{1, 4, 16},
		TestRepos: []string{"csv-parser", "fd", "git", "kubernetes"},
		RepoRevs: map[string]string{
			"csv-parser": "v1.0.0",
			"fd":         "v9.0.0",
			"git":        "v2.51.0",
			"kubernetes": "v1.34.0",
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	dbPath := filepath.Join(os.TempDir(), "gitcat_benchmark_runs.db")
	defer func() { _ = os.Remove(dbPath) }()

	results := runBenchmarks(config, dbPath)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that gitcat binary and test repositories exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("gitcat"); err != nil {
		return fmt.Errorf("gitcat binary not found in PATH")
	}

	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}

	return nil
}

// listFiles returns up to limit tracked files of the repository.
func listFiles(repoPath string, limit int) ([]string, error) {
	out, err := exec.Command("git", "-C", repoPath, "ls-files").Output()
	if err != nil {
		return nil, fmt.Errorf("git ls-files failed in %s: %w", repoPath, err)
	}
	files := strings.Fields(string(out))
	if len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

// runBenchmarks executes all benchmark tests across configured repositories
func runBenchmarks(config BenchmarkConfig, dbPath string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %v timeout, workers %v, %d runs each\n",
		len(config.TestRepos), config.Timeout, config.Workers, config.Runs)

	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		files, err := listFiles(repoPath, config.MaxFiles)
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", repo, err)
			continue
		}
		fmt.Printf("Benchmarking %s (%d files)\n", repo, len(files))

		stdin := strings.Join(files, "\n")
		for _, workers := range config.Workers {
			args := []string{"batch", "-", "--workers", strconv.Itoa(workers), "--output", "csv"}
			if rev, ok := config.RepoRevs[repo]; ok {
				args = append(args, "--rev", rev)
			}

			untracked := runBenchmark(config, repoPath, args, stdin, nil)
			tracked := runBenchmark(config, repoPath, args, stdin, []string{
				"GITCAT_RUNS_BACKEND=sqlite",
				"GITCAT_RUNS_DB_CONNECT=" + dbPath,
			})
			fmt.Printf("  %2d workers: untracked %s, tracked %s\n", workers, untracked, tracked)

			results = append(results, BenchmarkResult{
				Repository:   repo,
				Files:        len(files),
				Workers:      workers,
				UntrackedAvg: untracked,
				TrackedAvg:   tracked,
			})
		}
	}

	return results
}

// runBenchmark runs gitcat several times and returns the average wall time.
// A batch with failed files exits non-zero but still counts as a completed run.
func runBenchmark(config BenchmarkConfig, repoPath string, args []string, stdin string, env []string) string {
	var sum float64
	completed := 0

	for range config.Runs {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		cmd := exec.CommandContext(ctx, "gitcat", args...)
		cmd.Dir = repoPath
		cmd.Stdin = strings.NewReader(stdin)
		cmd.Env = append(os.Environ(), env...)

		start := time.Now()
		output, err := cmd.Output()
		elapsed := time.Since(start)
		timedOut := ctx.Err() != nil
		cancel()

		if timedOut || (err != nil && !isSuccess(output)) {
			continue
		}
		sum += elapsed.Seconds()
		completed++
	}

	if completed == 0 {
		return "TIMEOUT"
	}
	return fmt.Sprintf("%.3fs", sum/float64(completed))
}

// isSuccess checks that the batch produced its CSV header.
func isSuccess(output []byte) bool {
	return strings.HasPrefix(string(output), "index,file_path,")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("gitcat_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"repo", "files", "workers", "untracked_avg", "tracked_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		record := []string{
			result.Repository,
			strconv.Itoa(result.Files),
			strconv.Itoa(result.Workers),
			result.UntrackedAvg,
			result.TrackedAvg,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-12s %5d files, %2d workers: untracked %s, tracked %s\n",
			result.Repository, result.Files, result.Workers, result.UntrackedAvg, result.TrackedAvg)
	}
}
