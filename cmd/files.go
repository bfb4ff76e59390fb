// Package cmd implements the command-line interface for logshape.
package cmd

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// collectFiles gathers all log files from the provided arguments.
// Arguments can be:
//   - Individual files
//   - Glob patterns, including ** (e.g., "logs/**/*.log.gz")
//   - Directories (scans for supported log files, non-recursive)
func collectFiles(args []string) []string {
	var files []string

	for _, arg := range args {
		// Check if argument is a directory
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			dirFiles, err := gatherLogFiles(arg)
			if err != nil {
				log.Printf("[WARN] Failed to read directory %s: %v", arg, err)
				continue
			}
			files = append(files, dirFiles...)
			continue
		}
		if err == nil {
			// Plain file: accept regardless of extension
			files = append(files, arg)
			continue
		}

		// Try to expand as glob pattern
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			log.Printf("[WARN] Invalid pattern %s: %v", arg, err)
			continue
		}

		if len(matches) == 0 {
			log.Printf("[WARN] No files match pattern: %s", arg)
			continue
		}

		files = append(files, matches...)
	}

	return files
}

// gatherLogFiles scans a directory for supported log files (non-recursive).
func gatherLogFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var logFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if isSupportedLogFile(entry.Name()) {
			logFiles = append(logFiles, filepath.Join(dir, entry.Name()))
		}
	}

	return logFiles, nil
}

// isSupportedLogFile reports whether the file name looks like a supported
// log file, possibly behind a compression or archive extension.
func isSupportedLogFile(name string) bool {
	lower := strings.ToLower(name)
	supported := []string{
		".log",
		".txt",
		".csv",
		".tsv",
		".log.gz",
		".log.zst",
		".log.zstd",
		".csv.gz",
		".tar",
		".tar.gz",
		".tgz",
		".tar.zst",
		".tar.zstd",
		".tzst",
		".7z",
	}

	for _, ext := range supported {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
