// Package cmd implements the command-line interface for logshape.
package cmd

import "runtime"

// determineWorkerCount calculates the number of parallel readers for the
// input files based on the file count and available CPU cores.
//
// Strategy:
//   - Single file: No parallelism needed (returns 1)
//   - Multiple files: Use up to NumCPU/2 workers to avoid contention
//   - Maximum: Cap at 4 workers to prevent excessive context switching
//   - Never create more workers than files
func determineWorkerCount(numFiles int) int {
	if numFiles == 1 {
		return 1
	}

	// Leave half the cores for the decode and output goroutines.
	maxWorkers := runtime.NumCPU() / 2
	if maxWorkers < 2 {
		maxWorkers = 2
	}
	if maxWorkers > 4 {
		maxWorkers = 4
	}

	if numFiles < maxWorkers {
		return numFiles
	}

	return maxWorkers
}
