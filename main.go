// Package main is the entry point for the logshape application.
// logshape is a grammar-driven log decoder that turns heterogeneous
// line-oriented server logs into structured event records.
package main

import (
	"log"
	"os"
	"runtime/pprof"

	"github.com/logshape/logshape/cmd"
)

// Build metadata, overridden at link time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	// CPU profiling
	if cpuProfile := os.Getenv("CPUPROFILE"); cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err)
		}
		defer pprof.StopCPUProfile()
	}

	// Memory profiling
	if memProfile := os.Getenv("MEMPROFILE"); memProfile != "" {
		f, err := os.Create(memProfile)
		if err != nil {
			log.Fatal(err)
		}
		defer func() {
			pprof.WriteHeapProfile(f)
			f.Close()
		}()
	}

	// Execute the CLI application.
	// All command-line parsing, flag handling, and execution logic
	// is delegated to the cmd package.
	cmd.Execute(version, commit, date)
}
