// Package cmd implements the command-line interface for logshape.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/logshape/logshape/decode"
	"github.com/logshape/logshape/formats"
	"github.com/logshape/logshape/input"
	"github.com/logshape/logshape/output"
)

// executeDecoding is the main execution function for the root command.
// It orchestrates the decoding pipeline:
//  1. Collect input files
//  2. Build the decoder configuration and open the output sink
//  3. Read files in parallel (streaming, multi-line aware)
//  4. Decode lines into records
//  5. Write records to the sink and report a summary
func executeDecoding(cmd *cobra.Command, args []string) {
	startTime := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}

	// Validate the configuration up front by constructing a decoder once.
	if _, err := formats.New(formatFlag, cfg); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}

	sink, cleanup, err := openSink()
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	defer cleanup()

	if followFlag {
		followAndDecode(args, cfg, sink)
		return
	}

	allFiles := collectFiles(args)
	if len(allFiles) == 0 {
		fmt.Println("[INFO] No log files found. Exiting.")
		os.Exit(0)
	}
	totalFileSize := calculateTotalFileSize(allFiles)

	lines := make(chan string, 24576)
	records := make(chan *decode.Record, 24576)

	go readFilesAsync(allFiles, lines)

	var failed atomic.Int64
	go decodeAsync(cfg, lines, records, &failed)

	count, err := writeRecords(records, sink)
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	if err := sink.Close(); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}

	printProcessingSummary(count, failed.Load(), time.Since(startTime), totalFileSize)
}

// readFilesAsync streams log entries from files into the channel, using a
// worker pool when several files are given.
func readFilesAsync(files []string, out chan<- string) {
	defer close(out)

	start := formats.EntryStart(formatFlag)
	numWorkers := determineWorkerCount(len(files))

	if numWorkers == 1 {
		for _, file := range files {
			if err := streamFile(file, start, out); err != nil {
				log.Printf("[ERROR] Failed to read file %s: %v", file, err)
			}
		}
		return
	}

	fileChan := make(chan string, len(files))
	for _, file := range files {
		fileChan <- file
	}
	close(fileChan)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range fileChan {
				if err := streamFile(file, start, out); err != nil {
					log.Printf("[ERROR] Failed to read file %s: %v", file, err)
				}
			}
		}()
	}
	wg.Wait()
}

// streamFile opens one file, transparently decompressing it, and streams
// its entries to out.
func streamFile(file string, start input.StartFunc, out chan<- string) error {
	r, err := input.Open(file)
	if err != nil {
		return err
	}
	defer r.Close()
	return input.Stream(r, start, out)
}

// decodeAsync decodes entries from lines into records. Entries that do not
// match the format grammar are counted and dropped; decoder construction
// was validated before the pipeline started, so errors here are match
// failures only.
func decodeAsync(cfg decode.Config, lines <-chan string, records chan<- *decode.Record, failed *atomic.Int64) {
	defer close(records)

	decoder, err := formats.New(formatFlag, cfg)
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}

	for line := range lines {
		r, err := decoder.Decode(line)
		if err != nil {
			if errors.Is(err, decode.ErrNoMatch) {
				failed.Add(1)
				continue
			}
			log.Printf("[ERROR] %v", err)
			continue
		}
		records <- r
	}
}

// writeRecords drains the record channel into the sink, applying the
// JMESPath extraction when one is configured.
func writeRecords(records <-chan *decode.Record, sink output.Sink) (int64, error) {
	write := sink.Write
	if extractFlag != "" {
		extractor, err := newExtractor(extractFlag, sink)
		if err != nil {
			return 0, err
		}
		write = extractor.Write
	}

	var count int64
	for r := range records {
		if err := write(r); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// followAndDecode runs the pipeline in follow mode: files are watched for
// appended lines until interrupted. Entries are decoded one line at a
// time; multi-line grouping is not applied.
func followAndDecode(paths []string, cfg decode.Config, sink output.Sink) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lines := make(chan string, 24576)
	records := make(chan *decode.Record, 24576)

	go func() {
		defer close(lines)
		if err := input.Follow(ctx, paths, lines); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[ERROR] %v", err)
		}
	}()

	var failed atomic.Int64
	go decodeAsync(cfg, lines, records, &failed)

	if _, err := writeRecords(records, sink); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	if err := sink.Close(); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
}

// openSink builds the output sink selected by --output, writing to the
// --out file when given or stdout otherwise. The cleanup function closes
// the underlying file.
func openSink() (output.Sink, func(), error) {
	w := os.Stdout
	cleanup := func() {}
	if outFileFlag != "" {
		f, err := os.Create(outFileFlag)
		if err != nil {
			return nil, nil, fmt.Errorf("creating output file: %w", err)
		}
		w = f
		cleanup = func() { f.Close() }
	}

	switch outputFlag {
	case "json":
		return output.NewJSONSink(w), cleanup, nil
	case "text":
		return output.NewTextSink(w), cleanup, nil
	case "parquet":
		if outFileFlag == "" {
			return nil, nil, fmt.Errorf("parquet output requires --out")
		}
		return output.NewParquetSink(w), cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unknown output encoding %q (known: json, text, parquet)", outputFlag)
	}
}

// calculateTotalFileSize computes the total size of all input files.
func calculateTotalFileSize(files []string) int64 {
	var total int64
	for _, file := range files {
		if fi, err := os.Stat(file); err == nil {
			total += fi.Size()
		}
	}
	return total
}

// printProcessingSummary displays a summary line showing decoding statistics.
func printProcessingSummary(decoded, failed int64, duration time.Duration, fileSize int64) {
	log.Printf("[INFO] %d records decoded, %d entries unmatched in %.2f s (%s)",
		decoded, failed, duration.Seconds(), formatBytes(fileSize))
}

// formatBytes converts a byte count to a human-readable string (KB, MB, GB, etc).
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%dB", b)
	}

	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(b)/float64(div), "kMGTPE"[exp])
}
