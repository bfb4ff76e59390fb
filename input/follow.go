package input

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// followedFile tracks the read position and partial-line buffer of one
// watched file.
type followedFile struct {
	file    *os.File
	partial string
}

// Follow watches the given files and sends newly appended lines to out.
// Reading starts at the current end of each file. A file recreated in place
// (rotation) is reopened from the start. Follow blocks until the context is
// cancelled; the channel is not closed.
//
// Multi-line record grouping is not applied in follow mode: a record split
// across appends would stall until its closing boundary arrives, so each
// line is forwarded as its own record.
func Follow(ctx context.Context, paths []string, out chan<- string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	files := make(map[string]*followedFile, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			log.Printf("[WARN] cannot follow %s: %v", path, err)
			continue
		}
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			f.Close()
			log.Printf("[WARN] cannot seek %s: %v", path, err)
			continue
		}
		if err := watcher.Add(path); err != nil {
			f.Close()
			log.Printf("[WARN] cannot watch %s: %v", path, err)
			continue
		}
		files[path] = &followedFile{file: f}
	}

	for {
		select {
		case <-ctx.Done():
			for _, ff := range files {
				ff.file.Close()
			}
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			ff := files[ev.Name]
			if ff == nil {
				continue
			}
			switch {
			case ev.Op&fsnotify.Write != 0:
				drain(ff, out)

			case ev.Op&fsnotify.Create != 0:
				// Rotation: the path was recreated, start over.
				ff.file.Close()
				f, err := os.Open(ev.Name)
				if err != nil {
					log.Printf("[WARN] cannot reopen %s: %v", ev.Name, err)
					delete(files, ev.Name)
					continue
				}
				ff.file = f
				ff.partial = ""
				drain(ff, out)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[WARN] watcher error: %v", err)
		}
	}
}

// drain reads every complete newly appended line from ff and sends it to
// out, keeping any trailing partial line for the next write event.
func drain(ff *followedFile, out chan<- string) {
	reader := bufio.NewReader(ff.file)
	for {
		chunk, err := reader.ReadString('\n')
		if err != nil {
			// Incomplete trailing line; keep it for later.
			ff.partial += chunk
			return
		}
		line := ff.partial + strings.TrimRight(chunk, "\r\n")
		ff.partial = ""
		out <- line
	}
}
