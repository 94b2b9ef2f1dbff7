package main

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// tailFile follows path and feeds appended bytes as they arrive. The
// watch is on the parent directory so a recreated file picks up again
// from offset zero. Returns when ctx is canceled.
func tailFile(ctx context.Context, path string, feed func(string)) error {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	// Catch up on whatever is already in the file.
	offset, err := feedFrom(path, 0, feed)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Has(fsnotify.Create) {
				offset = 0
			} else if !ev.Has(fsnotify.Write) {
				continue
			}
			newOffset, err := feedFrom(path, offset, feed)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return err
			}
			offset = newOffset
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[agentstream] watch error: %v", err)
		}
	}
}

// feedFrom reads path from offset to EOF, feeding each chunk, and
// returns the new offset. A file shorter than offset was truncated and
// is re-read from the start.
func feedFrom(path string, offset int64, feed func(string)) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return offset, err
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() < offset {
		offset = 0
	}
	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return offset, err
		}
	}

	buf := make([]byte, 32*1024)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			offset += int64(n)
			feed(string(buf[:n]))
		}
		if err == io.EOF {
			return offset, nil
		}
		if err != nil {
			return offset, err
		}
	}
}
