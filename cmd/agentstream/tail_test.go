package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestFeedFromReadsAppendedBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transcript.log")
	if err := os.WriteFile(path, []byte("first\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var got strings.Builder
	offset, err := feedFrom(path, 0, func(chunk string) { got.WriteString(chunk) })
	if err != nil {
		t.Fatalf("feedFrom: %v", err)
	}
	if got.String() != "first\n" {
		t.Errorf("initial read = %q", got.String())
	}
	if offset != int64(len("first\n")) {
		t.Errorf("offset = %d, want %d", offset, len("first\n"))
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("second\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	got.Reset()
	offset, err = feedFrom(path, offset, func(chunk string) { got.WriteString(chunk) })
	if err != nil {
		t.Fatalf("feedFrom after append: %v", err)
	}
	if got.String() != "second\n" {
		t.Errorf("appended read = %q, want only the new bytes", got.String())
	}
	if offset != int64(len("first\nsecond\n")) {
		t.Errorf("offset = %d", offset)
	}
}

func TestFeedFromTruncationRestarts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transcript.log")
	if err := os.WriteFile(path, []byte("a long first line\n"), 0644); err != nil {
		t.Fatal(err)
	}

	offset, err := feedFrom(path, 0, func(string) {})
	if err != nil {
		t.Fatal(err)
	}

	// Truncate to something shorter than the old offset.
	if err := os.WriteFile(path, []byte("new\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var got strings.Builder
	if _, err := feedFrom(path, offset, func(chunk string) { got.WriteString(chunk) }); err != nil {
		t.Fatal(err)
	}
	if got.String() != "new\n" {
		t.Errorf("after truncation read %q, want %q", got.String(), "new\n")
	}
}

func TestFeedFromMissingFile(t *testing.T) {
	_, err := feedFrom(filepath.Join(t.TempDir(), "absent.log"), 0, func(string) {})
	if !os.IsNotExist(err) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestTailFileFollowsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transcript.log")
	if err := os.WriteFile(path, []byte("already here\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var got strings.Builder
	read := func() string {
		mu.Lock()
		defer mu.Unlock()
		return got.String()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- tailFile(ctx, path, func(chunk string) {
			mu.Lock()
			got.WriteString(chunk)
			mu.Unlock()
		})
	}()

	waitFor := func(want string) {
		t.Helper()
		deadline := time.Now().Add(2 * time.Second)
		for read() != want {
			if time.Now().After(deadline) {
				t.Fatalf("timed out, have %q want %q", read(), want)
			}
			time.Sleep(10 * time.Millisecond)
		}
	}

	waitFor("already here\n")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("appended later\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	waitFor("already here\nappended later\n")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("tailFile returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tailFile did not stop on cancel")
	}
}
