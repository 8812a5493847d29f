package logs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTailMissingFile(t *testing.T) {
	lines, offset, err := Tail(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(lines) != 0 || offset != 0 {
		t.Fatalf("expected empty result, got %d lines offset %d", len(lines), offset)
	}
}

func TestTailReturnsLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")
	if err := os.WriteFile(path, []byte("one\ntwo\nthree\nfour\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	lines, offset, err := Tail(path, 2)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(lines) != 2 || lines[0] != "three" || lines[1] != "four" {
		t.Fatalf("unexpected lines: %v", lines)
	}
	if offset == 0 {
		t.Fatal("expected nonzero offset after read")
	}
}

func TestTailLimitLargerThanFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")
	if err := os.WriteFile(path, []byte("only\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	lines, _, err := Tail(path, 50)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(lines) != 1 || lines[0] != "only" {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")
	if err := os.WriteFile(path, []byte("old\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	_, offset, err := Tail(path, 1)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	got := make(chan string, 1)
	go func() {
		_ = Follow(ctx, path, offset, func(line string) {
			select {
			case got <- line:
			default:
			}
		})
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := f.WriteString("fresh\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	f.Close()

	select {
	case line := <-got:
		if line != "fresh" {
			t.Fatalf("unexpected line %q", line)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for followed line")
	}
}
