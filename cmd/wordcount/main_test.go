package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"defaults", nil, false},
		{"config shorthand", []string{"-c", "x.toml"}, false},
		{"stat with files", []string{"-stat", "a.txt", "b.txt"}, false},
		{"bad log level", []string{"-log-level", "loud"}, true},
		{"bad tokenizer", []string{"-tokenizer", "regex"}, true},
		{"files without stat", []string{"a.txt"}, true},
		{"unknown flag", []string{"-frobnicate"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			_, err := parseFlags(newFlagSet(&stderr), tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseFlags(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestParseFlags_Values(t *testing.T) {
	var stderr bytes.Buffer
	opts, err := parseFlags(newFlagSet(&stderr), []string{"-config", "w.yaml", "-log-level", "debug", "-tokenizer", "segment", "-stat", "f.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.ConfigPath != "w.yaml" || opts.LogLevel != "debug" || opts.Tokenizer != "segment" {
		t.Errorf("unexpected options: %+v", opts.Options)
	}
	if !opts.stat || len(opts.files) != 1 || opts.files[0] != "f.txt" {
		t.Errorf("unexpected stat options: stat=%v files=%v", opts.stat, opts.files)
	}
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-version"}, &stdout, &stderr); code != exitOK {
		t.Fatalf("exit code = %d, expected %d", code, exitOK)
	}
	if !strings.HasPrefix(stdout.String(), "wordcount dev") {
		t.Errorf("unexpected version output %q", stdout.String())
	}
}

func TestRunHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-help"}, &stdout, &stderr); code != exitOK {
		t.Fatalf("exit code = %d, expected %d", code, exitOK)
	}
	if !strings.Contains(stderr.String(), "Usage: wordcount") {
		t.Errorf("expected usage on stderr, got %q", stderr.String())
	}
}

func TestRunUsageError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-log-level", "loud"}, &stdout, &stderr); code != exitUsage {
		t.Errorf("exit code = %d, expected %d", code, exitUsage)
	}
}

func TestRunStat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("hello world\nbye"), 0644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-stat", path}, &stdout, &stderr); code != exitOK {
		t.Fatalf("exit code = %d, expected %d (stderr %q)", code, exitOK, stderr.String())
	}
	fields := strings.Fields(stdout.String())
	if len(fields) != 4 || fields[0] != "2" || fields[1] != "3" || fields[2] != "15" || fields[3] != path {
		t.Errorf("unexpected stat output %q", stdout.String())
	}
}

func TestRunStatMissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	missing := filepath.Join(t.TempDir(), "missing.txt")
	if code := run([]string{"-stat", missing}, &stdout, &stderr); code != exitError {
		t.Errorf("exit code = %d, expected %d", code, exitError)
	}
	if !strings.Contains(stderr.String(), "missing.txt") {
		t.Errorf("expected the missing file in the error, got %q", stderr.String())
	}
}

func TestRunStatNoFiles(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-stat"}, &stdout, &stderr); code != exitUsage {
		t.Errorf("exit code = %d, expected %d", code, exitUsage)
	}
}
