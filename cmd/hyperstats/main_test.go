package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/longbridgeapp/assert"

	"github.com/hyp3rd/hyperstats/internal/source"
	"github.com/hyp3rd/hyperstats/pkg/stats"
)

func runCLI(t *testing.T, stdin string, args ...string) (map[string]any, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	err := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	if err != nil {
		return nil, err
	}

	var got map[string]any

	decodeErr := json.Unmarshal(stdout.Bytes(), &got)
	if decodeErr != nil {
		t.Fatalf("decode output %q: %v", stdout.String(), decodeErr)
	}

	return got, nil
}

func TestRun_Args(t *testing.T) {
	got, err := runCLI(t, "", "2,4,4,4", "5", "5", "7", "9")
	assert.NoError(t, err)

	assert.Equal(t, 5.0, got["mean"])
	assert.Equal(t, "sample", got["variant"])
	assert.Equal(t, 2.138089935, got["standardDeviation"])
}

func TestRun_PopulationAndPrecision(t *testing.T) {
	got, err := runCLI(t, "", "-population", "-precision", "2", "1", "2", "2")
	assert.NoError(t, err)

	assert.Equal(t, "population", got["variant"])
	assert.Equal(t, 1.67, got["mean"])
}

func TestRun_Stdin(t *testing.T) {
	got, err := runCLI(t, "# samples\n1 2 3\n4\n", "-file", "-")
	assert.NoError(t, err)
	assert.Equal(t, 2.5, got["median"])
}

func TestRun_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.txt")
	assert.NoError(t, os.WriteFile(path, []byte("10, 20, 30"), 0o600))

	got, err := runCLI(t, "", "-file", path)
	assert.NoError(t, err)
	assert.Equal(t, 20.0, got["range"])
}

func TestRun_InMemoryCache(t *testing.T) {
	t.Setenv("HYPERSTATS_CACHE_BACKEND", "in-memory")

	got, err := runCLI(t, "", "1", "2")
	assert.NoError(t, err)
	assert.Nil(t, got["skewness"])
}

func TestRun_Errors(t *testing.T) {
	_, err := runCLI(t, "")
	if !errors.Is(err, stats.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}

	_, err = runCLI(t, "", "1", "two")
	if !errors.Is(err, source.ErrInvalidSample) {
		t.Fatalf("expected ErrInvalidSample, got %v", err)
	}

	_, err = runCLI(t, "", "-precision", "99", "1")
	if err == nil {
		t.Fatal("expected error for out of range precision")
	}

	_, err = runCLI(t, "", "-no-such-flag")
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
}
