package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run(&buf, options{n: 1000, maxLevel: 16, seed: 42, show: 8}))
	out := buf.String()
	assert.Contains(t, out, "n=1000")
	assert.Contains(t, out, "structure: ok")
	assert.Contains(t, out, "avg find steps")
	assert.Contains(t, out, "level 0 :   0 ->")
}

func TestRunZipfQueries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run(&buf, options{n: 500, maxLevel: 12, seed: 3, zipf: 1.2}))
	out := buf.String()
	assert.Contains(t, out, "zipf s=1.20 entropy:")
	assert.Contains(t, out, "zipf avg find steps:")

	buf.Reset()
	require.NoError(t, run(&buf, options{n: 500, maxLevel: 12, seed: 3}))
	assert.NotContains(t, buf.String(), "zipf")
}

func TestRunInvalidMaxLevel(t *testing.T) {
	assert.Error(t, run(io.Discard, options{n: 10, maxLevel: 0}))
}

func TestRunEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run(&buf, options{n: 0, maxLevel: 4, seed: 1, show: 5}))
	assert.Contains(t, buf.String(), "skip list is empty")
}
