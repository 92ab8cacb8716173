package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := NewCLI()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestVersion(t *testing.T) {
	assert.Contains(t, run(t, "version"), version)
}

func TestEnv(t *testing.T) {
	t.Setenv("DEVARRAY_POOL_MAX", "5")
	out := run(t, "env")
	assert.Contains(t, out, "DEVARRAY_POOL_MAX")
	assert.Contains(t, out, "DEVARRAY_WORKERS")
}

func TestInfo(t *testing.T) {
	t.Setenv("DEVARRAY_DEVICE", "host")
	t.Setenv("DEVARRAY_FP64", "false")
	out := run(t, "info")
	assert.Contains(t, out, "host")
	assert.Contains(t, out, "false")
}

func TestBench(t *testing.T) {
	t.Setenv("DEVARRAY_DEVICE", "host")
	t.Setenv("DEVARRAY_WORKERS", "1")
	out := run(t, "bench", "--size", "8", "--iterations", "3", "--type", "float64")
	assert.Contains(t, out, "8 x 8 float64 products: 3")
	assert.Contains(t, out, "HITS")
}

func TestUnknownDevice(t *testing.T) {
	t.Setenv("DEVARRAY_DEVICE", "tpu")
	cmd := NewCLI()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"info"})
	assert.ErrorContains(t, cmd.Execute(), "unknown device")
}
