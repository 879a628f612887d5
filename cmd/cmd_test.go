package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rangehttp "github.com/tanq16/rangedl/internal/downloaders/http"
	"github.com/tanq16/rangedl/internal/output"
	"github.com/tanq16/rangedl/internal/utils"
)

func testData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func startServer(t *testing.T, data []byte) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/file", func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "file", time.Time{}, bytes.NewReader(data))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	output.Stdout, output.Stderr = &stdout, &stderr
	t.Cleanup(func() {
		output.Stdout, output.Stderr = os.Stdout, os.Stderr
	})
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestDownloadArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"none", nil, true},
		{"three", []string{"300", "http://x", "out"}, true},
		{"four", []string{"300", "http://x", "out", "a.bin"}, false},
		{"five", []string{"300", "http://x", "out", "a.bin", "extra"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := downloadArgs(rootCmd, tt.args)
			if tt.wantErr {
				assert.ErrorIs(t, err, utils.ErrConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildSpec(t *testing.T) {
	spec, err := buildSpec([]string{"4MiB", "https://example.test/a.iso", "/tmp/out", "a.iso"})
	require.NoError(t, err)
	assert.Equal(t, utils.DownloadSpec{
		BlockSize:  4 * 1024 * 1024,
		URI:        "https://example.test/a.iso",
		OutputDir:  "/tmp/out",
		OutputName: "a.iso",
	}, spec)

	_, err = buildSpec([]string{"0", "https://example.test/a.iso", "/tmp/out", "a.iso"})
	assert.ErrorIs(t, err, utils.ErrConfig)
	_, err = buildSpec([]string{"300", "https://example.test/a.iso", "/tmp/out", ""})
	assert.ErrorIs(t, err, utils.ErrConfig)
}

func TestParseBatch(t *testing.T) {
	t.Run("entries", func(t *testing.T) {
		data := []byte(`
- uri: https://example.test/a.iso
  dir: /data
  name: a.iso
- block_size: 1MiB
  uri: https://example.test/b.iso
  name: b.iso
- block_size: 300
  uri: https://example.test/c.iso
  name: c.iso
`)
		specs, err := parseBatch(data, 8*1024*1024)
		require.NoError(t, err)
		require.Len(t, specs, 3)
		assert.Equal(t, int64(8*1024*1024), specs[0].BlockSize)
		assert.Equal(t, "/data", specs[0].OutputDir)
		assert.Equal(t, int64(1024*1024), specs[1].BlockSize)
		assert.Equal(t, "", specs[1].OutputDir)
		assert.Equal(t, int64(300), specs[2].BlockSize)
	})

	failures := []struct {
		name    string
		data    string
		message string
	}{
		{"empty", "", "no entries"},
		{"not a list", "uri: https://example.test/a.iso", "error parsing"},
		{"missing uri", "- name: a.iso\n- uri: x\n  name: b", "entry 1: uri is required"},
		{"missing name", "- uri: https://example.test/a.iso\n  name: a\n- uri: https://example.test/b.iso", "entry 2: name is required"},
		{"bad block size", "- uri: https://example.test/a.iso\n  name: a\n  block_size: huge", "entry 1"},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseBatch([]byte(tt.data), 1024)
			require.Error(t, err)
			assert.ErrorIs(t, err, utils.ErrConfig)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestRootCommand_Download(t *testing.T) {
	data := testData(1000)
	server := startServer(t, data)
	dir := t.TempDir()

	stdout, _, err := execute(t, "300", server.URL+"/file", dir, "out.bin", "--workers", "2", "--retries", "0")
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dir, "out.bin"))
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.NoFileExists(t, filepath.Join(dir, "out.bin0"))
	assert.Contains(t, stdout, "3 blocks")
}

func TestRootCommand_CreatesOutputDir(t *testing.T) {
	server := startServer(t, testData(64))
	dir := filepath.Join(t.TempDir(), "nested", "dir")

	_, _, err := execute(t, "16", server.URL+"/file", dir, "out.bin", "--workers", "8", "--retries", "0")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "out.bin"))
}

func TestRootCommand_Failures(t *testing.T) {
	server := startServer(t, testData(10))

	_, _, err := execute(t, "300", server.URL+"/file")
	assert.ErrorIs(t, err, utils.ErrConfig)

	_, _, err = execute(t, "lots", server.URL+"/file", t.TempDir(), "out.bin")
	assert.ErrorIs(t, err, utils.ErrConfig)

	_, _, err = execute(t, "300", server.URL+"/file", t.TempDir(), "out.bin", "--workers=-1")
	assert.ErrorIs(t, err, utils.ErrConfig)

	dir := t.TempDir()
	_, stderr, err := execute(t, "300", server.URL+"/missing", dir, "out.bin", "--workers", "2", "--retries", "0")
	require.Error(t, err)
	assert.Contains(t, stderr, rangehttp.StateProbeFailed.String())
	assert.NoFileExists(t, filepath.Join(dir, "out.bin"))
}

func TestBatchCommand(t *testing.T) {
	data := testData(500)
	server := startServer(t, data)
	dir := t.TempDir()
	batchFile := filepath.Join(dir, "batch.yaml")
	content := "- block_size: 100\n  uri: " + server.URL + "/file\n  dir: " + dir + "\n  name: one.bin\n" +
		"- uri: " + server.URL + "/file\n  dir: " + dir + "\n  name: two.bin\n"
	require.NoError(t, os.WriteFile(batchFile, []byte(content), 0644))

	stdout, _, err := execute(t, "batch", batchFile, "--jobs", "2", "--block-size", "128", "--workers", "4", "--retries", "0")
	require.NoError(t, err)
	for _, name := range []string{"one.bin", "two.bin"} {
		got, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, data, got)
	}
	assert.Contains(t, stdout, "Completed 2 of 2")
}

func TestProbeCommand(t *testing.T) {
	server := startServer(t, testData(1000))

	stdout, _, err := execute(t, "probe", server.URL+"/file", "300")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Length: 1000 bytes")
	assert.Contains(t, stdout, "Ranges: true")
	assert.Contains(t, stdout, "Plan: 3 blocks of 300 B, first block 400 B, last range 700-999")

	_, _, err = execute(t, "probe", server.URL+"/missing")
	assert.ErrorIs(t, err, utils.ErrProbe)
}

func TestCleanCommand(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out.bin0", "out.bin1", "out.bin.merge", "keep.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	stdout, _, err := execute(t, "clean", dir, "out.bin")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Removed 3 file(s)")
	assert.NoFileExists(t, filepath.Join(dir, "out.bin0"))
	assert.NoFileExists(t, filepath.Join(dir, "out.bin.merge"))
	assert.FileExists(t, filepath.Join(dir, "keep.txt"))

	stdout, _, err = execute(t, "clean", dir, "out.bin")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Nothing to clean")
}
