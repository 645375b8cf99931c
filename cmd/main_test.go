package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"sys-monitor/internal/tail"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTailCommandPrintsLastLines(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\nc\nd\n"), 0o644))

	out, err := runCLI(t, "tail", path, "-n", "2")
	require.NoError(t, err)
	assert.Equal(t, "c\nd\n", out)
}

func TestTailCommandEncodingFlag(t *testing.T) {
	t.Chdir(t.TempDir())
	encoded, err := simplifiedchinese.GBK.NewEncoder().String("第一行\n第二行\n")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "gbk.log")
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o644))

	out, err := runCLI(t, "tail", path, "-n", "1", "--encoding", "gbk")
	require.NoError(t, err)
	assert.Equal(t, "第二行\n", out)
}

func TestTailCommandUsesConfigEncoding(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("logs_encoding: gbk\nlogs_chunk_size: 3\n"), 0o644))
	encoded, err := simplifiedchinese.GBK.NewEncoder().String("日志\n")
	require.NoError(t, err)
	path := filepath.Join(dir, "gbk.log")
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o644))

	out, err := runCLI(t, "--config", configPath, "tail", path)
	require.NoError(t, err)
	assert.Equal(t, "日志\n", out)
}

func TestTailCommandMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := runCLI(t, "tail", filepath.Join(t.TempDir(), "missing.log"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, tail.ErrNotFound))
}

func TestTailCommandExplicitConfigMustExist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))

	_, err := runCLI(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "tail", path)
	assert.Error(t, err)
}

func TestTailCommandRequiresFile(t *testing.T) {
	_, err := runCLI(t, "tail")
	assert.Error(t, err)
}
