package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/crafting-macro-server/pkg/crafting"
)

// run executes the CLI against a scratch directory and returns stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	base := []string{
		"--config", filepath.Join(dir, "crafting.yaml"),
		"--db", filepath.Join(dir, "crafting.db"),
	}

	root := newRootCmd(io.Discard)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append(base, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestOptimizeJSON(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "optimize",
		"--level", "5", "--cp", "400", "--progress", "360", "--quality", "1000", "--durability", "60",
		"--name", "Bronze Ingot", "--json")
	require.NoError(t, err)

	var resp crafting.MacroResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 200, resp.FinalQuality)
	assert.True(t, resp.ProgressComplete)

	out, err = run(t, dir, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "Bronze Ingot")
	assert.Contains(t, out, resp.RunID)

	out, err = run(t, dir, "runs", resp.RunID)
	require.NoError(t, err)
	assert.Contains(t, out, `"recipeName": "Bronze Ingot"`)
}

func TestOptimizeText(t *testing.T) {
	out, err := run(t, t.TempDir(), "optimize",
		"--level", "5", "--cp", "400", "--progress", "360", "--quality", "1000", "--durability", "60",
		"--strategy", "memo")
	require.NoError(t, err)
	assert.Contains(t, out, `/ac "Basic Synthesis" <wait.3>`)
	assert.Contains(t, out, "/echo ### macro fin (1/1) <se.1>")
	assert.Contains(t, out, "complete: 5 actions, progress 360, quality 200 (20%)")
	assert.Contains(t, out, "memo search explored")
}

func TestOptimizeRequiresProgress(t *testing.T) {
	_, err := run(t, t.TempDir(), "optimize", "--level", "5")
	assert.Error(t, err)
}

func TestSimulate(t *testing.T) {
	out, err := run(t, t.TempDir(), "simulate", "--progress", "240", "--quality", "1000", "--buffs", "Inner Quiet:2",
		"Basic Touch", "Basic Synthesis", "Basic Synthesis", "Basic Touch")
	require.NoError(t, err)
	assert.Contains(t, out, "[Inner Quiet x3]")
	assert.Contains(t, out, "halt: complete, progress 240, quality 120 (12%)")
	assert.Contains(t, out, "1 actions not run")
}

func TestSimulateMacroFile(t *testing.T) {
	dir := t.TempDir()
	macroPath := filepath.Join(dir, "macro.txt")
	require.NoError(t, os.WriteFile(macroPath, []byte("/ac \"Basic Synthesis\" <wait.3>\n/echo done\n"), 0o644))

	out, err := run(t, dir, "simulate", "--progress", "360", "--quality", "100", "--macro-file", macroPath)
	require.NoError(t, err)
	assert.Contains(t, out, "halt: exhausted, progress 120")
}

func TestSkillsAndImport(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "skills", "--level", "5")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Basic Synthesis")
	assert.Contains(t, lines[2], "Basic Touch")

	importPath := filepath.Join(dir, "skills.json")
	require.NoError(t, os.WriteFile(importPath, []byte(`{"skills": [
		{"name": "Careful Synthesis", "variant": "basic-synthesis", "cp_cost": 7, "level": 3}
	]}`), 0o644))

	out, err = run(t, dir, "import-skills", importPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 skills")

	out, err = run(t, dir, "skills")
	require.NoError(t, err)
	assert.Contains(t, out, "Careful Synthesis")
	assert.NotContains(t, out, "Basic Touch")

	_, err = run(t, dir, "reset-skills")
	require.NoError(t, err)
	out, err = run(t, dir, "skills")
	require.NoError(t, err)
	assert.Contains(t, out, "Basic Touch")
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote ")
	assert.FileExists(t, filepath.Join(dir, "crafting.yaml"))

	_, err = run(t, dir, "config", "init")
	assert.Error(t, err)

	out, err = run(t, dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "strategy: beam")
	assert.Contains(t, out, filepath.Join(dir, "crafting.db"))
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"Basic Touch", "Veneration"}, splitList(" Basic Touch, ,Veneration "))
}

func TestOptimizeExportsTraces(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "crafting.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("tracing:\n  enabled: true\n"), 0o644))

	var logs bytes.Buffer
	root := newRootCmd(&logs)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{
		"--config", cfgPath,
		"--db", filepath.Join(dir, "crafting.db"),
		"optimize", "--level", "5", "--cp", "400", "--progress", "360", "--quality", "1000",
	})
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.Contains(t, logs.String(), `"Name":"engine.GenerateMacro"`)
	assert.Contains(t, logs.String(), "crafting.strategy")
}
