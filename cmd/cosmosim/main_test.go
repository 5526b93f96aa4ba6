package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/san-kum/cosmosim/internal/cosmology"
	"github.com/san-kum/cosmosim/internal/result"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	logger = zap.NewNop()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeJSON(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func readCSVLine(t *testing.T, path string) []float64 {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := string(data)
	require.True(t, strings.HasSuffix(line, "\n"), "line must end with a newline: %q", line)
	require.Equal(t, 1, strings.Count(line, "\n"), "exactly one line expected: %q", line)

	cells := strings.Split(strings.TrimSuffix(line, "\n"), ",")
	require.Len(t, cells, 5)

	values := make([]float64, len(cells))
	for i, c := range cells {
		v, err := strconv.ParseFloat(c, 64)
		require.NoError(t, err)
		values[i] = v
	}
	return values
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func TestProduceWritesRoutineOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	var got result.SimulationResult
	routine := cosmology.RoutineFunc(func(ctx context.Context, initial result.SimulationResult) (result.SimulationResult, error) {
		got = initial
		return result.SimulationResult{Time: 1, Density: 2, Energy: 3, Expansion: 4, Gravitation: 5}, nil
	})

	r, err := produce(context.Background(), routine, result.Default(), path)
	require.NoError(t, err)

	assert.Equal(t, result.Default(), got)
	assert.Equal(t, 5.0, r.Gravitation)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1,2,3,4,5\n", string(data))
}

func TestProduceOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("old,content\nmore\n"), 0644))

	routine := cosmology.RoutineFunc(func(ctx context.Context, initial result.SimulationResult) (result.SimulationResult, error) {
		return initial, nil
	})

	_, err := produce(context.Background(), routine, result.Default(), path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0,1,1,1,1\n", string(data))
}

func TestProduceRoutineFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	boom := errors.New("boom")

	routine := cosmology.RoutineFunc(func(ctx context.Context, initial result.SimulationResult) (result.SimulationResult, error) {
		return result.SimulationResult{}, boom
	})

	_, err := produce(context.Background(), routine, result.Default(), path)
	require.ErrorIs(t, err, boom)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no file should be written")
}

func TestProduceWriteFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.csv")

	routine := cosmology.RoutineFunc(func(ctx context.Context, initial result.SimulationResult) (result.SimulationResult, error) {
		return initial, nil
	})

	_, err := produce(context.Background(), routine, result.Default(), path)
	assert.ErrorIs(t, err, result.ErrWrite)
}

func TestRunCommandDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simulation_results.csv")

	_, err := execute(t, "run", "--out", path)
	require.NoError(t, err)

	got := readCSVLine(t, path)
	want := []float64{0.01, 0.9, 1.1, 1.01, 0.99}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12, result.FieldNames[i])
	}
}

func TestRunCommandDefaultOutput(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "run")
	require.NoError(t, err)

	got := readCSVLine(t, "simulation_results.csv")
	assert.InDelta(t, 0.9, got[1], 1e-12)
	assert.NoFileExists(t, "simulation_results.json")
}

func TestRunCommandConfigOutput(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	target := filepath.Join(dir, "custom.csv")

	cfgPath := filepath.Join(dir, "cosmosim.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output:\n  csv: \""+target+"\"\n"), 0644))

	_, err := execute(t, "run", "--config", cfgPath)
	require.NoError(t, err)

	readCSVLine(t, target)
	assert.NoFileExists(t, "simulation_results.csv")
	assert.NoFileExists(t, "simulation_results.json")
}

func TestRunCommandEmptyConfigOutput(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfgPath := filepath.Join(dir, "cosmosim.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output:\n  csv: \"\"\n"), 0644))

	_, err := execute(t, "run", "--config", cfgPath)
	require.NoError(t, err)

	readCSVLine(t, "simulation_results.csv")
	assert.NoFileExists(t, "simulation_results.json")
}

func TestOutFlagDefaults(t *testing.T) {
	root := newRootCmd()

	want := map[string]string{
		"run":         "simulation_results.csv",
		"series":      "",
		"export-json": "simulation_results.json",
		"sweep":       "simulation_results.json",
	}
	for name, def := range want {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)

		got, err := cmd.Flags().GetString("out")
		require.NoError(t, err)
		assert.Equal(t, def, got, name)
	}
}

func TestRunCommandWriteFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.csv")

	_, err := execute(t, "run", "--out", path)
	assert.ErrorIs(t, err, result.ErrWrite)
}

func TestRunCommandConfigAndFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cosmosim.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("dt: 0.01\nduration: 0.02\ninitial:\n  density: 2\n"), 0644))
	out := filepath.Join(dir, "out.csv")

	_, err := execute(t, "run", "--config", cfgPath, "--energy", "3", "--out", out)
	require.NoError(t, err)

	got := readCSVLine(t, out)
	assert.InDelta(t, 0.02, got[0], 1e-12)
	assert.InDelta(t, 2*0.9*0.9, got[1], 1e-12, "density from config")
	assert.InDelta(t, 3*1.1*1.1, got[2], 1e-12, "energy from flag")
}

func TestRunCommandInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cosmosim.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("dt: -1\n"), 0644))

	_, err := execute(t, "run", "--config", cfgPath, "--out", filepath.Join(dir, "out.csv"))
	assert.Error(t, err)
}

func TestRunCommandUnknownPreset(t *testing.T) {
	_, err := execute(t, "run", "--preset", "big-crunch", "--out", filepath.Join(t.TempDir(), "out.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown preset")
}

func TestRunCommandSaveAndList(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")

	out, err := execute(t, "run", "--save", "--data", data, "--out", filepath.Join(dir, "out.csv"))
	require.NoError(t, err)
	assert.Contains(t, out, "run saved: rates_")

	out, err = execute(t, "list", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, "rates_")
	assert.Contains(t, out, "euler")
}

func TestListEmpty(t *testing.T) {
	out, err := execute(t, "list", "--data", filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	assert.Equal(t, "no runs\n", out)
}

func TestShowSingleRecord(t *testing.T) {
	path := writeJSON(t, `[{"time":1.0,"density":2.0,"energy":3.0,"expansion":4.0,"gravitation":5.0}]`)

	out, err := execute(t, "show", path)
	require.NoError(t, err)

	lines := nonEmptyLines(out)
	require.Len(t, lines, 1)
	for _, name := range result.FieldNames {
		assert.Contains(t, lines[0], name)
	}
	for _, v := range []string{"1", "2", "3", "4", "5"} {
		assert.Contains(t, lines[0], v)
	}
}

func TestShowEmptyArray(t *testing.T) {
	path := writeJSON(t, `[]`)

	out, err := execute(t, "show", path)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestShowMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.json")

	out, err := execute(t, "show", path)
	require.NoError(t, err)
	assert.Equal(t, "results not found: "+path+"\n", out)
}

func TestShowDecodeFailure(t *testing.T) {
	path := writeJSON(t, `[{"time":1.0,"density":2.0,"energy":3.0,"expansion":4.0}]`)

	out, err := execute(t, "show", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "failed to load results: "), out)
	assert.Len(t, nonEmptyLines(out), 1)
}

func TestReportResultsOrder(t *testing.T) {
	path := writeJSON(t, `[
		{"time":0,"density":1,"energy":1,"expansion":1,"gravitation":1},
		{"time":0.01,"density":0.9,"energy":1.1,"expansion":1.01,"gravitation":0.99}
	]`)

	var out bytes.Buffer
	records := reportResults(&out, path)
	require.Len(t, records, 2)
	assert.Equal(t, 0.9, records[1].Density)

	lines := nonEmptyLines(out.String())
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "0.99")
}

func TestExportJSONThenShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.json")

	out, err := execute(t, "export-json", "--steps", "3", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 4 records")

	out, err = execute(t, "show", path)
	require.NoError(t, err)
	assert.Len(t, nonEmptyLines(out), 4)
}

func TestSeriesToStdout(t *testing.T) {
	out, err := execute(t, "series", "--steps", "2")
	require.NoError(t, err)

	lines := nonEmptyLines(out)
	require.Len(t, lines, 3)
	assert.Equal(t, "Time,Density,Energy,Expansion,Gravitation", lines[0])
	assert.Equal(t, "0,1,1,1,1", lines[1])
}

func TestSeriesWritesNoFileByDefault(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t, "series", "--steps", "2")
	require.NoError(t, err)
	assert.Len(t, nonEmptyLines(out), 3)

	entries, err := os.ReadDir(".")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSweepCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.json")

	_, err := execute(t, "sweep", "--points", "3", "--from", "1", "--to", "3", "--workers", "2", "--out", path)
	require.NoError(t, err)

	records, err := result.Load(path)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, r := range records {
		assert.InDelta(t, 0.01, r.Time, 1e-12)
		assert.InDelta(t, float64(i+1)*0.9, r.Density, 1e-12)
	}
}

func TestPlotCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.json")
	_, err := execute(t, "export-json", "--steps", "5", "--out", path)
	require.NoError(t, err)

	out, err := execute(t, "plot", path, "--field", "expansion")
	require.NoError(t, err)
	assert.Contains(t, out, "expansion vs record")
}

func TestPlotSVG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "series.json")
	svg := filepath.Join(dir, "expansion.svg")

	_, err := execute(t, "export-json", "--steps", "5", "--out", path)
	require.NoError(t, err)

	out, err := execute(t, "plot", path, "--field", "expansion", "--svg", svg)
	require.NoError(t, err)
	assert.Contains(t, out, "exported SVG")

	data, err := os.ReadFile(svg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<title>expansion vs time</title>")
}

func TestPlotMissingFile(t *testing.T) {
	_, err := execute(t, "plot", filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, result.ErrNotFound)
}

func TestPresetsCommand(t *testing.T) {
	out, err := execute(t, "presets", "rates")
	require.NoError(t, err)
	assert.Contains(t, out, "presets for rates:")
	assert.Contains(t, out, "reference")

	out, err = execute(t, "presets", "steady-state")
	require.NoError(t, err)
	assert.Equal(t, "no presets for model: steady-state\n", out)
}
