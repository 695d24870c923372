package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"ResourceCycle/internal/simulator"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags puts every flag back to its default. Commands are package
// globals, so values parsed by one test would otherwise carry into the next.
func resetFlags(t *testing.T) {
	t.Helper()
	adhoc = simulator.Scenario{}
	cmds := append([]*cobra.Command{rootCmd}, rootCmd.Commands()...)
	for _, c := range cmds {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				require.NoError(t, f.Value.Set(f.DefValue), f.Name)
				f.Changed = false
			})
		}
	}
}

// baseArgs point the CLI at a config file that does not exist (so defaults
// apply) with no recorders unless args turn them on.
func baseArgs(t *testing.T, args ...string) []string {
	return append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "--sqlite=", "--csv-dir="}, args...)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(t)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := run(baseArgs(t, args...))
	history = nil
	return out.String(), err
}

func TestCLI_Deplete(t *testing.T) {
	out, err := execute(t, "deplete", "--capacity", "100", "--available", "100", "--withdraw", "15", "--threshold", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "THRESHOLD_REACHED after 6 steps")
	assert.Contains(t, out, "Remaining: 10 (10.0%)")
}

func TestCLI_TargetShort(t *testing.T) {
	out, err := execute(t, "target", "--capacity", "0", "--available", "50", "--withdraw", "20", "--target", "75")
	require.NoError(t, err)
	assert.Contains(t, out, "Target: 75 | Withdrawn: 50 | short by 25")
}

func TestCLI_RejectsBadParameters(t *testing.T) {
	_, err := execute(t, "deplete", "--available", "100", "--withdraw", "0")
	assert.Error(t, err)
}

func TestCLI_ScenarioRecordsHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	out, err := execute(t, "--sqlite", db, "scenario", "water-tank")
	require.NoError(t, err)
	assert.Contains(t, out, "Scenario: water-tank (replenishment)")

	out, err = execute(t, "--sqlite", db, "history", "--scenario", "water-tank")
	require.NoError(t, err)
	assert.Contains(t, out, "water-tank")
	assert.Contains(t, out, "replenishment")
}

func TestCLI_CSVOutput(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "--csv-dir", dir, "scenario", "troop-deployment")
	require.NoError(t, err)

	for _, name := range []string{"runs.csv", "cycles.csv", "config.yaml"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestCLI_HistoryNeedsDatabase(t *testing.T) {
	_, err := execute(t, "history")
	assert.Error(t, err)
}

func TestCLI_ListAndBatch(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "water-tank")
	assert.Contains(t, out, "troop-deployment")

	out, err = execute(t, "batch", "water-tank", "-n", "20", "--seed", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Batch: water-tank | 20 runs | seeds 5..24")

	_, err = execute(t, "batch", "nope")
	assert.Error(t, err)
}

func TestCLI_FlagsDoNotLeakBetweenRuns(t *testing.T) {
	out, err := execute(t, "deplete", "--capacity", "100", "--available", "100", "--withdraw", "15")
	require.NoError(t, err)
	assert.Contains(t, out, "%")

	out, err = execute(t, "target", "--available", "50", "--withdraw", "20", "--target", "75")
	require.NoError(t, err)
	assert.NotContains(t, out, "%")
	assert.Contains(t, out, "short by 25")

	out, err = execute(t, "deplete")
	require.NoError(t, err)
	assert.Contains(t, out, "EXHAUSTED after 10 steps")
}

func TestCLI_FailedCommandClosesRecorder(t *testing.T) {
	resetFlags(t)
	t.Cleanup(func() { history = nil })
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)

	db := filepath.Join(t.TempDir(), "runs.db")
	err := run(baseArgs(t, "--sqlite", db, "batch", "nope"))
	require.Error(t, err)
	require.NotNil(t, history)

	assert.Nil(t, rec)
	_, err = history.RecentRuns("", 1)
	assert.Error(t, err, "database handle should be closed")
}
