package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CTAG07/wordweaver/pkg/markov"
	"github.com/stretchr/testify/require"
)

// testEnv holds the paths of an isolated CLI environment.
type testEnv struct {
	dir          string
	configPath   string
	trainingList string
	weightsFile  string
}

// setupTestEnv writes a config pointing every path into a temp dir, plus a small
// training list.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:          dir,
		configPath:   filepath.Join(dir, "wordweaver.json"),
		trainingList: filepath.Join(dir, "words.txt"),
		weightsFile:  filepath.Join(dir, "weights.bin"),
	}

	config := DefaultConfig()
	config.LogLevel = "error"
	config.DatabasePath = filepath.Join(dir, "data", "wordweaver.db")
	config.WeightsFile = env.weightsFile
	config.Words = 4
	data, err := json.MarshalIndent(config, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(env.configPath, data, 0o644))

	require.NoError(t, os.WriteFile(env.trainingList, []byte("aa ar rc cr bo\nbo aa\n"), 0o644))
	return env
}

// run executes the root command with args and returns its standard output.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestFitAndGenerateWithWeightsFile(t *testing.T) {
	env := setupTestEnv(t)

	out, err := env.run(t, "fit", "-t", env.trainingList)
	require.NoError(t, err)
	require.Contains(t, out, "The chain is saved to "+env.weightsFile)

	chain, err := markov.Load(env.weightsFile)
	require.NoError(t, err)
	// duplicates in the list are dropped before fitting
	require.Equal(t, uint64(10), chain.Stats().TotalFrequency)

	out, err = env.run(t, "generate", "--seed", "42")
	require.NoError(t, err)
	words := strings.Fields(out)
	require.Len(t, words, 4)
	for _, w := range words {
		require.Equal(t, strings.ToUpper(w[:1]), w[:1])
		require.NotContains(t, strings.ToLower(w), " ")
		for _, r := range strings.ToLower(w) {
			require.Contains(t, " abcor", string(r))
		}
	}

	again, err := env.run(t, "generate", "--seed", "42")
	require.NoError(t, err)
	require.Equal(t, out, again)
}

func TestGenerateWordCountFlag(t *testing.T) {
	env := setupTestEnv(t)
	_, err := env.run(t, "fit", "-t", env.trainingList)
	require.NoError(t, err)

	out, err := env.run(t, "gen", "-n", "2")
	require.NoError(t, err)
	require.Len(t, strings.Fields(out), 2)
}

func TestFitRejectsInvalidInput(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.run(t, "fit", "-t", filepath.Join(env.dir, "missing.txt"))
	require.ErrorContains(t, err, "failed to read training list")

	empty := filepath.Join(env.dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o644))
	_, err = env.run(t, "fit", "-t", empty)
	require.ErrorIs(t, err, markov.ErrEmptyCorpus)

	_, err = env.run(t, "fit")
	require.Error(t, err)
}

func TestGenerateMissingWeightsFile(t *testing.T) {
	env := setupTestEnv(t)
	_, err := env.run(t, "generate")

	var loadErr *markov.LoadingError
	require.ErrorAs(t, err, &loadErr)
	require.Equal(t, env.weightsFile, loadErr.Path)
}

func TestModelRegistryCommands(t *testing.T) {
	env := setupTestEnv(t)

	out, err := env.run(t, "fit", "-t", env.trainingList, "-m", "names")
	require.NoError(t, err)
	require.Contains(t, out, `stored as model "names"`)
	_, statErr := os.Stat(env.weightsFile)
	require.ErrorIs(t, statErr, os.ErrNotExist)

	out, err = env.run(t, "generate", "-m", "names", "-n", "3", "--seed", "1")
	require.NoError(t, err)
	require.Len(t, strings.Fields(out), 3)

	out, err = env.run(t, "models", "list")
	require.NoError(t, err)
	require.Contains(t, out, "names")

	out, err = env.run(t, "models", "stats")
	require.NoError(t, err)
	require.Contains(t, out, "names")

	exported := filepath.Join(env.dir, "names.json")
	_, err = env.run(t, "models", "export", "names", "-o", exported)
	require.NoError(t, err)

	_, err = env.run(t, "models", "import", exported)
	require.ErrorContains(t, err, "already exists")

	_, err = env.run(t, "models", "remove", "names")
	require.NoError(t, err)

	out, err = env.run(t, "models", "import", exported)
	require.NoError(t, err)
	require.Contains(t, out, `Model "names" imported`)

	_, err = env.run(t, "generate", "-m", "missing")
	require.ErrorContains(t, err, "model not found")
}
