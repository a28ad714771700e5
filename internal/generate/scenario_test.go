package generate_test

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/AnthonyAugust/meu-agente-tests/internal/config"
	"github.com/AnthonyAugust/meu-agente-tests/internal/generate"
	"github.com/AnthonyAugust/meu-agente-tests/internal/llm"
)

// Each testdata/*.txtar archive describes one run:
//
//	comment    "remote: none|fail|reply"
//	input/*    the source file handed to the pipeline (exactly one)
//	reply      model output when remote is "reply"
//	want/*     files expected under the run directory afterwards
//	error      substring of the expected error; nothing may be written
func TestScenarios(t *testing.T) {
	archives, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, archives)

	for _, archive := range archives {
		name := strings.TrimSuffix(filepath.Base(archive), ".txtar")
		t.Run(name, func(t *testing.T) {
			runScenario(t, archive)
		})
	}
}

func runScenario(t *testing.T, archive string) {
	a, err := txtar.ParseFile(archive)
	require.NoError(t, err)

	dir := t.TempDir()
	var (
		input   string
		reply   string
		wantErr string
		want    = map[string]string{}
	)
	for _, f := range a.Files {
		switch {
		case strings.HasPrefix(f.Name, "input/"):
			require.Empty(t, input, "more than one input file")
			input = filepath.Join(dir, filepath.Base(f.Name))
			require.NoError(t, os.WriteFile(input, f.Data, 0o644))
		case strings.HasPrefix(f.Name, "want/"):
			want[strings.TrimPrefix(f.Name, "want/")] = string(f.Data)
		case f.Name == "reply":
			reply = string(f.Data)
		case f.Name == "error":
			wantErr = strings.TrimSpace(string(f.Data))
		default:
			t.Fatalf("unexpected archive entry %q", f.Name)
		}
	}
	require.NotEmpty(t, input, "archive has no input/ file")

	azure, client := scenarioRemote(t, commentValue(a.Comment, "remote"), reply)
	p := generate.NewPipeline(azure, client, nil, &bytes.Buffer{})
	p.OutputDir = filepath.Join(dir, "tests")

	_, err = p.Run(context.Background(), input)
	if wantErr != "" {
		require.Error(t, err)
		assert.Contains(t, err.Error(), wantErr)
		_, statErr := os.Stat(p.OutputDir)
		assert.True(t, os.IsNotExist(statErr), "nothing may be written on failure")
		return
	}
	require.NoError(t, err)

	for rel, content := range want {
		got, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
		require.NoError(t, err)
		assert.Equal(t, content, string(got), rel)
	}
}

func scenarioRemote(t *testing.T, mode, reply string) (config.AzureConfig, llm.Client) {
	t.Helper()
	switch mode {
	case "", "none":
		return config.AzureConfig{}, nil
	case "fail":
		return fullAzure, &stubClient{err: &llm.RemoteCallError{Op: "chat completion", Err: errors.New("network unreachable")}}
	case "reply":
		return fullAzure, &stubClient{reply: reply}
	}
	t.Fatalf("unknown remote mode %q", mode)
	return config.AzureConfig{}, nil
}

// commentValue returns the value of a "key: value" line in an archive comment.
func commentValue(comment []byte, key string) string {
	sc := bufio.NewScanner(bytes.NewReader(comment))
	for sc.Scan() {
		k, v, ok := strings.Cut(sc.Text(), ":")
		if ok && strings.TrimSpace(k) == key {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
