package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphedit/internal/config"
	"graphedit/internal/domain"
)

const echoGraph = `{
  "version": 0.5,
  "nodes": {
    "source": {"value": "hello"},
    "echo": {"agent": "copyAgent", "inputs": {"text": ":source"}, "isResult": true}
  }
}`

// run executes the root command with a throwaway config file
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "graphedit.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: error\n"), 0644))

	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConvertRoundTrip(t *testing.T) {
	in := writeFile(t, "echo.json", echoGraph)
	hclPath := filepath.Join(t.TempDir(), "echo.hcl")

	_, stderr, err := run(t, "", "convert", in, hclPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "wrote "+hclPath)

	data, err := os.ReadFile(hclPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `node "source"`)

	stdout, _, err := run(t, "", "convert", hclPath)
	require.NoError(t, err)

	var g domain.GraphData
	require.NoError(t, json.Unmarshal([]byte(stdout), &g))
	assert.Equal(t, []string{"source", "echo"}, g.Nodes.Keys())
	echo, ok := g.Nodes.Get("echo")
	require.True(t, ok)
	text, _ := echo.Inputs.Get("text")
	assert.Equal(t, ":source", text)
}

func TestConvertStdin(t *testing.T) {
	stdout, _, err := run(t, echoGraph, "convert", "-", "--from", "json", "--to", "yaml", "--raw")
	require.NoError(t, err)
	assert.Contains(t, stdout, "source:")
	assert.Contains(t, stdout, "agent: copyAgent")
}

func TestConvertStdinNeedsFormat(t *testing.T) {
	_, _, err := run(t, echoGraph, "convert", "-")
	assert.Error(t, err)
}

func TestConvertMalformed(t *testing.T) {
	in := writeFile(t, "bad.json", `{"nodes": [1, 2]}`)
	_, _, err := run(t, "", "convert", in)
	assert.ErrorIs(t, err, domain.ErrMalformedData)
}

func TestInspect(t *testing.T) {
	in := writeFile(t, "echo.json", echoGraph)

	stdout, _, err := run(t, "", "inspect", in)
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 nodes, 1 edges")
	assert.Contains(t, stdout, "source")
	assert.Contains(t, stdout, "copyAgent")
	assert.Contains(t, stdout, "exports cleanly")
}

func TestInspectJSON(t *testing.T) {
	in := writeFile(t, "echo.json", echoGraph)

	stdout, _, err := run(t, "", "inspect", "--json", in)
	require.NoError(t, err)

	var gui domain.GUIData
	require.NoError(t, json.Unmarshal([]byte(stdout), &gui))
	require.Len(t, gui.Nodes, 2)
	require.Len(t, gui.Edges, 1)
	assert.Equal(t, "source", gui.Edges[0].Source.NodeID)
	assert.Equal(t, domain.Endpoint{NodeID: "echo", Port: "text"}, gui.Edges[0].Target)
}

func TestTemplates(t *testing.T) {
	stdout, _, err := run(t, "", "templates")
	require.NoError(t, err)
	for _, name := range []string{"chat", "echo", "map"} {
		assert.Contains(t, stdout, name)
	}
}

func TestTemplatesShow(t *testing.T) {
	stdout, _, err := run(t, "", "templates", "show", "echo", "--format", "json")
	require.NoError(t, err)

	var g domain.GraphData
	require.NoError(t, json.Unmarshal([]byte(stdout), &g))
	assert.Equal(t, []string{"source", "echo"}, g.Nodes.Keys())

	_, _, err = run(t, "", "templates", "show", "nope")
	assert.ErrorContains(t, err, "unknown template")
}

func TestAgents(t *testing.T) {
	stdout, _, err := run(t, "", "agents")
	require.NoError(t, err)
	assert.Contains(t, stdout, "echoAgent *")
	assert.Contains(t, stdout, "copyAgent")

	stdout, _, err = run(t, "", "agents", "--category", "string")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stringTemplateAgent")
	assert.NotContains(t, stdout, "copyAgent")
}

func TestServeFlagsOverrideConfig(t *testing.T) {
	cmd := serveCmd(&globalOptions{})
	require.NoError(t, cmd.ParseFlags([]string{"--addr", "127.0.0.1:9999", "--history", "5", "--watch", "g.yaml"}))

	cfg := config.DefaultConfig()
	opts := &serveOptions{}
	opts.addr, _ = cmd.Flags().GetString("addr")
	opts.history, _ = cmd.Flags().GetInt("history")
	opts.watchPath, _ = cmd.Flags().GetString("watch")
	opts.apply(cmd, cfg)

	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Editor.HistoryLimit)
	assert.Equal(t, "g.yaml", cfg.Watch.Path)
	assert.Equal(t, config.DefaultDatabasePath, cfg.Database.Path)
	assert.NoError(t, cfg.Validate())
}

func TestBadLogFlag(t *testing.T) {
	_, _, err := run(t, "", "--log-level", "loud", "agents")
	assert.ErrorContains(t, err, "invalid config")
}
