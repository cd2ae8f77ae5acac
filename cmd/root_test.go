package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/courtsched/app"
)

const clubYAML = `
time_blocks:
  - {time_block_id: fri, day: fri, ranking: 1}
  - {time_block_id: sat, day: sat, ranking: 1}
  - {time_block_id: sun, day: sun, ranking: 1}
divisions:
  - {division_id: A, time_blocks: [fri, sat, sun]}
players:
  - {player_id: p1, division_id: A, ranking: 1}
  - {player_id: p2, division_id: A, ranking: 2}
  - {player_id: p3, division_id: A, ranking: 3}
slots:
  - {court_id: c1, time_block_id: fri}
  - {court_id: c1, time_block_id: sat}
  - {court_id: c1, time_block_id: sun}
`

const crowdedYAML = `
time_blocks:
  - {time_block_id: t1, ranking: 1}
divisions:
  - {division_id: A, time_blocks: [t1]}
players:
  - {player_id: p1, division_id: A, ranking: 1}
  - {player_id: p2, division_id: A, ranking: 2}
  - {player_id: p3, division_id: A, ranking: 3}
slots:
  - {court_id: c1, time_block_id: t1}
`

type workspace struct {
	dir, cfg string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "courtsched.yaml")
	doc := fmt.Sprintf("scheduler:\n  duration_seconds: 10\nlogging:\n  backend: jsonl\n  path: %s\n",
		filepath.Join(dir, "runs.jsonl"))
	require.NoError(t, os.WriteFile(cfg, []byte(doc), 0o644))
	return workspace{dir: dir, cfg: cfg}
}

func (w workspace) roster(t *testing.T, name, doc string) string {
	t.Helper()
	path := filepath.Join(w.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestValidateCommand(t *testing.T) {
	w := newWorkspace(t)
	input := w.roster(t, "club.yaml", clubYAML)

	code, out, _ := run("validate", "-c", w.cfg, "-i", input)
	assert.Equal(t, app.ExitOK, code)
	assert.Contains(t, out, "3 players, 1 divisions, 3 time blocks, 3 slots")
}

func TestScheduleCommandThenHistory(t *testing.T) {
	w := newWorkspace(t)
	input := w.roster(t, "club.yaml", clubYAML)
	output := filepath.Join(w.dir, "out.xlsx")
	csvPath := filepath.Join(w.dir, "out.csv")

	code, out, errOut := run("schedule", "-c", w.cfg, "-i", input, "-o", output, "--csv", csvPath, "--summary", "--progress")
	require.Equal(t, app.ExitOK, code, errOut)
	assert.Contains(t, errOut, "model_built")
	assert.Contains(t, out, "3 matches scheduled")
	assert.FileExists(t, output)
	assert.FileExists(t, csvPath)

	code, out, _ = run("-c", w.cfg, "-i", w.roster(t, "crowded.yaml", crowdedYAML), "-o", output)
	assert.Equal(t, app.ExitInfeasible, code)
	assert.Empty(t, out)

	code, out, _ = run("history", "-c", w.cfg)
	require.Equal(t, app.ExitOK, code)
	assert.Contains(t, out, "optimal")
	assert.Contains(t, out, "infeasible")

	code, out, _ = run("history", "-c", w.cfg, "--status", "infeasible", "--since", "1h")
	require.Equal(t, app.ExitOK, code)
	assert.NotContains(t, out, "optimal")
}

func TestHistoryCommandEmpty(t *testing.T) {
	w := newWorkspace(t)
	code, out, _ := run("history", "-c", w.cfg)
	assert.Equal(t, app.ExitOK, code)
	assert.Contains(t, out, "no runs recorded")
}

func TestCommandErrors(t *testing.T) {
	w := newWorkspace(t)
	input := w.roster(t, "club.yaml", clubYAML)

	cases := map[string]struct {
		args []string
		want int
	}{
		"bad group size":    {[]string{"schedule", "-c", w.cfg, "-i", input, "--group-size", "1"}, app.ExitInvalid},
		"missing input":     {[]string{"validate", "-c", w.cfg, "-i", filepath.Join(w.dir, "none.yaml")}, app.ExitInvalid},
		"missing config":    {[]string{"validate", "-c", filepath.Join(w.dir, "none.yaml")}, app.ExitInvalid},
		"unsupported input": {[]string{"validate", "-c", w.cfg, "-i", w.roster(t, "club.txt", clubYAML)}, app.ExitInvalid},
		"unknown flag":      {[]string{"schedule", "--nope"}, app.ExitError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			code, _, errOut := run(tc.args...)
			assert.Equal(t, tc.want, code)
			assert.Contains(t, errOut, "error:")
		})
	}
}
