package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-blur-bench/pkg/queue"
	"go-blur-bench/pkg/status"
)

func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("BLURBENCH_CONFIG_FILE", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestStatusCommand_PrintsRecentEvents(t *testing.T) {
	isolateConfig(t)
	mr := miniredis.RunT(t)

	client, err := queue.NewRedisClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	defer client.Close()
	for i := 0; i < 3; i++ {
		_, err := client.AddStatus(status.Info("bench", "", fmt.Sprintf("event %d", i)))
		require.NoError(t, err)
	}
	_, err = client.AddStatus(status.Error("parallel", "/tmp/a.png", "Invalid blur value"))
	require.NoError(t, err)

	cmd := newStatusCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--redis", mr.Addr(), "--count", "2"})
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "event 2"), lines[0])
	assert.Contains(t, lines[1], "/tmp/a.png: Invalid blur value")
	assert.Contains(t, lines[1], "error")
}

func TestStatusCommand_RunPublishesToStream(t *testing.T) {
	isolateConfig(t)
	mr := miniredis.RunT(t)

	src := t.TempDir()
	writePNG(t, filepath.Join(src, "one.png"))

	run := newRunCmd()
	run.SetOut(&bytes.Buffer{})
	run.SetArgs([]string{src, "--radius", "1", "--output-dir", t.TempDir(), "--redis", mr.Addr()})
	require.NoError(t, run.Execute())

	cmd := newStatusCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--redis", mr.Addr(), "--count", "100"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, stdout.String(), "Selected 1 images")
	assert.Regexp(t, `Sequential execution time: \d+ ms\n$`, stdout.String())
}

func TestStatusCommand_RequiresRedis(t *testing.T) {
	isolateConfig(t)

	cmd := newStatusCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}

func TestFormatEvent(t *testing.T) {
	ts := time.Date(2024, 1, 2, 13, 4, 5, 0, time.UTC)
	ev := status.Event{Time: ts, Level: status.LevelInfo, Source: "bench", Message: "Selected 2 images"}
	assert.Equal(t, "13:04:05 info  bench      Selected 2 images", formatEvent(ev))

	ev.Path = "/x.png"
	assert.Equal(t, "13:04:05 info  bench      /x.png: Selected 2 images", formatEvent(ev))
}
