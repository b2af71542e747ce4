package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{appName, "--log-level", "error"}, args...))
	return out.String(), err
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		l, err := newLogger(level)
		require.NoError(t, err, level)
		assert.NotNil(t, l)
	}

	_, err := newLogger("loud")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := runApp(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, appName+" dev")
	assert.Contains(t, out, "Git commit: unknown")
}

func TestAnalyzeRequiresExperiment(t *testing.T) {
	_, err := runApp(t, "analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--config or --preset")

	_, err = runApp(t, "analyze", "--preset", "plus-maze", "--config", "x.json")
	require.Error(t, err)

	_, err = runApp(t, "analyze", "--preset", "plus-maze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no frame directory")
}

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	framesDir := filepath.Join(dir, "frames")
	require.NoError(t, os.Mkdir(framesDir, 0o755))

	squares := []image.Rectangle{{}, image.Rect(20, 30, 80, 90), image.Rect(120, 30, 180, 90)}
	for i, sq := range squares {
		img := image.NewGray(image.Rect(0, 0, 200, 120))
		for j := range img.Pix {
			img.Pix[j] = 20
		}
		for y := sq.Min.Y; y < sq.Max.Y; y++ {
			for x := sq.Min.X; x < sq.Max.X; x++ {
				img.Pix[img.PixOffset(x, y)] = 200
			}
		}
		f, err := os.Create(filepath.Join(framesDir, fmt.Sprintf("%03d.png", i)))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, img))
		require.NoError(t, f.Close())
	}

	cfgPath := filepath.Join(dir, "trial.json")
	cfgJSON := `{
  "frames": {"dir": "frames", "fps": 10},
  "regions": [
    {"id": "left", "rect": [0, 0, 100, 120]},
    {"id": "right", "rect": [100, 0, 200, 120]}
  ]
}`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgJSON), 0o644))

	out, err := runApp(t, "analyze", "--config", cfgPath, "--trace")
	require.NoError(t, err)

	var report struct {
		Frames  int `json:"frames"`
		Records map[string]struct {
			Inside  bool `json:"inside"`
			Entries int  `json:"entries"`
		} `json:"records"`
		Trace []json.RawMessage `json:"trace"`
	}
	require.NoError(t, json.NewDecoder(strings.NewReader(out)).Decode(&report))

	assert.Equal(t, 3, report.Frames)
	assert.Len(t, report.Trace, 3)
	assert.Equal(t, 1, report.Records["left"].Entries)
	assert.False(t, report.Records["left"].Inside)
	assert.True(t, report.Records["right"].Inside)
}
