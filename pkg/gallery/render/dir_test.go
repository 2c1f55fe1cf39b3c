package render_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/NethermindEth/genaiterest/pkg/gallery/pipeline"
	"github.com/NethermindEth/genaiterest/pkg/gallery/render"
	"github.com/NethermindEth/genaiterest/pkg/gallery/style"
)

func TestDir_RenderAndReport(t *testing.T) {
	out := t.TempDir()
	var console bytes.Buffer

	dir, err := render.NewDir(out, &console)
	require.NoError(t, err)

	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	err = dir.Render(context.Background(), pipeline.Cell{
		Slot:     4,
		Column:   1,
		Caption:  "Glass Skyscraper, at dusk!",
		Category: style.Architecture,
		Image:    img,
	})
	require.NoError(t, err)

	name := "slot-04_col-1_glass-skyscraper-at-dusk.png"
	f, err := os.Open(filepath.Join(out, name))
	require.NoError(t, err)
	defer f.Close()

	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
	assert.Contains(t, console.String(), "Glass Skyscraper, at dusk!")

	err = dir.WriteReport(&pipeline.Report{
		Categories: []style.Category{style.Architecture},
		Submitted:  2,
		Rendered:   1,
		Elapsed:    time.Second,
		Failures: []pipeline.Failure{{
			Stage:    pipeline.StageImage,
			Category: style.Architecture,
			Phrase:   "spiral staircase",
			Err:      errors.New("backend returned 500"),
		}},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, render.ReportFile))
	require.NoError(t, err)

	var record render.ReportRecord
	require.NoError(t, yaml.Unmarshal(data, &record))
	assert.Equal(t, []string{"architecture"}, record.Categories)
	assert.Equal(t, 2, record.Submitted)
	assert.Equal(t, 1, record.Rendered)
	require.Len(t, record.Cells, 1)
	assert.Equal(t, name, record.Cells[0].File)
	require.Len(t, record.Failures, 1)
	assert.Equal(t, "image", record.Failures[0].Stage)
	assert.Equal(t, "spiral staircase", record.Failures[0].Phrase)

	assert.Contains(t, console.String(), "1/2 images rendered")
}

func TestDir_RenderNilImage(t *testing.T) {
	dir, err := render.NewDir(t.TempDir(), nil)
	require.NoError(t, err)

	err = dir.Render(context.Background(), pipeline.Cell{Caption: "nothing"})
	assert.Error(t, err)
}

func TestDir_SlugFallback(t *testing.T) {
	out := t.TempDir()
	dir, err := render.NewDir(out, nil)
	require.NoError(t, err)

	err = dir.Render(context.Background(), pipeline.Cell{
		Caption: "¡¡¡",
		Image:   image.NewNRGBA(image.Rect(0, 0, 1, 1)),
	})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(out, "slot-00_col-0_image.png"))
	assert.NoError(t, err)
}
