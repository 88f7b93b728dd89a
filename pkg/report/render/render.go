// Package render draws the session summary card and the region bar graph
// with OpenCV.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-chakraflow/pkg/chakra"
	"github.com/teslashibe/go-chakraflow/pkg/report"
	"github.com/teslashibe/go-chakraflow/pkg/session"
)

// Image sizes in pixels.
const (
	CardWidth   = 800
	CardHeight  = 600
	GraphWidth  = 800
	GraphHeight = 500
)

// ErrWrite is returned when OpenCV cannot write an image file.
var ErrWrite = errors.New("render: write image")

var (
	white      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	durationFg = color.RGBA{R: 255, G: 200, B: 200, A: 255}
	crownFg    = color.RGBA{R: 200, G: 255, B: 200, A: 255}
	alignFg    = color.RGBA{R: 150, G: 215, B: 255, A: 255}
)

// Card draws the summary card. The caller closes the returned Mat.
func Card(sum *session.Summary) gocv.Mat {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(15, 15, 15, 0), CardHeight, CardWidth, gocv.MatTypeCV8UC3)

	gocv.PutText(&img, "ChakraFlow Summary", image.Pt(170, 60), gocv.FontHersheySimplex, 1.2, white, 3)

	y := 150
	for i, e := range sum.Energies {
		r := chakra.Region(i)
		label := fmt.Sprintf("%s: %d%%", r, report.Percent(e))
		gocv.PutText(&img, label, image.Pt(80, y), gocv.FontHersheySimplex, 0.8, r.Color(), 2)
		y += 35
	}

	gocv.PutText(&img, fmt.Sprintf("Session Time: %.1f min", sum.Duration/60), image.Pt(460, 150), gocv.FontHersheySimplex, 0.8, durationFg, 2)
	gocv.PutText(&img, fmt.Sprintf("Crown Gesture: %d", sum.CrownCount), image.Pt(460, 200), gocv.FontHersheySimplex, 0.8, crownFg, 2)
	gocv.PutText(&img, fmt.Sprintf("Alignment Mode: %d", sum.AlignmentCount), image.Pt(460, 250), gocv.FontHersheySimplex, 0.8, alignFg, 2)
	gocv.PutText(&img, fmt.Sprintf("Calmness: %d/100", int(sum.Calmness)), image.Pt(460, 300), gocv.FontHersheySimplex, 0.8, white, 2)
	gocv.PutText(&img, "Strongest: "+sum.Strongest, image.Pt(80, 450), gocv.FontHersheySimplex, 0.8, white, 2)
	gocv.PutText(&img, "Weakest: "+sum.Weakest, image.Pt(80, 500), gocv.FontHersheySimplex, 0.8, white, 2)

	return img
}

// Bars draws one filled bar per region, scaled to its energy. The caller
// closes the returned Mat.
func Bars(energies []float64) gocv.Mat {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), GraphHeight, GraphWidth, gocv.MatTypeCV8UC3)

	for _, bar := range barRects(energies) {
		gocv.Rectangle(&img, bar.rect, bar.region.Color(), -1)
		name, _, _ := strings.Cut(bar.region.String(), " ")
		gocv.PutText(&img, name, image.Pt(bar.rect.Min.X, 470), gocv.FontHersheySimplex, 0.6, white, 2)
	}
	return img
}

type bar struct {
	region chakra.Region
	rect   image.Rectangle
}

// barRects lays out the bars on a 450px baseline, 400px at full energy.
func barRects(energies []float64) []bar {
	out := make([]bar, 0, len(energies))
	for i, e := range energies {
		if i >= chakra.Count {
			break
		}
		h := report.Percent(e) * 4
		x := 80 + i*100
		out = append(out, bar{
			region: chakra.Region(i),
			rect:   image.Rect(x, 450-h, x+70, 450),
		})
	}
	return out
}

// PNG encodes the summary card as PNG bytes.
func PNG(sum *session.Summary) ([]byte, error) {
	img := Card(sum)
	defer img.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("render: encode card: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Save writes summary_<id>.png and graph_<id>.png into dir and returns their
// paths.
func Save(dir string, sum *session.Summary) ([]string, error) {
	card := Card(sum)
	defer card.Close()
	graph := Bars(sum.Energies)
	defer graph.Close()

	paths := []string{
		filepath.Join(dir, "summary_"+sum.ID+".png"),
		filepath.Join(dir, "graph_"+sum.ID+".png"),
	}
	for i, img := range []gocv.Mat{card, graph} {
		if !gocv.IMWrite(paths[i], img) {
			return nil, fmt.Errorf("%w: %s", ErrWrite, paths[i])
		}
	}
	return paths, nil
}
