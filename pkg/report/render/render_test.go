package render

import (
	"bytes"
	"image"
	"os"
	"testing"

	"github.com/teslashibe/go-chakraflow/pkg/chakra"
	"github.com/teslashibe/go-chakraflow/pkg/session"
)

func sample() *session.Summary {
	return &session.Summary{
		ID:             "abc",
		Duration:       120,
		AlignmentCount: 2,
		CrownCount:     4,
		Energies:       []float64{1, 0.1, 0.1, 0.5, 0.1, 0.1, 0.25},
		Strongest:      "Root",
		Weakest:        "Sacral",
		Calmness:       37.5,
	}
}

func TestBarRects(t *testing.T) {
	bars := barRects([]float64{1, 0, 0.5, 0.25, 0, 0, 0, 0.9})
	if len(bars) != chakra.Count {
		t.Fatalf("got %d bars, want %d", len(bars), chakra.Count)
	}

	tests := []struct {
		index int
		want  image.Rectangle
	}{
		{0, image.Rect(80, 50, 150, 450)},
		{1, image.Rect(180, 450, 250, 450)},
		{2, image.Rect(280, 250, 350, 450)},
		{3, image.Rect(380, 350, 450, 450)},
	}
	for _, tt := range tests {
		if got := bars[tt.index].rect; got != tt.want {
			t.Errorf("bar %d = %v, want %v", tt.index, got, tt.want)
		}
		if bars[tt.index].region != chakra.Region(tt.index) {
			t.Errorf("bar %d region = %v", tt.index, bars[tt.index].region)
		}
	}
}

func TestCardSize(t *testing.T) {
	img := Card(sample())
	defer img.Close()
	if img.Rows() != CardHeight || img.Cols() != CardWidth || img.Channels() != 3 {
		t.Errorf("card = %dx%dx%d", img.Cols(), img.Rows(), img.Channels())
	}
}

func TestPNG(t *testing.T) {
	data, err := PNG(sample())
	if err != nil {
		t.Fatalf("PNG() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Errorf("PNG() header = %x", data[:min(8, len(data))])
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	paths, err := Save(dir, sample())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("Save() paths = %v", paths)
	}
	for _, p := range paths {
		if fi, err := os.Stat(p); err != nil || fi.Size() == 0 {
			t.Errorf("%s not written: %v", p, err)
		}
	}
}
