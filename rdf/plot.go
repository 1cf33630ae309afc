package rdf

import (
	"fmt"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	panelWidth  = 5 * vg.Inch
	panelHeight = 4 * vg.Inch
)

// PlotComparison renders the O-O, O-H and H-H g(r) curves of two profiles
// side by side into a PNG. The reference profile is drawn solid, the
// candidate dashed. Pairs missing from either profile are left out.
func PlotComparison(ref, cand *Profile, out string) error {
	panels := []struct {
		title string
		refY  []float64
		candY []float64
	}{
		{"O-O RDF", ref.OO, cand.OO},
		{"O-H RDF", ref.OH, cand.OH},
		{"H-H RDF", ref.HH, cand.HH},
	}

	var plots []*plot.Plot
	for _, panel := range panels {
		if len(panel.refY) == 0 || len(panel.candY) == 0 {
			continue
		}
		p, err := comparePanel(panel.title, ref, cand, panel.refY, panel.candY)
		if err != nil {
			return fmt.Errorf("rdf: panel %s: %w", panel.title, err)
		}
		plots = append(plots, p)
	}
	if len(plots) == 0 {
		return fmt.Errorf("rdf: no common pairs to plot")
	}

	img := vgimg.New(vg.Length(len(plots))*panelWidth, panelHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 1,
		Cols: len(plots),
		PadX: vg.Millimeter * 2,
	}

	canvases := plot.Align([][]*plot.Plot{plots}, tiles, dc)
	for i, p := range plots {
		p.Draw(canvases[0][i])
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("rdf: create %s: %w", out, err)
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("rdf: write %s: %w", out, err)
	}
	return nil
}

func comparePanel(title string, ref, cand *Profile, refY, candY []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "r (Å)"
	p.Y.Label.Text = "g(r)"
	p.Add(plotter.NewGrid())

	refLine, err := plotter.NewLine(xys(ref.R, refY))
	if err != nil {
		return nil, err
	}
	refLine.LineStyle.Width = vg.Points(1.5)
	refLine.LineStyle.Color = plotutil.Color(0)

	candLine, err := plotter.NewLine(xys(cand.R, candY))
	if err != nil {
		return nil, err
	}
	candLine.LineStyle.Width = vg.Points(1.5)
	candLine.LineStyle.Color = plotutil.Color(1)
	candLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(refLine, candLine)
	p.Legend.Add(ref.Label, refLine)
	p.Legend.Add(cand.Label, candLine)
	p.Legend.Top = true

	return p, nil
}

func xys(x, y []float64) plotter.XYs {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	pts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	return pts
}
