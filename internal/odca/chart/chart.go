package chart

import (
	"fmt"
	"image/color"
	"io"

	"github.com/farxc/odca-monitor/internal/odca/aggregate"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	width  = 10 * vg.Inch
	height = 6 * vg.Inch
)

var palette = []color.Color{
	color.RGBA{R: 0xdd, G: 0x1e, B: 0x35, A: 0xff},
	color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff},
}

func colorAt(i int) color.Color {
	if i < len(palette) {
		return palette[i]
	}
	return plotutil.Color(i)
}

// Render writes p as a PNG.
func Render(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

func newPlot(title, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	return p
}

// Inventory draws one bar per field plus the TOTAL bar.
func Inventory(rows []aggregate.FieldInventory) (*plot.Plot, error) {
	p := newPlot("Inventario por campo", "bls")
	if len(rows) == 0 {
		return p, nil
	}
	all := append(append([]aggregate.FieldInventory{}, rows...), aggregate.TotalInventory(rows))
	values := make(plotter.Values, len(all))
	names := make([]string, len(all))
	for i, r := range all {
		values[i] = r.Inventory
		names[i] = r.Field
	}
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, err
	}
	bars.Color = colorAt(0)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)
	return p, nil
}

// Participation draws each company's share of NSV in percent.
func Participation(shares []aggregate.CompanyShare) (*plot.Plot, error) {
	p := newPlot("Participación NSV", "%")
	if len(shares) == 0 {
		return p, nil
	}
	names := make([]string, len(shares))
	for i, s := range shares {
		bars, err := plotter.NewBarChart(oneAt(i, len(shares), s.Percentage), vg.Points(40))
		if err != nil {
			return nil, err
		}
		bars.Color = colorAt(i)
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)
		p.Legend.Add(fmt.Sprintf("%s %.2f%%", s.Company, s.Percentage), bars)
		names[i] = s.Company
	}
	p.NominalX(names...)
	p.Y.Min = 0
	p.Y.Max = 100
	return p, nil
}

// oneAt is a zero series of length n holding v at i.
func oneAt(i, n int, v float64) plotter.Values {
	values := make(plotter.Values, n)
	values[i] = v
	return values
}

// History draws the daily NSV of every company as a line.
func History(series []aggregate.CompanySeries) (*plot.Plot, error) {
	p := newPlot("Producción NSV histórica (bbls)", "bls")
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	for i, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.Points))
		for j, pt := range s.Points {
			xys[j].X = float64(pt.Date.Unix())
			xys[j].Y = pt.Value
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, err
		}
		line.Color = colorAt(i)
		line.Width = vg.Points(2)
		points.GlyphStyle.Color = colorAt(i)
		p.Add(line, points)
		p.Legend.Add(s.Company, line, points)
	}
	return p, nil
}

// Compliance draws nominated next to transported daily means per company and oil type.
func Compliance(rows []aggregate.ComplianceRow) (*plot.Plot, error) {
	p := newPlot("Nominado vs transportado", "bls/día")
	if len(rows) == 0 {
		return p, nil
	}
	nominated := make(plotter.Values, len(rows))
	transported := make(plotter.Values, len(rows))
	names := make([]string, len(rows))
	for i, r := range rows {
		nominated[i] = r.Nominated
		transported[i] = r.Transported
		names[i] = r.Company + " " + r.OilType
	}

	w := vg.Points(14)
	nb, err := plotter.NewBarChart(nominated, w)
	if err != nil {
		return nil, err
	}
	nb.Color = colorAt(0)
	nb.LineStyle.Width = vg.Length(0)
	nb.Offset = -w / 2

	tb, err := plotter.NewBarChart(transported, w)
	if err != nil {
		return nil, err
	}
	tb.Color = colorAt(1)
	tb.LineStyle.Width = vg.Length(0)
	tb.Offset = w / 2

	p.Add(nb, tb)
	p.Legend.Add("Nominado", nb)
	p.Legend.Add("Transportado", tb)
	p.NominalX(names...)
	return p, nil
}
