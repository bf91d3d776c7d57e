package chart

import (
	"bytes"
	"testing"
	"time"

	"github.com/farxc/odca-monitor/internal/odca/aggregate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func render(t *testing.T, p *plot.Plot, err error) []byte {
	t.Helper()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, p))
	return buf.Bytes()
}

func TestChartsRenderPNG(t *testing.T) {
	inv := []aggregate.FieldInventory{
		{Field: "AKIRA", Received: 100, Transported: 80, Inventory: 20},
		{Field: "JACANA ESTACION", Received: 50, Transported: 70, Inventory: -20},
	}
	shares := []aggregate.CompanyShare{{Company: "GEOPARK", NSV: 70, Percentage: 70}, {Company: "PAREX", NSV: 30, Percentage: 30}}
	history := []aggregate.CompanySeries{{
		Company: "GEOPARK",
		Points: []aggregate.DailyValue{
			{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Value: 10},
			{Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Value: 12},
		},
	}}
	compliance := []aggregate.ComplianceRow{{Company: "GEOPARK", OilType: "Jacana", Nominated: 100, Transported: 95, CompliancePct: 95}}

	cases := map[string]func() (*plot.Plot, error){
		"inventory":     func() (*plot.Plot, error) { return Inventory(inv) },
		"participation": func() (*plot.Plot, error) { return Participation(shares) },
		"history":       func() (*plot.Plot, error) { return History(history) },
		"compliance":    func() (*plot.Plot, error) { return Compliance(compliance) },
	}
	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			p, err := build()
			out := render(t, p, err)
			assert.True(t, bytes.HasPrefix(out, pngMagic))
		})
	}
}

func TestChartsRenderEmpty(t *testing.T) {
	cases := map[string]func() (*plot.Plot, error){
		"inventory":     func() (*plot.Plot, error) { return Inventory(nil) },
		"participation": func() (*plot.Plot, error) { return Participation(nil) },
		"history":       func() (*plot.Plot, error) { return History(nil) },
		"compliance":    func() (*plot.Plot, error) { return Compliance(nil) },
	}
	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			p, err := build()
			out := render(t, p, err)
			assert.True(t, bytes.HasPrefix(out, pngMagic))
		})
	}
}
