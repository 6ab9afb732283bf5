package trader

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"

	"github.com/yodabytz/Kryptobot/internal/indicator"
	"github.com/yodabytz/Kryptobot/internal/market"
)

// dumpDecisionChart writes one png per pair per cycle: recent closes with the
// cycle's decision lines overlaid.
func dumpDecisionChart(dir string, pair market.Pair, h market.History, th Thresholds, d Decision) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create debug dir: %w", err)
	}

	closes := h.Closes()
	pts := make(plotter.XYs, len(closes))
	for i, c := range closes {
		pts[i].X = float64(i)
		pts[i].Y = c
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (%s)", pair.Name, d)
	p.Y.Label.Text = "close"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to plot closes: %w", err)
	}
	p.Add(line)

	levels := []struct {
		name  string
		value float64
		color color.RGBA
	}{
		{"buy", th.Buy, color.RGBA{G: 160, A: 255}},
		{"stop-loss", th.SellLoss, color.RGBA{R: 200, A: 255}},
		{"take-profit", th.SellProfit, color.RGBA{B: 200, A: 255}},
	}
	for _, lv := range levels {
		hl, err := plotter.NewLine(plotter.XYs{
			{X: 0, Y: lv.value},
			{X: float64(len(closes) - 1), Y: lv.value},
		})
		if err != nil {
			return fmt.Errorf("failed to plot %s level: %w", lv.name, err)
		}
		hl.Color = lv.color
		p.Add(hl)
		p.Legend.Add(lv.name, hl)
	}

	dp := indicator.NewDebugPlot(1200, 600)
	dp.Add(p, 1)

	name := fmt.Sprintf("%s_%s.png", pair.Symbol, time.Now().Format("20060102_150405"))
	return dp.Save(filepath.Join(dir, name))
}
