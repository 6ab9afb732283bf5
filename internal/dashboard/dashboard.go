// Package dashboard renders the shared operational state in the terminal:
// funds and holdings on top, the scrolling activity log below. It reads
// snapshots only and never mutates trading data; the one thing it writes is
// the shutdown request when the user quits.
package dashboard

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/yodabytz/Kryptobot/internal/state"
)

const refreshInterval = 500 * time.Millisecond

type Dashboard struct {
	ops    *state.OperationalState
	screen tcell.Screen
	scroll int
}

func New(ops *state.OperationalState) (*Dashboard, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to init screen: %w", err)
	}
	return &Dashboard{ops: ops, screen: screen}, nil
}

// Run owns the terminal until the user quits or a shutdown is requested
// elsewhere, and restores it on return. Quitting with q or Escape requests
// shutdown for the whole process; the caller still waits for the worker.
func (d *Dashboard) Run() {
	defer d.screen.Fini()

	events := make(chan tcell.Event, 8)
	quit := make(chan struct{})
	go d.screen.ChannelEvents(events, quit)
	defer close(quit)

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		d.draw(d.ops.Snapshot())

		select {
		case <-d.ops.Done():
			return
		case <-ticker.C:
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyUp:
					d.scroll++
				case ev.Key() == tcell.KeyDown:
					if d.scroll > 0 {
						d.scroll--
					}
				case ev.Key() == tcell.KeyEscape || ev.Rune() == 'q':
					d.ops.RequestShutdown()
					return
				}
			case *tcell.EventResize:
				d.screen.Sync()
			}
		}
	}
}

func (d *Dashboard) draw(v state.View) {
	d.screen.Clear()
	w, h := d.screen.Size()

	header := tcell.StyleDefault.Bold(true)
	plain := tcell.StyleDefault

	row := 0
	d.put(0, row, header, fmt.Sprintf("Funds: $%.2f", v.Funds))
	row++
	d.put(0, row, header, "Holdings:")
	row++
	for _, line := range v.Holdings {
		if row >= h/2 {
			break
		}
		d.put(2, row, plain, line)
		row++
	}

	for x := 0; x < w; x++ {
		d.screen.SetContent(x, row, tcell.RuneHLine, nil, plain)
	}

	logTop := row + 1
	visible := h - logTop
	if visible < 0 {
		visible = 0
	}

	logs := v.Logs
	maxScroll := len(logs) - visible
	if maxScroll < 0 {
		maxScroll = 0
	}
	if d.scroll > maxScroll {
		d.scroll = maxScroll
	}

	start := len(logs) - visible - d.scroll
	if start < 0 {
		start = 0
	}
	end := start + visible
	if end > len(logs) {
		end = len(logs)
	}

	y := logTop
	for _, line := range logs[start:end] {
		d.put(0, y, plain, line)
		y++
	}

	d.screen.Show()
}

func (d *Dashboard) put(x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		d.screen.SetContent(x+i, y, r, nil, style)
	}
}
