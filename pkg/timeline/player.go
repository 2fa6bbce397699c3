// pkg/timeline/player.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package timeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/mmp/cdti/pkg/traffic"
)

// Player drives the interactive replay: it advances a simulation clock
// over the timeline and evaluates the traffic engine on a fixed tick,
// decoupled from whatever frame rate the external renderer runs at.
// Exports consult Playing(); they are only valid against a paused
// timeline.
type Player struct {
	engine   *traffic.Engine
	interval time.Duration

	playing atomic.Bool
	cur     time.Time
	end     time.Time

	// Callback receives each evaluation's display list; nil is fine.
	Callback func(t time.Time, cmds []traffic.RenderCommand, ownship bool)
}

func NewPlayer(engine *traffic.Engine, start, end time.Time, interval time.Duration) *Player {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	p := &Player{
		engine:   engine,
		interval: interval,
		cur:      start,
		end:      end,
	}
	engine.SetTimelineDriver(p)
	return p
}

func (p *Player) Playing() bool { return p.playing.Load() }

func (p *Player) Play()  { p.playing.Store(true) }
func (p *Player) Pause() { p.playing.Store(false) }

// Now returns the current timeline position.
func (p *Player) Now() time.Time { return p.cur }

func (p *Player) Seek(t time.Time) { p.cur = t }

// Run ticks until the timeline ends or the context is canceled. While
// paused, ticks still fire (so the display refreshes after configuration
// changes) but the clock does not advance.
func (p *Player) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if p.playing.Load() {
				p.cur = p.cur.Add(p.interval)
				if p.cur.After(p.end) {
					p.cur = p.end
					p.playing.Store(false)
				}
			}
			cmds, ok := p.engine.Evaluate(p.cur)
			if p.Callback != nil {
				p.Callback(p.cur, cmds, ok)
			}
			if !p.playing.Load() && p.cur.Equal(p.end) {
				return nil
			}
		}
	}
}
