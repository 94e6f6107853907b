package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/milk9111/burrow/sim"
)

func main() {
	levelName := flag.String("level", "", "level name in levels/ (basename, .json optional), or \"random\"")
	seed := flag.Int64("seed", 0, "random seed (0 keeps world.yaml)")
	agents := flag.Int("agents", -1, "extra random agents (-1 keeps world.yaml)")
	fps := flag.Int("fps", 30, "redraws per second; the simulation runs at the world tick rate")
	logPath := flag.String("log", "", "write logs to this file instead of discarding them")
	flag.Parse()

	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(discard{})
	}

	s, err := sim.New(sim.Options{Level: *levelName, Seed: *seed, Agents: *agents, Debug: *logPath != ""})
	if err != nil {
		log.Fatal(err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	v := newView(screen, s)
	if *fps <= 0 {
		*fps = 30
	}
	run(v, time.Second/time.Duration(s.Spec.TickRate), time.Second/time.Duration(*fps))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func run(v *view, tick, frame time.Duration) {
	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	redraw := time.NewTicker(frame)
	defer redraw.Stop()

	v.draw()
	for {
		select {
		case ev, ok := <-events:
			if !ok || !v.handle(ev) {
				return
			}
		case <-ticker.C:
			if !v.paused {
				v.sim.Step()
			}
		case <-redraw.C:
			v.draw()
		}
	}
}
