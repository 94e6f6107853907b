package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/burrow/prefabs"
	"github.com/milk9111/burrow/sim"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug overlays and logging")
	levelName := flag.String("level", "", "level name in levels/ (basename, .json optional), or \"random\"")
	seed := flag.Int64("seed", 0, "random seed (0 keeps world.yaml)")
	agents := flag.Int("agents", -1, "extra random agents (-1 keeps world.yaml)")
	flag.Parse()

	s, err := sim.New(sim.Options{Level: *levelName, Seed: *seed, Agents: *agents, Debug: *debug})
	if err != nil {
		log.Fatal(err)
	}

	watcher, err := prefabs.NewWatcher(prefabs.Dir, prefabs.Dir+"/scripts")
	if err != nil {
		log.Printf("prefab hot reload disabled: %v", err)
		watcher = nil
	}

	w, h := s.Level.Bounds().Width(), s.Level.Bounds().Height()
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(int(w), int(h))
	ebiten.SetWindowTitle("burrow")
	ebiten.SetTPS(s.Spec.TickRate)

	game := NewGame(s, watcher, *debug)
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
