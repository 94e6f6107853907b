package prefabs

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/burrow/nav"
	"github.com/milk9111/burrow/pathfind"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

func TestEmbeddedSpecsLoad(t *testing.T) {
	world, err := LoadWorldSpec()
	if err != nil {
		t.Fatalf("LoadWorldSpec: %v", err)
	}
	if world.Level != "burrow" || world.TickRate != 60 {
		t.Fatalf("unexpected world spec %+v", world)
	}
	cfg := world.LevelConfig()
	if cfg.TileW != 32 || cfg.Mesh.Stride != 4 || cfg.Mesh.LinkRadius != 8 {
		t.Fatalf("unexpected level config %+v", cfg)
	}

	pf, err := LoadPathfindSpec()
	if err != nil {
		t.Fatalf("LoadPathfindSpec: %v", err)
	}
	acfg, err := pf.AgentConfig()
	if err != nil {
		t.Fatalf("AgentConfig: %v", err)
	}
	if acfg.Mode != pathfind.ModeHierarchical || acfg.Rank != nav.BestByHeuristic || acfg.TrackSource {
		t.Fatalf("unexpected agent config %+v", acfg)
	}

	agent, err := LoadAgentSpec()
	if err != nil {
		t.Fatalf("LoadAgentSpec: %v", err)
	}
	if agent.Tint == nil || agent.Tint.Color != color.Color(colornames.Orange) {
		t.Fatalf("expected orange tint, got %+v", agent.Tint)
	}
	if _, err := LoadScript(agent.Script); err != nil {
		t.Fatalf("LoadScript(%s): %v", agent.Script, err)
	}
}

func TestLoadScriptPaths(t *testing.T) {
	for _, name := range []string{"wander.tengo", "scripts/patrol.tengo", "prefabs/scripts/wander.tengo"} {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadScript(name); err != nil {
				t.Fatalf("LoadScript: %v", err)
			}
		})
	}
	if _, err := LoadScript("missing.tengo"); err == nil {
		t.Fatalf("expected error for a missing script")
	}
}

func TestLoadPrefersDisk(t *testing.T) {
	dir := t.TempDir()
	old := Dir
	Dir = dir
	defer func() { Dir = old }()

	if err := os.WriteFile(filepath.Join(dir, "pathfind.yaml"), []byte("mode: tile_only\nrank: score\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	spec, err := LoadPathfindSpec()
	if err != nil {
		t.Fatalf("LoadPathfindSpec: %v", err)
	}
	cfg, err := spec.AgentConfig()
	if err != nil {
		t.Fatalf("AgentConfig: %v", err)
	}
	if cfg.Mode != pathfind.ModeTileOnly || cfg.Rank != nav.BestByScore {
		t.Fatalf("expected disk override, got %+v", cfg)
	}
}

func TestAgentConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		spec PathfindSpec
	}{
		{"bad_mode", PathfindSpec{Mode: "teleport"}},
		{"bad_rank", PathfindSpec{Rank: "closest"}},
		{"negative_budget", PathfindSpec{FineBudget: -1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := c.spec.AgentConfig(); !errors.Is(err, ErrBadSpec) {
				t.Fatalf("expected ErrBadSpec, got %v", err)
			}
		})
	}
}

func TestAgentSpecValidate(t *testing.T) {
	cases := []struct {
		name string
		spec AgentSpec
		ok   bool
	}{
		{"valid", AgentSpec{Speed: 1, Collider: ColliderSpec{HalfW: 1, HalfH: 1}}, true},
		{"no_speed", AgentSpec{Collider: ColliderSpec{HalfW: 1, HalfH: 1}}, false},
		{"flat_collider", AgentSpec{Speed: 1, Collider: ColliderSpec{HalfW: 1}}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.spec.Validate()
			if c.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !c.ok && !errors.Is(err, ErrBadSpec) {
				t.Fatalf("expected ErrBadSpec, got %v", err)
			}
		})
	}
}

func TestYAMLColor(t *testing.T) {
	cases := []struct {
		in      string
		want    color.Color
		wantErr bool
	}{
		{"'#ff8000'", color.NRGBA{R: 255, G: 128, A: 255}, false},
		{"'#10203040'", color.NRGBA{R: 16, G: 32, B: 48, A: 64}, false},
		{"teal", colornames.Teal, false},
		{"Teal", colornames.Teal, false},
		{"'#abc'", nil, true},
		{"'#zzzzzz'", nil, true},
		{"notacolor", nil, true},
		{"[1, 2]", nil, true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			var out struct {
				Tint YAMLColor `yaml:"tint"`
			}
			err := yaml.Unmarshal([]byte("tint: "+c.in), &out)
			if c.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", out.Tint.Color)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Tint.Color != c.want {
				t.Fatalf("expected %v, got %v", c.want, out.Tint.Color)
			}
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	spec := AgentSpec{Name: "base", Speed: 10, Collider: ColliderSpec{HalfW: 4, HalfH: 4}}
	err := ApplyOverrides(&spec, map[string]any{
		"speed":    25,
		"collider": map[string]any{"half_w": 6},
	})
	if err != nil {
		t.Fatalf("ApplyOverrides: %v", err)
	}
	if spec.Name != "base" || spec.Speed != 25 || spec.Collider.HalfW != 6 || spec.Collider.HalfH != 4 {
		t.Fatalf("unexpected spec after overrides %+v", spec)
	}

	if err := ApplyOverrides(&spec, map[string]any{"speed": "fast"}); err == nil {
		t.Fatalf("expected error for a non-numeric speed")
	}
	if err := ApplyOverrides(&spec, nil); err != nil {
		t.Fatalf("expected nil props to be a no-op, got %v", err)
	}
}

func TestWatcherReportsEdits(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "agent.yaml"), []byte("speed: 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	timeout := time.After(2 * time.Second)
	for {
		select {
		case name := <-w.Events:
			if name == "ignored.txt" {
				t.Fatalf("expected non-spec files to be filtered")
			}
			if name == "agent.yaml" {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for agent.yaml")
		}
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	select {
	case _, ok := <-w.Events:
		if ok {
			t.Fatalf("expected events channel closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("events channel was not closed")
	}
}
