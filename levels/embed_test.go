package levels

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedLayoutsLoad(t *testing.T) {
	names := Names()
	if len(names) < 2 {
		t.Fatalf("expected embedded layouts, got %v", names)
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			lay, err := LoadLayoutFromFS(name)
			if err != nil {
				t.Fatalf("LoadLayoutFromFS: %v", err)
			}
			if lay.Width() == 0 || lay.Height() == 0 {
				t.Fatalf("expected a non-empty layout, got %dx%d", lay.Width(), lay.Height())
			}
			for _, e := range lay.Entities {
				if lay.Solid(e.X, e.Y) {
					t.Fatalf("entity %q placed inside a solid cell at %d,%d", e.Type, e.X, e.Y)
				}
			}
		})
	}
}

func TestParseLayoutErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"no_rows", `{"rows":[]}`},
		{"empty_row", `{"rows":[""]}`},
		{"ragged", `{"rows":["...", ".."]}`},
		{"bad_cell", `{"rows":["..x"]}`},
		{"entity_off_map", `{"rows":["..."],"entities":[{"type":"agent","x":3,"y":0}]}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := ParseLayout([]byte(c.doc)); !errors.Is(err, ErrBadLayout) {
				t.Fatalf("expected ErrBadLayout, got %v", err)
			}
		})
	}
	if _, err := ParseLayout([]byte(`{`)); err == nil {
		t.Fatalf("expected a decode error")
	}
}

func TestSaveAndLoadLayout(t *testing.T) {
	old := Dir
	Dir = filepath.Join(t.TempDir(), "levels")
	defer func() { Dir = old }()

	lay := &Layout{
		Name:     "open",
		TileW:    16,
		Rows:     []string{"#..", "..#"},
		Entities: []Entity{{Type: "agent", X: 1, Y: 0, Props: map[string]interface{}{"speed": 3.0}}},
	}
	path, err := SaveLayout(lay)
	if err != nil {
		t.Fatalf("SaveLayout: %v", err)
	}
	if filepath.Base(path) != "open.json" {
		t.Fatalf("expected open.json, got %s", path)
	}

	got, err := LoadLayout("open")
	if err != nil {
		t.Fatalf("LoadLayout: %v", err)
	}
	if got.TileW != 16 || len(got.Rows) != 2 || got.Rows[1] != "..#" {
		t.Fatalf("expected the saved copy to shadow the embedded one, got %+v", got)
	}
	if len(got.Entities) != 1 || got.Entities[0].Props["speed"] != 3.0 {
		t.Fatalf("expected entity props to round trip, got %+v", got.Entities)
	}

	if err := os.WriteFile(filepath.Join(Dir, "broken.json"), []byte(`{"rows":["x"]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadLayout("broken"); !errors.Is(err, ErrBadLayout) {
		t.Fatalf("expected ErrBadLayout for a bad saved layout, got %v", err)
	}

	unnamed := &Layout{Rows: []string{"."}}
	if _, err := SaveLayout(unnamed); err != nil || unnamed.Name == "" {
		t.Fatalf("expected a generated name, got %q (%v)", unnamed.Name, err)
	}
	if _, err := SaveLayout(&Layout{}); !errors.Is(err, ErrBadLayout) {
		t.Fatalf("expected ErrBadLayout for an empty layout, got %v", err)
	}
}
