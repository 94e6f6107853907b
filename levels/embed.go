package levels

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

//go:embed *.json
var LevelsFS embed.FS

var ErrBadLayout = errors.New("levels: bad layout")

const (
	CellEmpty = '.'
	CellSolid = '#'
)

// Layout is an authored tile map. Rows are read top to bottom; each rune is
// one tile.
type Layout struct {
	Name     string   `json:"name"`
	TileW    float64  `json:"tile_w,omitempty"`
	TileH    float64  `json:"tile_h,omitempty"`
	Rows     []string `json:"rows"`
	Entities []Entity `json:"entities,omitempty"`
}

// Entity places a prefab at a tile coordinate.
type Entity struct {
	Type  string                 `json:"type"`
	X     int                    `json:"x"`
	Y     int                    `json:"y"`
	Props map[string]interface{} `json:"props,omitempty"`
}

func (l *Layout) Width() int {
	if len(l.Rows) == 0 {
		return 0
	}
	return len(l.Rows[0])
}

func (l *Layout) Height() int { return len(l.Rows) }

// Solid reports whether the cell at x,y is authored solid.
func (l *Layout) Solid(x, y int) bool {
	return l.Rows[y][x] == CellSolid
}

func (l *Layout) validate() error {
	if len(l.Rows) == 0 {
		return fmt.Errorf("%w: no rows", ErrBadLayout)
	}
	w := len(l.Rows[0])
	if w == 0 {
		return fmt.Errorf("%w: empty row", ErrBadLayout)
	}
	for y, row := range l.Rows {
		if len(row) != w {
			return fmt.Errorf("%w: row %d has width %d, want %d", ErrBadLayout, y, len(row), w)
		}
		for x := 0; x < len(row); x++ {
			if row[x] != CellEmpty && row[x] != CellSolid {
				return fmt.Errorf("%w: unknown cell %q at %d,%d", ErrBadLayout, row[x], x, y)
			}
		}
	}
	for _, e := range l.Entities {
		if e.X < 0 || e.Y < 0 || e.X >= w || e.Y >= len(l.Rows) {
			return fmt.Errorf("%w: entity %q at %d,%d is off the map", ErrBadLayout, e.Type, e.X, e.Y)
		}
	}
	return nil
}

// ParseLayout decodes and validates a layout document.
func ParseLayout(data []byte) (*Layout, error) {
	var lay Layout
	if err := json.Unmarshal(data, &lay); err != nil {
		return nil, fmt.Errorf("unmarshal layout: %w", err)
	}
	if err := lay.validate(); err != nil {
		return nil, err
	}
	return &lay, nil
}

// LoadLayoutFromFS reads an embedded layout. The .json suffix is optional.
func LoadLayoutFromFS(name string) (*Layout, error) {
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	lay, err := ParseLayout(data)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", name, err)
	}
	return lay, nil
}

// Dir holds layouts saved at runtime. LoadLayout checks it before the
// embedded set.
var Dir = "levels"

// LoadLayout reads name from Dir, falling back to the embedded layouts.
func LoadLayout(name string) (*Layout, error) {
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	data, err := os.ReadFile(filepath.Join(Dir, name))
	if err != nil {
		return LoadLayoutFromFS(name)
	}
	lay, err := ParseLayout(data)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", name, err)
	}
	return lay, nil
}

// SaveLayout writes lay to Dir and returns the path written. Layouts
// without a name get a timestamped one.
func SaveLayout(lay *Layout) (string, error) {
	if err := lay.validate(); err != nil {
		return "", err
	}
	if lay.Name == "" {
		lay.Name = fmt.Sprintf("level_%d", time.Now().Unix())
	}
	if err := os.MkdirAll(Dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(Dir, lay.Name+".json")
	data, err := json.MarshalIndent(lay, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal layout: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Names lists the embedded layouts without their suffix.
func Names() []string {
	entries, err := fs.ReadDir(LevelsFS, ".")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".json"))
	}
	return out
}
