package breakout

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/plus3/brickworks/level"
)

//go:embed levels
var levelFiles embed.FS

// BuiltinLevels parses the levels shipped with the game, ordered by name.
func BuiltinLevels() ([]*level.Level, error) {
	return LoadLevels(levelFiles, "levels")
}

// LoadLevels parses every file of dir in fsys, ordered by name.
func LoadLevels(fsys fs.FS, dir string) ([]*level.Level, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var levels []*level.Level
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		l, err := level.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("level %s: %w", entry.Name(), err)
		}
		levels = append(levels, l)
	}
	return levels, nil
}
