package content

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/conorfennell/mythos/internal/domain"
)

// Load reads every YAML file under dir and builds a validated Catalog.
// A file may hold any mix of entities, relations and stories sections.
func Load(dir string) (*Catalog, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(d.Name())) {
		case ".yaml", ".yml":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk content directory %s: %w", dir, err)
	}
	sort.Strings(paths)

	var (
		entities []domain.Entity
		edges    []domain.RelationshipEdge
		stories  []domain.Story
	)
	for _, path := range paths {
		f, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		entities = append(entities, f.Entities...)
		edges = append(edges, f.Relations...)
		stories = append(stories, f.Stories...)
	}

	c, err := NewCatalog(entities, edges, stories)
	if err != nil {
		return nil, err
	}
	slog.Debug("content loaded",
		"dir", dir,
		"files", len(paths),
		"entities", len(entities),
		"relations", len(edges),
		"stories", len(stories),
	)
	return c, nil
}

type contentFile struct {
	Entities  []domain.Entity           `koanf:"entities"`
	Relations []domain.RelationshipEdge `koanf:"relations"`
	Stories   []domain.Story            `koanf:"stories"`
}

func loadFile(path string) (contentFile, error) {
	var f contentFile
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return f, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := k.Unmarshal("", &f); err != nil {
		return f, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return f, nil
}
