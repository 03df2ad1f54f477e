package ontology

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/c360studio/semfibo/rdf"
)

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	logger *slog.Logger
}

// WithLoadLogger sets the logger used to report module progress.
func WithLoadLogger(logger *slog.Logger) LoadOption {
	return func(o *loadOptions) {
		o.logger = logger
	}
}

// Load reads the listed modules in order and merges them into one graph. The
// first module initialises the graph and later ones merge into it. A module
// that does not exist, or a glob that matches nothing, fails the whole load
// with ErrModuleMissing.
func Load(ctx context.Context, basePath string, modules []string, opts ...LoadOption) (*Graph, error) {
	o := loadOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	files, err := ExpandModules(basePath, modules)
	if err != nil {
		return nil, err
	}

	b := NewBuilder()
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		triples, err := decodeFile(file, i)
		if err != nil {
			return nil, err
		}
		name := moduleName(basePath, file)
		b.Add(name, triples)
		o.logger.Debug("Loaded ontology module", "module", name, "triples", len(triples))
	}

	g := b.Build()
	stats := g.Stats()
	o.logger.Info("Ontology loaded",
		"modules", stats.Modules,
		"classes", stats.Classes,
		"properties", stats.Properties,
		"individuals", stats.Individuals)
	return g, nil
}

// ExpandModules turns module entries into absolute file paths, expanding globs
// in sorted order and dropping duplicates while keeping first occurrences.
func ExpandModules(basePath string, modules []string) ([]string, error) {
	if len(modules) == 0 {
		return nil, fmt.Errorf("%w: module list is empty", ErrModuleMissing)
	}

	var files []string
	for _, entry := range modules {
		full := entry
		if !filepath.IsAbs(full) {
			full = filepath.Join(basePath, entry)
		}

		if !isGlob(entry) {
			info, err := os.Stat(full)
			if err != nil {
				if os.IsNotExist(err) {
					return nil, fmt.Errorf("%w: %s", ErrModuleMissing, full)
				}
				return nil, fmt.Errorf("stat module %s: %w", full, err)
			}
			if info.IsDir() {
				return nil, fmt.Errorf("%w: %s is a directory", ErrModuleMissing, full)
			}
			if !slices.Contains(files, full) {
				files = append(files, full)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(full, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand module glob %s: %w", entry, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: glob %s matched no files", ErrModuleMissing, full)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if !slices.Contains(files, m) {
				files = append(files, m)
			}
		}
	}
	return files, nil
}

func decodeFile(path string, index int) ([]rdf.Triple, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrModuleMissing, path)
		}
		return nil, fmt.Errorf("open module %s: %w", path, err)
	}
	defer f.Close()

	base := "file://" + filepath.ToSlash(path)
	triples, err := rdf.Decode(f, base, rdf.WithBlankPrefix("m"+strconv.Itoa(index)+"_"))
	if err != nil {
		return nil, fmt.Errorf("parse module %s: %w", path, err)
	}
	return triples, nil
}

func moduleName(basePath, file string) string {
	rel, err := filepath.Rel(basePath, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(rel)
}

func isGlob(entry string) bool {
	return strings.ContainsAny(entry, "*?[{")
}
