package streaming

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joeycumines/go-uilayer"
)

// ErrNotFound is returned by [Catalog.Resolve] for unknown paths.
var ErrNotFound = errors.New(`streaming: class not found`)

type (
	// Catalog is a static [Resolver], typically loaded from a TOML file:
	//
	//	[classes."/ui/menu"]
	//	name = "MainMenu"
	//	latency = "150ms"
	//
	//	[classes."/ui/broken"]
	//	name = "Broken"
	//	unusable = true
	Catalog struct {
		Classes map[string]ClassSpec `toml:"classes"`
	}

	// ClassSpec describes a single class in a [Catalog].
	ClassSpec struct {
		// Name is the resolved class name, defaulting to the path.
		Name string `toml:"name"`
		// Latency simulates load time.
		Latency time.Duration `toml:"latency"`
		// Unusable makes the path resolve to no usable class.
		Unusable bool `toml:"unusable"`
	}

	// Class is a [uilayer.WidgetClass] resolved from a [Catalog].
	Class struct {
		name string
		path string
	}
)

var _ Resolver = (*Catalog)(nil)

// LoadCatalog decodes a catalog from the TOML file at path.
func LoadCatalog(path string) (*Catalog, error) {
	var c Catalog
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf(`streaming: load catalog %q: %w`, path, err)
	}
	return &c, nil
}

// ParseCatalog decodes a catalog from TOML data.
func ParseCatalog(data string) (*Catalog, error) {
	var c Catalog
	if _, err := toml.Decode(data, &c); err != nil {
		return nil, fmt.Errorf(`streaming: parse catalog: %w`, err)
	}
	return &c, nil
}

// Paths returns every path in the catalog, sorted.
func (x *Catalog) Paths() []string {
	paths := make([]string, 0, len(x.Classes))
	for path := range x.Classes {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Resolve implements [Resolver], waiting for the configured latency.
func (x *Catalog) Resolve(ctx context.Context, path string) (uilayer.WidgetClass, error) {
	entry, ok := x.Classes[path]
	if !ok {
		return nil, fmt.Errorf(`%w: %q`, ErrNotFound, path)
	}
	if entry.Latency > 0 {
		timer := time.NewTimer(entry.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if entry.Unusable {
		return nil, nil
	}
	name := entry.Name
	if name == `` {
		name = path
	}
	return &Class{name: name, path: path}, nil
}

// Name implements [uilayer.WidgetClass].
func (x *Class) Name() string {
	return x.name
}

// Path returns the path the class was resolved from.
func (x *Class) Path() string {
	return x.path
}
