// Package ruleset holds the authored description of a module ruleset and
// compiles it into the flat, read-only form used by the solvers.
package ruleset

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidRuleset = errors.New("invalid ruleset")
	ErrTooManySockets = errors.New("too many sockets in layer")
	ErrNotCompiled    = errors.New("ruleset is not compiled")
)

// Unlimited is the MaxSpawns value for modules without an upper bound.
const Unlimited int32 = -1

// Socket is a named connection point within a layer.
type Socket struct {
	Name string `yaml:"name" json:"name" validate:"required"`

	// Bit is assigned by Compile from the socket's position in its layer.
	Bit int `yaml:"-" json:"-"`
}

// Layer is an independent namespace of sockets.
type Layer struct {
	Name    string   `yaml:"name" json:"name" validate:"required"`
	Sockets []Socket `yaml:"sockets" json:"sockets" validate:"dive"`
}

// SocketBit returns the bit assigned to the named socket, or -1.
func (l *Layer) SocketBit(name string) int {
	for i := range l.Sockets {
		if l.Sockets[i].Name == name {
			return l.Sockets[i].Bit
		}
	}
	return -1
}

// LayerConfig is the per-layer socket configuration of a module.
type LayerConfig struct {
	// Sockets lists the socket names the module requires on a slot.
	Sockets []string `yaml:"sockets" json:"sockets"`

	// Neighbors lists, per socket name, the module indices allowed to sit
	// behind that socket. A socket without an entry accepts no neighbor.
	Neighbors map[string][]int `yaml:"neighbors,omitempty" json:"neighbors,omitempty"`
}

// Module is one placeable unit type.
type Module struct {
	Name      string  `yaml:"name" json:"name" validate:"required"`
	Asset     string  `yaml:"asset" json:"asset"`
	Weight    float64 `yaml:"weight" json:"weight" validate:"gte=0"`
	MinSpawns int32   `yaml:"min_spawns" json:"min_spawns" validate:"gte=0"`
	MaxSpawns int32   `yaml:"max_spawns" json:"max_spawns" validate:"gte=-1"`

	// Layers maps a layer name to the module's configuration for it.
	Layers map[string]LayerConfig `yaml:"layers" json:"layers"`
}

// NewModule creates a module with weight 1 and no spawn constraints.
func NewModule(name string) Module {
	return Module{Name: name, Weight: 1, MaxSpawns: Unlimited}
}

// UnmarshalYAML applies NewModule defaults before decoding.
func (m *Module) UnmarshalYAML(value *yaml.Node) error {
	type plain Module
	p := plain(NewModule(""))
	if err := value.Decode(&p); err != nil {
		return err
	}
	*m = Module(p)
	return nil
}

// Ruleset is the authored set of layers and modules.
type Ruleset struct {
	Name    string   `yaml:"name" json:"name"`
	Layers  []Layer  `yaml:"layers" json:"layers" validate:"dive"`
	Modules []Module `yaml:"modules" json:"modules" validate:"dive"`

	mu         sync.RWMutex
	compiled   *Compiled
	compileErr error
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and cross references between modules
// and layers.
func (r *Ruleset) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRuleset, err)
	}

	layerSockets := make(map[string]map[string]bool, len(r.Layers))
	for _, l := range r.Layers {
		if _, dup := layerSockets[l.Name]; dup {
			return fmt.Errorf("%w: duplicate layer %q", ErrInvalidRuleset, l.Name)
		}
		names := make(map[string]bool, len(l.Sockets))
		for _, s := range l.Sockets {
			if names[s.Name] {
				return fmt.Errorf("%w: duplicate socket %q in layer %q", ErrInvalidRuleset, s.Name, l.Name)
			}
			names[s.Name] = true
		}
		layerSockets[l.Name] = names
	}

	for mi, m := range r.Modules {
		for layerName, cfg := range m.Layers {
			sockets, ok := layerSockets[layerName]
			if !ok {
				return fmt.Errorf("%w: module %q references unknown layer %q", ErrInvalidRuleset, m.Name, layerName)
			}
			for _, s := range cfg.Sockets {
				if !sockets[s] {
					return fmt.Errorf("%w: module %q references unknown socket %q in layer %q", ErrInvalidRuleset, m.Name, s, layerName)
				}
			}
			for s, neighbors := range cfg.Neighbors {
				if !sockets[s] {
					return fmt.Errorf("%w: module %q declares neighbors for unknown socket %q in layer %q", ErrInvalidRuleset, m.Name, s, layerName)
				}
				for _, n := range neighbors {
					if n < 0 || n >= len(r.Modules) {
						return fmt.Errorf("%w: module %d (%q) lists neighbor module %d out of range", ErrInvalidRuleset, mi, m.Name, n)
					}
				}
			}
		}
	}
	return nil
}

// IsCompiled reports whether the last Compile call succeeded.
func (r *Ruleset) IsCompiled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.compiled != nil
}

// Compiled returns the compiled data, or nil if the ruleset is not compiled.
func (r *Ruleset) Compiled() *Compiled {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.compiled
}

// CompileErr returns the reason the last Compile call failed, if any.
func (r *Ruleset) CompileErr() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.compileErr
}

// Parse decodes a ruleset from YAML or JSON.
func Parse(data []byte) (*Ruleset, error) {
	var r Ruleset
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse ruleset: %w", err)
	}
	return &r, nil
}

// Load reads and decodes a ruleset file.
func Load(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ruleset %s: %w", path, err)
	}
	return Parse(data)
}
