package attributes

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition describes one attribute the broker may proxy
type Definition struct {
	Name        string `yaml:"-"`
	Description string `yaml:"description"`
}

// Registry is the fixed set of attribute names. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	definitions map[string]Definition
}

// LoadRegistry reads a YAML file mapping attribute names to definitions:
//
//	transition_checker_state:
//	  description: answers given to the transition checker
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attribute registry: %w", err)
	}
	return ParseRegistry(data)
}

// ParseRegistry parses the YAML form read by LoadRegistry
func ParseRegistry(data []byte) (*Registry, error) {
	var raw map[string]*Definition
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse attribute registry: %w", err)
	}

	definitions := make(map[string]Definition, len(raw))
	for name, def := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("attribute registry: empty attribute name")
		}
		d := Definition{Name: name}
		if def != nil {
			d.Description = def.Description
		}
		definitions[name] = d
	}
	return &Registry{definitions: definitions}, nil
}

// NewRegistry builds a registry from names alone
func NewRegistry(names ...string) *Registry {
	definitions := make(map[string]Definition, len(names))
	for _, name := range names {
		definitions[name] = Definition{Name: name}
	}
	return &Registry{definitions: definitions}
}

// Defined reports whether name is in the registry
func (r *Registry) Defined(name string) bool {
	_, ok := r.definitions[name]
	return ok
}

// Definition looks up a single attribute
func (r *Registry) Definition(name string) (Definition, bool) {
	d, ok := r.definitions[name]
	return d, ok
}

// Undefined returns the names not in the registry, in input order and
// without duplicates
func (r *Registry) Undefined(names []string) []string {
	var undefined []string
	seen := make(map[string]struct{})
	for _, name := range names {
		if r.Defined(name) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		undefined = append(undefined, name)
	}
	return undefined
}

// Names lists every registered attribute, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
