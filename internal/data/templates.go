package data

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/skirmish/skirmish/internal/component"
	"github.com/skirmish/skirmish/internal/core/ecs"
	"gopkg.in/yaml.v3"
)

// Template is an entity archetype: a size plus the components every entity
// spawned from it starts with.
type Template struct {
	Name  string
	Size  mgl64.Vec2
	defs  []componentDef
	kinds ecs.Mask
}

// Kinds returns the kinds an entity of this template carries, Transform included.
func (t *Template) Kinds() ecs.Mask { return t.kinds }

// Build returns fresh components for an entity placed with its top-left
// corner at pos. Extra components replace built ones of the same kind.
func (t *Template) Build(pos mgl64.Vec2, extra ...ecs.Component) []ecs.Component {
	out := make([]ecs.Component, 0, len(t.defs)+1+len(extra))
	out = append(out, &component.Transform{Pos: pos, Size: t.Size})
	for _, s := range t.defs {
		out = append(out, s.build())
	}
	for _, c := range extra {
		replaced := false
		for i := range out {
			if out[i].Kind() == c.Kind() {
				out[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, c)
		}
	}
	return out
}

type templateEntry struct {
	Name       string    `yaml:"name"`
	Size       []float64 `yaml:"size"`
	Components yaml.Node `yaml:"components"`
}

type templateListFile struct {
	Templates []templateEntry `yaml:"templates"`
}

// Templates holds every archetype indexed by name.
type Templates struct {
	byName map[string]*Template
}

// LoadTemplates loads templates from a YAML file. An empty path loads the
// built-in set.
func LoadTemplates(path string) (*Templates, error) {
	if path == "" {
		return ParseTemplates(defaultTemplates)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	t, err := ParseTemplates(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseTemplates decodes and validates a template list.
func ParseTemplates(raw []byte) (*Templates, error) {
	var f templateListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	t := &Templates{byName: make(map[string]*Template, len(f.Templates))}
	for i := range f.Templates {
		tpl, err := buildTemplate(&f.Templates[i])
		if err != nil {
			return nil, err
		}
		if _, dup := t.byName[tpl.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate template %q", ErrInvalidTemplate, tpl.Name)
		}
		t.byName[tpl.Name] = tpl
	}
	// bullets fired by players must exist
	for _, tpl := range t.byName {
		for _, s := range tpl.defs {
			p, ok := s.(playerDef)
			if !ok || p.Bullet == "" {
				continue
			}
			if _, ok := t.byName[p.Bullet]; !ok {
				return nil, fmt.Errorf("template %s: %w: bullet %q", tpl.Name, ErrUnknownTemplate, p.Bullet)
			}
		}
	}
	return t, nil
}

func buildTemplate(e *templateEntry) (*Template, error) {
	if e.Name == "" {
		return nil, fmt.Errorf("%w: template without name", ErrInvalidTemplate)
	}
	if len(e.Size) != 2 || e.Size[0] <= 0 || e.Size[1] <= 0 {
		return nil, fmt.Errorf("template %s: %w: size %v must be two positive numbers", e.Name, ErrInvalidTemplate, e.Size)
	}
	tpl := &Template{
		Name:  e.Name,
		Size:  mgl64.Vec2{e.Size[0], e.Size[1]},
		kinds: ecs.MaskOf(component.KindTransform),
	}

	node := &e.Components
	if node.Kind == 0 {
		return tpl, nil // no components listed
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("template %s: %w: components must be a mapping", e.Name, ErrInvalidTemplate)
	}
	// mapping content alternates key, value; iterate in file order
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		def, err := decodeDef(name, node.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", e.Name, err)
		}
		kind, _ := component.KindByName(name)
		if tpl.kinds.Has(kind) {
			return nil, fmt.Errorf("template %s: %w: component %s listed twice", e.Name, ErrInvalidTemplate, name)
		}
		tpl.kinds = tpl.kinds.With(kind)
		tpl.defs = append(tpl.defs, def)
	}
	return tpl, nil
}

// Get returns a template by name, or nil if not found.
func (t *Templates) Get(name string) *Template {
	return t.byName[name]
}

// Count returns the number of loaded templates.
func (t *Templates) Count() int {
	return len(t.byName)
}

// Names returns the template names, sorted.
func (t *Templates) Names() []string {
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MaxExtent returns the largest width or height over all templates. The
// collision cell size must be at least this large.
func (t *Templates) MaxExtent() float64 {
	var m float64
	for _, tpl := range t.byName {
		m = max(m, tpl.Size[0], tpl.Size[1])
	}
	return m
}

// Spawn stages a new entity built from the named template. It becomes
// visible at the next apply.
func (t *Templates) Spawn(store *ecs.Store, name string, pos mgl64.Vec2, extra ...ecs.Component) (ecs.EntityID, error) {
	tpl := t.byName[name]
	if tpl == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return store.Create(tpl.Build(pos, extra...)...), nil
}
