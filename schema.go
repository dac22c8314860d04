package vcedit

import (
	"fmt"
	"io"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"gopkg.in/yaml.v3"
)

// Step is one level of a block's ancestor chain: an element tag and an
// optional decoration class.
type Step struct {
	Tag   string `yaml:"tag"`
	Class string `yaml:"class,omitempty"`
}

// Schema describes how block types map onto the tree. Each block type owns an
// ancestor chain, outermost container first and the paragraph leaf last; for
// example "ol" is [{ol} {li}].
type Schema struct {
	Section     string            `yaml:"section"`
	Separator   string            `yaml:"separator"`
	Blocks      map[string][]Step `yaml:"blocks"`
	Void        []string          `yaml:"void"`
	Markups     []string          `yaml:"markups"`
	Aliases     map[string]string `yaml:"aliases"`
	Decorations []string          `yaml:"decorations"`

	byChain    map[string]string
	containers mapset.Set[string]
	leaves     mapset.Set[string]
	void       mapset.Set[string]
	markups    mapset.Set[string]
}

// DefaultSchema returns the schema for the standard block types.
func DefaultSchema() *Schema {
	s := &Schema{
		Section:   "section",
		Separator: "hr",
		Blocks: map[string][]Step{
			"p":          {{Tag: "p"}},
			"h1":         {{Tag: "h1"}},
			"h2":         {{Tag: "h2"}},
			"h3":         {{Tag: "h3"}},
			"h4":         {{Tag: "h4"}},
			"h5":         {{Tag: "h5"}},
			"h6":         {{Tag: "h6"}},
			"pre":        {{Tag: "pre"}},
			"blockquote": {{Tag: "blockquote"}},
			"pullquote":  {{Tag: "blockquote", Class: "pullquote"}},
			"ol":         {{Tag: "ol"}, {Tag: "li"}},
			"ul":         {{Tag: "ul"}, {Tag: "li"}},
			"checklist":  {{Tag: "ul", Class: "checklist"}, {Tag: "li"}},
			"hr":         {{Tag: "hr"}},
		},
		Void:    []string{"hr"},
		Markups: []string{"a", "strong", "em", "code", "s", "u"},
		Aliases: map[string]string{"b": "strong", "i": "em"},
	}
	if err := s.compile(); err != nil {
		panic(err)
	}
	return s
}

// LoadSchema reads a schema from YAML. Keys the document leaves out keep the
// values of DefaultSchema, except blocks and void which must be given in full;
// aliases are added to the default ones. An explicitly empty separator turns
// separators off.
func LoadSchema(r io.Reader) (*Schema, error) {
	def := DefaultSchema()
	s := Schema{
		Section:   def.Section,
		Separator: def.Separator,
		Markups:   def.Markups,
		Aliases:   def.Aliases,
	}
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if err := s.compile(); err != nil {
		return nil, err
	}
	return &s, nil
}

// compile validates the schema and builds its lookup tables.
func (s *Schema) compile() error {
	if len(s.Blocks) == 0 {
		return fmt.Errorf("%w: no block types", ErrSchema)
	}
	s.byChain = make(map[string]string, len(s.Blocks))
	s.containers = mapset.NewThreadUnsafeSet[string]()
	s.leaves = mapset.NewThreadUnsafeSet[string]()
	s.void = mapset.NewThreadUnsafeSet(s.Void...)
	s.markups = mapset.NewThreadUnsafeSet(s.Markups...)

	// sorted for deterministic error messages
	types := make([]string, 0, len(s.Blocks))
	for typ := range s.Blocks {
		types = append(types, typ)
	}
	slices.Sort(types)

	for _, typ := range types {
		steps := s.Blocks[typ]
		if len(steps) == 0 {
			return fmt.Errorf("%w: block %q has no steps", ErrSchema, typ)
		}
		for i, st := range steps {
			if st.Tag == "" {
				return fmt.Errorf("%w: block %q step %d has no tag", ErrSchema, typ, i)
			}
			if i == len(steps)-1 {
				s.leaves.Add(st.Tag)
			} else {
				s.containers.Add(st.Tag)
			}
		}
		key := chainKey(steps)
		if other, dup := s.byChain[key]; dup {
			return fmt.Errorf("%w: blocks %q and %q share chain %s", ErrSchema, other, typ, key)
		}
		s.byChain[key] = typ
	}

	if both := s.containers.Intersect(s.leaves); both.Cardinality() > 0 {
		return fmt.Errorf("%w: tags used as both container and leaf: %v", ErrSchema, both.ToSlice())
	}
	if s.containers.Contains(s.Section) || s.leaves.Contains(s.Section) {
		return fmt.Errorf("%w: section tag %q is also a block tag", ErrSchema, s.Section)
	}
	if s.containers.Contains(s.Separator) {
		return fmt.Errorf("%w: separator tag %q is a container", ErrSchema, s.Separator)
	}
	return nil
}

// Chain returns the ancestor chain of a block type.
func (s *Schema) Chain(typ string) ([]Step, bool) {
	steps, ok := s.Blocks[typ]
	return steps, ok
}

// typeOf returns the block type whose chain matches steps.
func (s *Schema) typeOf(steps []Step) (string, bool) {
	typ, ok := s.byChain[chainKey(steps)]
	return typ, ok
}

func (s *Schema) isContainer(tag string) bool { return s.containers.Contains(tag) }
func (s *Schema) isLeaf(tag string) bool      { return s.leaves.Contains(tag) }
func (s *Schema) isVoid(typ string) bool      { return s.void.Contains(typ) }

// markupType returns the markup type of an inline tag, resolving aliases.
func (s *Schema) markupType(tag string) (string, bool) {
	if alias, ok := s.Aliases[tag]; ok {
		tag = alias
	}
	return tag, s.markups.Contains(tag)
}

// chainKey renders steps as "ul.checklist>li". Classes are sorted so that
// class order does not matter.
func chainKey(steps []Step) string {
	parts := make([]string, len(steps))
	for i, st := range steps {
		parts[i] = st.Tag
		if classes := strings.Fields(st.Class); len(classes) > 0 {
			slices.Sort(classes)
			parts[i] += "." + strings.Join(classes, ".")
		}
	}
	return strings.Join(parts, ">")
}
