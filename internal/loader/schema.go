// Package loader reads relation declarations from YAML schema files and
// turns them into bound relation descriptors.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/leapstack-labs/tiersql/pkg/relation"
	"gopkg.in/yaml.v3"
)

// ErrNotPopulatable is returned by DeclaredPopulator.
var ErrNotPopulatable = errors.New("relation is populated outside tiersql")

// Schema is a loaded schema file.
type Schema struct {
	Path     string
	Database string
	// Relations in declaration order, Part masters bound.
	Relations []*relation.Relation
}

// RelationDecl is one entry of the relations list.
type RelationDecl struct {
	Name        string           `yaml:"name"`
	Tier        string           `yaml:"tier"`
	Master      string           `yaml:"master"`
	Description string           `yaml:"description"`
	Contents    []map[string]any `yaml:"contents"`

	// Line is the source line of the declaration.
	Line int `yaml:"-"`
}

type schemaFile struct {
	Database  string         `yaml:"database"`
	Relations []RelationDecl `yaml:"relations"`
}

var knownDeclFields = map[string]bool{
	"name":        true,
	"tier":        true,
	"master":      true,
	"description": true,
	"contents":    true,
}

// UnmarshalYAML decodes a declaration, rejecting unknown fields and
// recording the source line.
func (d *RelationDecl) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: relation must be a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if !knownDeclFields[key.Value] {
			return &UnknownFieldError{Field: key.Value, Line: key.Line}
		}
	}

	type plain RelationDecl
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*d = RelationDecl(p)
	d.Line = n.Line
	return nil
}

// DeclaredPopulator stands in for the population routine of an Imported or
// Computed relation declared in a schema file. Population itself runs
// outside tiersql.
type DeclaredPopulator struct {
	Relation string
}

// MakeTuples always fails with ErrNotPopulatable.
func (p DeclaredPopulator) MakeTuples(context.Context, relation.Key) error {
	return fmt.Errorf("%s: %w", p.Relation, ErrNotPopulatable)
}

// LoadSchema reads and binds the schema file at path.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from user config
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	s, err := ParseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	return s, nil
}

// ParseSchema parses schema YAML, builds a descriptor per declaration and
// binds every Part relation to its master.
func ParseSchema(data []byte) (*Schema, error) {
	var f schemaFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		var unknown *UnknownFieldError
		if errors.As(err, &unknown) {
			return nil, unknown
		}
		return nil, &ParseError{Message: err.Error()}
	}

	decls := make(map[string]*RelationDecl, len(f.Relations))
	for i := range f.Relations {
		d := &f.Relations[i]
		if d.Name == "" {
			return nil, &DeclError{Line: d.Line, Message: "relation name is required"}
		}
		if prev, dup := decls[d.Name]; dup {
			return nil, &DeclError{Name: d.Name, Line: d.Line, Message: fmt.Sprintf("already declared on line %d", prev.Line)}
		}
		decls[d.Name] = d
	}

	s := &Schema{Database: f.Database, Relations: make([]*relation.Relation, 0, len(f.Relations))}
	built := make(map[string]*relation.Relation, len(f.Relations))
	for i := range f.Relations {
		d := &f.Relations[i]
		rel, err := build(d)
		if err != nil {
			return nil, err
		}
		built[d.Name] = rel
		s.Relations = append(s.Relations, rel)
	}

	// Masters are all built before any part is bound.
	for i := range f.Relations {
		d := &f.Relations[i]
		rel := built[d.Name]
		if rel.Tier() != core.TierPart {
			if d.Master != "" {
				return nil, &DeclError{Name: d.Name, Line: d.Line, Message: "only part relations have a master"}
			}
			continue
		}
		if d.Master == "" {
			return nil, &DeclError{Name: d.Name, Line: d.Line, Message: "part relation requires a master"}
		}
		master, ok := built[d.Master]
		if !ok {
			return nil, &DeclError{Name: d.Name, Line: d.Line, Message: fmt.Sprintf("unknown master %q", d.Master)}
		}
		if err := rel.BindMaster(master); err != nil {
			return nil, &DeclError{Name: d.Name, Line: d.Line, Err: err}
		}
	}

	return s, nil
}

func build(d *RelationDecl) (*relation.Relation, error) {
	tier, err := core.ParseTier(d.Tier)
	if err != nil {
		return nil, &DeclError{Name: d.Name, Line: d.Line, Err: err}
	}

	var opts []relation.Option
	if tier.RequiresPopulator() {
		opts = append(opts, relation.WithPopulator(DeclaredPopulator{Relation: d.Name}))
	}
	if len(d.Contents) > 0 {
		rows := make([]relation.Row, len(d.Contents))
		for i, c := range d.Contents {
			rows[i] = relation.Row(c)
		}
		opts = append(opts, relation.WithContents(rows))
	}

	rel, err := relation.New(d.Name, tier, opts...)
	if err != nil {
		return nil, &DeclError{Name: d.Name, Line: d.Line, Err: err}
	}
	return rel, nil
}
