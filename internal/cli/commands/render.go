package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/tiersql/internal/cli/output"
	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/leapstack-labs/tiersql/pkg/relation"
)

// relationInfo is the JSON form of a relation listing.
type relationInfo struct {
	Identifier string `json:"identifier"`
	Tier       string `json:"tier"`
	Table      string `json:"table"`
	FullName   string `json:"full_name,omitempty"`
	Master     string `json:"master,omitempty"`
}

func describeRelation(rel *relation.Relation, database string) (relationInfo, error) {
	name, err := rel.TableName()
	if err != nil {
		return relationInfo{}, err
	}
	info := relationInfo{Identifier: rel.Identifier(), Tier: rel.Tier().String(), Table: name}
	if database != "" {
		if info.FullName, err = rel.FullTableName(database); err != nil {
			return relationInfo{}, err
		}
	}
	if m := rel.Master(); m != nil {
		info.Master = m.Identifier()
	}
	return info, nil
}

func renderRelations(r *output.Renderer, database string, rels []*relation.Relation) error {
	infos := make([]relationInfo, 0, len(rels))
	for _, rel := range rels {
		info, err := describeRelation(rel, database)
		if err != nil {
			return err
		}
		infos = append(infos, info)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(infos)
	}

	t := newTable(r, table.Row{"Relation", "Tier", "Table", "Full name", "Master"})
	for i, info := range infos {
		t.AppendRow(table.Row{info.Identifier, r.Styles().Tier(rels[i].Tier()), info.Table, info.FullName, info.Master})
	}
	renderTableFor(r, t)
	return nil
}

// classificationInfo is the JSON form of a classified storage name.
type classificationInfo struct {
	Name       string `json:"name"`
	Tier       string `json:"tier"`
	Master     string `json:"master,omitempty"`
	MasterTier string `json:"master_tier,omitempty"`
	Part       string `json:"part,omitempty"`
	Relation   string `json:"relation,omitempty"`
	Status     string `json:"status,omitempty"`
	Error      string `json:"error,omitempty"`
}

func newClassificationInfo(name string, c relation.Classification, rel *relation.Relation, err error) classificationInfo {
	if err != nil {
		return classificationInfo{Name: name, Tier: "invalid", Error: err.Error()}
	}
	info := classificationInfo{Name: name, Tier: c.Tier.String(), Master: c.Master, Part: c.Part}
	if c.Master != "" {
		info.MasterTier = c.MasterTier.String()
	}
	if rel != nil {
		info.Relation = rel.Identifier()
	}
	return info
}

func renderClassifications(r *output.Renderer, infos []classificationInfo, withStatus bool) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(infos)
	}

	header := table.Row{"Name", "Tier", "Master", "Part", "Relation"}
	if withStatus {
		header = append(header, "Status")
	}
	t := newTable(r, header)
	styles := r.Styles()
	for _, info := range infos {
		tier := info.Tier
		if info.Error != "" {
			tier = styles.Error.Render(tier)
		} else if parsed, err := core.ParseTier(info.Tier); err == nil {
			tier = styles.Tier(parsed)
		}
		row := table.Row{info.Name, tier, info.Master, info.Part, info.Relation}
		if withStatus {
			row = append(row, info.Status)
		}
		t.AppendRow(row)
	}
	renderTableFor(r, t)
	return nil
}

func newTable(r *output.Renderer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.AppendHeader(header)
	return t
}

// renderTableFor renders t as markdown or as a styled terminal table.
func renderTableFor(r *output.Renderer, t table.Writer) {
	if r.EffectiveMode() == output.ModeMarkdown {
		t.RenderMarkdown()
		return
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}
