package mapping_test

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/entitymap/internal/mapping"
)

// widget owns parts; parts own tags.

type widget struct {
	ID    uuid.UUID
	Name  string
	Color string
	Meta  meta
	Parts []*part
}

func (w *widget) EntityKind() string       { return "widget" }
func (w *widget) EntityID() uuid.UUID      { return w.ID }
func (w *widget) SetEntityID(id uuid.UUID) { w.ID = id }
func (w *widget) Clone() any {
	c := *w
	c.Parts = nil
	return &c
}

type meta struct {
	Source string
	Note   string
}

type part struct {
	ID       uuid.UUID
	WidgetID uuid.UUID
	Label    string
	Qty      int
	Tags     []*tag
}

func (p *part) EntityKind() string       { return "part" }
func (p *part) EntityID() uuid.UUID      { return p.ID }
func (p *part) SetEntityID(id uuid.UUID) { p.ID = id }
func (p *part) OwnerID() uuid.UUID       { return p.WidgetID }
func (p *part) SetOwnerID(id uuid.UUID)  { p.WidgetID = id }
func (p *part) Clone() any {
	c := *p
	c.Tags = nil
	return &c
}

type tag struct {
	ID     uuid.UUID
	PartID uuid.UUID
	Value  string
}

func (t *tag) EntityKind() string       { return "tag" }
func (t *tag) EntityID() uuid.UUID      { return t.ID }
func (t *tag) SetEntityID(id uuid.UUID) { t.ID = id }
func (t *tag) OwnerID() uuid.UUID       { return t.PartID }
func (t *tag) SetOwnerID(id uuid.UUID)  { t.PartID = id }

type widgetDTO struct {
	ID    *uuid.UUID
	Name  string
	Color string
	Meta  *metaDTO
	Parts []*partDTO
}

type metaDTO struct {
	Source string
	Note   string
}

type partDTO struct {
	ID    *uuid.UUID
	Label string
	Qty   int
	Tags  []string
}

func ptr[T any](v T) *T { return &v }

func metaRules() mapping.RuleSet[*metaDTO, *meta] {
	return mapping.Rules(
		mapping.Simple("source", func(m *metaDTO) string { return m.Source }, func(t *meta, v string) { t.Source = v }),
		mapping.Simple("note", func(m *metaDTO) string { return m.Note }, func(t *meta, v string) { t.Note = v }),
	)
}

func tagChild() mapping.Child[string, *tag] {
	return mapping.Child[string, *tag]{
		Rules: mapping.Rules(
			mapping.Simple("value", func(s string) string { return s }, func(t *tag, v string) { t.Value = v }),
		),
		New:   func() *tag { return &tag{} },
		Match: func(s string, prev *tag) bool { return prev.Value == s },
	}
}

func partChild(policy mapping.Policy) mapping.Child[*partDTO, *part] {
	return mapping.Child[*partDTO, *part]{
		Rules: mapping.Rules(
			mapping.Simple("label", func(d *partDTO) string { return d.Label }, func(p *part, v string) { p.Label = v }),
			mapping.Simple("qty", func(d *partDTO) int { return d.Qty }, func(p *part, v int) { p.Qty = v }),
			mapping.Collection("tags",
				func(d *partDTO) []string { return d.Tags },
				func(p *part, v []*tag) { p.Tags = v },
				tagChild(), mapping.RemoveObsolete),
		),
		New:   func() *part { return &part{} },
		IsNew: func(d *partDTO) bool { return d.ID == nil },
		Match: func(d *partDTO, prev *part) bool { return *d.ID == prev.ID },
	}
}

func widgetReverse(policy mapping.Policy) mapping.RuleSet[*widgetDTO, *widget] {
	return mapping.Rules(
		mapping.Simple("name", func(d *widgetDTO) string { return d.Name }, func(w *widget, v string) { w.Name = v }),
		mapping.Simple("color", func(d *widgetDTO) string { return d.Color }, func(w *widget, v string) { w.Color = v }),
		mapping.Partial("meta",
			func(d *widgetDTO) (*metaDTO, bool) { return d.Meta, d.Meta != nil },
			func(w *widget) *meta { return &w.Meta },
			metaRules()),
		mapping.Collection("parts",
			func(d *widgetDTO) []*partDTO { return d.Parts },
			func(w *widget, v []*part) { w.Parts = v },
			partChild(policy), policy),
	)
}

func widgetForward() mapping.RuleSet[*widget, *widgetDTO] {
	return mapping.Rules(
		mapping.Simple("id", func(w *widget) *uuid.UUID { return ptr(w.ID) }, func(d *widgetDTO, v *uuid.UUID) { d.ID = v }),
		mapping.Simple("name", func(w *widget) string { return w.Name }, func(d *widgetDTO, v string) { d.Name = v }),
		mapping.Simple("color", func(w *widget) string { return w.Color }, func(d *widgetDTO, v string) { d.Color = v }),
		mapping.Simple("meta", func(w *widget) *metaDTO {
			return &metaDTO{Source: w.Meta.Source, Note: w.Meta.Note}
		}, func(d *widgetDTO, v *metaDTO) { d.Meta = v }),
		mapping.Collection("parts",
			func(w *widget) []*part { return w.Parts },
			func(d *widgetDTO, v []*partDTO) { d.Parts = v },
			mapping.Child[*part, *partDTO]{
				Rules: mapping.Rules(
					mapping.Simple("id", func(p *part) *uuid.UUID { return ptr(p.ID) }, func(d *partDTO, v *uuid.UUID) { d.ID = v }),
					mapping.Simple("label", func(p *part) string { return p.Label }, func(d *partDTO, v string) { d.Label = v }),
					mapping.Simple("qty", func(p *part) int { return p.Qty }, func(d *partDTO, v int) { d.Qty = v }),
					mapping.Simple("tags", func(p *part) []string {
						if p.Tags == nil {
							return nil
						}
						out := make([]string, 0, len(p.Tags))
						for _, t := range p.Tags {
							out = append(out, t.Value)
						}
						return out
					}, func(d *partDTO, v []string) { d.Tags = v }),
				),
				New: func() *partDTO { return &partDTO{} },
			}, mapping.ReplaceForwardOnly),
	)
}

func widgetPair(policy mapping.Policy) mapping.Pair[*widget, *widgetDTO] {
	return mapping.Pair[*widget, *widgetDTO]{
		Kind:        "widget",
		NewEntity:   func() *widget { return &widget{} },
		NewTransfer: func() *widgetDTO { return &widgetDTO{} },
		Forward:     widgetForward(),
		Reverse:     widgetReverse(policy),
		Prepare: func(def *mapping.Definition[*widgetDTO, *widget]) {
			def.MarkNewWhen(func(d *widgetDTO) bool { return d.ID == nil }).
				MarkExistingWhen(
					func(d *widgetDTO) bool { return d.ID != nil },
					func(d *widgetDTO, w *widget) bool { return w.ID == *d.ID },
					mapping.CreateOnMiss,
				)
		},
	}
}

// document/docVersion exercise the root/version model.

type document struct {
	ID    uuid.UUID
	Owner string
}

func (d *document) EntityKind() string       { return "document" }
func (d *document) EntityID() uuid.UUID      { return d.ID }
func (d *document) SetEntityID(id uuid.UUID) { d.ID = id }

type docVersion struct {
	ID     uuid.UUID
	DocID  uuid.UUID
	Number int
	Title  string
}

func (v *docVersion) EntityKind() string       { return "doc_version" }
func (v *docVersion) EntityID() uuid.UUID      { return v.ID }
func (v *docVersion) SetEntityID(id uuid.UUID) { v.ID = id }
func (v *docVersion) RootID() uuid.UUID        { return v.DocID }
func (v *docVersion) SetRootID(id uuid.UUID)   { v.DocID = id }
func (v *docVersion) VersionNumber() int       { return v.Number }
func (v *docVersion) SetVersionNumber(n int)   { v.Number = n }

type docDTO struct {
	VersionID *uuid.UUID
	DocID     *uuid.UUID
	Number    int
	Title     string
}

func docPair(extra ...mapping.Rule[*docDTO, *docVersion]) mapping.Pair[*docVersion, *docDTO] {
	return mapping.Pair[*docVersion, *docDTO]{
		Kind:        "doc_version",
		NewEntity:   func() *docVersion { return &docVersion{} },
		NewTransfer: func() *docDTO { return &docDTO{} },
		Forward: mapping.Rules(
			mapping.Simple("version_id", func(v *docVersion) *uuid.UUID { return ptr(v.ID) }, func(d *docDTO, id *uuid.UUID) { d.VersionID = id }),
			mapping.Simple("doc_id", func(v *docVersion) *uuid.UUID { return ptr(v.DocID) }, func(d *docDTO, id *uuid.UUID) { d.DocID = id }),
			mapping.Simple("number", func(v *docVersion) int { return v.Number }, func(d *docDTO, n int) { d.Number = n }),
			mapping.Simple("title", func(v *docVersion) string { return v.Title }, func(d *docDTO, s string) { d.Title = s }),
		),
		Reverse: mapping.Rules(
			mapping.Simple("title", func(d *docDTO) string { return d.Title }, func(v *docVersion, s string) { v.Title = s }),
		).Extend(extra...),
		Prepare: func(def *mapping.Definition[*docDTO, *docVersion]) {
			def.MarkNewWhen(func(d *docDTO) bool { return d.VersionID == nil }).
				MarkExistingWhen(
					func(d *docDTO) bool { return d.VersionID != nil },
					func(d *docDTO, v *docVersion) bool { return v.ID == *d.VersionID },
					mapping.FailOnMiss,
				).
				AttachVersioning(func(*docVersion) mapping.Entity { return &document{Owner: "tester"} })
		},
	}
}
