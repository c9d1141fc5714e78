package schema

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/looplj/adminhub/internal/access"
)

// ListSpec is the serializable form of a list, as declared in the config
// file. Access rules and UI affordances are expression strings compiled at
// build time.
type ListSpec struct {
	Key         string         `conf:"key" yaml:"key" json:"key"`
	Label       string         `conf:"label" yaml:"label" json:"label"`
	Plural      string         `conf:"plural" yaml:"plural" json:"plural"`
	Description string         `conf:"description" yaml:"description" json:"description"`
	Fields      []FieldSpec    `conf:"fields" yaml:"fields" json:"fields"`
	Access      ListAccessSpec `conf:"access" yaml:"access" json:"access"`
	UI          UISpec         `conf:"ui" yaml:"ui" json:"ui"`
}

// FieldSpec is the serializable form of one field.
type FieldSpec struct {
	Name       string          `conf:"name" yaml:"name" json:"name"`
	Type       string          `conf:"type" yaml:"type" json:"type"`
	Label      string          `conf:"label" yaml:"label" json:"label"`
	Required   bool            `conf:"required" yaml:"required" json:"required"`
	Unique     bool            `conf:"unique" yaml:"unique" json:"unique"`
	Default    any             `conf:"default" yaml:"default" json:"default"`
	DefaultNow bool            `conf:"default_now" yaml:"default_now" json:"default_now"`
	Pattern    string          `conf:"pattern" yaml:"pattern" json:"pattern"`
	MinLength  int             `conf:"min_length" yaml:"min_length" json:"min_length"`
	MaxLength  int             `conf:"max_length" yaml:"max_length" json:"max_length"`
	Access     FieldAccessSpec `conf:"access" yaml:"access" json:"access"`
	Views      ViewsSpec       `conf:"views" yaml:"views" json:"views"`
}

// ListAccessSpec holds the list-level access expressions, empty means the
// framework default (allow).
type ListAccessSpec struct {
	Create string `conf:"create" yaml:"create" json:"create"`
	Read   string `conf:"read" yaml:"read" json:"read"`
	Update string `conf:"update" yaml:"update" json:"update"`
	Delete string `conf:"delete" yaml:"delete" json:"delete"`
}

// FieldAccessSpec holds the field-level access expressions.
type FieldAccessSpec struct {
	Create string `conf:"create" yaml:"create" json:"create"`
	Read   string `conf:"read" yaml:"read" json:"read"`
	Update string `conf:"update" yaml:"update" json:"update"`
}

// ViewsSpec holds the per-view mode rules.
type ViewsSpec struct {
	ItemView   RuleSpec `conf:"item_view" yaml:"item_view" json:"item_view"`
	CreateView RuleSpec `conf:"create_view" yaml:"create_view" json:"create_view"`
	ListView   RuleSpec `conf:"list_view" yaml:"list_view" json:"list_view"`
}

// RuleSpec declares a view mode rule. Either a static mode, or one decision
// expression with the modes it resolves to, mirroring access.Rule so config
// rules keep decision and presentation coupled.
type RuleSpec struct {
	Mode    string `conf:"mode" yaml:"mode" json:"mode"`
	When    string `conf:"when" yaml:"when" json:"when"`
	Allowed string `conf:"allowed" yaml:"allowed" json:"allowed"`
	Denied  string `conf:"denied" yaml:"denied" json:"denied"`
}

// IsZero checks if the rule spec was left unset.
func (s RuleSpec) IsZero() bool {
	return s.Mode == "" && s.When == "" && s.Allowed == "" && s.Denied == ""
}

// UISpec holds the serializable UI affordances.
type UISpec struct {
	HideCreate     string    `conf:"hide_create" yaml:"hide_create" json:"hide_create"`
	HideDelete     string    `conf:"hide_delete" yaml:"hide_delete" json:"hide_delete"`
	LabelField     string    `conf:"label_field" yaml:"label_field" json:"label_field"`
	InitialColumns []string  `conf:"initial_columns" yaml:"initial_columns" json:"initial_columns"`
	InitialSort    *SortSpec `conf:"initial_sort" yaml:"initial_sort" json:"initial_sort"`
	PageSize       int       `conf:"page_size" yaml:"page_size" json:"page_size"`
}

// SortSpec names a field and a direction.
type SortSpec struct {
	Field     string `conf:"field" yaml:"field" json:"field"`
	Direction string `conf:"direction" yaml:"direction" json:"direction"`
}

// FromSpec builds a List from its serializable form, compiling every
// declared expression. All violations aggregate into one error so a broken
// config reports completely.
func FromSpec(spec ListSpec) (List, error) {
	var merr *multierror.Error

	compile := func(what, src string) access.Predicate {
		if src == "" {
			return nil
		}

		pred, err := CompilePredicate(src)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("list %q: %s: %w", spec.Key, what, err))
			return nil
		}

		return pred
	}

	l := List{
		Key:         spec.Key,
		Label:       spec.Label,
		Plural:      spec.Plural,
		Description: spec.Description,
		Access: access.ListAccess{
			Create: compile("access.create", spec.Access.Create),
			Read:   compile("access.read", spec.Access.Read),
			Update: compile("access.update", spec.Access.Update),
			Delete: compile("access.delete", spec.Access.Delete),
		},
	}

	for _, fs := range spec.Fields {
		field := Field{
			Key:          fs.Name,
			Type:         FieldType(fs.Type),
			Label:        fs.Label,
			Required:     fs.Required,
			Unique:       fs.Unique,
			DefaultValue: fs.Default,
			DefaultNow:   fs.DefaultNow,
			Pattern:      fs.Pattern,
			MinLength:    fs.MinLength,
			MaxLength:    fs.MaxLength,
			Access: access.FieldAccess{
				Create: compile(fmt.Sprintf("field %q access.create", fs.Name), fs.Access.Create),
				Read:   compile(fmt.Sprintf("field %q access.read", fs.Name), fs.Access.Read),
				Update: compile(fmt.Sprintf("field %q access.update", fs.Name), fs.Access.Update),
			},
		}

		field.Views = ViewsConfig{
			ItemView:   ruleFromSpec(spec.Key, fs.Name, "item_view", fs.Views.ItemView, &merr),
			CreateView: ruleFromSpec(spec.Key, fs.Name, "create_view", fs.Views.CreateView, &merr),
			ListView:   ruleFromSpec(spec.Key, fs.Name, "list_view", fs.Views.ListView, &merr),
		}

		field.applySensitiveViewDefaults()

		l.Fields = append(l.Fields, field)
	}

	l.UI = ListUI{
		HideCreate:     compile("ui.hide_create", spec.UI.HideCreate),
		HideDelete:     compile("ui.hide_delete", spec.UI.HideDelete),
		LabelField:     spec.UI.LabelField,
		InitialColumns: spec.UI.InitialColumns,
		PageSize:       spec.UI.PageSize,
	}

	if spec.UI.InitialSort != nil {
		l.UI.InitialSort = &Sort{
			Field:     spec.UI.InitialSort.Field,
			Direction: SortDirection(strings.ToUpper(spec.UI.InitialSort.Direction)),
		}
	}

	return l, merr.ErrorOrNil()
}

func ruleFromSpec(listKey, fieldKey, view string, spec RuleSpec, merr **multierror.Error) access.Rule {
	if spec.IsZero() {
		return access.Rule{}
	}

	fail := func(format string, args ...any) {
		prefix := fmt.Sprintf("list %q field %q %s: ", listKey, fieldKey, view)
		*merr = multierror.Append(*merr, fmt.Errorf(prefix+format, args...))
	}

	mode := func(name, raw string) access.FieldMode {
		m := access.FieldMode(raw)
		if raw != "" && !m.Valid() {
			fail("%s mode %q is not edit, read or hidden", name, raw)
		}

		return m
	}

	if spec.Mode != "" {
		if spec.When != "" || spec.Allowed != "" || spec.Denied != "" {
			fail("static mode excludes when/allowed/denied")
		}

		return access.StaticRule(mode("static", spec.Mode))
	}

	if spec.When == "" {
		fail("rule needs a mode or a when expression")
		return access.Rule{}
	}

	pred, err := CompilePredicate(spec.When)
	if err != nil {
		fail("%v", err)
		return access.Rule{}
	}

	return access.Rule{
		When:    pred,
		Allowed: mode("allowed", spec.Allowed),
		Denied:  mode("denied", spec.Denied),
	}
}
