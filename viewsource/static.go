package viewsource

import "github.com/squigglygo/squiggly/types"

const baseViewName = "base"

// StaticViewSourceConfig configures a StaticViewSource built from a
// view->fields mapping known up front, for hosts that already track
// their own view assignments (a config file, struct tags read once at
// startup) rather than resolving them from a database or a remote
// command.
type StaticViewSourceConfig struct {
	// Views maps a view name to the field names it selects.
	Views map[string][]string
	// AllFields lists every field name the host type declares, whether
	// or not it is assigned to a view. Only consulted when
	// AddNonAnnotatedFieldsToBaseView is true.
	AllFields []string
	// AddNonAnnotatedFieldsToBaseView folds any name in AllFields that
	// isn't already assigned to some view into the "base" view,
	// appended after base's own explicitly assigned fields.
	AddNonAnnotatedFieldsToBaseView bool
}

// StaticViewSource is a fixed, in-memory types.ViewSource computed once
// at construction time.
type StaticViewSource struct {
	views map[string][]string
}

// NewStaticViewSource builds a StaticViewSource from cfg.
func NewStaticViewSource(cfg StaticViewSourceConfig) *StaticViewSource {
	views := make(map[string][]string, len(cfg.Views)+1)
	for name, fields := range cfg.Views {
		cp := make([]string, len(fields))
		copy(cp, fields)
		views[name] = cp
	}

	if cfg.AddNonAnnotatedFieldsToBaseView {
		annotated := make(map[string]bool)
		for _, fields := range cfg.Views {
			for _, f := range fields {
				annotated[f] = true
			}
		}
		base := append([]string{}, views[baseViewName]...)
		for _, f := range cfg.AllFields {
			if !annotated[f] {
				base = append(base, f)
			}
		}
		if len(base) > 0 {
			views[baseViewName] = base
		}
	}

	return &StaticViewSource{views: views}
}

// ResolveView implements types.ViewSource.
func (s *StaticViewSource) ResolveView(name string) ([]string, bool) {
	fields, ok := s.views[name]
	return fields, ok
}

// NewStaticViewSourceFromConfig builds a StaticViewSource for a caller
// that already has a types.Config, honoring cfg's
// PropertyAddNonAnnotatedFieldsToBaseView flag instead of requiring the
// caller to thread it through separately.
func NewStaticViewSourceFromConfig(cfg types.Config, views map[string][]string, allFields []string) *StaticViewSource {
	return NewStaticViewSource(StaticViewSourceConfig{
		Views:                           views,
		AllFields:                       allFields,
		AddNonAnnotatedFieldsToBaseView: cfg.PropertyAddNonAnnotatedFieldsToBaseView,
	})
}

var _ types.ViewSource = (*StaticViewSource)(nil)
