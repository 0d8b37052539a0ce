package mapper

import (
	"context"

	"vendorfill/api/logger"
	"vendorfill/api/models"
	"vendorfill/api/pdfform"

	"go.uber.org/zap"
)

// Assisted resolves the fields the keyword rules did not recognize.
// Implementations must return string values keyed exactly by the
// requested field names; omitted keys are backfilled with Unresolved.
type Assisted interface {
	MapFields(ctx context.Context, profile models.Profile, fieldNames []string) (map[string]string, error)
}

// Mapper composes the two strategies: deterministic rules first (no
// cost, no hallucination risk), the assisted strategy only as a
// fallback for unrecognized fields. Assisted may be nil.
type Mapper struct {
	Assisted Assisted
}

// Map produces a value for every field in the form. The returned map's
// key set is exactly the form's field name set. A failing assisted call
// is a hard error only when there were fields left for it to resolve.
func (m *Mapper) Map(ctx context.Context, profile models.Profile, fields []pdfform.Field) (map[string]string, error) {
	values := make(map[string]string, len(fields))
	var unresolved []string

	for _, f := range fields {
		norm := Normalize(f.Name)

		switch f.Kind {
		case pdfform.KindCheckbox:
			if v, ok := ResolveEntityCheckbox(norm, profile.EntityType); ok {
				values[f.Name] = v
				continue
			}
		default:
			if v, ok := ResolveText(norm, profile); ok {
				if v == "" {
					// Rule matched but the profile is silent;
					// nothing for the model to add either.
					values[f.Name] = Unresolved
				} else {
					values[f.Name] = v
				}
				continue
			}
		}
		unresolved = append(unresolved, f.Name)
	}

	if len(unresolved) > 0 && m.Assisted != nil {
		assisted, err := m.Assisted.MapFields(ctx, profile, unresolved)
		if err != nil {
			return nil, err
		}
		for _, name := range unresolved {
			if v, ok := assisted[name]; ok && v != "" {
				values[name] = v
			}
		}
		logger.Get().Debug("assisted mapping merged",
			zap.Int("requested", len(unresolved)),
			zap.Int("returned", len(assisted)))
	}

	// Invariant: every form field has an entry before filling.
	for _, f := range fields {
		if _, ok := values[f.Name]; !ok {
			values[f.Name] = Unresolved
		}
	}

	return values, nil
}
