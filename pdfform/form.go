// Package pdfform wraps the pdfcpu form object model: load a PDF's
// AcroForm fields, apply a field-value map, flatten, serialize.
package pdfform

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"vendorfill/api/logger"

	"go.uber.org/zap"
)

// FieldKind is resolved once at load time; Apply dispatches on it
// instead of re-detecting capabilities per call.
type FieldKind int

const (
	KindText FieldKind = iota
	KindCheckbox
	KindRadio
	KindChoice
	KindUnknown
)

func (k FieldKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCheckbox:
		return "checkbox"
	case KindRadio:
		return "radio"
	case KindChoice:
		return "choice"
	default:
		return "unknown"
	}
}

// Field is one interactive form field.
type Field struct {
	Name    string
	Kind    FieldKind
	Options []string

	dict types.Dict
}

// Form is an in-memory PDF with its fields resolved.
type Form struct {
	ctx       *model.Context
	acroForm  types.Dict
	fields    []Field
	flattened bool
}

// Unresolved is written into any text field the mapper could not trace
// to the profile.
const Unresolved = "N/A"

// Load parses PDF bytes and resolves every AcroForm field. A PDF with
// no form yields a Form with zero fields, not an error.
func Load(data []byte) (*Form, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	f := &Form{ctx: ctx}
	if err := f.resolveFields(); err != nil {
		return nil, err
	}
	return f, nil
}

// Fields returns the resolved fields in document order.
func (f *Form) Fields() []Field {
	return f.fields
}

// FieldNames returns just the field names, in document order.
func (f *Form) FieldNames() []string {
	names := make([]string, len(f.fields))
	for i, fld := range f.fields {
		names[i] = fld.Name
	}
	return names
}

// Apply writes the mapped values into the form. Every field gets an
// explicit state: text fields missing from the map get Unresolved,
// checkboxes missing from the map are unchecked. A failure on one
// field is logged and skipped, never aborting the document.
func (f *Form) Apply(values map[string]string) {
	if f.flattened {
		return
	}
	for i := range f.fields {
		fld := &f.fields[i]
		v, ok := values[fld.Name]

		var err error
		switch fld.Kind {
		case KindText:
			if !ok {
				v = Unresolved
			}
			err = f.setText(fld, v)
		case KindCheckbox:
			err = f.setCheckbox(fld, ok && Truthy(v))
		case KindRadio:
			if ok {
				err = f.setRadio(fld, v)
			}
		case KindChoice:
			if ok {
				err = f.setChoice(fld, v)
			}
		default:
			// Signatures, pushbuttons: nothing to write.
		}
		if err != nil {
			logger.Get().Warn("skipping form field",
				zap.String("field", fld.Name),
				zap.String("kind", fld.Kind.String()),
				zap.Error(err))
		}
	}

	// Viewers must regenerate appearances for the new values.
	if f.acroForm != nil {
		f.acroForm["NeedAppearances"] = types.Boolean(true)
	}
}

// Flatten makes every field non-editable. This is the terminal step of
// the fill pipeline; there is no way back to an interactive form.
func (f *Form) Flatten() {
	for i := range f.fields {
		lockField(f.fields[i].dict)
	}
	f.flattened = true
}

// Bytes serializes the document.
func (f *Form) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := api.WriteContext(f.ctx, &buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Truthy reports whether a mapped value means "checked" for a checkbox.
func Truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "1", "x", "checked":
		return true
	}
	return false
}

// MatchOption finds the first option whose label contains v
// case-insensitively. Choice fields keep their default when nothing
// matches.
func MatchOption(options []string, v string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(v))
	if needle == "" {
		return "", false
	}
	for _, opt := range options {
		if strings.Contains(strings.ToLower(opt), needle) {
			return opt, true
		}
	}
	return "", false
}

func (f *Form) setText(fld *Field, v string) error {
	// Escaped UTF-16 keeps parens, backslashes and non-ASCII text
	// intact inside the string literal.
	s, err := types.EscapeUTF16String(v)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}
	fld.dict["V"] = types.StringLiteral(*s)
	delete(fld.dict, "I")
	return nil
}

func (f *Form) setCheckbox(fld *Field, checked bool) error {
	state := types.Name("Off")
	if checked {
		state = types.Name(f.onState(fld.dict))
	}
	fld.dict["V"] = state
	fld.dict["AS"] = state

	// Widgets may live on Kids rather than the field dict itself.
	if kidsObj, found := fld.dict.Find("Kids"); found {
		if kids, err := f.ctx.DereferenceArray(kidsObj); err == nil {
			for _, kidObj := range kids {
				if kid, err := f.ctx.DereferenceDict(kidObj); err == nil && kid != nil {
					kid["AS"] = state
				}
			}
		}
	}
	return nil
}

func (f *Form) setChoice(fld *Field, v string) error {
	opt, ok := MatchOption(fld.Options, v)
	if !ok {
		return nil
	}
	s, err := types.EscapeUTF16String(opt)
	if err != nil {
		return fmt.Errorf("failed to encode option: %w", err)
	}
	fld.dict["V"] = types.StringLiteral(*s)
	delete(fld.dict, "I")
	return nil
}

// setRadio selects one widget of a radio group. V and the winning kid's
// AS are the widget's appearance state as a name, every other kid goes
// Off. With an Opt array the on-state is the matched option's index.
func (f *Form) setRadio(fld *Field, v string) error {
	states := f.kidOnStates(fld.dict)

	target := ""
	if opt, ok := MatchOption(fld.Options, v); ok {
		for i, o := range fld.Options {
			if o == opt {
				idx := strconv.Itoa(i)
				if len(states) == 0 || hasState(states, idx) {
					target = idx
				}
				break
			}
		}
	}
	if target == "" {
		needle := strings.ToLower(strings.TrimSpace(v))
		if needle == "" {
			return nil
		}
		for _, s := range states {
			if strings.Contains(strings.ToLower(s), needle) {
				target = s
				break
			}
		}
	}
	if target == "" {
		// Radio groups keep their default when nothing matches.
		return nil
	}

	state := types.Name(types.EncodeName(target))
	fld.dict["V"] = state

	kidsObj, found := fld.dict.Find("Kids")
	if !found {
		return nil
	}
	kids, err := f.ctx.DereferenceArray(kidsObj)
	if err != nil {
		return nil
	}
	for _, kidObj := range kids {
		kid, err := f.ctx.DereferenceDict(kidObj)
		if err != nil || kid == nil {
			continue
		}
		if s, ok := f.onStateFromAP(kid); ok {
			if s == target {
				kid["AS"] = state
			} else {
				kid["AS"] = types.Name("Off")
			}
		}
	}
	return nil
}

// kidOnStates collects the non-Off appearance state of each widget in
// a radio group, in kid order.
func (f *Form) kidOnStates(dict types.Dict) []string {
	kidsObj, found := dict.Find("Kids")
	if !found {
		return nil
	}
	kids, err := f.ctx.DereferenceArray(kidsObj)
	if err != nil {
		return nil
	}
	var states []string
	for _, kidObj := range kids {
		if kid, err := f.ctx.DereferenceDict(kidObj); err == nil && kid != nil {
			if s, ok := f.onStateFromAP(kid); ok {
				states = append(states, s)
			}
		}
	}
	return states
}

func hasState(states []string, s string) bool {
	for _, state := range states {
		if state == s {
			return true
		}
	}
	return false
}

// onState finds the checkbox's "on" appearance state, defaulting to
// Yes when the appearance dictionary doesn't name one.
func (f *Form) onState(dict types.Dict) string {
	if state, ok := f.onStateFromAP(dict); ok {
		return state
	}
	if kidsObj, found := dict.Find("Kids"); found {
		if kids, err := f.ctx.DereferenceArray(kidsObj); err == nil {
			for _, kidObj := range kids {
				if kid, err := f.ctx.DereferenceDict(kidObj); err == nil && kid != nil {
					if state, ok := f.onStateFromAP(kid); ok {
						return state
					}
				}
			}
		}
	}
	return "Yes"
}

func (f *Form) onStateFromAP(dict types.Dict) (string, bool) {
	apObj, found := dict.Find("AP")
	if !found {
		return "", false
	}
	ap, err := f.ctx.DereferenceDict(apObj)
	if err != nil || ap == nil {
		return "", false
	}
	nObj, found := ap.Find("N")
	if !found {
		return "", false
	}
	n, err := f.ctx.DereferenceDict(nObj)
	if err != nil || n == nil {
		return "", false
	}
	for name := range n {
		if name != "Off" {
			return name, true
		}
	}
	return "", false
}

func lockField(dict types.Dict) {
	const readOnlyFlag = 1
	flags := 0
	if flagsObj, found := dict.Find("Ff"); found {
		if i, ok := flagsObj.(types.Integer); ok {
			flags = int(i)
		}
	}
	dict["Ff"] = types.Integer(flags | readOnlyFlag)
}
