package pdfform

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// resolveFields walks the AcroForm Fields array and classifies each
// field exactly once. Fields that cannot be processed are skipped.
func (f *Form) resolveFields() error {
	rootDict, err := f.ctx.Catalog()
	if err != nil {
		return fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil
	}
	acroForm, err := f.ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroForm == nil {
		return nil
	}
	f.acroForm = acroForm

	fieldsObj, found := acroForm.Find("Fields")
	if !found {
		return nil
	}
	fieldsArray, err := f.ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	for i, fieldRef := range fieldsArray {
		fld, err := f.resolveField(fieldRef, i)
		if err != nil {
			continue
		}
		if fld != nil {
			f.fields = append(f.fields, *fld)
		}
	}
	return nil
}

func (f *Form) resolveField(fieldObj types.Object, index int) (*Field, error) {
	dict, err := f.ctx.DereferenceDict(fieldObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference field: %w", err)
	}
	if dict == nil {
		return nil, nil
	}

	fld := &Field{dict: dict}

	if nameObj, found := dict.Find("T"); found {
		if name, err := f.ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil {
			fld.Name = name
		}
	}
	if fld.Name == "" {
		fld.Name = fmt.Sprintf("field_%d", index)
	}

	fld.Kind = f.fieldKind(dict)
	if fld.Kind == KindChoice || fld.Kind == KindRadio {
		fld.Options = f.fieldOptions(dict)
	}

	return fld, nil
}

// fieldKind maps the FT entry (following Parent inheritance) and the
// Ff flags to a tagged kind.
func (f *Form) fieldKind(dict types.Dict) FieldKind {
	ftObj, found := dict.Find("FT")
	if !found {
		if parentObj, found := dict.Find("Parent"); found {
			if parent, err := f.ctx.DereferenceDict(parentObj); err == nil && parent != nil {
				return f.fieldKind(parent)
			}
		}
		return KindUnknown
	}

	ftName, err := f.ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return KindUnknown
	}

	switch ftName {
	case "Tx":
		return KindText
	case "Ch":
		return KindChoice
	case "Btn":
		if flagsObj, found := dict.Find("Ff"); found {
			if flags, err := f.ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
				flagValue := *flags
				if (flagValue & (1 << 15)) != 0 { // radio
					return KindRadio
				}
				if (flagValue & (1 << 16)) != 0 { // pushbutton
					return KindUnknown
				}
			}
		}
		return KindCheckbox
	default:
		return KindUnknown
	}
}

// fieldOptions reads the Opt array. Options can be plain strings or
// [export, display] pairs; the display value wins for matching.
func (f *Form) fieldOptions(dict types.Dict) []string {
	var options []string

	optObj, found := dict.Find("Opt")
	if !found {
		return options
	}
	optArray, err := f.ctx.DereferenceArray(optObj)
	if err != nil {
		return options
	}

	for _, opt := range optArray {
		if str, err := f.ctx.DereferenceStringOrHexLiteral(opt, model.V10, nil); err == nil {
			options = append(options, str)
		} else if arr, err := f.ctx.DereferenceArray(opt); err == nil && len(arr) >= 2 {
			if display, err := f.ctx.DereferenceStringOrHexLiteral(arr[1], model.V10, nil); err == nil {
				options = append(options, display)
			}
		}
	}
	return options
}
