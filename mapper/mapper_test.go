package mapper

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"vendorfill/api/models"
	"vendorfill/api/pdfform"
)

type fakeAssisted struct {
	values map[string]string
	err    error
	calls  [][]string
}

func (f *fakeAssisted) MapFields(_ context.Context, _ models.Profile, fieldNames []string) (map[string]string, error) {
	f.calls = append(f.calls, append([]string(nil), fieldNames...))
	if f.err != nil {
		return nil, f.err
	}
	return f.values, nil
}

func vendorFormFields() []pdfform.Field {
	return []pdfform.Field{
		{Name: "Name of Company", Kind: pdfform.KindText},
		{Name: "Tax ID", Kind: pdfform.KindText},
		{Name: "LEGAL STRUCTURE — LLC", Kind: pdfform.KindCheckbox},
		{Name: "LEGAL STRUCTURE — Partnership", Kind: pdfform.KindCheckbox},
		{Name: "Special Instructions", Kind: pdfform.KindText},
	}
}

func TestMapKeySetComplete(t *testing.T) {
	m := &Mapper{}
	fields := vendorFormFields()

	values, err := m.Map(context.Background(), testProfile(), fields)
	if err != nil {
		t.Fatalf("Map error = %v", err)
	}
	if len(values) != len(fields) {
		t.Fatalf("Map returned %d values, want %d", len(values), len(fields))
	}
	for _, f := range fields {
		if _, ok := values[f.Name]; !ok {
			t.Fatalf("Map missing entry for field %q", f.Name)
		}
	}
}

func TestMapDeterministicValues(t *testing.T) {
	m := &Mapper{}
	values, err := m.Map(context.Background(), testProfile(), vendorFormFields())
	if err != nil {
		t.Fatalf("Map error = %v", err)
	}

	if values["Name of Company"] != "Acme Corporation Inc." {
		t.Fatalf("Name of Company = %q", values["Name of Company"])
	}
	if values["Tax ID"] != "12-3456789" {
		t.Fatalf("Tax ID = %q", values["Tax ID"])
	}
	if values["LEGAL STRUCTURE — LLC"] != Checked {
		t.Fatalf("LLC checkbox = %q, want %q", values["LEGAL STRUCTURE — LLC"], Checked)
	}
	if values["LEGAL STRUCTURE — Partnership"] != Unchecked {
		t.Fatalf("Partnership checkbox = %q, want %q", values["LEGAL STRUCTURE — Partnership"], Unchecked)
	}
	// No assisted strategy configured: unrecognized fields get the
	// sentinel, never an invented value.
	if values["Special Instructions"] != Unresolved {
		t.Fatalf("Special Instructions = %q, want %q", values["Special Instructions"], Unresolved)
	}
}

func TestMapIdempotent(t *testing.T) {
	m := &Mapper{}
	first, err := m.Map(context.Background(), testProfile(), vendorFormFields())
	if err != nil {
		t.Fatalf("Map error = %v", err)
	}
	second, err := m.Map(context.Background(), testProfile(), vendorFormFields())
	if err != nil {
		t.Fatalf("Map error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Map not deterministic:\nfirst  = %v\nsecond = %v", first, second)
	}
}

func TestMapAssistedOnlyGetsUnresolved(t *testing.T) {
	assisted := &fakeAssisted{values: map[string]string{"Special Instructions": "N/A"}}
	m := &Mapper{Assisted: assisted}

	if _, err := m.Map(context.Background(), testProfile(), vendorFormFields()); err != nil {
		t.Fatalf("Map error = %v", err)
	}
	if len(assisted.calls) != 1 {
		t.Fatalf("assisted called %d times, want 1", len(assisted.calls))
	}
	if !reflect.DeepEqual(assisted.calls[0], []string{"Special Instructions"}) {
		t.Fatalf("assisted asked for %v, want only the unresolved field", assisted.calls[0])
	}
}

func TestMapAssistedMergeAndBackfill(t *testing.T) {
	fields := []pdfform.Field{
		{Name: "Vendor Number", Kind: pdfform.KindText},
		{Name: "Warehouse Code", Kind: pdfform.KindText},
	}
	assisted := &fakeAssisted{values: map[string]string{"Vendor Number": "N/A"}}
	m := &Mapper{Assisted: assisted}

	values, err := m.Map(context.Background(), testProfile(), fields)
	if err != nil {
		t.Fatalf("Map error = %v", err)
	}
	if values["Vendor Number"] != "N/A" {
		t.Fatalf("Vendor Number = %q", values["Vendor Number"])
	}
	// Omitted by the model: backfilled, never missing.
	if values["Warehouse Code"] != Unresolved {
		t.Fatalf("Warehouse Code = %q, want %q", values["Warehouse Code"], Unresolved)
	}
}

func TestMapAssistedNotCalledWhenAllResolved(t *testing.T) {
	assisted := &fakeAssisted{}
	m := &Mapper{Assisted: assisted}

	fields := []pdfform.Field{{Name: "Tax ID", Kind: pdfform.KindText}}
	if _, err := m.Map(context.Background(), testProfile(), fields); err != nil {
		t.Fatalf("Map error = %v", err)
	}
	if len(assisted.calls) != 0 {
		t.Fatalf("assisted called %d times for fully resolved form", len(assisted.calls))
	}
}

func TestMapAssistedErrorIsHard(t *testing.T) {
	wantErr := errors.New("model unavailable")
	m := &Mapper{Assisted: &fakeAssisted{err: wantErr}}

	_, err := m.Map(context.Background(), testProfile(), vendorFormFields())
	if !errors.Is(err, wantErr) {
		t.Fatalf("Map error = %v, want %v", err, wantErr)
	}
}

func TestMapEmptyProfileFieldIsUnresolved(t *testing.T) {
	p := testProfile()
	p.Website = ""
	m := &Mapper{}

	values, err := m.Map(context.Background(), p, []pdfform.Field{{Name: "Website", Kind: pdfform.KindText}})
	if err != nil {
		t.Fatalf("Map error = %v", err)
	}
	if values["Website"] != Unresolved {
		t.Fatalf("Website = %q, want %q for empty profile field", values["Website"], Unresolved)
	}
}
