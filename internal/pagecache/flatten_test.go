package pagecache

import (
	"reflect"
	"testing"
)

func TestFlatten_NestedRecord(t *testing.T) {
	got := Flatten(map[string]any{"Signer1": map[string]any{"Name": "A"}})
	want := map[string]any{"Signer1_Name": "A"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFlatten_Idempotence(t *testing.T) {
	flat := map[string]any{
		"Signer1_Name": "A",
		"account_type": "joint",
		"count":        float64(2),
	}
	once := Flatten(flat)
	if !reflect.DeepEqual(once, flat) {
		t.Errorf("flattening flat data must be a no-op: %v vs %v", once, flat)
	}
	twice := Flatten(once)
	if !reflect.DeepEqual(twice, once) {
		t.Errorf("flatten is not idempotent: %v vs %v", twice, once)
	}
}

func TestFlatten_AllowListPreserved(t *testing.T) {
	docs := []any{
		map[string]any{"type": "drivers_license", "number": "D123"},
	}
	names := []any{"Alice Example", "Bob Example"}

	got := Flatten(map[string]any{
		"supporting_documents": docs,
		"holder_names":         names,
		"Signer1":              map[string]any{"Name": "A"},
	})

	if !reflect.DeepEqual(got["supporting_documents"], docs) {
		t.Errorf("supporting_documents must be preserved as-is, got %v", got["supporting_documents"])
	}
	if !reflect.DeepEqual(got["holder_names"], names) {
		t.Errorf("holder_names must be preserved as-is, got %v", got["holder_names"])
	}
	if got["Signer1_Name"] != "A" {
		t.Errorf("non-allow-listed records still flatten, got %v", got)
	}
}

func TestFlatten_MultipleNestedKeys(t *testing.T) {
	got := Flatten(map[string]any{
		"Signer2": map[string]any{"Name": "B", "Title": "Treasurer"},
	})
	if got["Signer2_Name"] != "B" || got["Signer2_Title"] != "Treasurer" {
		t.Errorf("expected both nested keys flattened, got %v", got)
	}
}
