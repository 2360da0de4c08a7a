package extract

import "testing"

func TestValidateFields_FlatScalars(t *testing.T) {
	fields := map[string]any{
		"account_type": "joint",
		"signer_count": float64(2),
		"active":       true,
		"closed_date":  nil,
	}
	if err := ValidateFields(fields); err != nil {
		t.Errorf("flat scalar fields must validate: %v", err)
	}
}

func TestValidateFields_ListsAndRecords(t *testing.T) {
	fields := map[string]any{
		"holder_names": []any{"Alice Example", "Bob Example"},
		"supporting_documents": []any{
			map[string]any{"type": "drivers_license", "number": "D123"},
		},
		"Signer1": map[string]any{"Name": "Alice Example", "Title": "President"},
	}
	if err := ValidateFields(fields); err != nil {
		t.Errorf("one-level records and lists must validate: %v", err)
	}
}

func TestValidateFields_RejectsDeepNesting(t *testing.T) {
	fields := map[string]any{
		"Signer1": map[string]any{
			"Address": map[string]any{"City": "Springfield"},
		},
	}
	if err := ValidateFields(fields); err == nil {
		t.Error("two-level nesting must be rejected")
	}
}

func TestValidateFields_RejectsListOfLists(t *testing.T) {
	fields := map[string]any{
		"matrix": []any{[]any{"a", "b"}},
	}
	if err := ValidateFields(fields); err == nil {
		t.Error("nested lists must be rejected")
	}
}

func TestValidateFields_EmptyMap(t *testing.T) {
	if err := ValidateFields(map[string]any{}); err != nil {
		t.Errorf("empty field map must validate: %v", err)
	}
}
