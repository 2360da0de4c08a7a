package pagecache

// preserveNested are structures stored as-is: lists of supporting-document
// records and holder names keep their shape so the UI can render them.
var preserveNested = map[string]bool{
	"supporting_documents": true,
	"holder_names":         true,
}

// Flatten rewrites one level of nested records into flat underscore-joined
// keys: {"Signer1": {"Name": "A"}} becomes {"Signer1_Name": "A"}.
// Flattening already-flat data is a no-op, so re-running a migration is
// safe.
func Flatten(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if preserveNested[k] {
			out[k] = v
			continue
		}
		nested, ok := v.(map[string]any)
		if !ok {
			out[k] = v
			continue
		}
		for nk, nv := range nested {
			out[k+"_"+nk] = nv
		}
	}
	return out
}
