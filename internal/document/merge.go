package document

// Merge deep-merges overlay onto base. Maps merge key by key; any other
// overlay value replaces the base value. A null in an overlay map removes
// the key.
func Merge(base, overlay Value) Value {
	if base.kind != KindMap || overlay.kind != KindMap {
		return overlay
	}
	out := make(map[string]Value, len(base.m)+len(overlay.m))
	for k, v := range base.m {
		out[k] = v
	}
	for k, v := range overlay.m {
		if v.IsNull() {
			delete(out, k)
			continue
		}
		if existing, ok := out[k]; ok {
			out[k] = Merge(existing, v)
			continue
		}
		out[k] = v
	}
	return Value{kind: KindMap, m: out}
}
