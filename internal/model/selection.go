package model

// Selection is the ordered set of route IDs marked for inclusion in the
// campaign. Order is the order of user (or optimizer) selection and is
// preserved across pruning.
type Selection []string

// Contains reports whether the selection includes the given route ID.
func (s Selection) Contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Toggle returns a new Selection with the given ID added if absent or
// removed if present. The receiver is not modified.
func (s Selection) Toggle(id string) Selection {
	out := make(Selection, 0, len(s)+1)
	found := false
	for _, v := range s {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, id)
	}
	return out
}
