package model

// Namespace is the in-memory representation of a namespaces(...) row.
// Exactly one of OwnerUser / OwnerRole is set, enforced at the store layer.
//
// Grounded on original_source/metacat/db/dbobjects2.py's DBNamespace.
type Namespace struct {
	Name        string
	OwnerUser   string
	OwnerRole   string
	Description string
	Creator     string
	CreatedAt   int64
}

// OwnedBy implements the §4.H access-control predicate: true if the user
// owns the namespace directly, or (unless direct is requested) through
// role membership. The engine itself never consults roleMembers beyond
// what the caller supplies; it performs no admin-flag override.
func (n *Namespace) OwnedBy(user string, direct bool, roleMembers func(role string) []string) bool {
	if n.OwnerUser != "" {
		return n.OwnerUser == user
	}
	if direct || n.OwnerRole == "" || roleMembers == nil {
		return false
	}
	for _, m := range roleMembers(n.OwnerRole) {
		if m == user {
			return true
		}
	}
	return false
}

func (n *Namespace) ToPlain() map[string]any {
	return map[string]any{
		"name":              n.Name,
		"owner_user":        nullableString(n.OwnerUser),
		"owner_role":        nullableString(n.OwnerRole),
		"description":       nullableString(n.Description),
		"creator":           nullableString(n.Creator),
		"created_timestamp": float64(n.CreatedAt),
	}
}
