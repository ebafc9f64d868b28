package model

// Dataset is the in-memory representation of a datasets(...) row.
//
// Grounded on original_source/metacat/db/dbobjects2.py's DBDataset.
type Dataset struct {
	Namespace string
	Name      string

	ParentNamespace string // empty together with ParentName
	ParentName      string

	Frozen    bool
	Monotonic bool
	Metadata  map[string]any

	Creator     string
	CreatedAt   int64
	Description string
}

// Key returns the dataset's (namespace, name) primary key.
func (d *Dataset) Key() DatasetKey {
	return DatasetKey{Namespace: d.Namespace, Name: d.Name}
}

// HasParent reports whether the dataset declares a parent dataset.
func (d *Dataset) HasParent() bool {
	return d.ParentNamespace != "" && d.ParentName != ""
}

// ParentKey returns the parent dataset's key, valid only when HasParent.
func (d *Dataset) ParentKey() DatasetKey {
	return DatasetKey{Namespace: d.ParentNamespace, Name: d.ParentName}
}

// ToPlain renders the §6 JSON shape for a dataset. CreatedAt is already
// unix seconds, matching "timestamp as seconds-since-epoch float".
func (d *Dataset) ToPlain() map[string]any {
	meta := d.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	return map[string]any{
		"namespace":         d.Namespace,
		"name":              d.Name,
		"parent_namespace":  nullableString(d.ParentNamespace),
		"parent_name":       nullableString(d.ParentName),
		"metadata":          meta,
		"creator":           nullableString(d.Creator),
		"created_timestamp": float64(d.CreatedAt),
	}
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
