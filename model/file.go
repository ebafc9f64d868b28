package model

import "context"

// MetadataLoader is the minimal surface a File needs to lazily fetch its own
// metadata after being constructed without it (store.Store implements this).
// Kept as a narrow interface here so model never imports store.
type MetadataLoader interface {
	FileMetadata(ctx context.Context, fid string) (map[string]any, error)
}

// File is the in-memory representation of a files(...) row plus whatever
// provenance/metadata the caller asked to have populated.
//
// Grounded on original_source/metacat/db/dbobjects2.py's DBFile.
type File struct {
	FID       string
	Namespace string // empty together with Name, per the (namespace is null) <-> (name is null) invariant
	Name      string

	Metadata  map[string]any // nil until loaded or explicitly requested
	Size      *int64
	Checksums map[string]string
	Creator   string
	CreatedAt int64 // unix seconds

	Parents  []string // FIDs only, set only when provenance was requested
	Children []string

	Datasets []DatasetKey // populated only on demand

	loader MetadataLoader
}

// DatasetKey is the (namespace, name) primary key of a dataset, used
// wherever only the identity (not the full record) of a dataset matters.
type DatasetKey struct {
	Namespace string
	Name      string
}

func (k DatasetKey) String() string { return k.Namespace + ":" + k.Name }

// NewFile builds a File with the given identity. fid may be empty; callers
// that need a stable ID before insertion should call name.NewFileID.
func NewFile(fid, namespace, bareName string) *File {
	return &File{FID: fid, Namespace: namespace, Name: bareName}
}

// WithLoader attaches the repository used for lazy metadata fetches. Called
// by store.Store when it hands back a File that didn't eagerly fetch
// metadata.
func (f *File) WithLoader(l MetadataLoader) *File {
	f.loader = l
	return f
}

// FetchMetadata loads metadata on demand if it wasn't already populated,
// mirroring DBFile.with_metadata/metadata in the source system.
func (f *File) FetchMetadata(ctx context.Context) (map[string]any, error) {
	if f.Metadata != nil {
		return f.Metadata, nil
	}
	if f.loader == nil {
		return map[string]any{}, nil
	}
	meta, err := f.loader.FileMetadata(ctx, f.FID)
	if err != nil {
		return nil, err
	}
	f.Metadata = meta
	return meta, nil
}

// HasAttribute reports whether the currently-loaded metadata has the key.
func (f *File) HasAttribute(key string) bool {
	if f.Metadata == nil {
		return false
	}
	_, ok := f.Metadata[key]
	return ok
}

// FixedColumns is the set of File attributes backed by a typed column
// rather than a JSON metadata key. Shared by the DNF compiler to decide
// between a direct column comparison and a JSON-path predicate.
var FixedColumns = map[string]bool{
	"creator":           true,
	"created_timestamp": true,
	"name":              true,
	"namespace":         true,
	"size":              true,
}

// ToPlain renders the §6 JSON shape: {fid, namespace, name, checksums?,
// size?, metadata?, parents?, children?, datasets?}, omitting fields that
// were never populated.
func (f *File) ToPlain() map[string]any {
	out := map[string]any{
		"fid": f.FID,
	}
	if f.Namespace != "" || f.Name != "" {
		out["namespace"] = f.Namespace
		out["name"] = f.Name
	}
	if len(f.Checksums) > 0 {
		out["checksums"] = f.Checksums
	}
	if f.Size != nil {
		out["size"] = *f.Size
	}
	if f.Metadata != nil {
		out["metadata"] = f.Metadata
	}
	if f.Parents != nil {
		out["parents"] = f.Parents
	}
	if f.Children != nil {
		out["children"] = f.Children
	}
	if f.Datasets != nil {
		datasets := make([]map[string]string, len(f.Datasets))
		for i, d := range f.Datasets {
			datasets[i] = map[string]string{"namespace": d.Namespace, "name": d.Name}
		}
		out["datasets"] = datasets
	}
	return out
}
