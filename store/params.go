package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"

	"github.com/scicatalog/catalog/catalogerr"
	"github.com/scicatalog/catalog/model"
)

// paramDefinitionJSON is the on-disk shape of a model.ParamDefinition: a
// plain struct whose TextPattern is a string rather than a compiled
// *regexp.Regexp, since regexp.Regexp doesn't round-trip through JSON.
type paramDefinitionJSON struct {
	Type         model.ParamType `json:"type"`
	IntValues    []int64         `json:"int_values,omitempty"`
	IntMin       *int64          `json:"int_min,omitempty"`
	IntMax       *int64          `json:"int_max,omitempty"`
	DoubleValues []float64       `json:"double_values,omitempty"`
	DoubleMin    *float64        `json:"double_min,omitempty"`
	DoubleMax    *float64        `json:"double_max,omitempty"`
	TextValues   []string        `json:"text_values,omitempty"`
	TextPattern  string          `json:"text_pattern,omitempty"`
}

// GetParamCategory fetches a category by its dotted path. Returns
// (nil, nil) when absent.
func (s *Store) GetParamCategory(ctx context.Context, path string) (*model.ParamCategory, error) {
	var owner sql.NullString
	var restricted bool
	var defsRaw []byte
	err := s.db.QueryRowContext(ctx, "select owner, restricted, definitions from parameter_categories where path = $1", path).
		Scan(&owner, &restricted, &defsRaw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, catalogerr.Wrap(catalogerr.StoreError, err)
	}

	c := &model.ParamCategory{
		Path:        path,
		Owner:       owner.String,
		Restricted:  restricted,
		Definitions: map[string]*model.ParamDefinition{},
	}
	if len(defsRaw) == 0 {
		return c, nil
	}
	var raw map[string]paramDefinitionJSON
	if err := json.Unmarshal(defsRaw, &raw); err != nil {
		return nil, catalogerr.Wrap(catalogerr.StoreError, err)
	}
	for name, pd := range raw {
		d := &model.ParamDefinition{
			Name:         name,
			Type:         pd.Type,
			IntValues:    pd.IntValues,
			IntMin:       pd.IntMin,
			IntMax:       pd.IntMax,
			DoubleValues: pd.DoubleValues,
			DoubleMin:    pd.DoubleMin,
			DoubleMax:    pd.DoubleMax,
			TextValues:   pd.TextValues,
		}
		if pd.TextPattern != "" {
			re, err := regexp.Compile(pd.TextPattern)
			if err != nil {
				return nil, catalogerr.Wrap(catalogerr.MetaValidationError, err)
			}
			d.TextPattern = re
		}
		c.Definitions[name] = d
	}
	return c, nil
}

// SaveParamCategory upserts a category on its path, serializing its
// definitions as a single JSON object column.
func (s *Store) SaveParamCategory(ctx context.Context, c *model.ParamCategory) error {
	raw := make(map[string]paramDefinitionJSON, len(c.Definitions))
	for name, d := range c.Definitions {
		pd := paramDefinitionJSON{
			Type:         d.Type,
			IntValues:    d.IntValues,
			IntMin:       d.IntMin,
			IntMax:       d.IntMax,
			DoubleValues: d.DoubleValues,
			DoubleMin:    d.DoubleMin,
			DoubleMax:    d.DoubleMax,
			TextValues:   d.TextValues,
		}
		if d.TextPattern != nil {
			pd.TextPattern = d.TextPattern.String()
		}
		raw[name] = pd
	}
	defsJSON, err := json.Marshal(raw)
	if err != nil {
		return catalogerr.Wrap(catalogerr.StoreError, err)
	}

	_, err = s.db.ExecContext(ctx, `
		insert into parameter_categories(path, owner, restricted, definitions)
			values($1, $2, $3, $4)
			on conflict(path) do update set owner=$2, restricted=$3, definitions=$4`,
		c.Path, nullableString(c.Owner), c.Restricted, defsJSON)
	if err != nil {
		return classifyWriteError(err)
	}
	return nil
}

// CategoryForPath finds the most specific category whose path is a prefix
// of (or equal to) the dotted attribute path, walking from the full path up
// to the root, mirroring DBParamCategory.category_for_path's longest-prefix
// lookup. Returns (nil, nil) if no category matches.
func (s *Store) CategoryForPath(ctx context.Context, path string) (*model.ParamCategory, error) {
	for _, candidate := range ancestry(path) {
		c, err := s.GetParamCategory(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if c != nil {
			return c, nil
		}
	}
	return nil, nil
}

// ancestry returns "a.b.c", "a.b", "a", "" for input "a.b.c".
func ancestry(path string) []string {
	var out []string
	for {
		out = append(out, path)
		idx := lastDot(path)
		if idx < 0 {
			break
		}
		path = path[:idx]
	}
	if len(out) == 0 || out[len(out)-1] != "" {
		out = append(out, "")
	}
	return out
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
