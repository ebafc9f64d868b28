package ingest

import (
	"gopkg.in/yaml.v2"

	"github.com/scicatalog/catalog/model"
)

// Manifest describes a batch of files for catalogctl's "ingest" subcommand.
// Not part of the original system; added since ingestion tooling isn't
// named by any excluded feature.
type Manifest struct {
	Namespace string         `yaml:"namespace"`
	Dataset   string         `yaml:"dataset"` // bare dataset name within Namespace, optional
	Creator   string         `yaml:"creator"`
	Files     []ManifestFile `yaml:"files"`
}

// ManifestFile is one entry of a Manifest.
type ManifestFile struct {
	Name      string            `yaml:"name"`
	Metadata  map[string]any    `yaml:"metadata"`
	Size      *int64            `yaml:"size"`
	Checksums map[string]string `yaml:"checksums"`
	Parents   []string          `yaml:"parents"`
}

// ParseManifest decodes a YAML manifest document.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ToFiles builds the model.File batch this manifest describes, ready for
// CreateMany.
func (m *Manifest) ToFiles() []*model.File {
	out := make([]*model.File, len(m.Files))
	for i, mf := range m.Files {
		f := model.NewFile("", m.Namespace, mf.Name)
		f.Metadata = mf.Metadata
		f.Size = mf.Size
		f.Checksums = mf.Checksums
		f.Parents = mf.Parents
		f.Creator = m.Creator
		out[i] = f
	}
	return out
}
