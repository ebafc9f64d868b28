package name

import (
	"testing"

	"github.com/scicatalog/catalog/catalogerr"
	"github.com/stretchr/testify/assert"
)

func TestParseExplicitNamespace(t *testing.T) {
	ns, n, err := Parse("cms:run2018/file.root", "default")
	assert.NoError(t, err)
	assert.Equal(t, "cms", ns)
	assert.Equal(t, "run2018/file.root", n)
}

func TestParseDefaultNamespace(t *testing.T) {
	ns, n, err := Parse("file.root", "cms")
	assert.NoError(t, err)
	assert.Equal(t, "cms", ns)
	assert.Equal(t, "file.root", n)
}

func TestParseEmptyNamespacePrefix(t *testing.T) {
	ns, n, err := Parse(":file.root", "cms")
	assert.NoError(t, err)
	assert.Equal(t, "cms", ns)
	assert.Equal(t, "file.root", n)
}

func TestParseNoDefaultFails(t *testing.T) {
	_, _, err := Parse("file.root", "")
	assert.Error(t, err)
	kind, ok := catalogerr.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, catalogerr.InvalidName, kind)
}

func TestNewFileIDShapeAndUniqueness(t *testing.T) {
	a := NewFileID()
	b := NewFileID()
	assert.Len(t, a, 32)
	assert.Len(t, b, 32)
	assert.NotEqual(t, a, b)
	for _, r := range a {
		assert.True(t, (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f'))
	}
}
