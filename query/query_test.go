package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scicatalog/catalog/catalogerr"
)

func TestValidateAcceptsWellFormedSQL(t *testing.T) {
	err := Validate("select id, namespace, name from files f0 where f0.metadata @@ '$.\"run\" == 4242'")
	assert.NoError(t, err)
}

func TestValidateRejectsMalformedSQL(t *testing.T) {
	err := Validate("select select from where")
	assert.Error(t, err)
	kind, ok := catalogerr.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, catalogerr.QueryCompileError, kind)
}
