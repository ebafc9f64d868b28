package store

import (
	"errors"

	"github.com/lib/pq"

	"github.com/scicatalog/catalog/catalogerr"
)

// uniqueViolationClass is the SQLSTATE class for Postgres uniqueness
// violations ("23505" = unique_violation).
const uniqueViolationClass = "23505"

// classifyWriteError maps a raw driver error from a write into the
// catalog's error vocabulary: a uniqueness violation becomes AlreadyExists,
// anything else becomes an opaque StoreError.
func classifyWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationClass {
		return catalogerr.Wrap(catalogerr.AlreadyExists, err)
	}
	return catalogerr.Wrap(catalogerr.StoreError, err)
}
