package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// Sentinel errors for database operations. Check with errors.Is.
var (
	// ErrAlreadyExists indicates a record with the same ID exists.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrTransactionConflict indicates concurrent writes to the same records.
	// Callers may retry.
	ErrTransactionConflict = errors.New("transaction conflict")

	// ErrNotFound matches models.ErrContentNotFound so service code does not
	// need to know which store it talks to.
	ErrNotFound = models.ErrContentNotFound
)

// wrapQueryError maps known SurrealDB query failures to sentinels.
func wrapQueryError(err error) error {
	if err == nil {
		return nil
	}

	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) {
		msg := queryErr.Message
		if strings.Contains(msg, "already exists") {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, msg)
		}
		if strings.Contains(msg, "Transaction conflict") {
			return fmt.Errorf("%w: %s", ErrTransactionConflict, msg)
		}
	}

	return err
}
