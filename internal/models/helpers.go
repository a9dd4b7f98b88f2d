package models

import (
	"fmt"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// RecordIDString returns the key of a record ID. Saved content always uses
// string keys; anything else is an error.
func RecordIDString(id surrealmodels.RecordID) (string, error) {
	s, ok := id.ID.(string)
	if !ok {
		return "", fmt.Errorf("unexpected ID type: %T (expected string)", id.ID)
	}
	return s, nil
}

// ContentRecordID builds the record ID of a saved content key.
func ContentRecordID(key string) surrealmodels.RecordID {
	return surrealmodels.RecordID{Table: SavedContentTable, ID: key}
}
