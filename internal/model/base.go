package model

import (
	"github.com/google/uuid"
)

// newID fills a nil primary key; gen_random_uuid() is postgres-only and tests run on sqlite
func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
