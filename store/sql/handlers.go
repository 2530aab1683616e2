package sqlstore

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func curatedHandlers() repository.ModelHandlers[*curatedResourceRecord] {
	return repository.ModelHandlers[*curatedResourceRecord]{
		NewRecord: func() *curatedResourceRecord {
			return &curatedResourceRecord{}
		},
		GetID: func(record *curatedResourceRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *curatedResourceRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "curated_id"
		},
		GetIdentifierValue: func(record *curatedResourceRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
