package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks struct-level constraints (required fields, enum values)
// on every job and trigger in doc, returning the first failure. It does not
// check cross-references (trigger -> job) or store-state invariants; those
// are checked by Install before any mutation, so the entire document is
// validated before anything is written to the store.
func Validate(doc *Document) error {
	for i, j := range doc.Schedule.Jobs {
		if err := validate.Struct(j); err != nil {
			return fmt.Errorf("job[%d] %q: %w", i, j.Name, err)
		}
	}
	for i, t := range doc.Schedule.Triggers {
		if err := validate.Struct(t); err != nil {
			return fmt.Errorf("trigger[%d] %q: %w", i, t.Name, err)
		}
	}
	return nil
}
