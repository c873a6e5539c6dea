package mutate

import (
	"fmt"

	"proposal-cli/internal/model"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// WrongKindError is returned when an operation targets a block whose kind does
// not carry the content it edits (e.g. fee options on a text block).
type WrongKindError struct {
	ID   string
	Got  model.Kind
	Want string
}

func (e WrongKindError) Error() string {
	return fmt.Sprintf("block %s is %s, expected %s", e.ID, e.Got, e.Want)
}
