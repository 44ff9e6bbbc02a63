package layout

import (
	"errors"
	"fmt"
)

// ErrContractViolation marks calls that break the host contract, such as
// asking for an index that does not exist.
var ErrContractViolation = errors.New("layout contract violation")

// IndexOutOfRangeError is returned by Controller.ItemAt for a position that
// is not in the current model.
type IndexOutOfRangeError struct {
	Section int
	Item    int
	Count   int // Items in the model when the lookup ran
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("item %d in section %d out of range (%d items in section 0)", e.Item, e.Section, e.Count)
}

func (e *IndexOutOfRangeError) Unwrap() error {
	return ErrContractViolation
}
