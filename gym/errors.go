package gym

import "fmt"

// DuplicateIDError reports an attempt to register a member under an id that
// is already taken. Match with errors.As.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("member id %q already registered", e.ID)
}

// MemberNotFoundError reports a lookup, check-in or removal against an id
// that is not in the roster.
type MemberNotFoundError struct {
	ID string
}

func (e *MemberNotFoundError) Error() string {
	return fmt.Sprintf("member %q not found", e.ID)
}
