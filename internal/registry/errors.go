package registry

import (
	"errors"
	"fmt"
)

// Error classes. Adapters match on these with errors.Is: the REST
// layer maps them to 400/404/403, the presence layer converts them to
// unicast error events.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrPermission = errors.New("permission denied")
)

var (
	ErrRoomNotFound        = fmt.Errorf("%w: room", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("%w: user", ErrNotFound)
	ErrParticipantNotFound = fmt.Errorf("%w: participant", ErrNotFound)

	ErrNotHost = fmt.Errorf("%w: requester is not the host", ErrPermission)

	ErrRoomFull      = fmt.Errorf("%w: room is full", ErrValidation)
	ErrUsernameTaken = fmt.Errorf("%w: username already taken", ErrValidation)
	ErrBadRole       = fmt.Errorf("%w: role must be speaker or listener", ErrValidation)
)

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
