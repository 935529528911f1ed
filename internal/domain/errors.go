package domain

import "errors"

// Typed failures surfaced by the service layer. Callers branch with errors.Is;
// only the bot layer maps them to user-facing text.
var (
	ErrTaskNotFound            = errors.New("task with provided data not found")
	ErrTaskAlreadyExists       = errors.New("task with provided data already exists")
	ErrTaskAssociationNotFound = errors.New("task association with provided data not found")
	ErrTaskAttributeRequired   = errors.New("task id or description is required")

	ErrUserNotFound          = errors.New("user with provided credentials not found")
	ErrUserAlreadyExists     = errors.New("user with provided credentials already exists")
	ErrUserAttributeRequired = errors.New("user id, first name or username is required")

	ErrNoPermission = errors.New("user has no permissions for this action")
	ErrRosterFormat = errors.New("roster file is not a list of task descriptions")
)
