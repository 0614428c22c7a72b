package service

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidInput           = errors.New("invalid input")
	ErrPermissionDenied       = errors.New("permission denied")
	ErrLocked                 = errors.New("version is locked")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrJustificationRequired  = errors.New("justification required")
)
