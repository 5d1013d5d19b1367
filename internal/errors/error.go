package errors

import "errors"

// Ошибки ядра редактора: все локальные и восстановимые, editor превращает их в отказ без изменений.
var (
	ErrOccupiedCell = errors.New("intersection is already occupied")
	ErrOutOfRange   = errors.New("index or coordinate out of range")
	ErrInvalidState = errors.New("operation not allowed in current state")
	ErrNotFound     = errors.New("stone not found")
)

var (
	ErrRecordNotFound        = errors.New("record not found")
	ErrSessionNotFound       = errors.New("session was not found")
	ErrCreateRecordFailed    = errors.New("create record failed")
	ErrMalformedSGF          = errors.New("malformed sgf")
	ErrVariationsUnsupported = errors.New("sgf variations are not supported")
	ErrInternal              = errors.New("internal error")
)
