package domain

import "errors"

var (
	ErrAuthRequired = errors.New("authentication required")
	ErrForbidden    = errors.New("operation allowed only for the creator or an admin")
	ErrNotFound     = errors.New("record not found")
	ErrRoomFull     = errors.New("room is full")
	ErrHallExists   = errors.New("user already has a hall")
	ErrLoadFailed   = errors.New("conference script failed to load")
	ErrNoContainer  = errors.New("conference container is required")
	ErrBackend      = errors.New("backend failure")
)
