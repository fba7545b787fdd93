package service

import "errors"

var (
	ErrEmptyInput     = errors.New("input text is required")
	ErrEmptyHistory   = errors.New("history is empty")
	ErrNodeNotFound   = errors.New("history node not found")
	ErrInvalidSession = errors.New("invalid session id")
	ErrInsightFailed  = errors.New("insight report failed")
	ErrCorruptHistory = errors.New("stored history is not a JSON array")
)
