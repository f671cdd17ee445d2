package service

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrTooShort     = errors.New("duration below minimal threshold")
)

// MinLoggedDuration is the shortest session accepted into history outside the countdown.
const MinLoggedDuration = 60
