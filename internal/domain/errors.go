package domain

import "errors"

var (
	ErrNotConnected     = errors.New("room not connected")
	ErrMalformedMessage = errors.New("malformed message")
	ErrQueueFull        = errors.New("outbound queue full")
	ErrClosed           = errors.New("closed")
)
