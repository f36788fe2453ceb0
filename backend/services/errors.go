package services

import "github.com/pkg/errors"

var (
	ErrCourseNotFound   = errors.New("course not found")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrGatewayDisabled  = errors.New("payment gateway is not configured")
)
