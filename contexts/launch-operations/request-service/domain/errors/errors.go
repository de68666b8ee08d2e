package errors

import "errors"

var (
	ErrRequestNotFound         = errors.New("launch request not found")
	ErrInvalidRequestInput     = errors.New("invalid launch request input")
	ErrRequestNotEditable      = errors.New("launch request cannot be edited in current state")
	ErrInvalidStatusTransition = errors.New("invalid launch request status transition")
	ErrAssignmentMismatch      = errors.New("creative assignment mismatch")
	ErrPermissionDenied        = errors.New("permission denied")
	ErrUploadNotFound          = errors.New("upload not found")
	ErrBuyerAssignmentNotFound = errors.New("buyer assignment not found")
	ErrUserNotFound            = errors.New("user not found")
)
