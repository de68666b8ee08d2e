package errors

import "errors"

var (
	ErrFolderNotFound   = errors.New("folder not found")
	ErrAssetNotFound    = errors.New("asset not found")
	ErrUploadNotFound   = errors.New("source upload not found")
	ErrInvalidProvision = errors.New("invalid provisioning input")
)
