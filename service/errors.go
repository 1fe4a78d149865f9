package service

import "errors"

var (
	ErrApartmentNotFound   = errors.New("apartment not found")
	ErrProjectNotFound     = errors.New("project not found")
	ErrDuplicateUnitNumber = errors.New("apartment with this unit number already exists")
	ErrInvalidInput        = errors.New("input rejected by the store")

	ErrNoFiles              = errors.New("no files uploaded")
	ErrTooManyFiles         = errors.New("at most 4 images may be uploaded at once")
	ErrUnsupportedImageType = errors.New("unsupported image type")
	ErrImageTooLarge        = errors.New("image exceeds the 5MB limit")
)
