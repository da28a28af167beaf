package domain

import "errors"

var (
	ErrValidation              = errors.New("validation failed")
	ErrUserNotFound            = errors.New("user not found")
	ErrBirthdayNotFound        = errors.New("birthday not found")
	ErrDeletedBirthdayNotFound = errors.New("deleted birthday not found")
	ErrDuplicateBirthday       = errors.New("birthday already exists")
	ErrNoData                  = errors.New("no data available for analysis")
	ErrStorageDisabled         = errors.New("export storage is not configured")
	ErrInternal                = errors.New("internal error")
)

// BusinessError ошибка бизнес-логики, которая уже залогирована в UseCase
type BusinessError struct {
	Err error
}

func (e *BusinessError) Error() string {
	return e.Err.Error()
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func WrapBusinessError(err error) error {
	if err == nil {
		return nil
	}
	return &BusinessError{Err: err}
}

func IsBusinessError(err error) bool {
	var businessErr *BusinessError
	return errors.As(err, &businessErr)
}
