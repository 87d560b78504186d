package service

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrAuthenticationFailed = errors.New("invalid email or password")
	ErrSessionInvalid       = errors.New("invalid or expired session")
	ErrForbidden            = errors.New("you can only modify your own articles")
	ErrArticleNotFound      = errors.New("article not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInternalServer       = errors.New("internal server error")
)

// ValidationError 携带可以直接返回给客户端的校验失败信息，
// errors.Is(err, ErrInvalidInput) 对它成立。
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

func newValidationError(message string) error {
	return &ValidationError{Message: message}
}
