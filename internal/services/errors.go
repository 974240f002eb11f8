package services

import "errors"

// ErrorKind classifies a domain error so the HTTP boundary can map it
// to a status code with a single exhaustive match.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota
	KindForbidden
	KindConflict
	KindBusiness
)

// DomainError is raised at the point of detection inside a service and
// propagates unmodified to the boundary. Services never catch or
// downgrade their own errors.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewNotFound(message string) error {
	return &DomainError{Kind: KindNotFound, Message: message}
}

func NewForbidden(message string) error {
	return &DomainError{Kind: KindForbidden, Message: message}
}

func NewConflict(message string) error {
	return &DomainError{Kind: KindConflict, Message: message}
}

func NewBusiness(message string) error {
	return &DomainError{Kind: KindBusiness, Message: message}
}

// AsDomainError unwraps err into a *DomainError if it carries one.
func AsDomainError(err error) (*DomainError, bool) {
	var domainErr *DomainError
	ok := errors.As(err, &domainErr)
	return domainErr, ok
}
