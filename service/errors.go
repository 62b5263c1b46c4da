package service

import (
	"errors"
	"fmt"

	"justicia-backend/repository"
)

var (
	ErrCaseNotFound     = errors.New("case not found")
	ErrDecisionNotFound = errors.New("decision not found")
	ErrFileNotFound     = errors.New("file not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrDocumentNotFound = errors.New("decision document not found")
	ErrInvalidFile      = errors.New("invalid file")
	ErrNotAnApprover    = errors.New("user cannot approve decisions")
	ErrNotConfigured    = errors.New("service dependency not set")
)

// notFound translates a repository miss into the service sentinel.
func notFound(err error, sentinel error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return err
}

func notConfigured(what string) error {
	return fmt.Errorf("%w: %s", ErrNotConfigured, what)
}
