package domain

import "errors"

var (
	ErrInvalidIdentity     = errors.New("invalid identity payload")
	ErrMissingCredential   = errors.New("response carried no credential")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrForbidden           = errors.New("access forbidden")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrEditRequestNotFound = errors.New("edit request not found")
	ErrEditRequestPending  = errors.New("an edit request is already pending")
	ErrNoChanges           = errors.New("no changes requested")
	ErrUnknownImageSource  = errors.New("unknown image source")
	ErrSessionChanged      = errors.New("session changed while the request was in flight")
)
