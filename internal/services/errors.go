package services

import "errors"

var (
	ErrMissingToken       = errors.New("no token provided")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidContentType = errors.New("invalid content type")
	ErrInvalidFilename    = errors.New("invalid file name")
	ErrSyncDisabled       = errors.New("sync is disabled for this account")
	ErrQuotaExceeded      = errors.New("storage quota exceeded")
	ErrInconsistentState  = errors.New("storage is in an inconsistent state")
	ErrPhotoNotFound      = errors.New("photo not found")
	ErrMissingCode        = errors.New("no share code provided")
	ErrSelfShare          = errors.New("cannot share with yourself")
	ErrSelfBlock          = errors.New("cannot block yourself")
	// ErrUserNotFound is also returned when the target has blocked the
	// requester; callers must not be able to tell the two apart.
	ErrUserNotFound     = errors.New("cannot find user")
	ErrDuplicateShare   = errors.New("photo already shared with this user")
	ErrShareNotFound    = errors.New("share not found")
	ErrShareCodeFailure = errors.New("could not allocate a share code")
)
