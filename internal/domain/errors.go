package domain

import "errors"

var (
	// ErrAuthRequired means no stored session blob exists; nothing was started.
	ErrAuthRequired = errors.New("auth state missing, login required")
	// ErrAuthExpired means the site redirected to its system-error route.
	ErrAuthExpired = errors.New("auth expired: system error page detected")
	// ErrUnresolvedIdentity accompanies a stub ProfileData when no canonical id could be found.
	ErrUnresolvedIdentity = errors.New("canonical id could not be resolved")
	// ErrNavigationTimeout is transient and retryable.
	ErrNavigationTimeout = errors.New("navigation did not reach network idle in time")
	ErrPlayerNotFound    = errors.New("player not found")
)

func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthRequired) || errors.Is(err, ErrAuthExpired)
}

func IsTransient(err error) bool {
	return errors.Is(err, ErrNavigationTimeout)
}
