package enums

// SessionState tracks where the device session is in its lifecycle.
type SessionState string

const (
	SessionStateUninitialized SessionState = "uninitialized"
	SessionStateLoaded        SessionState = "loaded"
	SessionStateAuthenticated SessionState = "authenticated"
	SessionStateAnonymous     SessionState = "anonymous"
)

// String implements fmt.Stringer.
func (s SessionState) String() string {
	return string(s)
}

// IsSettled reports whether loading finished and the identity is known.
func (s SessionState) IsSettled() bool {
	return s == SessionStateAuthenticated || s == SessionStateAnonymous
}
