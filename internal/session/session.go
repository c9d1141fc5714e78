// Package session defines the authenticated identity attached to each request.
//
// A Session is a fixed, tagged value rather than an open-ended claims map:
// Present reports whether the caller authenticated at all, and the remaining
// fields are only meaningful when it did. Access predicates receive Sessions
// by value and must treat an anonymous session as a deny, never as an error.
package session

// Session is the identity of the acting user for one request.
// The zero value is the anonymous session.
type Session struct {
	// Present is false for unauthenticated callers. All other fields are
	// zero when Present is false.
	Present bool `json:"present"`

	// ItemID is the id of the user item this session belongs to.
	ItemID string `json:"itemId"`

	// IsAdmin reports whether the user may administer the system.
	IsAdmin bool `json:"isAdmin"`

	// IsEnabled reports whether the user account is active. Disabled users
	// never receive a present session from the auth layer; the field is kept
	// so predicates and UI policies can still inspect it.
	IsEnabled bool `json:"isEnabled"`
}

// Anonymous returns the session of an unauthenticated caller.
func Anonymous() Session {
	return Session{}
}

// New returns a present session for the given user item.
func New(itemID string, isAdmin, isEnabled bool) Session {
	return Session{
		Present:   true,
		ItemID:    itemID,
		IsAdmin:   isAdmin,
		IsEnabled: isEnabled,
	}
}

// IsAnonymous reports whether the session belongs to an unauthenticated caller.
func (s Session) IsAnonymous() bool {
	return !s.Present
}

// Admin reports whether the session is present and has the admin flag.
// It is the safe replacement for the optional-chained session?.data?.isAdmin
// pattern: it never faults on an anonymous session.
func (s Session) Admin() bool {
	return s.Present && s.IsAdmin
}

// IsSelf reports whether the session belongs to the user item with the given id.
// Anonymous sessions are never self.
func (s Session) IsSelf(itemID string) bool {
	return s.Present && itemID != "" && s.ItemID == itemID
}

// String returns a stable representation for audit logs.
func (s Session) String() string {
	if !s.Present {
		return "anonymous"
	}

	if s.IsAdmin {
		return "admin:" + s.ItemID
	}

	return "user:" + s.ItemID
}
