package domain

// Session identifies the authenticated caller. It is passed explicitly into
// every store and generation call; nothing reads identity from global state.
type Session struct {
	UserID string
	Token  string
}

// Authenticated reports whether the session carries an identity.
func (s Session) Authenticated() bool {
	return s.UserID != ""
}

// Owns reports whether the session's user is the given owner.
func (s Session) Owns(ownerID string) bool {
	return s.Authenticated() && s.UserID == ownerID
}
