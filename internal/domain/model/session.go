package model

// Session is the operator's authentication state. A session is authenticated
// exactly when it carries a token; there is no separate flag to drift.
type Session struct {
	Token    string
	Username string
}

// Authenticated reports whether the session holds a bearer token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// LoginForm is the transient login draft.
type LoginForm struct {
	Username string
	Password string
}
