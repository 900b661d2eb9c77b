package session

// User is the identity cached alongside the tokens after login.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Session is the logged-in state of the client: the bearer credentials plus
// the cached user identity. At most one Session exists per store; the absence
// of both tokens means the client is unauthenticated.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         User
}

// Authenticated reports whether the session carries any credential at all.
func (s Session) Authenticated() bool {
	return s.AccessToken != "" || s.RefreshToken != ""
}
