package state

// Screen paths.
const (
	PathHome   = "/"
	PathLogin  = "/login"
	PathSignup = "/signup"
)

// Route returns the screen to show for a requested path. Home needs a
// session; login and signup are only for signed-out users. Unknown paths
// are treated as home.
func Route(path string, authenticated bool) string {
	switch path {
	case PathLogin, PathSignup:
		if authenticated {
			return PathHome
		}
		return path
	default:
		if !authenticated {
			return PathLogin
		}
		return PathHome
	}
}

// Route resolves path against the current session.
func (s *State) Route(path string) string {
	return Route(path, s.Authenticated())
}
