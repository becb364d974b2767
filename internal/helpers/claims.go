package helpers

// AuthClaims is what the auth middleware stores in the request context:
// the verified identity plus the caller's datastore profile, when one
// exists.
type AuthClaims struct {
	*CustomClaims

	// AuthID is the verified subject from the identity provider.
	AuthID string `json:"auth_id"`

	// UserID is the caller's profile id; zero until the identity has
	// registered a profile.
	UserID int64 `json:"user_id"`

	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	IsHost   bool   `json:"is_host"`
}

// Registered reports whether the verified identity has a profile yet.
func (ac *AuthClaims) Registered() bool {
	return ac.UserID != 0
}
