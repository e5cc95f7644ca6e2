package identity

import "fmt"

// Claims holds the verified identity attributes of a logged-in user, as
// provided by the identity provider. Claims are immutable once issued for
// a given login.
type Claims struct {
	Subject string `json:"sub"`     // Provider-assigned stable user ID
	Email   string `json:"email"`   // User email
	Name    string `json:"name"`    // Display name
	Picture string `json:"picture"` // Profile image URL
}

// Validate checks that the claims carry at least a subject identifier.
// All other fields are optional.
func (c Claims) Validate() error {
	if c.Subject == "" {
		return fmt.Errorf("claims missing subject")
	}
	return nil
}
