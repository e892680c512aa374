package auth

import "github.com/swand-12/saloon-backend-admin/internal/config"

type Credential struct {
	Username string
	Password string
}

// Credentials is the static admin list loaded at startup. It is never
// reloaded while the process runs.
type Credentials struct {
	list []Credential
}

func NewCredentials(admins []config.AdminCredential) *Credentials {
	list := make([]Credential, 0, len(admins))
	for _, a := range admins {
		list = append(list, Credential{Username: a.Username, Password: a.Password})
	}
	return &Credentials{list: list}
}

func (c *Credentials) Len() int {
	return len(c.list)
}

// Authenticate returns the first entry matching both fields exactly.
// Comparison is plain and case-sensitive.
func (c *Credentials) Authenticate(username, password string) (Credential, bool) {
	for _, cred := range c.list {
		if cred.Username == username && cred.Password == password {
			return cred, true
		}
	}
	return Credential{}, false
}
