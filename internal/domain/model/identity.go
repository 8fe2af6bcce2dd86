package model

// Identity is the actor behind a request. The zero value is Anonymous, a
// first-class state for public endpoints: the authentication gate never
// rejects a request, it only decides which of the two variants rides along
// in the context, and the authorization policy does the rejecting.
type Identity struct {
	User *User
}

func Anonymous() Identity { return Identity{} }

func Authenticated(u *User) Identity { return Identity{User: u} }

func (i Identity) IsAnonymous() bool { return i.User == nil }

func (i Identity) HasRole(roles ...string) bool {
	if i.User == nil {
		return false
	}
	for _, r := range roles {
		if i.User.Role == r {
			return true
		}
	}
	return false
}
