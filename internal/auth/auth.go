package auth

import "strconv"

// Wildcard is the configuration token matching any identifier.
const Wildcard = "*"

// Gate decides whether a Telegram identity may use the bot. It is built once
// at startup from the configured allow-lists and is immutable afterwards.
type Gate struct {
	users    map[string]struct{}
	admins   map[string]struct{}
	anyUser  bool
	anyAdmin bool
}

// NewGate creates a Gate from the regular-user and admin identifier lists.
func NewGate(users, admins []string) *Gate {
	g := &Gate{
		users:  make(map[string]struct{}, len(users)),
		admins: make(map[string]struct{}, len(admins)),
	}
	for _, id := range users {
		if id == Wildcard {
			g.anyUser = true
			continue
		}
		g.users[id] = struct{}{}
	}
	for _, id := range admins {
		if id == Wildcard {
			g.anyAdmin = true
			continue
		}
		g.admins[id] = struct{}{}
	}
	return g
}

// IsUser reports whether the identifier is in the user allow-list or the list
// carries the wildcard.
func (g *Gate) IsUser(id int64) bool {
	if g.anyUser {
		return true
	}
	_, ok := g.users[strconv.FormatInt(id, 10)]
	return ok
}

// IsAdmin reports whether the identifier has admin privileges.
func (g *Gate) IsAdmin(id int64) bool {
	if g.anyAdmin {
		return true
	}
	_, ok := g.admins[strconv.FormatInt(id, 10)]
	return ok
}
