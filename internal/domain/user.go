package domain

import "strings"

// User is a trading participant loaded from the Users range.
type User struct {
	Username string
	Password string
	FullName string
	Role     string
}

// LongName returns the display name, falling back to the username for
// legacy single-column user rows.
func (u User) LongName() string {
	if u.FullName == "" {
		return u.Username
	}
	return u.FullName
}

func (u User) String() string {
	return u.Username
}

// Unit is a tradable good or service, identified by its description.
type Unit struct {
	Desc string
}

func (u Unit) String() string {
	return u.Desc
}

// Directory resolves usernames and unit descriptions against one snapshot
// of the reference lists. When a name appears more than once the first
// occurrence wins.
type Directory struct {
	users     []User
	units     []Unit
	byName    map[string]User
	byLower   map[string]User
	unitByDsc map[string]Unit
}

// NewDirectory indexes the given reference lists. The slices are not copied;
// callers must treat them as immutable.
func NewDirectory(users []User, units []Unit) *Directory {
	d := &Directory{
		users:     users,
		units:     units,
		byName:    make(map[string]User, len(users)),
		byLower:   make(map[string]User, len(users)),
		unitByDsc: make(map[string]Unit, len(units)),
	}
	for _, u := range users {
		if _, ok := d.byName[u.Username]; !ok {
			d.byName[u.Username] = u
		}
		lower := strings.ToLower(u.Username)
		if _, ok := d.byLower[lower]; !ok {
			d.byLower[lower] = u
		}
	}
	for _, u := range units {
		if _, ok := d.unitByDsc[u.Desc]; !ok {
			d.unitByDsc[u.Desc] = u
		}
	}
	return d
}

// Users returns the indexed users in their original order.
func (d *Directory) Users() []User { return d.users }

// Units returns the indexed units in their original order.
func (d *Directory) Units() []Unit { return d.units }

// User looks up a user by exact username.
func (d *Directory) User(username string) (User, error) {
	u, ok := d.byName[username]
	if !ok {
		return User{}, &UnknownReferenceError{Kind: ReferenceUser, Name: username}
	}
	return u, nil
}

// Login looks up a user by username ignoring case.
func (d *Directory) Login(username string) (User, bool) {
	u, ok := d.byLower[strings.ToLower(username)]
	return u, ok
}

// Unit looks up a unit by exact description.
func (d *Directory) Unit(desc string) (Unit, error) {
	u, ok := d.unitByDsc[desc]
	if !ok {
		return Unit{}, &UnknownReferenceError{Kind: ReferenceUnit, Name: desc}
	}
	return u, nil
}

// DuplicateUsernames returns usernames that occur more than once, in
// first-seen order.
func DuplicateUsernames(users []User) []string {
	seen := make(map[string]int, len(users))
	var dups []string
	for _, u := range users {
		seen[u.Username]++
		if seen[u.Username] == 2 {
			dups = append(dups, u.Username)
		}
	}
	return dups
}
