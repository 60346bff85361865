package sessions

// User is the fake "current user" kept in storage to simulate a login.
type User struct {
	ID       int64  `json:"id" bson:"id"`
	Username string `json:"username" bson:"username"`
}

// DemoUser is written on first start when the demo login is enabled.
var DemoUser = User{ID: 1, Username: "demoUser"}

// LookupStatus tells why a lookup did or did not produce a user.
type LookupStatus int

const (
	LookupAbsent LookupStatus = iota
	LookupFound
	// LookupCorrupt means a value was stored but could not be decoded into a user.
	LookupCorrupt
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupCorrupt:
		return "corrupt"
	}
	return "absent"
}

// Lookup is the result of reading the session value.
type Lookup struct {
	User   *User
	Status LookupStatus
}

// LoggedIn reports whether the lookup produced a user.
func (l Lookup) LoggedIn() bool { return l.User != nil }

// UserID returns a pointer to the user id, or nil for guests.
func (l Lookup) UserID() *int64 {
	if l.User == nil {
		return nil
	}
	id := l.User.ID
	return &id
}
