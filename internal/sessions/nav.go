package sessions

// Nav describes which navigation elements a page shows for the current lookup.
type Nav struct {
	LoggedIn    bool
	DisplayName string
	// ShowGuestNav and ShowUserMenu are mutually exclusive.
	ShowGuestNav bool
	ShowUserMenu bool
	// ShowAuthOnly covers every element that is hidden from guests.
	ShowAuthOnly bool
}

// NavFor maps a session lookup to navigation visibility.
func NavFor(l Lookup) Nav {
	if !l.LoggedIn() {
		return Nav{ShowGuestNav: true}
	}
	return Nav{
		LoggedIn:     true,
		DisplayName:  l.User.Username,
		ShowUserMenu: true,
		ShowAuthOnly: true,
	}
}
