package model

// Session is the client's record of an authenticated identity. These three
// values are persisted together on login and cleared together on logout.
type Session struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Color    string `json:"color"`
}
