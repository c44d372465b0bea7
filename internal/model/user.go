package model

// User is a roster member. The roster is fixed at startup; there is no
// self-registration.
type User struct {
	ID       int64  `json:"-"`
	Username string `json:"username"`
	Color    string `json:"color"`
}
