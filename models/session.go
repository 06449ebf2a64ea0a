package models

// Session is the opaque identity the backend's access token carries. The
// client does not interpret it beyond attaching the token to requests and
// showing admin-only actions when Admin is set.
type Session struct {
	UserID string `json:"user_id"`
	Admin  bool   `json:"admin"`
	Token  string `json:"-"`
}
