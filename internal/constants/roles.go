package constants

// User roles, in ascending order of privilege.
const (
	Viewer   = "viewer"
	Trader   = "trader"
	Provider = "provider"
	Admin    = "admin"
)
