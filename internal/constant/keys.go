package constant

type Key string

const (
	// ClientIP is the address of the requesting client
	ClientIP Key = "client_ip"
	// UserKey is the id of the authenticated user
	UserKey Key = "user"
)
