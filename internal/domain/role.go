package domain

// API caller roles carried in the bearer token.
const (
	RoleAdmin   = "admin"
	RoleService = "service"
)
