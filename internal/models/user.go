package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin       UserRole = "ADMIN"
	RoleCoordinator UserRole = "COORDINATOR"
	RoleViewer      UserRole = "VIEWER"
)

// AnonymousOwner is the workspace used when no identity is supplied.
const AnonymousOwner = "anonymous"
