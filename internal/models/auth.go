package models

import "github.com/golang-jwt/jwt/v5"

// UserRole is the role claim carried by admin access tokens.
type UserRole string

const (
	RoleSuperAdmin    UserRole = "SUPERADMIN"
	RoleAdmin         UserRole = "ADMIN"
	RoleManager       UserRole = "MANAGER"
	RoleCourseCreator UserRole = "COURSECREATOR"
)

// JWTClaims represents the JWT payload issued by the host CMS for admin pages.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}
