// Package auth contiene los DTOs de los endpoints de autenticación.
package auth

// LoginRequest es el body de POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenRequest es el body de logout / refresh / introspect.
type TokenRequest struct {
	Token string `json:"token"`
}

// ChangePasswordRequest es el body de POST /api/auth/change-password.
type ChangePasswordRequest struct {
	Token       string `json:"token"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// RegisterRequest es el body de POST /api/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse es la respuesta de todo flujo que emite token.
type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// IntrospectResponse es la respuesta de POST /api/auth/introspect.
type IntrospectResponse struct {
	Valid bool `json:"valid"`
}

// SuccessResponse es la respuesta de flujos sin token (change-password,
// register).
type SuccessResponse struct {
	Success bool `json:"success"`
}
