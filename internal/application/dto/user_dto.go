package dto

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID    string `json:"id"`
	EmpID string `json:"emp_id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// LoginRequest entrada para login con número de empleado.
type LoginRequest struct {
	EmpID    string `json:"emp_id" validate:"required,max=32"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
