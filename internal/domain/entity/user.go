package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleEvaluator = "evaluator"
	RoleOperator  = "operator"
)

// User representa un usuario del sistema, identificado en planta por su número de empleado.
type User struct {
	ID           string
	EmpID        string
	Name         string
	PasswordHash string // bcrypt hash
	Role         string // admin, evaluator, operator
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor es quien ejecuta una operación (extraído del token).
type Actor struct {
	ID   string
	Role string
}
