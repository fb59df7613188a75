package repository

import (
	"context"

	"github.com/jhoicas/Circulation-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (directorio de usuarios).
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByEmpID resuelve el número de empleado; nil si no existe.
	GetByEmpID(ctx context.Context, empID string) (*entity.User, error)
}
