// Package policy implementa las capacidades sobre circulaciones según el rol del actor.
package policy

import (
	"github.com/jhoicas/Circulation-api/internal/domain/entity"
)

// RolePolicy autoriza por rol:
//   - admin: crea, edita y evalúa cualquier circulación.
//   - evaluator: igual que admin, salvo evaluar las que registró o le pertenecen si AllowSelfEval es false.
//   - operator: crea y edita solo sus propias circulaciones; no evalúa ni delega.
type RolePolicy struct {
	AllowSelfEval bool
}

// NewRolePolicy construye la política.
func NewRolePolicy(allowSelfEval bool) *RolePolicy {
	return &RolePolicy{AllowSelfEval: allowSelfEval}
}

// CanCreate cualquier usuario autenticado con rol conocido.
func (p *RolePolicy) CanCreate(actor entity.Actor, _ *entity.Circulation) bool {
	return actor.ID != "" && knownRole(actor.Role)
}

// CanEdit el dueño de la circulación o quien puede evaluar.
func (p *RolePolicy) CanEdit(actor entity.Actor, circ *entity.Circulation) bool {
	if actor.ID == "" || circ == nil {
		return false
	}
	switch actor.Role {
	case entity.RoleAdmin, entity.RoleEvaluator:
		return true
	case entity.RoleOperator:
		return circ.UserID == actor.ID
	}
	return false
}

// CanEvaluate admin siempre; evaluator salvo autoevaluación no permitida.
// Autoevaluación incluye lo que el evaluador registró a nombre de otro.
func (p *RolePolicy) CanEvaluate(actor entity.Actor, circ *entity.Circulation) bool {
	if actor.ID == "" || circ == nil {
		return false
	}
	switch actor.Role {
	case entity.RoleAdmin:
		return true
	case entity.RoleEvaluator:
		return p.AllowSelfEval || (circ.UserID != actor.ID && circ.CreatedBy != actor.ID)
	}
	return false
}

// CanDelegate registrar o reasignar circulaciones a nombre de otro usuario.
func (p *RolePolicy) CanDelegate(actor entity.Actor) bool {
	if actor.ID == "" {
		return false
	}
	return actor.Role == entity.RoleAdmin || actor.Role == entity.RoleEvaluator
}

func knownRole(role string) bool {
	switch role {
	case entity.RoleAdmin, entity.RoleEvaluator, entity.RoleOperator:
		return true
	}
	return false
}
