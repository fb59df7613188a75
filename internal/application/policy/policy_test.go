package policy_test

import (
	"testing"

	"github.com/jhoicas/Circulation-api/internal/application/policy"
	"github.com/jhoicas/Circulation-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestRolePolicy(t *testing.T) {
	own := &entity.Circulation{UserID: "u-1"}
	other := &entity.Circulation{UserID: "u-2"}

	admin := entity.Actor{ID: "u-1", Role: entity.RoleAdmin}
	evaluator := entity.Actor{ID: "u-1", Role: entity.RoleEvaluator}
	operator := entity.Actor{ID: "u-1", Role: entity.RoleOperator}
	anon := entity.Actor{Role: entity.RoleAdmin}

	p := policy.NewRolePolicy(false)

	assert.True(t, p.CanCreate(operator, own))
	assert.False(t, p.CanCreate(anon, own))
	assert.False(t, p.CanCreate(entity.Actor{ID: "x", Role: "guest"}, own))

	assert.True(t, p.CanEdit(operator, own))
	assert.False(t, p.CanEdit(operator, other))
	assert.True(t, p.CanEdit(evaluator, other))

	assert.True(t, p.CanEvaluate(admin, own), "admin puede autoevaluar")
	assert.False(t, p.CanEvaluate(evaluator, own), "evaluator no autoevalúa por defecto")
	assert.True(t, p.CanEvaluate(evaluator, other))
	assert.False(t, p.CanEvaluate(operator, other))

	permissive := policy.NewRolePolicy(true)
	assert.True(t, permissive.CanEvaluate(evaluator, own))
}

func TestRolePolicy_RegistradaPorElEvaluador(t *testing.T) {
	evaluator := entity.Actor{ID: "u-ev", Role: entity.RoleEvaluator}
	// registrada por el evaluador a nombre de otro usuario
	delegated := &entity.Circulation{UserID: "u-op", CreatedBy: "u-ev"}
	legacy := &entity.Circulation{UserID: "u-op"}

	p := policy.NewRolePolicy(false)
	assert.False(t, p.CanEvaluate(evaluator, delegated))
	assert.True(t, p.CanEvaluate(evaluator, legacy))
	assert.True(t, p.CanEvaluate(entity.Actor{ID: "u-ev2", Role: entity.RoleEvaluator}, delegated))

	assert.True(t, policy.NewRolePolicy(true).CanEvaluate(evaluator, delegated))
}

func TestRolePolicy_CanDelegate(t *testing.T) {
	p := policy.NewRolePolicy(false)
	assert.True(t, p.CanDelegate(entity.Actor{ID: "a", Role: entity.RoleAdmin}))
	assert.True(t, p.CanDelegate(entity.Actor{ID: "e", Role: entity.RoleEvaluator}))
	assert.False(t, p.CanDelegate(entity.Actor{ID: "o", Role: entity.RoleOperator}))
	assert.False(t, p.CanDelegate(entity.Actor{Role: entity.RoleAdmin}))
}
