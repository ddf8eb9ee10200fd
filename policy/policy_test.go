package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orderdesk/session-gateway/models"
	"github.com/orderdesk/session-gateway/token"
)

func TestRegistryMembership(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		policy string
		role   models.Role
		want   bool
	}{
		{AdminOnly, models.RoleAdmin, true},
		{AdminOnly, models.RoleManager, false},
		{AdminOnly, models.RoleCustomer, false},

		{AdminOrManager, models.RoleAdmin, true},
		{AdminOrManager, models.RoleManager, true},
		{AdminOrManager, models.RoleOperator, false},
		{AdminOrManager, models.RoleKitchen, false},

		{KitchenStaff, models.RoleKitchen, true},
		{KitchenStaff, models.RoleAdmin, true},
		{KitchenStaff, models.RoleManager, true},
		{KitchenStaff, models.RoleCustomer, false},
		{KitchenStaff, models.RoleOperator, false},

		{Operators, models.RoleOperator, true},
		{Operators, models.RoleAdmin, true},
		{Operators, models.RoleManager, true},
		{Operators, models.RoleKitchen, false},

		{Management, models.RoleAdmin, true},
		{Management, models.RoleManager, true},
		{Management, models.RoleCustomer, false},

		{AuthenticatedUser, models.RoleAdmin, true},
		{AuthenticatedUser, models.RoleCustomer, true},
		{AuthenticatedUser, models.RoleKitchen, true},
		{AuthenticatedUser, models.RoleOperator, true},
		{AuthenticatedUser, models.RoleManager, true},

		{OrderManagement, models.RoleAdmin, true},
		{OrderManagement, models.RoleKitchen, true},
		{OrderManagement, models.RoleManager, false},
		{OrderManagement, models.RoleOperator, false},

		{DataQuery, models.RoleAdmin, true},
		{DataQuery, models.RoleManager, true},
		{DataQuery, models.RoleOperator, true},
		{DataQuery, models.RoleKitchen, false},
		{DataQuery, models.RoleCustomer, false},
	}

	for _, tt := range tests {
		t.Run(tt.policy+"/"+string(tt.role), func(t *testing.T) {
			principal := &token.Principal{Subject: "user-1", Role: tt.role}
			assert.Equal(t, tt.want, registry.Satisfies(tt.policy, principal))
		})
	}
}

func TestSatisfiesFailsClosed(t *testing.T) {
	registry := NewRegistry()

	t.Run("nil principal satisfies nothing", func(t *testing.T) {
		for _, name := range registry.Names() {
			assert.False(t, registry.Satisfies(name, nil), name)
		}
	})

	t.Run("principal without a role satisfies nothing", func(t *testing.T) {
		principal := &token.Principal{Subject: "user-1"}
		for _, name := range registry.Names() {
			assert.False(t, registry.Satisfies(name, principal), name)
		}
	})

	t.Run("empty role never passes Allows", func(t *testing.T) {
		p := registry.MustGet(AuthenticatedUser)
		assert.False(t, p.Allows(""))
	})
}

func TestRegistryLookup(t *testing.T) {
	registry := NewRegistry()

	t.Run("get returns registered policies", func(t *testing.T) {
		p, ok := registry.Get(AdminOrManager)
		assert.True(t, ok)
		assert.Equal(t, AdminOrManager, p.Name)
	})

	t.Run("get reports unknown names", func(t *testing.T) {
		_, ok := registry.Get("NoSuchPolicy")
		assert.False(t, ok)
	})

	t.Run("must get panics on unknown names", func(t *testing.T) {
		assert.Panics(t, func() {
			registry.MustGet("NoSuchPolicy")
		})
	})

	t.Run("all eight policies are registered", func(t *testing.T) {
		assert.Len(t, registry.Names(), 8)
	})
}
