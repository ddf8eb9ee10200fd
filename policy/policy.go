package policy

import (
	"fmt"

	"github.com/orderdesk/session-gateway/models"
	"github.com/orderdesk/session-gateway/token"
)

// Policy names. Route wiring refers to policies by these names only.
const (
	AdminOnly         = "AdminOnly"
	AdminOrManager    = "AdminOrManager"
	KitchenStaff      = "KitchenStaff"
	Operators         = "Operators"
	Management        = "Management"
	AuthenticatedUser = "AuthenticatedUser"
	OrderManagement   = "OrderManagement"
	DataQuery         = "DataQuery"
)

// Policy is a named set of roles that satisfy it. Policies are purely
// additive unions: there is no hierarchy or negation, so a policy that
// admits managers and admins lists both explicitly.
type Policy struct {
	Name  string
	roles map[models.Role]struct{}
}

// Allows reports whether a role satisfies the policy. The empty role
// never does.
func (p *Policy) Allows(role models.Role) bool {
	_, ok := p.roles[role]
	return ok
}

// Satisfies reports whether a principal's role satisfies the policy.
// A nil principal or one without a role claim satisfies nothing.
func (p *Policy) Satisfies(principal *token.Principal) bool {
	if principal == nil {
		return false
	}
	return p.Allows(principal.Role)
}

// Registry holds the policy set, fixed at startup. Evaluation is a pure
// membership test; nothing here depends on request state.
type Registry struct {
	policies map[string]*Policy
}

// NewRegistry creates the registry with the platform's policy set
func NewRegistry() *Registry {
	r := &Registry{policies: make(map[string]*Policy)}

	r.register(AdminOnly, models.RoleAdmin)
	r.register(AdminOrManager, models.RoleAdmin, models.RoleManager)
	r.register(KitchenStaff, models.RoleKitchen, models.RoleAdmin, models.RoleManager)
	r.register(Operators, models.RoleOperator, models.RoleAdmin, models.RoleManager)
	r.register(Management, models.RoleAdmin, models.RoleManager)
	r.register(AuthenticatedUser, models.AllRoles...)
	r.register(OrderManagement, models.RoleAdmin, models.RoleKitchen)
	r.register(DataQuery, models.RoleAdmin, models.RoleManager, models.RoleOperator)

	return r
}

func (r *Registry) register(name string, roles ...models.Role) {
	set := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	r.policies[name] = &Policy{Name: name, roles: set}
}

// Get returns a policy by name
func (r *Registry) Get(name string) (*Policy, bool) {
	p, ok := r.policies[name]
	return p, ok
}

// MustGet returns a policy by name and panics when it does not exist.
// Called at route wiring, so a policy name typo fails the process at
// startup instead of surfacing as a per-request branch.
func (r *Registry) MustGet(name string) *Policy {
	p, ok := r.policies[name]
	if !ok {
		panic(fmt.Sprintf("policy: unknown policy %q", name))
	}
	return p
}

// Satisfies reports whether a principal satisfies a named policy. The
// name must exist; unknown names are a programming error.
func (r *Registry) Satisfies(name string, principal *token.Principal) bool {
	return r.MustGet(name).Satisfies(principal)
}

// Names returns the registered policy names
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}
	return names
}
