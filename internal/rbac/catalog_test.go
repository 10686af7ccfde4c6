package rbac

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

var allCapabilities = []Capability{CapTaskCreate, CapTaskRead, CapTaskUpdate, CapTaskDelete, CapAuditRead}

func TestCapabilitiesForCatalogedRoles(t *testing.T) {
	assert.ElementsMatch(t, allCapabilities, CapabilitiesFor(RoleOwner).List())
	assert.ElementsMatch(t, allCapabilities, CapabilitiesFor(RoleAdmin).List())
	assert.Equal(t, []Capability{CapTaskRead}, CapabilitiesFor(RoleViewer).List())

	for _, role := range Roles() {
		assert.Positive(t, CapabilitiesFor(role).Len(), "role %s must map to a non-empty set", role)
	}
}

func TestCapabilitiesForUnknownRoleIsEmpty(t *testing.T) {
	set := CapabilitiesFor(Role("Auditor"))
	assert.Zero(t, set.Len())
	assert.False(t, set.Has(CapTaskRead))
	assert.Empty(t, set.List())
}

func TestIsAuthorizedEmptyRequirementIsPublic(t *testing.T) {
	for _, role := range append(Roles(), Role(""), Role("Auditor")) {
		assert.True(t, IsAuthorized(role), "role %q", role)
	}
}

func TestIsAuthorizedUnknownRoleDeniesNonEmpty(t *testing.T) {
	for _, c := range allCapabilities {
		assert.False(t, IsAuthorized(Role("Auditor"), c))
		assert.False(t, IsAuthorized(Role(""), c))
	}
}

func TestIsAuthorizedRequiresEveryCapability(t *testing.T) {
	assert.True(t, IsAuthorized(RoleViewer, CapTaskRead))
	assert.False(t, IsAuthorized(RoleViewer, CapTaskRead, CapTaskUpdate), "partial match must deny")
	assert.False(t, IsAuthorized(RoleViewer, CapAuditRead))
	assert.True(t, IsAuthorized(RoleAdmin, CapTaskUpdate, CapTaskDelete, CapAuditRead))
	assert.True(t, IsAuthorized(RoleOwner, allCapabilities...))
}

func TestCatalogConcurrentReads(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, role := range Roles() {
				_ = IsAuthorized(role, CapTaskRead, CapTaskCreate)
			}
		}()
	}
	wg.Wait()
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleOwner, ParseRole("Owner"))
	assert.Equal(t, RoleViewer, ParseRole("Viewer"))
	for _, raw := range []string{"owner", "ADMIN", " Viewer "} {
		role := ParseRole(raw)
		assert.False(t, role.Valid(), raw)
		assert.False(t, IsAuthorized(role, CapTaskRead), raw)
		assert.Zero(t, CapabilitiesFor(role).Len(), raw)
	}
	assert.Equal(t, Role("Auditor"), ParseRole("Auditor"))
	assert.False(t, ParseRole("Auditor").Valid())
}
