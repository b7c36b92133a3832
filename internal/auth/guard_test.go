package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/online-storefront/internal/model"
)

func TestAuthorizeOwnership(t *testing.T) {
	cases := []struct {
		name    string
		p       Principal
		ownerID uint64
		allowed bool
	}{
		{"owner may act on own resource", Principal{ID: 1, Role: model.RoleCustomer}, 1, true},
		{"customer denied on foreign resource", Principal{ID: 1, Role: model.RoleCustomer}, 2, false},
		{"admin bypasses ownership", Principal{ID: 1, Role: model.RoleAdmin}, 2, true},
		{"superadmin bypasses ownership", Principal{ID: 1, Role: model.RoleSuperadmin}, 2, true},
		{"unknown role denied on foreign resource", Principal{ID: 1, Role: "OWNER"}, 2, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.p, tc.ownerID)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestAuthorizeRoleRanking(t *testing.T) {
	cases := []struct {
		role     string
		required string
		allowed  bool
	}{
		{model.RoleCustomer, model.RoleCustomer, true},
		{model.RoleCustomer, model.RoleAdmin, false},
		{model.RoleCustomer, model.RoleSuperadmin, false},
		{model.RoleAdmin, model.RoleCustomer, true},
		{model.RoleAdmin, model.RoleAdmin, true},
		{model.RoleAdmin, model.RoleSuperadmin, false},
		{model.RoleSuperadmin, model.RoleAdmin, true},
		{model.RoleSuperadmin, model.RoleSuperadmin, true},
		{"", model.RoleCustomer, false},
	}
	for _, tc := range cases {
		err := AuthorizeRole(Principal{ID: 9, Role: tc.role}, tc.required)
		if tc.allowed {
			assert.NoError(t, err, "%s vs %s", tc.role, tc.required)
		} else {
			assert.ErrorIs(t, err, ErrForbidden, "%s vs %s", tc.role, tc.required)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	assert.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}
