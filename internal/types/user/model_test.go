package user

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasRole(t *testing.T) {
	u := &User{Roles: []string{RoleUser, RoleAdmin}}
	assert.True(t, u.HasRole(RoleAdmin))
	assert.False(t, (&User{Roles: []string{RoleUser}}).HasRole(RoleAdmin))
}

func TestRolesRoundTrip(t *testing.T) {
	assert.Equal(t, "user,admin", JoinRoles([]string{RoleUser, RoleAdmin}))
	assert.Equal(t, []string{RoleUser, RoleAdmin}, SplitRoles("user,admin"))
	// пустая колонка трактуется как обычный пользователь
	assert.Equal(t, []string{RoleUser}, SplitRoles(""))
}

func TestPasswordHashNotSerialized(t *testing.T) {
	u := User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com", PasswordHash: "secret"}
	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
}
