package jwt

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret-key-for-jwt", time.Hour)
	employeeID := "emp-1"

	token, expiresAt, err := svc.GenerateAccessToken(user.Claims{UserID: "user-1", EmployeeID: &employeeID, Role: user.RoleManager})
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)

	role, ok := decoded.Get("role")
	require.True(t, ok)
	assert.Equal(t, "manager", role)
	emp, ok := decoded.Get("employee_id")
	require.True(t, ok)
	assert.Equal(t, "emp-1", emp)
	typ, _ := decoded.Get("type")
	assert.Equal(t, "access", typ)
}

func TestJWTService_GenerateAccessToken_InvalidRole(t *testing.T) {
	svc := NewJWTService("test-secret-key-for-jwt", time.Hour)

	_, _, err := svc.GenerateAccessToken(user.Claims{UserID: "user-1", Role: "root"})

	assert.ErrorIs(t, err, user.ErrInvalidRole)
}
