package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raj-Randive/soar-school-management-system/internal/auth"
	"github.com/Raj-Randive/soar-school-management-system/internal/config"
	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
)

func TestWriteToken_RoundTrips(t *testing.T) {
	var out bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&out)

	cfg := config.AuthConfig{JWTSecret: "cli-secret", TokenTTLHours: 2}
	require.NoError(t, writeToken(c, cfg, "u-1", domain.RoleSchoolAdmin))

	var got issuedToken
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, "schooladmin", got.Role)

	tm, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL())
	require.NoError(t, err)
	claims, err := tm.Verify(got.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.ID)
	assert.Equal(t, domain.RoleSchoolAdmin, claims.Role)
}

func TestTokenCmd_RejectsUnknownRole(t *testing.T) {
	tokenRole = "teacher"
	tokenUserID = "u-1"
	t.Cleanup(func() { tokenRole, tokenUserID = string(domain.RoleSuperAdmin), "" })

	err := tokenCmd.RunE(tokenCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid role")
}

func TestMigrateCmd_DryRunOrdersTables(t *testing.T) {
	var out bytes.Buffer
	migrateCmd.SetOut(&out)
	dryRun = true
	t.Cleanup(func() { dryRun = false })

	require.NoError(t, migrateCmd.RunE(migrateCmd, nil))

	text := out.String()
	schools := strings.Index(text, "-- schools")
	students := strings.Index(text, "-- students")
	require.GreaterOrEqual(t, schools, 0)
	require.GreaterOrEqual(t, students, 0)
	assert.Less(t, schools, students)
	assert.Contains(t, text, "CREATE TABLE IF NOT EXISTS classrooms")
}
