package utils

import (
	"context"
	"testing"

	"github.com/babushkian/OTBot/db"
	"github.com/babushkian/OTBot/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy(t *testing.T) {
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()
	ctx := context.Background()

	users := db.NewUserRepository(conn)
	require.NoError(t, users.Upsert(ctx, model.User{ID: "db-admin", Role: model.RoleAdmin}))
	require.NoError(t, users.Upsert(ctx, model.User{ID: "db-reporter", Role: model.RoleReporter}))

	p := NewPolicy([]string{"cfg-admin"}, []string{"cfg-reporter"}, users)

	assert.Equal(t, model.RoleAdmin, p.Role(ctx, "cfg-admin"))
	assert.Equal(t, model.RoleReporter, p.Role(ctx, "cfg-reporter"))
	assert.Equal(t, model.RoleAdmin, p.Role(ctx, "db-admin"))
	assert.Equal(t, model.RoleUser, p.Role(ctx, "stranger"))

	assert.True(t, p.CanReport(ctx, "cfg-admin"))
	assert.True(t, p.CanReport(ctx, "db-reporter"))
	assert.False(t, p.CanReport(ctx, "stranger"))

	assert.True(t, p.CanReview(ctx, "db-admin"))
	assert.False(t, p.CanReview(ctx, "cfg-reporter"))

	reviewers, err := p.Reviewers(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"cfg-admin", "db-admin"}, reviewers)
}

func TestPolicyWithoutReporters(t *testing.T) {
	p := NewPolicy(nil, nil, nil)
	assert.True(t, p.CanReport(context.Background(), "anyone"))
	assert.False(t, p.CanReview(context.Background(), "anyone"))
}
