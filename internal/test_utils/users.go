package test_utils

import (
	"context"
	"testing"
	"time"

	"github.com/habitflow/scheduler/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// TestUser is the user all package tests act as.
var TestUser = user.User{
	Id:          1,
	Uid:         "11111111-1111-1111-1111-111111111111",
	Username:    "test_user",
	DisplayName: "Test User",
	Settings: user.Settings{
		Timezone:     "UTC",
		WeekStartsOn: time.Monday,
	},
}

func UserContext() context.Context {
	return user.WithUser(context.Background(), TestUser)
}

// InsertTestUser stores TestUser so that rows referencing users(id) can be created.
func InsertTestUser(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`INSERT INTO users (id, uid, username, display_name, timezone, week_first_day) VALUES ($1, $2, $3, $4, $5, $6)`,
		TestUser.Id, TestUser.Uid, TestUser.Username, TestUser.DisplayName, TestUser.Settings.Timezone,
		int(TestUser.Settings.WeekStartsOn))
	require.NoError(t, err)
}
