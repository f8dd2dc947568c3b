//go:build integration

package itests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"CursorAPI/internal/db"
)

// Подсчет пользователей с фильтром; курсор не влияет на итог
func Test_Count_Users(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var want uint64
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE phone IS NOT NULL AND id >= $1`, 2).Scan(&want); err != nil {
		t.Fatalf("failed to get expected count from DB: %v", err)
	}

	status, env := getEnvelope(t, "/api/users/count?id[gte]=2&phone[like]=%2B&id[cursor]=5")
	if status != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %+v", status, env.Errors)
	}
	if env.Meta.Count != want {
		t.Fatalf("wrong count: got %d, want %d", env.Meta.Count, want)
	}
}
