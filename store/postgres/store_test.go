package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/trackline/verdict/id"
)

// setupDB starts a disposable Postgres container and applies the full schema.
// Tests are skipped when Docker is not available.
func setupDB(t *testing.T) *pgx.Conn {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("verdict"),
		tcpostgres.WithUsername("verdict"),
		tcpostgres.WithPassword("verdict"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("could not start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = ctr.Terminate(context.Background())
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = conn.Close(context.Background())
	})

	for _, ddl := range schemaSQL {
		if _, err := conn.Exec(ctx, ddl); err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}

func TestSchemaApplies(t *testing.T) {
	conn := setupDB(t)
	ctx := context.Background()

	var count int
	err := conn.QueryRow(ctx,
		`SELECT count(*) FROM information_schema.tables
		 WHERE table_name LIKE 'verdict_%'`).Scan(&count)
	if err != nil {
		t.Fatal(err)
	}
	if count != 8 {
		t.Fatalf("expected 8 tables, got %d", count)
	}
}

func TestOneActiveGrantPerScope(t *testing.T) {
	conn := setupDB(t)
	ctx := context.Background()

	userID := id.NewUserID().String()
	insert := `INSERT INTO verdict_grants (id, user_id, entity, resource_id, access_type, is_active)
	           VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := conn.Exec(ctx, insert,
		id.NewGrantID().String(), userID, "incident_report", "rep-1", "read_only", true)
	if err != nil {
		t.Fatal(err)
	}

	// A second active grant for the same scope violates the partial index.
	_, err = conn.Exec(ctx, insert,
		id.NewGrantID().String(), userID, "incident_report", "rep-1", "full", true)
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		t.Fatalf("expected unique violation, got %v", err)
	}

	// Inactive rows for the same scope are fine.
	_, err = conn.Exec(ctx, insert,
		id.NewGrantID().String(), userID, "incident_report", "rep-1", "full", false)
	if err != nil {
		t.Fatalf("inactive duplicate should be allowed: %v", err)
	}

	// A different scope is fine too.
	_, err = conn.Exec(ctx, insert,
		id.NewGrantID().String(), userID, "incident_report", "rep-2", "full", true)
	if err != nil {
		t.Fatalf("different scope should be allowed: %v", err)
	}
}

func TestUsernameUnique(t *testing.T) {
	conn := setupDB(t)
	ctx := context.Background()

	insert := `INSERT INTO verdict_users (id, username) VALUES ($1, $2)`
	if _, err := conn.Exec(ctx, insert, id.NewUserID().String(), "jdoe"); err != nil {
		t.Fatal(err)
	}

	_, err := conn.Exec(ctx, insert, id.NewUserID().String(), "jdoe")
	if !isUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestExpiredGrantCleanupQuery(t *testing.T) {
	conn := setupDB(t)
	ctx := context.Background()

	userID := id.NewUserID().String()
	insert := `INSERT INTO verdict_grants (id, user_id, entity, resource_id, access_type, is_active, expires_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7)`

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	if _, err := conn.Exec(ctx, insert,
		id.NewGrantID().String(), userID, "incident_report", "a", "full", true, past); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Exec(ctx, insert,
		id.NewGrantID().String(), userID, "incident_report", "b", "full", true, future); err != nil {
		t.Fatal(err)
	}

	tag, err := conn.Exec(ctx,
		`DELETE FROM verdict_grants WHERE expires_at IS NOT NULL AND expires_at < $1`, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if tag.RowsAffected() != 1 {
		t.Fatalf("expected 1 expired grant deleted, got %d", tag.RowsAffected())
	}
}
