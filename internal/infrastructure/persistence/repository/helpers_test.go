package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voldhaul/load-invoicing/internal/infrastructure/persistence/sqlite"
	"github.com/voldhaul/load-invoicing/migrations"
	"github.com/voldhaul/load-invoicing/pkg/database"
	"go.uber.org/zap"
)

type fixtureLoad struct {
	id         int64
	clientID   int64
	clientName string
	delivered  interface{} // string or nil
	job        string
	tons       float64
	miles      float64
	pay        float64
	first      string
	last       string
}

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	conn, err := database.New(database.Config{Path: database.MemoryPath}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, database.NewMigrator(conn, zap.NewNop()).RunMigrations(migrations.FS))
	return sqlite.NewDB(conn.DB, zap.NewNop())
}

func insertLoads(t *testing.T, db *sql.DB, loads ...fixtureLoad) {
	t.Helper()
	for _, l := range loads {
		_, err := db.Exec(`
			INSERT INTO fatloads (id_load, client_id, client_name, delivery_time, pl_job,
				load_number, ticket_number, tons, miles, client_pay, first_name, last_name)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.id, l.clientID, l.clientName, l.delivered, l.job,
			"L-1", "BOL-1", l.tons, l.miles, l.pay, l.first, l.last)
		require.NoError(t, err)
	}
}
