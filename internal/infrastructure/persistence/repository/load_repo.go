package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/voldhaul/load-invoicing/internal/application/port"
	"github.com/voldhaul/load-invoicing/internal/domain/entity"
	"github.com/voldhaul/load-invoicing/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

const loadColumns = `
	id_load, client_id, client_name, delivery_time, pl_job, load_number,
	ticket_number, tons, miles, client_pay, first_name, last_name`

// LoadRepository implements port.LoadRepository over the fatloads table
type LoadRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLoadRepository creates a new load repository
func NewLoadRepository(db *sql.DB, logger *zap.Logger) port.LoadRepository {
	return &LoadRepository{
		db:     db,
		logger: logger,
	}
}

// ListClients returns distinct named clients ordered by name
func (r *LoadRepository) ListClients(ctx context.Context) ([]*entity.Client, error) {
	query := `
		SELECT client_id, client_name
		FROM fatloads
		WHERE client_id IS NOT NULL AND client_name IS NOT NULL
		GROUP BY client_id, client_name
		ORDER BY client_name, client_id
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list clients", zap.Error(err))
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]*entity.Client, 0)
	for rows.Next() {
		var c entity.Client
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, &c)
	}
	return clients, rows.Err()
}

// FindByClientAndRange returns delivered loads of a client in [from, until).
// delivery_time goes through datetime(), so any DATETIME spelling is matched
// on its UTC instant, the same instant scanLoads returns.
func (r *LoadRepository) FindByClientAndRange(ctx context.Context, clientID int64, from, until time.Time) ([]*entity.LoadRecord, error) {
	query := `SELECT` + loadColumns + `
		FROM fatloads
		WHERE client_id = ?
			AND datetime(delivery_time) >= ?
			AND datetime(delivery_time) < ?
		ORDER BY datetime(delivery_time), id_load
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query,
		clientID, formatBound(from), formatBound(until))
	if err != nil {
		r.logger.Error("Failed to query loads",
			zap.Int64("client_id", clientID),
			zap.Time("from", from),
			zap.Time("until", until),
			zap.Error(err))
		return nil, fmt.Errorf("failed to query loads: %w", err)
	}
	defer rows.Close()

	return scanLoads(rows)
}

// DistinctIDsByClientAndRange returns the distinct load ids for the same filter
func (r *LoadRepository) DistinctIDsByClientAndRange(ctx context.Context, clientID int64, from, until time.Time) ([]int64, error) {
	query := `
		SELECT DISTINCT id_load
		FROM fatloads
		WHERE client_id = ?
			AND datetime(delivery_time) >= ?
			AND datetime(delivery_time) < ?
		ORDER BY id_load
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query,
		clientID, formatBound(from), formatBound(until))
	if err != nil {
		r.logger.Error("Failed to query load ids", zap.Int64("client_id", clientID), zap.Error(err))
		return nil, fmt.Errorf("failed to query load ids: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// FindByIDs returns the delivered loads whose id is in ids. A load id that
// appears more than once in the table yields every copy.
func (r *LoadRepository) FindByIDs(ctx context.Context, ids []int64) ([]*entity.LoadRecord, error) {
	if len(ids) == 0 {
		return []*entity.LoadRecord{}, nil
	}

	// One JSON parameter keeps the statement clear of SQLite's variable limit
	idList, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to encode load ids: %w", err)
	}

	query := `SELECT` + loadColumns + `
		FROM fatloads
		WHERE id_load IN (SELECT value FROM json_each(?))
			AND datetime(delivery_time) IS NOT NULL
		ORDER BY datetime(delivery_time), id_load
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, string(idList))
	if err != nil {
		r.logger.Error("Failed to query loads by id", zap.Int("count", len(ids)), zap.Error(err))
		return nil, fmt.Errorf("failed to query loads by id: %w", err)
	}
	defer rows.Close()

	return scanLoads(rows)
}

// ClientName returns a current name for the client, "" when none is recorded
func (r *LoadRepository) ClientName(ctx context.Context, clientID int64) (string, error) {
	query := `
		SELECT client_name
		FROM fatloads
		WHERE client_id = ? AND client_name IS NOT NULL
		ORDER BY id_load
		LIMIT 1
	`

	var name string
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, clientID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		r.logger.Error("Failed to get client name", zap.Int64("client_id", clientID), zap.Error(err))
		return "", fmt.Errorf("failed to get client name: %w", err)
	}
	return name, nil
}

// formatBound renders a filter bound in datetime()'s UTC text form
func formatBound(t time.Time) string {
	return t.UTC().Format(entity.DateTimeLayout)
}

func scanLoads(rows *sql.Rows) ([]*entity.LoadRecord, error) {
	loads := make([]*entity.LoadRecord, 0)
	for rows.Next() {
		var (
			load         entity.LoadRecord
			clientID     sql.NullInt64
			clientName   sql.NullString
			deliveryTime sql.NullTime
			job          sql.NullString
			loadNumber   sql.NullString
			ticketNumber sql.NullString
			tons         sql.NullFloat64
			miles        sql.NullFloat64
			clientPay    sql.NullFloat64
			firstName    sql.NullString
			lastName     sql.NullString
		)

		if err := rows.Scan(
			&load.ID,
			&clientID,
			&clientName,
			&deliveryTime,
			&job,
			&loadNumber,
			&ticketNumber,
			&tons,
			&miles,
			&clientPay,
			&firstName,
			&lastName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan load: %w", err)
		}

		load.ClientID = clientID.Int64
		load.ClientName = clientName.String
		if deliveryTime.Valid {
			t := deliveryTime.Time.UTC()
			load.DeliveryTime = &t
		}
		load.Job = job.String
		load.LoadNumber = loadNumber.String
		load.TicketNumber = ticketNumber.String
		load.Tons = tons.Float64
		load.Miles = miles.Float64
		load.ClientPay = clientPay.Float64
		load.FirstName = firstName.String
		load.LastName = lastName.String

		loads = append(loads, &load)
	}
	return loads, rows.Err()
}

func scanIDs(rows *sql.Rows) ([]int64, error) {
	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan load id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ port.LoadRepository = (*LoadRepository)(nil)
