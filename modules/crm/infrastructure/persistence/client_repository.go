package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/atlashealth/atlas/modules/crm/domain/entities/client"
	"github.com/atlashealth/atlas/modules/crm/infrastructure/persistence/models"
	"github.com/atlashealth/atlas/pkg/composables"
	"github.com/atlashealth/atlas/pkg/repo"
)

const (
	clientFindQuery = `
        SELECT
            c.id,
            c.first_name,
            c.last_name,
            c.email,
            c.phone,
            c.date_of_birth,
            c.address_line,
            c.city,
            c.state_code,
            c.postal_code,
            c.created_at,
            c.updated_at
        FROM clients c`

	clientCountQuery  = `SELECT COUNT(c.id) FROM clients c`
	clientDeleteQuery = `DELETE FROM clients WHERE id = $1`
)

var clientInsertFields = []string{
	"first_name", "last_name", "email", "phone", "date_of_birth",
	"address_line", "city", "state_code", "postal_code",
}

type PgClientRepository struct{}

func NewClientRepository() client.Repository {
	return &PgClientRepository{}
}

func (g *PgClientRepository) buildFilters(params *client.FindParams) ([]string, []interface{}) {
	var where []string
	var args []interface{}
	if params.Search != "" {
		idx := len(args) + 1
		where = append(where, fmt.Sprintf(
			"(c.first_name ILIKE $%d OR c.last_name ILIKE $%d OR c.email ILIKE $%d)",
			idx, idx, idx,
		))
		args = append(args, "%"+params.Search+"%")
	}
	return where, args
}

func (g *PgClientRepository) GetPaginated(ctx context.Context, params *client.FindParams) ([]*client.Client, error) {
	where, args := g.buildFilters(params)
	query := repo.Join(
		clientFindQuery,
		repo.JoinWhere(where...),
		"ORDER BY c.last_name, c.first_name, c.id",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	out, err := g.queryClients(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get paginated clients")
	}
	return out, nil
}

func (g *PgClientRepository) Count(ctx context.Context, params *client.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := g.buildFilters(params)
	var count int64
	if err := tx.QueryRow(ctx, repo.Join(clientCountQuery, repo.JoinWhere(where...)), args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count clients")
	}
	return count, nil
}

func (g *PgClientRepository) GetByID(ctx context.Context, id uint) (*client.Client, error) {
	found, err := g.queryClients(ctx, clientFindQuery+" WHERE c.id = $1", int64(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get client by id")
	}
	if len(found) == 0 {
		return nil, client.ErrNotFound
	}
	return found[0], nil
}

func (g *PgClientRepository) Create(ctx context.Context, c *client.Client) (uint, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var id int64
	err = tx.QueryRow(
		ctx,
		repo.Insert("clients", clientInsertFields, "id"),
		c.FirstName, c.LastName, nullStr(c.Email), nullStr(c.Phone),
		c.DateOfBirth, nullStr(c.AddressLine), nullStr(c.City),
		nullStr(c.StateCode), nullStr(c.PostalCode),
	).Scan(&id)
	if isUniqueViolation(err) {
		return 0, client.ErrEmailExists
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to create client")
	}
	return uint(id), nil
}

func (g *PgClientRepository) Update(ctx context.Context, c *client.Client) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	fields := append(append([]string{}, clientInsertFields...), "updated_at")
	_, err = tx.Exec(
		ctx,
		repo.Update("clients", fields, fmt.Sprintf("id = $%d", len(fields)+1)),
		c.FirstName, c.LastName, nullStr(c.Email), nullStr(c.Phone),
		c.DateOfBirth, nullStr(c.AddressLine), nullStr(c.City),
		nullStr(c.StateCode), nullStr(c.PostalCode), time.Now(),
		int64(c.ID),
	)
	if isUniqueViolation(err) {
		return client.ErrEmailExists
	}
	if err != nil {
		return errors.Wrap(err, "failed to update client")
	}
	return nil
}

func (g *PgClientRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, clientDeleteQuery, int64(id)); err != nil {
		return errors.Wrap(err, "failed to delete client")
	}
	return nil
}

func (g *PgClientRepository) queryClients(ctx context.Context, query string, args ...interface{}) ([]*client.Client, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*client.Client
	for rows.Next() {
		var m models.Client
		if err := rows.Scan(
			&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Phone,
			&m.DateOfBirth, &m.AddressLine, &m.City, &m.StateCode,
			&m.PostalCode, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, ToDomainClient(&m))
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
