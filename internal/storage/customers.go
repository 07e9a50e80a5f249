package storage

import (
	"context"

	"agenda-service/internal/intake"
	"agenda-service/internal/model"
	"agenda-service/libs/db"
)

// CustomerRepository implements the phone-keyed identity resolver. The
// upsert is a single statement, so the customers table's unique phone
// constraint is the only concurrency control the flow needs.
type CustomerRepository struct {
	pool *db.Pool
}

func NewCustomerRepository(pool *db.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Upsert inserts a new customer or refreshes the existing row matching the
// normalized phone. Name is last-write-wins; cpf and email only overwrite
// when the submission actually carried them.
func (r *CustomerRepository) Upsert(ctx context.Context, c intake.CustomerUpsert) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO customers (phone, name, cpf, email)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
		ON CONFLICT (phone) DO UPDATE
		SET name = EXCLUDED.name,
			cpf = COALESCE(EXCLUDED.cpf, customers.cpf),
			email = COALESCE(EXCLUDED.email, customers.email),
			updated_at = now()
		RETURNING id
	`, c.Phone, c.Name, c.CPF, c.Email).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// List returns customers for the staff Clients page, optionally filtered by
// a name/phone search term.
func (r *CustomerRepository) List(ctx context.Context, query string, limit int) ([]model.Customer, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, phone, COALESCE(cpf, ''), COALESCE(email, ''), created_at, updated_at
		FROM customers
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR phone LIKE '%' || $1 || '%'
		ORDER BY updated_at DESC
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.CPF, &c.Email, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return customers, nil
}
