package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGAirportRepository struct {
	db *pgxpool.Pool
}

func NewAirportRepository(db *pgxpool.Pool) AirportRepository {
	return &PGAirportRepository{db: db}
}

func (r *PGAirportRepository) List(ctx context.Context) ([]domain.Airport, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, name, city, country FROM airports ORDER BY code`)
	if err != nil {
		return nil, mapError("list airports", err)
	}
	defer rows.Close()

	airports := make([]domain.Airport, 0)
	for rows.Next() {
		var a domain.Airport
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.City, &a.Country); err != nil {
			return nil, mapError("list airports", err)
		}
		airports = append(airports, a)
	}
	return airports, mapError("list airports", rows.Err())
}

func (r *PGAirportRepository) GetByID(ctx context.Context, id int64) (*domain.Airport, error) {
	var a domain.Airport
	err := r.db.QueryRow(ctx, `SELECT id, code, name, city, country FROM airports WHERE id = $1`, id).
		Scan(&a.ID, &a.Code, &a.Name, &a.City, &a.Country)
	if err != nil {
		return nil, mapError(fmt.Sprintf("get airport %d", id), err)
	}
	return &a, nil
}

var _ AirportRepository = (*PGAirportRepository)(nil)
