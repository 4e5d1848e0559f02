package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGAccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) AccountRepository {
	return &PGAccountRepository{db: db}
}

const userColumns = `id, first_name, last_name, email, phone, password_hash, created_at`

func (r *PGAccountRepository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, mapError(fmt.Sprintf("get user %d", id), err)
	}
	return &u, nil
}

func (r *PGAccountRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email)).
		Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, mapError("get user by email", err)
	}
	return &u, nil
}

func (r *PGAccountRepository) CreateUser(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRow(ctx, `INSERT INTO users (first_name, last_name, email, phone, password_hash)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		u.FirstName, u.LastName, u.Email, u.Phone, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	return mapError("create user", err)
}

func (r *PGAccountRepository) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, mapError("count users", err)
}

func (r *PGAccountRepository) GetAdminByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	var a domain.Admin
	err := r.db.QueryRow(ctx, `SELECT id, username, password_hash, created_at FROM admins WHERE username = $1`, username).
		Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return nil, mapError("get admin", err)
	}
	return &a, nil
}

const ownerColumns = `id, company_name, company_code, contact_info, password_hash, created_at`

func (r *PGAccountRepository) GetOwner(ctx context.Context, id int64) (*domain.FlightOwner, error) {
	var o domain.FlightOwner
	err := r.db.QueryRow(ctx, `SELECT `+ownerColumns+` FROM flight_owners WHERE id = $1`, id).
		Scan(&o.ID, &o.CompanyName, &o.CompanyCode, &o.ContactInfo, &o.PasswordHash, &o.CreatedAt)
	if err != nil {
		return nil, mapError(fmt.Sprintf("get owner %d", id), err)
	}
	return &o, nil
}

func (r *PGAccountRepository) GetOwnerByCode(ctx context.Context, code string) (*domain.FlightOwner, error) {
	var o domain.FlightOwner
	err := r.db.QueryRow(ctx, `SELECT `+ownerColumns+` FROM flight_owners WHERE company_code = upper($1)`, strings.TrimSpace(code)).
		Scan(&o.ID, &o.CompanyName, &o.CompanyCode, &o.ContactInfo, &o.PasswordHash, &o.CreatedAt)
	if err != nil {
		return nil, mapError("get owner by code", err)
	}
	return &o, nil
}

func (r *PGAccountRepository) CreateOwner(ctx context.Context, o *domain.FlightOwner) error {
	err := r.db.QueryRow(ctx, `INSERT INTO flight_owners (company_name, company_code, contact_info, password_hash)
		VALUES ($1, upper($2), $3, $4) RETURNING id, company_code, created_at`,
		o.CompanyName, o.CompanyCode, o.ContactInfo, o.PasswordHash).Scan(&o.ID, &o.CompanyCode, &o.CreatedAt)
	return mapError("create owner", err)
}

func (r *PGAccountRepository) UpdatePassword(ctx context.Context, role domain.Role, id int64, hash string) error {
	var table string
	switch role {
	case domain.RoleUser:
		table = "users"
	case domain.RoleOwner:
		table = "flight_owners"
	default:
		return fmt.Errorf("update password: %w: role %q", domain.ErrInvalidArgument, role)
	}
	op := fmt.Sprintf("update %s %d password", role, id)
	tag, err := r.db.Exec(ctx, `UPDATE `+table+` SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return mapError(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

func (r *PGAccountRepository) CountOwners(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM flight_owners`).Scan(&n)
	return n, mapError("count owners", err)
}

var _ AccountRepository = (*PGAccountRepository)(nil)
