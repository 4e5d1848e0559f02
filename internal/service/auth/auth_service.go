package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/Domenick1991/goaero/internal/pnr"
	"github.com/Domenick1991/goaero/internal/repository"
	"github.com/Domenick1991/goaero/internal/security"
)

type AuthUseCase interface {
	RegisterUser(ctx context.Context, input RegisterInput) (*domain.User, error)
	LoginUser(ctx context.Context, email, password string) (*Token, error)
	LoginAdmin(ctx context.Context, username, password string) (*Token, error)
	LoginOwner(ctx context.Context, companyCode, password string) (*Token, error)
	RegisterOwner(ctx context.Context, input RegisterOwnerInput) (*domain.FlightOwner, error)
	ChangePassword(ctx context.Context, session domain.Session, current, next string) error
	ResetPassword(ctx context.Context, session domain.Session, role domain.Role, id int64) (string, error)
	ParseToken(token string) (domain.Session, error)
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
}

// RegisterOwnerInput signs up an airline. CompanyCode becomes the prefix of
// its record locators.
type RegisterOwnerInput struct {
	CompanyName string
	CompanyCode string
	ContactInfo string
	Password    string
}

// ResetPasswordLength is the length of passwords issued by ResetPassword.
const ResetPasswordLength = 12

type Token struct {
	AccessToken string         `json:"access_token"`
	ExpiresAt   time.Time      `json:"expires_at"`
	Session     domain.Session `json:"-"`
}

type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// errBadCredentials never says whether the account or the password was wrong.
var errBadCredentials = fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)

type AuthService struct {
	accounts repository.AccountRepository
	secret   []byte
	ttl      time.Duration
	issuer   string
	now      func() time.Time
	log      *slog.Logger
}

type Option func(*AuthService)

func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

func WithIssuer(issuer string) Option {
	return func(s *AuthService) { s.issuer = issuer }
}

func NewAuthService(accounts repository.AccountRepository, secret string, ttl time.Duration, opts ...Option) *AuthService {
	s := &AuthService{
		accounts: accounts,
		secret:   []byte(secret),
		ttl:      ttl,
		issuer:   "goaero",
		now:      time.Now,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) RegisterUser(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.FirstName == "" || input.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", domain.ErrInvalidArgument)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrInvalidArgument)
	}
	if err := security.ValidatePassword(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	if _, err := s.accounts.GetUserByEmail(ctx, input.Email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	user := &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
	}
	if err := s.accounts.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*Token, error) {
	user, err := s.accounts.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err := s.check(err, password, hashOf(user)); err != nil {
		return nil, err
	}
	return s.issue(domain.UserSession(user.ID))
}

func (s *AuthService) LoginAdmin(ctx context.Context, username, password string) (*Token, error) {
	admin, err := s.accounts.GetAdminByUsername(ctx, strings.TrimSpace(username))
	var hash string
	if admin != nil {
		hash = admin.PasswordHash
	}
	if err := s.check(err, password, hash); err != nil {
		return nil, err
	}
	return s.issue(domain.AdminSession(admin.ID))
}

func (s *AuthService) LoginOwner(ctx context.Context, companyCode, password string) (*Token, error) {
	owner, err := s.accounts.GetOwnerByCode(ctx, companyCode)
	var hash string
	if owner != nil {
		hash = owner.PasswordHash
	}
	if err := s.check(err, password, hash); err != nil {
		return nil, err
	}
	return s.issue(domain.OwnerSession(owner.ID))
}

func (s *AuthService) RegisterOwner(ctx context.Context, input RegisterOwnerInput) (*domain.FlightOwner, error) {
	input.CompanyName = strings.TrimSpace(input.CompanyName)
	if input.CompanyName == "" {
		return nil, fmt.Errorf("%w: company name is required", domain.ErrInvalidArgument)
	}
	code, err := pnr.NormalizeAirlineCode(input.CompanyCode)
	if err != nil {
		return nil, err
	}
	if err := security.ValidatePassword(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	if _, err := s.accounts.GetOwnerByCode(ctx, code); err == nil {
		return nil, fmt.Errorf("%w: company code %s already registered", domain.ErrConflict, code)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	owner := &domain.FlightOwner{
		CompanyName:  input.CompanyName,
		CompanyCode:  code,
		ContactInfo:  strings.TrimSpace(input.ContactInfo),
		PasswordHash: hash,
	}
	if err := s.accounts.CreateOwner(ctx, owner); err != nil {
		return nil, err
	}
	s.log.Info("owner registered", "owner_id", owner.ID, "company_code", owner.CompanyCode)
	return owner, nil
}

// ChangePassword lets a user or an owner replace their own password after
// proving they know the current one.
func (s *AuthService) ChangePassword(ctx context.Context, session domain.Session, current, next string) error {
	var hash string
	switch session.Role {
	case domain.RoleUser:
		user, err := s.accounts.GetUser(ctx, session.PrincipalID)
		if err != nil {
			return err
		}
		hash = user.PasswordHash
	case domain.RoleOwner:
		owner, err := s.accounts.GetOwner(ctx, session.PrincipalID)
		if err != nil {
			return err
		}
		hash = owner.PasswordHash
	default:
		return fmt.Errorf("change password: %w", domain.ErrForbidden)
	}
	if !security.VerifyPassword(current, hash) {
		return errBadCredentials
	}
	if err := security.ValidatePassword(next); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	if err := s.store(ctx, session.Role, session.PrincipalID, next); err != nil {
		return err
	}
	s.log.Info("password changed", "role", session.Role, "id", session.PrincipalID)
	return nil
}

// ResetPassword lets an admin replace a user's or an owner's password with a
// generated one. The new password is returned once and never stored in clear.
func (s *AuthService) ResetPassword(ctx context.Context, session domain.Session, role domain.Role, id int64) (string, error) {
	if !session.IsAdmin() {
		return "", fmt.Errorf("reset password: %w", domain.ErrForbidden)
	}
	if role != domain.RoleUser && role != domain.RoleOwner {
		return "", fmt.Errorf("%w: cannot reset %q passwords", domain.ErrInvalidArgument, role)
	}
	password, err := security.GeneratePassword(ResetPasswordLength)
	if err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	if err := s.store(ctx, role, id, password); err != nil {
		return "", err
	}
	s.log.Info("password reset", "role", role, "id", id, "admin_id", session.PrincipalID)
	return password, nil
}

func (s *AuthService) store(ctx context.Context, role domain.Role, id int64, password string) error {
	hash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return s.accounts.UpdatePassword(ctx, role, id, hash)
}

// ParseToken validates a bearer token and returns the session it carries.
func (s *AuthService) ParseToken(token string) (domain.Session, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return domain.Session{}, fmt.Errorf("%w: bad subject", domain.ErrUnauthorized)
	}
	switch claims.Role {
	case domain.RoleUser, domain.RoleAdmin, domain.RoleOwner:
	default:
		return domain.Session{}, fmt.Errorf("%w: unknown role", domain.ErrUnauthorized)
	}
	return domain.Session{Role: claims.Role, PrincipalID: id}, nil
}

func (s *AuthService) issue(session domain.Session) (*Token, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := Claims{
		Role: session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   strconv.FormatInt(session.PrincipalID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Token{AccessToken: signed, ExpiresAt: expires, Session: session}, nil
}

// check turns a lookup result and a password into the login outcome.
func (s *AuthService) check(lookupErr error, password, hash string) error {
	if lookupErr != nil {
		if errors.Is(lookupErr, domain.ErrNotFound) {
			return errBadCredentials
		}
		return lookupErr
	}
	if !security.VerifyPassword(password, hash) {
		return errBadCredentials
	}
	return nil
}

func hashOf(u *domain.User) string {
	if u == nil {
		return ""
	}
	return u.PasswordHash
}

var _ AuthUseCase = (*AuthService)(nil)
