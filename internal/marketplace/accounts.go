package marketplace

import (
	"context"
	"errors"
	"strings"
	"time"

	"medilink/internal/apperrors"
	"medilink/internal/auth"
	"medilink/internal/geo"
	"medilink/internal/logger"
	"medilink/models"
	"medilink/repository"
)

// Profile is the caller's account as returned by login and /auth/me.
type Profile struct {
	Role     models.PrincipalType `json:"role"`
	User     *models.User         `json:"user,omitempty"`
	Pharmacy *models.Pharmacy     `json:"pharmacy,omitempty"`
}

// Session is a freshly issued token plus the account it belongs to.
type Session struct {
	Token string `json:"token"`
	Profile
}

type RegisterUserInput struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
}

type RegisterPharmacyInput struct {
	PharmacyName string   `json:"pharmacy_name"`
	OwnerName    string   `json:"owner_name"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	Phone        string   `json:"phone"`
	City         string   `json:"city"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Address      string   `json:"address"`
	OpeningHours string   `json:"opening_hours"`
	LicenseNo    string   `json:"license_no"`
}

// AccountService registers and authenticates customers and pharmacies.
type AccountService struct {
	users      repository.UserRepositoryI
	pharmacies repository.PharmacyRepositoryI
	secret     string
	ttl        time.Duration
	log        *logger.Logger
}

func NewAccountService(users repository.UserRepositoryI, pharmacies repository.PharmacyRepositoryI, secret string, ttl time.Duration, log *logger.Logger) *AccountService {
	return &AccountService{users: users, pharmacies: pharmacies, secret: secret, ttl: ttl, log: log}
}

func (s *AccountService) RegisterUser(ctx context.Context, in RegisterUserInput) (*Session, error) {
	if strings.TrimSpace(in.FullName) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, apperrors.ErrAccountFieldsRequired
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Create(ctx, &models.User{
		FullName: strings.TrimSpace(in.FullName), Email: in.Email, PasswordHash: hash,
		Phone: in.Phone, Address: in.Address, City: in.City,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, apperrors.Internal(err)
	}
	s.log.LogSecurity("register", "customer "+u.Email)
	return s.session(auth.Principal{ID: u.ID, Kind: models.PrincipalUser}, Profile{Role: models.PrincipalUser, User: u})
}

func (s *AccountService) RegisterPharmacy(ctx context.Context, in RegisterPharmacyInput) (*Session, error) {
	if strings.TrimSpace(in.PharmacyName) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, apperrors.ErrAccountFieldsRequired
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, apperrors.ErrPharmacyLocation
	}
	if in.Latitude != nil && !(geo.Coordinate{Lat: *in.Latitude, Lng: *in.Longitude}).Valid() {
		return nil, apperrors.ErrPharmacyLocation
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	p, err := s.pharmacies.Create(ctx, &models.Pharmacy{
		Name: strings.TrimSpace(in.PharmacyName), OwnerName: in.OwnerName, Email: in.Email, PasswordHash: hash,
		Phone: in.Phone, City: in.City, Latitude: in.Latitude, Longitude: in.Longitude,
		Address: in.Address, OpeningHours: in.OpeningHours, LicenseNo: in.LicenseNo,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, apperrors.Internal(err)
	}
	s.log.LogSecurity("register", "pharmacy "+p.Email)
	return s.session(auth.Principal{ID: p.ID, Kind: models.PrincipalPharmacy}, Profile{Role: models.PrincipalPharmacy, Pharmacy: p})
}

func (s *AccountService) LoginUser(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, password) {
		s.log.LogSecurity("login_failed", "customer "+email)
		return nil, apperrors.ErrInvalidCredentials
	}
	if u.Status != models.AccountActive {
		return nil, apperrors.ErrAccountInactive
	}
	return s.session(auth.Principal{ID: u.ID, Kind: models.PrincipalUser}, Profile{Role: models.PrincipalUser, User: u})
}

func (s *AccountService) LoginPharmacy(ctx context.Context, email, password string) (*Session, error) {
	p, err := s.pharmacies.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if p == nil || !auth.CheckPassword(p.PasswordHash, password) {
		s.log.LogSecurity("login_failed", "pharmacy "+email)
		return nil, apperrors.ErrInvalidCredentials
	}
	if p.Status != models.AccountActive {
		return nil, apperrors.ErrAccountInactive
	}
	return s.session(auth.Principal{ID: p.ID, Kind: models.PrincipalPharmacy}, Profile{Role: models.PrincipalPharmacy, Pharmacy: p})
}

// Me loads the profile behind an authenticated principal.
func (s *AccountService) Me(ctx context.Context, p *auth.Principal) (*Profile, error) {
	switch {
	case p.IsCustomer():
		u, err := s.users.GetByID(ctx, p.ID)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if u == nil {
			return nil, apperrors.ErrUserNotFound
		}
		return &Profile{Role: models.PrincipalUser, User: u}, nil
	case p.IsPharmacy():
		ph, err := s.pharmacies.GetByID(ctx, p.ID)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if ph == nil {
			return nil, apperrors.ErrPharmacyNotFound
		}
		return &Profile{Role: models.PrincipalPharmacy, Pharmacy: ph}, nil
	}
	return nil, apperrors.ErrInvalidToken
}

// SetPharmacyLocation completes location setup so the pharmacy enters matching.
func (s *AccountService) SetPharmacyLocation(ctx context.Context, pharmacyID int64, at geo.Coordinate) (*models.Pharmacy, error) {
	if !at.Valid() {
		return nil, apperrors.ErrPharmacyLocation
	}
	if err := s.pharmacies.UpdateLocation(ctx, pharmacyID, at); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrPharmacyNotFound
		}
		return nil, apperrors.Internal(err)
	}
	p, err := s.pharmacies.GetByID(ctx, pharmacyID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if p == nil {
		return nil, apperrors.ErrPharmacyNotFound
	}
	return p, nil
}

func (s *AccountService) session(p auth.Principal, profile Profile) (*Session, error) {
	token, err := auth.IssueToken(s.secret, p, s.ttl)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &Session{Token: token, Profile: profile}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return "", apperrors.ErrPasswordTooShort
		}
		return "", apperrors.Internal(err)
	}
	return hash, nil
}
