package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"maturity-assessment-backend/internal/model"
	"maturity-assessment-backend/internal/repository"
	"maturity-assessment-backend/utilities"
)

const (
	accessCodeLength   = 8
	accessCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	minPasswordLength  = 8
	maxPasswordLength  = 72 // bcrypt input limit
	maxCodeAttempts    = 10
)

// RegisterInput is the organization registration payload.
type RegisterInput struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Sector     string `json:"sector"`
	Size       string `json:"size"`
	Email      string `json:"email"`
	FiscalCode string `json:"fiscal_code"`
	Phone      string `json:"phone"`
	AdminName  string `json:"admin_name"`
	Password   string `json:"password"`
}

// Token is returned by register and login.
type Token struct {
	AccessToken  string              `json:"access_token"`
	TokenType    string              `json:"token_type"`
	Organization *model.Organization `json:"organization"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*Token, error)
	Login(ctx context.Context, accessCode, password string) (*Token, error)
	CurrentOrganization(ctx context.Context, orgID uint) (*model.Organization, error)
	ResetPassword(ctx context.Context, orgID uint, newPassword string) (*model.Organization, error)
	ResetPasswordByAccessCode(ctx context.Context, accessCode, newPassword string) (*model.Organization, error)
}

type authService struct {
	orgRepo    repository.OrganizationRepository
	jwtManager *utilities.JWTManager
	cost       int
}

func NewAuthService(orgRepo repository.OrganizationRepository, jwtManager *utilities.JWTManager) AuthService {
	return &authService{orgRepo: orgRepo, jwtManager: jwtManager, cost: bcrypt.DefaultCost}
}

// NormalizeOrgType accepts the canonical organization types and their
// short aliases.
func NormalizeOrgType(t string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case model.OrgTypeCompany, "azienda":
		return model.OrgTypeCompany, true
	case model.OrgTypePublicAdmin, "pa", "public-admin":
		return model.OrgTypePublicAdmin, true
	}
	return "", false
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, maxPasswordLength)
	}
	return nil
}

// GenerateAccessCode returns a random code of upper-case letters and digits.
func GenerateAccessCode() (string, error) {
	max := big.NewInt(int64(len(accessCodeAlphabet)))
	var b strings.Builder
	for i := 0; i < accessCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(accessCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func (s *authService) uniqueAccessCode(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := GenerateAccessCode()
		if err != nil {
			return "", err
		}
		exists, err := s.orgRepo.AccessCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique access code")
}

func (s *authService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hashed), nil
}

func (s *authService) issue(org *model.Organization) (*Token, error) {
	token, err := s.jwtManager.Generate(org.ID)
	if err != nil {
		return nil, err
	}
	return &Token{AccessToken: token, TokenType: "bearer", Organization: org}, nil
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*Token, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	orgType, ok := NormalizeOrgType(in.Type)
	if !ok {
		return nil, fmt.Errorf("%w: type must be %s or %s", ErrInvalidInput, model.OrgTypeCompany, model.OrgTypePublicAdmin)
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	code, err := s.uniqueAccessCode(ctx)
	if err != nil {
		return nil, err
	}
	hashed, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	org := &model.Organization{
		Name:           name,
		Type:           orgType,
		Sector:         strings.TrimSpace(in.Sector),
		Size:           strings.TrimSpace(in.Size),
		Email:          strings.TrimSpace(in.Email),
		FiscalCode:     strings.TrimSpace(in.FiscalCode),
		Phone:          strings.TrimSpace(in.Phone),
		AdminName:      strings.TrimSpace(in.AdminName),
		AccessCode:     code,
		HashedPassword: hashed,
	}
	if err := s.orgRepo.CreateOrganization(ctx, org); err != nil {
		return nil, fmt.Errorf("creating organization: %w", err)
	}
	return s.issue(org)
}

func (s *authService) Login(ctx context.Context, accessCode, password string) (*Token, error) {
	code := strings.ToUpper(strings.TrimSpace(accessCode))
	org, err := s.orgRepo.GetOrganizationByAccessCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(org.HashedPassword), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(org)
}

func (s *authService) CurrentOrganization(ctx context.Context, orgID uint) (*model.Organization, error) {
	org, err := s.orgRepo.GetOrganizationByID(ctx, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrganizationNotFound
	}
	return org, err
}

func (s *authService) ResetPassword(ctx context.Context, orgID uint, newPassword string) (*model.Organization, error) {
	org, err := s.CurrentOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := s.setPassword(ctx, org, newPassword); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *authService) ResetPasswordByAccessCode(ctx context.Context, accessCode, newPassword string) (*model.Organization, error) {
	org, err := s.orgRepo.GetOrganizationByAccessCode(ctx, strings.ToUpper(strings.TrimSpace(accessCode)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.setPassword(ctx, org, newPassword); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *authService) setPassword(ctx context.Context, org *model.Organization, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hashed, err := s.hash(password)
	if err != nil {
		return err
	}
	if err := s.orgRepo.UpdatePassword(ctx, org.ID, hashed); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrganizationNotFound
		}
		return err
	}
	org.HashedPassword = hashed
	return nil
}
