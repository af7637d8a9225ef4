package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleDeveloper Role = "developer"
	RoleCompany   Role = "company"
)

func (r Role) IsValid() bool {
	return r == RoleDeveloper || r == RoleCompany
}

// UserProfile links an account to exactly one role-specific profile.
// The role is fixed at creation.
type UserProfile struct {
	ID        string    `json:"id"`
	AccountID string    `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile is the reconciled view of an account: the role record merged with its extension.
// Values handed out through session snapshots are shared and must not be mutated.
type Profile struct {
	UserProfile
	Developer *DeveloperProfile `json:"developer,omitempty"`
	Company   *CompanyProfile   `json:"company,omitempty"`
}

func (p *Profile) IsDeveloper() bool {
	return p != nil && p.Role == RoleDeveloper
}

func (p *Profile) IsCompany() bool {
	return p != nil && p.Role == RoleCompany
}

// DisplayName returns the developer's name or the company's name.
func (p *Profile) DisplayName() string {
	switch {
	case p == nil:
		return ""
	case p.Developer != nil:
		return p.Developer.FullName
	case p.Company != nil:
		return p.Company.CompanyName
	}
	return ""
}

// SetupInput is the first-login wizard submission. Exactly one form matches Role.
type SetupInput struct {
	Role      Role
	Developer *DeveloperForm
	Company   *CompanyForm
}

type UserProfileRepository interface {
	GetByAccountID(ctx context.Context, accountID string) (*UserProfile, error)
	// CreateWithDeveloper inserts the role record and the developer profile in one transaction.
	CreateWithDeveloper(ctx context.Context, up *UserProfile, dev *DeveloperProfile) error
	// CreateWithCompany inserts the role record and the company profile in one transaction.
	CreateWithCompany(ctx context.Context, up *UserProfile, company *CompanyProfile) error
}

type AccountProfileUsecase interface {
	// LoadProfile returns (nil, nil) when the account has not set up a profile yet.
	LoadProfile(ctx context.Context, accountID string) (*Profile, error)
	CreateProfile(ctx context.Context, accountID string, input SetupInput) (*Profile, error)
}
