package domain

import (
	"context"
	"time"
)

type CompanyProfile struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"user_id"`
	CompanyName  string    `json:"company_name"`
	Email        string    `json:"email"`
	Sector       string    `json:"sector"`
	Description  string    `json:"description"`
	ContactEmail string    `json:"contact_email"`
	WebsiteURL   *string   `json:"website_url,omitempty"`
	LogoURL      *string   `json:"logo_url,omitempty"`
	Location     *string   `json:"location,omitempty"`
	CompanySize  *string   `json:"company_size,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CompanyForm struct {
	CompanyName  string `form:"company_name" json:"company_name" validate:"required,min=2,no_emoji"`
	Email        string `form:"email" json:"email" validate:"required,email"`
	Sector       string `form:"sector" json:"sector" validate:"required,min=2"`
	Description  string `form:"description" json:"description" validate:"required,min=10,max=5000"`
	ContactEmail string `form:"contact_email" json:"contact_email" validate:"required,email"`
	WebsiteURL   string `form:"website_url" json:"website_url" validate:"omitempty,url"`
	Location     string `form:"location" json:"location" validate:"omitempty,max=120"`
	CompanySize  string `form:"company_size" json:"company_size" validate:"omitempty,max=50"`
}

func FormFromCompany(p *CompanyProfile) CompanyForm {
	if p == nil {
		return CompanyForm{}
	}
	return CompanyForm{
		CompanyName:  p.CompanyName,
		Email:        p.Email,
		Sector:       p.Sector,
		Description:  p.Description,
		ContactEmail: p.ContactEmail,
		WebsiteURL:   deref(p.WebsiteURL),
		Location:     deref(p.Location),
		CompanySize:  deref(p.CompanySize),
	}
}

type CompanyProfileRepository interface {
	GetByAccountID(ctx context.Context, accountID string) (*CompanyProfile, error)
	GetByID(ctx context.Context, id string) (*CompanyProfile, error)
	Create(ctx context.Context, p *CompanyProfile) error
	Update(ctx context.Context, p *CompanyProfile) error
	// ListAll returns every company ordered by creation time, newest first.
	ListAll(ctx context.Context) ([]CompanyProfile, error)
}

type CompanyProfileUsecase interface {
	Get(ctx context.Context, accountID string) (*CompanyProfile, error)
	Save(ctx context.Context, accountID string, form CompanyForm) (*CompanyProfile, error)
}
