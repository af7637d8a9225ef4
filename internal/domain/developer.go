package domain

import (
	"context"
	"time"
)

// PublicDeveloperProfile is what any signed-in user may read about a developer.
// Contact and document fields are withheld by the public view.
type PublicDeveloperProfile struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"user_id"`
	FullName        string    `json:"full_name"`
	Bio             *string   `json:"bio,omitempty"`
	Skills          []string  `json:"skills"`
	AvatarURL       *string   `json:"avatar_url,omitempty"`
	YearsExperience *int      `json:"years_experience,omitempty"`
	Location        *string   `json:"location,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (p PublicDeveloperProfile) Listing() PublicDeveloperProfile { return p }

// DeveloperProfile is the owner's full record.
type DeveloperProfile struct {
	PublicDeveloperProfile
	Email       string  `json:"email"`
	GithubURL   *string `json:"github_url,omitempty"`
	LinkedinURL *string `json:"linkedin_url,omitempty"`
	CVURL       *string `json:"cv_url,omitempty"`
}

func (p DeveloperProfile) ContactEmail() string { return p.Email }

// HasCV reports whether a CV pointer is stored.
func (p *DeveloperProfile) HasCV() bool {
	return p != nil && p.CVURL != nil && *p.CVURL != ""
}

// DeveloperForm is the editable part of a developer profile.
// YearsExperience stays a string until validated so an empty field is not read as zero.
type DeveloperForm struct {
	FullName        string   `form:"full_name" json:"full_name" validate:"required,min=2,no_emoji"`
	Email           string   `form:"email" json:"email" validate:"required,email"`
	Bio             string   `form:"bio" json:"bio" validate:"omitempty,max=2000"`
	Skills          []string `form:"skills" json:"skills" validate:"skill_list"`
	GithubURL       string   `form:"github_url" json:"github_url" validate:"omitempty,url"`
	LinkedinURL     string   `form:"linkedin_url" json:"linkedin_url" validate:"omitempty,url"`
	YearsExperience string   `form:"years_experience" json:"years_experience" validate:"omitempty,number"`
	Location        string   `form:"location" json:"location" validate:"omitempty,max=120"`
}

// FormFromDeveloper prefills the editor from a stored record.
func FormFromDeveloper(p *DeveloperProfile) DeveloperForm {
	if p == nil {
		return DeveloperForm{}
	}
	f := DeveloperForm{
		FullName:    p.FullName,
		Email:       p.Email,
		Bio:         deref(p.Bio),
		Skills:      append([]string(nil), p.Skills...),
		GithubURL:   deref(p.GithubURL),
		LinkedinURL: deref(p.LinkedinURL),
		Location:    deref(p.Location),
	}
	if p.YearsExperience != nil {
		f.YearsExperience = itoa(*p.YearsExperience)
	}
	return f
}

type DeveloperProfileRepository interface {
	GetByAccountID(ctx context.Context, accountID string) (*DeveloperProfile, error)
	Create(ctx context.Context, p *DeveloperProfile) error
	Update(ctx context.Context, p *DeveloperProfile) error
	// ListAll returns every developer ordered by creation time, newest first.
	ListAll(ctx context.Context) ([]DeveloperProfile, error)
	ListPublic(ctx context.Context) ([]PublicDeveloperProfile, error)
	GetPublicByID(ctx context.Context, id string) (*PublicDeveloperProfile, error)
}

type DeveloperProfileUsecase interface {
	Get(ctx context.Context, accountID string) (*DeveloperProfile, error)
	// Save creates the profile on first submission and updates the same record afterwards.
	Save(ctx context.Context, accountID string, form DeveloperForm) (*DeveloperProfile, error)
}
