package usecase

import (
	"context"
	"errors"
	"strings"

	"talent-marketplace/internal/domain"
	"talent-marketplace/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

type accountProfileUsecase struct {
	users     domain.UserProfileRepository
	devs      domain.DeveloperProfileRepository
	companies domain.CompanyProfileRepository
	validate  *validator.Validate
}

func NewAccountProfileUsecase(
	users domain.UserProfileRepository,
	devs domain.DeveloperProfileRepository,
	companies domain.CompanyProfileRepository,
	validate *validator.Validate,
) domain.AccountProfileUsecase {
	return &accountProfileUsecase{
		users:     users,
		devs:      devs,
		companies: companies,
		validate:  validate,
	}
}

// LoadProfile fetches the role record and merges its extension.
// An account whose extension row is missing still has a profile; the edit page creates it.
func (u *accountProfileUsecase) LoadProfile(ctx context.Context, accountID string) (*domain.Profile, error) {
	if err := requireOwner(ctx, accountID); err != nil {
		return nil, err
	}

	up, err := u.users.GetByAccountID(ctx, accountID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("Could not load profile", err)
	}

	profile := &domain.Profile{UserProfile: *up}
	switch up.Role {
	case domain.RoleDeveloper:
		dev, err := u.devs.GetByAccountID(ctx, accountID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, storeError("Could not load developer profile", err)
		}
		profile.Developer = dev
	case domain.RoleCompany:
		c, err := u.companies.GetByAccountID(ctx, accountID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, storeError("Could not load company profile", err)
		}
		profile.Company = c
	}
	return profile, nil
}

// CreateProfile runs first-login setup: one role record plus its extension, in one transaction.
func (u *accountProfileUsecase) CreateProfile(ctx context.Context, accountID string, input domain.SetupInput) (*domain.Profile, error) {
	if err := requireOwner(ctx, accountID); err != nil {
		return nil, err
	}
	if !input.Role.IsValid() {
		return nil, apperror.New(400, "Choose whether you are a developer or a company", domain.ErrInvalidRole)
	}

	up := &domain.UserProfile{AccountID: accountID, Role: input.Role}
	profile := &domain.Profile{}

	switch input.Role {
	case domain.RoleDeveloper:
		if input.Developer == nil {
			return nil, apperror.BadRequest("Developer details are required")
		}
		dev, err := u.buildDeveloper(accountID, *input.Developer)
		if err != nil {
			return nil, err
		}
		if err := u.users.CreateWithDeveloper(ctx, up, dev); err != nil {
			return nil, setupError(err)
		}
		profile.Developer = dev

	case domain.RoleCompany:
		if input.Company == nil {
			return nil, apperror.BadRequest("Company details are required")
		}
		c, err := u.buildCompany(accountID, *input.Company)
		if err != nil {
			return nil, err
		}
		if err := u.users.CreateWithCompany(ctx, up, c); err != nil {
			return nil, setupError(err)
		}
		profile.Company = c
	}

	profile.UserProfile = *up
	return profile, nil
}

func setupError(err error) error {
	if errors.Is(err, domain.ErrProfileExists) {
		return apperror.New(409, "This account already has a profile", domain.ErrProfileExists)
	}
	return storeError("Could not create profile", err)
}

func (u *accountProfileUsecase) buildDeveloper(accountID string, form domain.DeveloperForm) (*domain.DeveloperProfile, error) {
	form = trimDeveloperForm(form)
	if err := validateForm(u.validate, form); err != nil {
		return nil, err
	}
	years, err := parseYears(form.YearsExperience)
	if err != nil {
		return nil, err
	}
	dev := &domain.DeveloperProfile{Email: form.Email}
	applyDeveloperForm(dev, accountID, form, years)
	return dev, nil
}

func (u *accountProfileUsecase) buildCompany(accountID string, form domain.CompanyForm) (*domain.CompanyProfile, error) {
	form = trimCompanyForm(form)
	if err := validateForm(u.validate, form); err != nil {
		return nil, err
	}
	c := &domain.CompanyProfile{}
	applyCompanyForm(c, accountID, form)
	return c, nil
}

func trimDeveloperForm(f domain.DeveloperForm) domain.DeveloperForm {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	f.Bio = strings.TrimSpace(f.Bio)
	f.GithubURL = strings.TrimSpace(f.GithubURL)
	f.LinkedinURL = strings.TrimSpace(f.LinkedinURL)
	f.YearsExperience = strings.TrimSpace(f.YearsExperience)
	f.Location = strings.TrimSpace(f.Location)
	f.Skills = normalizeSkills(f.Skills)
	return f
}

func trimCompanyForm(f domain.CompanyForm) domain.CompanyForm {
	f.CompanyName = strings.TrimSpace(f.CompanyName)
	f.Email = strings.TrimSpace(f.Email)
	f.Sector = strings.TrimSpace(f.Sector)
	f.Description = strings.TrimSpace(f.Description)
	f.ContactEmail = strings.TrimSpace(f.ContactEmail)
	f.WebsiteURL = strings.TrimSpace(f.WebsiteURL)
	f.Location = strings.TrimSpace(f.Location)
	f.CompanySize = strings.TrimSpace(f.CompanySize)
	return f
}

// applyDeveloperForm copies editable fields; file pointers are left alone.
func applyDeveloperForm(dev *domain.DeveloperProfile, accountID string, f domain.DeveloperForm, years *int) {
	dev.AccountID = accountID
	dev.FullName = f.FullName
	dev.Email = f.Email
	dev.Bio = domain.OptionalString(f.Bio)
	dev.Skills = f.Skills
	dev.GithubURL = domain.OptionalString(f.GithubURL)
	dev.LinkedinURL = domain.OptionalString(f.LinkedinURL)
	dev.YearsExperience = years
	dev.Location = domain.OptionalString(f.Location)
}

func applyCompanyForm(c *domain.CompanyProfile, accountID string, f domain.CompanyForm) {
	c.AccountID = accountID
	c.CompanyName = f.CompanyName
	c.Email = f.Email
	c.Sector = f.Sector
	c.Description = f.Description
	c.ContactEmail = f.ContactEmail
	c.WebsiteURL = domain.OptionalString(f.WebsiteURL)
	c.Location = domain.OptionalString(f.Location)
	c.CompanySize = domain.OptionalString(f.CompanySize)
}
