package usecase

import (
	"context"
	"errors"

	"talent-marketplace/internal/domain"

	"github.com/go-playground/validator/v10"
)

type companyProfileUsecase struct {
	repo     domain.CompanyProfileRepository
	validate *validator.Validate
}

func NewCompanyProfileUsecase(repo domain.CompanyProfileRepository, validate *validator.Validate) domain.CompanyProfileUsecase {
	return &companyProfileUsecase{repo: repo, validate: validate}
}

func (u *companyProfileUsecase) Get(ctx context.Context, accountID string) (*domain.CompanyProfile, error) {
	if err := requireOwner(ctx, accountID); err != nil {
		return nil, err
	}
	c, err := u.repo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, storeError("Could not load your company profile", err)
	}
	return c, nil
}

func (u *companyProfileUsecase) Save(ctx context.Context, accountID string, form domain.CompanyForm) (*domain.CompanyProfile, error) {
	if err := requireOwner(ctx, accountID); err != nil {
		return nil, err
	}

	form = trimCompanyForm(form)
	if err := validateForm(u.validate, form); err != nil {
		return nil, err
	}

	existing, err := u.repo.GetByAccountID(ctx, accountID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c := &domain.CompanyProfile{}
		applyCompanyForm(c, accountID, form)
		if err := u.repo.Create(ctx, c); err != nil {
			return nil, storeError("Could not save your company profile", err)
		}
		return c, nil
	case err != nil:
		return nil, storeError("Could not save your company profile", err)
	}

	applyCompanyForm(existing, accountID, form)
	if err := u.repo.Update(ctx, existing); err != nil {
		return nil, storeError("Could not save your company profile", err)
	}
	return existing, nil
}
