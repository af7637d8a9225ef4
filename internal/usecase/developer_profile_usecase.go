package usecase

import (
	"context"
	"errors"

	"talent-marketplace/internal/domain"

	"github.com/go-playground/validator/v10"
)

type developerProfileUsecase struct {
	repo     domain.DeveloperProfileRepository
	validate *validator.Validate
}

func NewDeveloperProfileUsecase(repo domain.DeveloperProfileRepository, validate *validator.Validate) domain.DeveloperProfileUsecase {
	return &developerProfileUsecase{repo: repo, validate: validate}
}

// Get returns domain.ErrNotFound when the developer has not saved a profile yet.
func (u *developerProfileUsecase) Get(ctx context.Context, accountID string) (*domain.DeveloperProfile, error) {
	if err := requireOwner(ctx, accountID); err != nil {
		return nil, err
	}
	dev, err := u.repo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, storeError("Could not load your profile", err)
	}
	return dev, nil
}

func (u *developerProfileUsecase) Save(ctx context.Context, accountID string, form domain.DeveloperForm) (*domain.DeveloperProfile, error) {
	if err := requireOwner(ctx, accountID); err != nil {
		return nil, err
	}

	form = trimDeveloperForm(form)
	if err := validateForm(u.validate, form); err != nil {
		return nil, err
	}
	years, err := parseYears(form.YearsExperience)
	if err != nil {
		return nil, err
	}

	existing, err := u.repo.GetByAccountID(ctx, accountID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		dev := &domain.DeveloperProfile{}
		applyDeveloperForm(dev, accountID, form, years)
		if err := u.repo.Create(ctx, dev); err != nil {
			return nil, storeError("Could not save your profile", err)
		}
		return dev, nil
	case err != nil:
		return nil, storeError("Could not save your profile", err)
	}

	applyDeveloperForm(existing, accountID, form, years)
	if err := u.repo.Update(ctx, existing); err != nil {
		return nil, storeError("Could not save your profile", err)
	}
	return existing, nil
}
