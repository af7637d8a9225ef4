package usecase

import (
	"context"

	"talent-marketplace/internal/domain"

	"github.com/google/uuid"
)

type directoryUsecase struct {
	devs      domain.DeveloperProfileRepository
	companies domain.CompanyProfileRepository
}

func NewDirectoryUsecase(devs domain.DeveloperProfileRepository, companies domain.CompanyProfileRepository) domain.DirectoryUsecase {
	return &directoryUsecase{devs: devs, companies: companies}
}

func (u *directoryUsecase) ListDevelopers(ctx context.Context) ([]domain.DeveloperProfile, error) {
	devs, err := u.devs.ListAll(ctx)
	if err != nil {
		return nil, storeError("Could not load developers", err)
	}
	return devs, nil
}

func (u *directoryUsecase) ListPublicDevelopers(ctx context.Context) ([]domain.PublicDeveloperProfile, error) {
	devs, err := u.devs.ListPublic(ctx)
	if err != nil {
		return nil, storeError("Could not load developers", err)
	}
	return devs, nil
}

func (u *directoryUsecase) ListCompanies(ctx context.Context) ([]domain.CompanyProfile, error) {
	companies, err := u.companies.ListAll(ctx)
	if err != nil {
		return nil, storeError("Could not load companies", err)
	}
	return companies, nil
}

func (u *directoryUsecase) GetPublicDeveloper(ctx context.Context, id string) (*domain.PublicDeveloperProfile, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	dev, err := u.devs.GetPublicByID(ctx, id)
	if err != nil {
		return nil, storeError("Could not load developer", err)
	}
	return dev, nil
}

func (u *directoryUsecase) GetPublicCompany(ctx context.Context, id string) (*domain.CompanyProfile, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	c, err := u.companies.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("Could not load company", err)
	}
	return c, nil
}
