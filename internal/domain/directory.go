package domain

import "context"

type DirectoryUsecase interface {
	ListDevelopers(ctx context.Context) ([]DeveloperProfile, error)
	ListPublicDevelopers(ctx context.Context) ([]PublicDeveloperProfile, error)
	ListCompanies(ctx context.Context) ([]CompanyProfile, error)
	// GetPublicDeveloper returns ErrNotFound for malformed ids as well as missing rows.
	GetPublicDeveloper(ctx context.Context, id string) (*PublicDeveloperProfile, error)
	GetPublicCompany(ctx context.Context, id string) (*CompanyProfile, error)
}
