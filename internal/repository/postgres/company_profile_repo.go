package postgres

import (
	"context"
	"time"

	"talent-marketplace/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type companyProfileRepo struct {
	db *pgxpool.Pool
}

// NewCompanyProfileRepository creates a new company profile repository
func NewCompanyProfileRepository(db *pgxpool.Pool) domain.CompanyProfileRepository {
	return &companyProfileRepo{db: db}
}

const companyColumns = `id, user_id, company_name, email, sector, description, contact_email,
		       website_url, logo_url, location, company_size, created_at, updated_at`

func scanCompany(row pgx.Row) (*domain.CompanyProfile, error) {
	var p domain.CompanyProfile
	err := row.Scan(
		&p.ID, &p.AccountID, &p.CompanyName, &p.Email, &p.Sector, &p.Description, &p.ContactEmail,
		&p.WebsiteURL, &p.LogoURL, &p.Location, &p.CompanySize, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByAccountID retrieves a company profile by its owner's account id
func (r *companyProfileRepo) GetByAccountID(ctx context.Context, accountID string) (*domain.CompanyProfile, error) {
	query := `SELECT ` + companyColumns + ` FROM company_profiles WHERE user_id = $1`

	p, err := scanCompany(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetByID retrieves a company profile by its ID (for public page)
func (r *companyProfileRepo) GetByID(ctx context.Context, id string) (*domain.CompanyProfile, error) {
	query := `SELECT ` + companyColumns + ` FROM company_profiles WHERE id = $1`

	p, err := scanCompany(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *companyProfileRepo) Create(ctx context.Context, p *domain.CompanyProfile) error {
	now := time.Now()
	query := `
		INSERT INTO company_profiles (
			user_id, company_name, email, sector, description, contact_email,
			website_url, location, company_size, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		p.AccountID, p.CompanyName, p.Email, p.Sector, p.Description, p.ContactEmail,
		p.WebsiteURL, p.Location, p.CompanySize, now, now,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrProfileExists
	}
	return err
}

// Update writes the editable fields; logo_url is owned by the upload flow.
func (r *companyProfileRepo) Update(ctx context.Context, p *domain.CompanyProfile) error {
	p.UpdatedAt = time.Now()
	query := `
		UPDATE company_profiles SET
			company_name = $1, email = $2, sector = $3, description = $4, contact_email = $5,
			website_url = $6, location = $7, company_size = $8, updated_at = $9
		WHERE id = $10 AND user_id = $11`

	tag, err := r.db.Exec(ctx, query,
		p.CompanyName, p.Email, p.Sector, p.Description, p.ContactEmail,
		p.WebsiteURL, p.Location, p.CompanySize, p.UpdatedAt,
		p.ID, p.AccountID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *companyProfileRepo) ListAll(ctx context.Context) ([]domain.CompanyProfile, error) {
	query := `SELECT ` + companyColumns + ` FROM company_profiles ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CompanyProfile
	for rows.Next() {
		p, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
