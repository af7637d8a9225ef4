package postgres

import (
	"context"
	"fmt"
	"time"

	"talent-marketplace/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type userProfileRepo struct {
	db *pgxpool.Pool
}

func NewUserProfileRepository(db *pgxpool.Pool) domain.UserProfileRepository {
	return &userProfileRepo{db: db}
}

func (r *userProfileRepo) GetByAccountID(ctx context.Context, accountID string) (*domain.UserProfile, error) {
	query := `
		SELECT id, user_id, role, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1`

	var up domain.UserProfile
	err := r.db.QueryRow(ctx, query, accountID).Scan(
		&up.ID, &up.AccountID, &up.Role, &up.CreatedAt, &up.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &up, nil
}

// CreateWithDeveloper inserts the role record and the developer profile atomically.
func (r *userProfileRepo) CreateWithDeveloper(ctx context.Context, up *domain.UserProfile, dev *domain.DeveloperProfile) error {
	return r.inTx(ctx, up, func(tx pgx.Tx, now time.Time) error {
		query := `
			INSERT INTO developer_profiles (
				user_id, full_name, email, bio, skills, github_url, linkedin_url,
				years_experience, location, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id, created_at, updated_at`

		return tx.QueryRow(ctx, query,
			dev.AccountID, dev.FullName, dev.Email, dev.Bio, pq.Array(nonNil(dev.Skills)),
			dev.GithubURL, dev.LinkedinURL, dev.YearsExperience, dev.Location, now, now,
		).Scan(&dev.ID, &dev.CreatedAt, &dev.UpdatedAt)
	})
}

// CreateWithCompany inserts the role record and the company profile atomically.
func (r *userProfileRepo) CreateWithCompany(ctx context.Context, up *domain.UserProfile, c *domain.CompanyProfile) error {
	return r.inTx(ctx, up, func(tx pgx.Tx, now time.Time) error {
		query := `
			INSERT INTO company_profiles (
				user_id, company_name, email, sector, description, contact_email,
				website_url, location, company_size, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id, created_at, updated_at`

		return tx.QueryRow(ctx, query,
			c.AccountID, c.CompanyName, c.Email, c.Sector, c.Description, c.ContactEmail,
			c.WebsiteURL, c.Location, c.CompanySize, now, now,
		).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	})
}

func (r *userProfileRepo) inTx(ctx context.Context, up *domain.UserProfile, insertExtension func(pgx.Tx, time.Time) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin profile setup: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	err = tx.QueryRow(ctx, `
		INSERT INTO user_profiles (user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		up.AccountID, up.Role, now, now,
	).Scan(&up.ID, &up.CreatedAt, &up.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrProfileExists
		}
		return fmt.Errorf("insert user profile: %w", err)
	}

	if err := insertExtension(tx, now); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrProfileExists
		}
		return fmt.Errorf("insert %s profile: %w", up.Role, err)
	}

	return tx.Commit(ctx)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
