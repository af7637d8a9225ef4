package postgres

import (
	"context"
	"time"

	"talent-marketplace/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type developerProfileRepo struct {
	db *pgxpool.Pool
}

func NewDeveloperProfileRepository(db *pgxpool.Pool) domain.DeveloperProfileRepository {
	return &developerProfileRepo{db: db}
}

const developerColumns = `id, user_id, full_name, email, bio, skills, github_url, linkedin_url,
		       avatar_url, cv_url, years_experience, location, created_at, updated_at`

// developer_profiles_public omits email, github_url, linkedin_url and cv_url
const publicDeveloperColumns = `id, user_id, full_name, bio, skills, avatar_url,
		       years_experience, location, created_at, updated_at`

func scanDeveloper(row pgx.Row) (*domain.DeveloperProfile, error) {
	var p domain.DeveloperProfile
	err := row.Scan(
		&p.ID, &p.AccountID, &p.FullName, &p.Email, &p.Bio, pq.Array(&p.Skills),
		&p.GithubURL, &p.LinkedinURL, &p.AvatarURL, &p.CVURL,
		&p.YearsExperience, &p.Location, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPublicDeveloper(row pgx.Row) (*domain.PublicDeveloperProfile, error) {
	var p domain.PublicDeveloperProfile
	err := row.Scan(
		&p.ID, &p.AccountID, &p.FullName, &p.Bio, pq.Array(&p.Skills), &p.AvatarURL,
		&p.YearsExperience, &p.Location, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *developerProfileRepo) GetByAccountID(ctx context.Context, accountID string) (*domain.DeveloperProfile, error) {
	query := `SELECT ` + developerColumns + ` FROM developer_profiles WHERE user_id = $1`

	p, err := scanDeveloper(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *developerProfileRepo) Create(ctx context.Context, p *domain.DeveloperProfile) error {
	now := time.Now()
	query := `
		INSERT INTO developer_profiles (
			user_id, full_name, email, bio, skills, github_url, linkedin_url,
			years_experience, location, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		p.AccountID, p.FullName, p.Email, p.Bio, pq.Array(nonNil(p.Skills)),
		p.GithubURL, p.LinkedinURL, p.YearsExperience, p.Location, now, now,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrProfileExists
	}
	return err
}

// Update writes the editable fields. File pointers are owned by the upload flow.
func (r *developerProfileRepo) Update(ctx context.Context, p *domain.DeveloperProfile) error {
	p.UpdatedAt = time.Now()
	query := `
		UPDATE developer_profiles SET
			full_name = $1, email = $2, bio = $3, skills = $4, github_url = $5,
			linkedin_url = $6, years_experience = $7, location = $8, updated_at = $9
		WHERE id = $10 AND user_id = $11`

	tag, err := r.db.Exec(ctx, query,
		p.FullName, p.Email, p.Bio, pq.Array(nonNil(p.Skills)), p.GithubURL,
		p.LinkedinURL, p.YearsExperience, p.Location, p.UpdatedAt,
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

func (r *developerProfileRepo) ListAll(ctx context.Context) ([]domain.DeveloperProfile, error) {
	query := `SELECT ` + developerColumns + ` FROM developer_profiles ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DeveloperProfile
	for rows.Next() {
		p, err := scanDeveloper(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *developerProfileRepo) ListPublic(ctx context.Context) ([]domain.PublicDeveloperProfile, error) {
	query := `SELECT ` + publicDeveloperColumns + ` FROM developer_profiles_public ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PublicDeveloperProfile
	for rows.Next() {
		p, err := scanPublicDeveloper(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *developerProfileRepo) GetPublicByID(ctx context.Context, id string) (*domain.PublicDeveloperProfile, error) {
	query := `SELECT ` + publicDeveloperColumns + ` FROM developer_profiles_public WHERE id = $1`

	p, err := scanPublicDeveloper(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}
