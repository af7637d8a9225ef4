package postgres

import (
	"context"
	"fmt"
	"time"

	"talent-marketplace/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// uploadRepo writes the upload audit trail: CVs to pdf_documents, images to profile_images.
type uploadRepo struct {
	db *pgxpool.Pool
}

func NewUploadRepository(db *pgxpool.Pool) domain.UploadRepository {
	return &uploadRepo{db: db}
}

func (r *uploadRepo) Create(ctx context.Context, rec *domain.UploadRecord) error {
	now := time.Now()
	var query string
	args := []interface{}{rec.AccountID, rec.FileName, rec.StoragePath, rec.Size, rec.MimeType, now}

	switch rec.Purpose {
	case domain.PurposeCV:
		query = `
			INSERT INTO pdf_documents (user_id, file_name, file_path, file_size, mime_type, created_at, document_type)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at`
		args = append(args, string(domain.PurposeCV))
	case domain.PurposeAvatar, domain.PurposeLogo:
		query = `
			INSERT INTO profile_images (user_id, file_name, file_path, file_size, mime_type, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at`
	default:
		return fmt.Errorf("unknown upload purpose %q", rec.Purpose)
	}

	return r.db.QueryRow(ctx, query, args...).Scan(&rec.ID, &rec.CreatedAt)
}

func (r *uploadRepo) DeleteByPath(ctx context.Context, accountID string, purpose domain.UploadPurpose, path string) error {
	var query string
	switch purpose {
	case domain.PurposeCV:
		query = `DELETE FROM pdf_documents WHERE user_id = $1 AND file_path = $2 AND document_type = 'cv'`
	case domain.PurposeAvatar, domain.PurposeLogo:
		query = `DELETE FROM profile_images WHERE user_id = $1 AND file_path = $2`
	default:
		return fmt.Errorf("unknown upload purpose %q", purpose)
	}

	_, err := r.db.Exec(ctx, query, accountID, path)
	return err
}
