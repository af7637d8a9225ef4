package postgres

import (
	"context"
	"fmt"
	"time"

	"talent-marketplace/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type pointerRepo struct {
	db *pgxpool.Pool
}

// NewPointerRepository writes cv_url/avatar_url on developer_profiles and logo_url on company_profiles.
func NewPointerRepository(db *pgxpool.Pool) domain.PointerRepository {
	return &pointerRepo{db: db}
}

// pointerColumn maps a purpose to a fixed table and column; never built from input.
func pointerColumn(purpose domain.UploadPurpose) (table, column string, err error) {
	switch purpose {
	case domain.PurposeCV:
		return "developer_profiles", "cv_url", nil
	case domain.PurposeAvatar:
		return "developer_profiles", "avatar_url", nil
	case domain.PurposeLogo:
		return "company_profiles", "logo_url", nil
	}
	return "", "", fmt.Errorf("unknown upload purpose %q", purpose)
}

func (r *pointerRepo) UpdatePointer(ctx context.Context, accountID string, purpose domain.UploadPurpose, value *string) error {
	table, column, err := pointerColumn(purpose)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, updated_at = $2 WHERE user_id = $3`, table, column)

	tag, err := r.db.Exec(ctx, query, value, time.Now(), accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pointerRepo) ClearIfMatch(ctx context.Context, accountID string, purpose domain.UploadPurpose, expected string) error {
	table, column, err := pointerColumn(purpose)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET %s = NULL, updated_at = $1 WHERE user_id = $2 AND %s = $3`, table, column, column)

	_, err = r.db.Exec(ctx, query, time.Now(), accountID, expected)
	return err
}
