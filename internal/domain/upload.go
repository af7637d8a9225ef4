package domain

import (
	"context"
	"io"
	"time"
)

type UploadPurpose string

const (
	PurposeCV     UploadPurpose = "cv"
	PurposeAvatar UploadPurpose = "avatar"
	PurposeLogo   UploadPurpose = "logo"
)

func (p UploadPurpose) IsImage() bool {
	return p == PurposeAvatar || p == PurposeLogo
}

// UploadRecord is the audit row written after a successful upload.
type UploadRecord struct {
	ID          string        `json:"id"`
	AccountID   string        `json:"user_id"`
	FileName    string        `json:"file_name"`
	StoragePath string        `json:"file_path"`
	Size        int64         `json:"file_size"`
	MimeType    string        `json:"mime_type"`
	Purpose     UploadPurpose `json:"purpose"`
	CreatedAt   time.Time     `json:"created_at"`
}

// FileUpload is a file received from a form.
type FileUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// UploadResult is what the caller needs after a stored upload.
type UploadResult struct {
	StoragePath string
	// Pointer is the value written to the profile: the storage path for private buckets,
	// a public URL otherwise.
	Pointer string
	Record  *UploadRecord
}

type ObjectStore interface {
	Put(ctx context.Context, bucket, path string, data []byte, contentType string) error
	Delete(ctx context.Context, bucket, path string) error
	PresignGet(ctx context.Context, bucket, path string, ttl time.Duration) (string, error)
	PublicURL(bucket, path string) string
}

type UploadRepository interface {
	Create(ctx context.Context, rec *UploadRecord) error
	DeleteByPath(ctx context.Context, accountID string, purpose UploadPurpose, path string) error
}

// PointerRepository writes the file pointer column of a profile.
// A nil value clears it. ClearIfMatch only clears when the stored value still equals expected.
type PointerRepository interface {
	UpdatePointer(ctx context.Context, accountID string, purpose UploadPurpose, value *string) error
	ClearIfMatch(ctx context.Context, accountID string, purpose UploadPurpose, expected string) error
}

type UploadUsecase interface {
	Upload(ctx context.Context, accountID string, purpose UploadPurpose, file FileUpload) (*UploadResult, error)
	CVDownloadURL(ctx context.Context, accountID string) (string, error)
	DeleteCV(ctx context.Context, accountID string) error
}
