package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"talent-marketplace/internal/domain"
	"talent-marketplace/pkg/apperror"
	"talent-marketplace/pkg/imaging"
	"talent-marketplace/pkg/logger"
	"talent-marketplace/pkg/security"
	"talent-marketplace/pkg/security/antivirus"
)

// UploadQuota is satisfied by *security.UploadLimiter.
type UploadQuota interface {
	AllowUpload(ctx context.Context, ip, accountID string) (bool, int, error)
}

type UploadConfig struct {
	CVBucket    string
	ImageBucket string
	MaxBytes    int64
	SignedTTL   time.Duration
	Image       imaging.Options
}

type uploadUsecase struct {
	store    domain.ObjectStore
	uploads  domain.UploadRepository
	pointers domain.PointerRepository
	devs     domain.DeveloperProfileRepository
	scanner  antivirus.Scanner
	quota    UploadQuota
	secLog   *security.SecurityLogger
	cfg      UploadConfig
	now      func() time.Time
}

func NewUploadUsecase(
	store domain.ObjectStore,
	uploads domain.UploadRepository,
	pointers domain.PointerRepository,
	devs domain.DeveloperProfileRepository,
	scanner antivirus.Scanner,
	quota UploadQuota,
	secLog *security.SecurityLogger,
	cfg UploadConfig,
) domain.UploadUsecase {
	if scanner == nil {
		scanner = antivirus.NewNoOpScanner()
	}
	if secLog == nil {
		secLog = security.DefaultLogger()
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 << 20
	}
	if cfg.SignedTTL <= 0 {
		cfg.SignedTTL = 5 * time.Minute
	}
	return &uploadUsecase{
		store:    store,
		uploads:  uploads,
		pointers: pointers,
		devs:     devs,
		scanner:  scanner,
		quota:    quota,
		secLog:   secLog,
		cfg:      cfg,
		now:      time.Now,
	}
}

// WithClock replaces the clock used for object names. Tests only.
func WithClock(u domain.UploadUsecase, now func() time.Time) domain.UploadUsecase {
	if uu, ok := u.(*uploadUsecase); ok {
		uu.now = now
	}
	return u
}

func (u *uploadUsecase) bucket(purpose domain.UploadPurpose) string {
	if purpose == domain.PurposeCV {
		return u.cfg.CVBucket
	}
	return u.cfg.ImageBucket
}

// Upload stores a file and points the profile at it.
// The steps are not atomic: a failed pointer write leaves the object in the bucket.
func (u *uploadUsecase) Upload(ctx context.Context, accountID string, purpose domain.UploadPurpose, file domain.FileUpload) (*domain.UploadResult, error) {
	if err := requireOwner(ctx, accountID); err != nil {
		return nil, err
	}
	if purpose != domain.PurposeCV && !purpose.IsImage() {
		return nil, apperror.BadRequest("Unknown upload type")
	}

	if u.quota != nil {
		meta := domain.ClientMetaFrom(ctx)
		allowed, retryAfter, err := u.quota.AllowUpload(ctx, meta.IP, accountID)
		if err != nil {
			logger.FromContext(ctx).Warn("upload quota check failed", "error", err)
		} else if !allowed {
			u.secLog.LogRateLimitTriggered(ctx, meta.IP, meta.UserAgent, meta.RequestID, "upload")
			return nil, apperror.TooManyRequests(fmt.Sprintf("Too many uploads. Try again in %d seconds", retryAfter))
		}
	}

	data, err := io.ReadAll(io.LimitReader(file.Content, u.cfg.MaxBytes+1))
	if err != nil {
		return nil, apperror.BadRequest("Could not read the uploaded file")
	}
	if int64(len(data)) > u.cfg.MaxBytes {
		u.secLog.LogUploadRejected(ctx, accountID, string(purpose), file.FileName, "too_large")
		return nil, apperror.New(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File is too large (max %d MB)", u.cfg.MaxBytes>>20), nil)
	}
	if len(data) == 0 {
		return nil, apperror.BadRequest("The uploaded file is empty")
	}

	check := security.ValidateFile(purpose, file.FileName, data)
	if !check.Valid {
		u.secLog.LogUploadRejected(ctx, accountID, string(purpose), file.FileName, check.Error)
		return nil, apperror.BadRequest(check.Error)
	}

	scan := u.scanner.Scan(ctx, file.FileName, data)
	if scan.Infected {
		reason := "infected:" + scan.ThreatName
		if scan.Error != nil {
			reason = "scan_failed"
			logger.FromContext(ctx).Error("antivirus scan failed", "scanner", scan.ScannerName, "error", scan.Error)
		}
		u.secLog.LogUploadRejected(ctx, accountID, string(purpose), file.FileName, reason)
		return nil, apperror.BadRequest("The file was rejected by the virus scanner")
	}

	ext := check.Extension
	mimeType := check.DetectedMIME
	if purpose.IsImage() {
		compressed, err := imaging.Compress(data, u.cfg.Image)
		if err != nil {
			u.secLog.LogUploadRejected(ctx, accountID, string(purpose), file.FileName, "undecodable_image")
			return nil, apperror.BadRequest("The image could not be read")
		}
		data, ext, mimeType = compressed, ".jpg", "image/jpeg"
	}

	bucket := u.bucket(purpose)
	path := fmt.Sprintf("%s/%s-%d%s", accountID, purpose, u.now().UnixMilli(), ext)

	if err := u.store.Put(ctx, bucket, path, data, mimeType); err != nil {
		return nil, apperror.Unavailable("Could not store the file", err)
	}

	pointer := path
	if purpose.IsImage() {
		pointer = u.store.PublicURL(bucket, path)
	}
	if err := u.pointers.UpdatePointer(ctx, accountID, purpose, &pointer); err != nil {
		logger.FromContext(ctx).Error("pointer write failed, object left in bucket",
			"purpose", purpose, "path", path, "error", err)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.New(http.StatusConflict, "Save your profile before uploading files", err)
		}
		return nil, storeError("Could not update your profile", err)
	}

	rec := &domain.UploadRecord{
		AccountID:   accountID,
		FileName:    displayName(file.FileName),
		StoragePath: path,
		Size:        int64(len(data)),
		MimeType:    mimeType,
		Purpose:     purpose,
	}
	if err := u.uploads.Create(ctx, rec); err != nil {
		logger.FromContext(ctx).Error("upload audit insert failed", "purpose", purpose, "path", path, "error", err)
		rec = nil
	}

	u.secLog.LogUploadStored(ctx, accountID, string(purpose), path, int64(len(data)))
	return &domain.UploadResult{StoragePath: path, Pointer: pointer, Record: rec}, nil
}

// CVDownloadURL presigns a short-lived link to the caller's CV.
func (u *uploadUsecase) CVDownloadURL(ctx context.Context, accountID string) (string, error) {
	path, _, err := u.cvPath(ctx, accountID)
	if err != nil {
		return "", err
	}
	url, err := u.store.PresignGet(ctx, u.cfg.CVBucket, path, u.cfg.SignedTTL)
	if err != nil {
		return "", apperror.Unavailable("Could not create a download link", err)
	}
	return url, nil
}

// DeleteCV removes the object, then its audit rows, then the pointer if it still names the object.
// When the audit delete fails the pointer is left as is.
func (u *uploadUsecase) DeleteCV(ctx context.Context, accountID string) error {
	path, pointer, err := u.cvPath(ctx, accountID)
	if err != nil {
		return err
	}

	if err := u.store.Delete(ctx, u.cfg.CVBucket, path); err != nil {
		return apperror.Unavailable("Could not delete the file", err)
	}
	if err := u.uploads.DeleteByPath(ctx, accountID, domain.PurposeCV, path); err != nil {
		return storeError("Could not delete the file record", err)
	}

	if err := u.pointers.ClearIfMatch(ctx, accountID, domain.PurposeCV, pointer); err != nil {
		return storeError("Could not update your profile", err)
	}

	u.secLog.LogFileDeleted(ctx, accountID, string(domain.PurposeCV), path)
	return nil
}

// cvPath returns the object path of the caller's CV and the raw stored pointer.
func (u *uploadUsecase) cvPath(ctx context.Context, accountID string) (path, pointer string, err error) {
	if err := requireOwner(ctx, accountID); err != nil {
		return "", "", err
	}
	dev, err := u.devs.GetByAccountID(ctx, accountID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", "", apperror.NotFound("No CV uploaded")
	}
	if err != nil {
		return "", "", storeError("Could not load your profile", err)
	}
	if !dev.HasCV() {
		return "", "", apperror.NotFound("No CV uploaded")
	}
	return objectPath(*dev.CVURL, u.cfg.CVBucket), *dev.CVURL, nil
}

const maxFileNameRunes = 255

// displayName is the name the user uploaded, without any client-side directory.
// Object keys never use it.
func displayName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" {
		return "file"
	}
	if r := []rune(name); len(r) > maxFileNameRunes {
		name = string(r[:maxFileNameRunes])
	}
	return name
}

// objectPath accepts either a bucket-relative path or an older full object URL.
func objectPath(pointer, bucket string) string {
	marker := "/" + bucket + "/"
	if strings.HasPrefix(pointer, "http://") || strings.HasPrefix(pointer, "https://") {
		if i := strings.Index(pointer, marker); i >= 0 {
			pointer = pointer[i+len(marker):]
		}
		if q := strings.IndexByte(pointer, '?'); q >= 0 {
			pointer = pointer[:q]
		}
	}
	return strings.TrimPrefix(filepath.ToSlash(pointer), "/")
}
