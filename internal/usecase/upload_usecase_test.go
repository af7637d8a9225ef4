package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"talent-marketplace/internal/domain"
	"talent-marketplace/internal/usecase"
	"talent-marketplace/pkg/apperror"
	"talent-marketplace/pkg/security"
	"talent-marketplace/pkg/security/antivirus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Put(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	return m.Called(ctx, bucket, path, data, contentType).Error(0)
}

func (m *MockObjectStore) Delete(ctx context.Context, bucket, path string) error {
	return m.Called(ctx, bucket, path).Error(0)
}

func (m *MockObjectStore) PresignGet(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, bucket, path, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) PublicURL(bucket, path string) string {
	return "https://proj.supabase.co/storage/v1/object/public/" + bucket + "/" + path
}

type MockUploadRepo struct {
	mock.Mock
}

func (m *MockUploadRepo) Create(ctx context.Context, rec *domain.UploadRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockUploadRepo) DeleteByPath(ctx context.Context, accountID string, purpose domain.UploadPurpose, path string) error {
	return m.Called(ctx, accountID, purpose, path).Error(0)
}

type MockPointerRepo struct {
	mock.Mock
}

func (m *MockPointerRepo) UpdatePointer(ctx context.Context, accountID string, purpose domain.UploadPurpose, value *string) error {
	return m.Called(ctx, accountID, purpose, value).Error(0)
}

func (m *MockPointerRepo) ClearIfMatch(ctx context.Context, accountID string, purpose domain.UploadPurpose, expected string) error {
	return m.Called(ctx, accountID, purpose, expected).Error(0)
}

type denyQuota struct{}

func (denyQuota) AllowUpload(context.Context, string, string) (bool, int, error) { return false, 30, nil }

type infectedScanner struct{}

func (infectedScanner) Scan(context.Context, string, []byte) antivirus.ScanResult {
	return antivirus.ScanResult{Infected: true, ThreatName: "Eicar-Test-Signature", ScannerName: "test"}
}

func (infectedScanner) Name() string { return "test" }

type uploadFixture struct {
	store    *MockObjectStore
	uploads  *MockUploadRepo
	pointers *MockPointerRepo
	devs     *MockDeveloperRepo
	uc       domain.UploadUsecase
}

func newUploadFixture(scanner antivirus.Scanner, quota usecase.UploadQuota) *uploadFixture {
	f := &uploadFixture{
		store:    new(MockObjectStore),
		uploads:  new(MockUploadRepo),
		pointers: new(MockPointerRepo),
		devs:     new(MockDeveloperRepo),
	}
	uc := usecase.NewUploadUsecase(f.store, f.uploads, f.pointers, f.devs, scanner, quota,
		security.NewSecurityLogger(zap.NewNop(), "test", "test"),
		usecase.UploadConfig{CVBucket: "cvs", ImageBucket: "avatars", MaxBytes: 1 << 20})
	f.uc = usecase.WithClock(uc, func() time.Time { return time.UnixMilli(1700000000000) })
	return f
}

func pdfUpload() domain.FileUpload {
	body := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF")
	return domain.FileUpload{FileName: "resume.pdf", ContentType: "application/pdf", Size: int64(len(body)), Content: bytes.NewReader(body)}
}

func TestUpload_StoresCVAndWritesPathPointer(t *testing.T) {
	f := newUploadFixture(nil, nil)
	ctx := ownerCtx("acct-1")
	wantPath := "acct-1/cv-1700000000000.pdf"

	f.store.On("Put", ctx, "cvs", wantPath, mock.Anything, "application/pdf").Return(nil)
	f.pointers.On("UpdatePointer", ctx, "acct-1", domain.PurposeCV, mock.MatchedBy(func(v *string) bool {
		return v != nil && *v == wantPath
	})).Return(nil)
	f.uploads.On("Create", ctx, mock.AnythingOfType("*domain.UploadRecord")).Return(nil)

	res, err := f.uc.Upload(ctx, "acct-1", domain.PurposeCV, pdfUpload())
	require.NoError(t, err)
	assert.Equal(t, wantPath, res.StoragePath)
	assert.Equal(t, wantPath, res.Pointer)
	require.NotNil(t, res.Record)
	assert.Equal(t, "resume.pdf", res.Record.FileName)
	assert.Equal(t, domain.PurposeCV, res.Record.Purpose)
}

func TestUpload_AuditKeepsUploadedFileName(t *testing.T) {
	f := newUploadFixture(nil, nil)
	ctx := ownerCtx("acct-1")
	f.store.On("Put", ctx, "cvs", "acct-1/cv-1700000000000.pdf", mock.Anything, "application/pdf").Return(nil)
	f.pointers.On("UpdatePointer", ctx, "acct-1", domain.PurposeCV, mock.Anything).Return(nil)
	f.uploads.On("Create", ctx, mock.AnythingOfType("*domain.UploadRecord")).Return(nil)

	file := pdfUpload()
	file.FileName = `C:\Users\jose\CV José.pdf`
	res, err := f.uc.Upload(ctx, "acct-1", domain.PurposeCV, file)
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	assert.Equal(t, "CV José.pdf", res.Record.FileName)
	assert.Equal(t, "acct-1/cv-1700000000000.pdf", res.StoragePath)
}

func TestUpload_ImageIsCompressedAndPointsAtPublicURL(t *testing.T) {
	f := newUploadFixture(nil, nil)
	ctx := ownerCtx("acct-1")

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2400, 1200))))

	f.store.On("Put", ctx, "avatars", "acct-1/avatar-1700000000000.jpg", mock.Anything, "image/jpeg").Return(nil)
	f.pointers.On("UpdatePointer", ctx, "acct-1", domain.PurposeAvatar, mock.Anything).Return(nil)
	f.uploads.On("Create", ctx, mock.Anything).Return(nil)

	res, err := f.uc.Upload(ctx, "acct-1", domain.PurposeAvatar, domain.FileUpload{FileName: "me.png", Content: &buf})
	require.NoError(t, err)
	assert.Equal(t, "https://proj.supabase.co/storage/v1/object/public/avatars/acct-1/avatar-1700000000000.jpg", res.Pointer)
	assert.Equal(t, "image/jpeg", res.Record.MimeType)
}

func TestUpload_StorageFailureWritesNoPointerNoAudit(t *testing.T) {
	f := newUploadFixture(nil, nil)
	ctx := ownerCtx("acct-1")
	f.store.On("Put", ctx, "cvs", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("503 from storage"))

	_, err := f.uc.Upload(ctx, "acct-1", domain.PurposeCV, pdfUpload())
	require.Error(t, err)
	assert.Equal(t, 503, apperror.CodeOf(err))
	f.pointers.AssertNotCalled(t, "UpdatePointer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.uploads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpload_PointerFailureLeavesOrphanedObject(t *testing.T) {
	f := newUploadFixture(nil, nil)
	ctx := ownerCtx("acct-1")
	f.store.On("Put", ctx, "cvs", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.pointers.On("UpdatePointer", ctx, "acct-1", domain.PurposeCV, mock.Anything).Return(errors.New("connection reset"))

	_, err := f.uc.Upload(ctx, "acct-1", domain.PurposeCV, pdfUpload())
	require.Error(t, err)
	f.store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	f.uploads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpload_AuditFailureStillSucceeds(t *testing.T) {
	f := newUploadFixture(nil, nil)
	ctx := ownerCtx("acct-1")
	f.store.On("Put", ctx, "cvs", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.pointers.On("UpdatePointer", ctx, "acct-1", domain.PurposeCV, mock.Anything).Return(nil)
	f.uploads.On("Create", ctx, mock.Anything).Return(errors.New("insert failed"))

	res, err := f.uc.Upload(ctx, "acct-1", domain.PurposeCV, pdfUpload())
	require.NoError(t, err)
	assert.Nil(t, res.Record)
}

func TestUpload_Rejections(t *testing.T) {
	t.Run("Should reject a disguised file", func(t *testing.T) {
		f := newUploadFixture(nil, nil)
		file := domain.FileUpload{FileName: "cv.pdf", Content: bytes.NewReader([]byte("MZ\x90\x00 not a pdf"))}
		_, err := f.uc.Upload(ownerCtx("acct-1"), "acct-1", domain.PurposeCV, file)
		assert.Equal(t, 400, apperror.CodeOf(err))
	})

	t.Run("Should reject oversize files", func(t *testing.T) {
		f := newUploadFixture(nil, nil)
		big := append([]byte("%PDF-"), make([]byte, 2<<20)...)
		_, err := f.uc.Upload(ownerCtx("acct-1"), "acct-1", domain.PurposeCV, domain.FileUpload{FileName: "cv.pdf", Content: bytes.NewReader(big)})
		assert.Equal(t, 413, apperror.CodeOf(err))
	})

	t.Run("Should reject infected files", func(t *testing.T) {
		f := newUploadFixture(infectedScanner{}, nil)
		_, err := f.uc.Upload(ownerCtx("acct-1"), "acct-1", domain.PurposeCV, pdfUpload())
		assert.Equal(t, 400, apperror.CodeOf(err))
		f.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should enforce the upload quota", func(t *testing.T) {
		f := newUploadFixture(nil, denyQuota{})
		_, err := f.uc.Upload(ownerCtx("acct-1"), "acct-1", domain.PurposeCV, pdfUpload())
		assert.Equal(t, 429, apperror.CodeOf(err))
	})

	t.Run("Should refuse uploads for another account", func(t *testing.T) {
		f := newUploadFixture(nil, nil)
		_, err := f.uc.Upload(ownerCtx("acct-1"), "acct-2", domain.PurposeCV, pdfUpload())
		assert.Equal(t, 403, apperror.CodeOf(err))
	})
}

func developerWithCV(cv string) *domain.DeveloperProfile {
	return &domain.DeveloperProfile{
		PublicDeveloperProfile: domain.PublicDeveloperProfile{ID: "dev-1", AccountID: "acct-1"},
		CVURL:                  &cv,
	}
}

func TestCVDownloadURL_PresignsLegacyPointer(t *testing.T) {
	f := newUploadFixture(nil, nil)
	ctx := ownerCtx("acct-1")
	f.devs.On("GetByAccountID", ctx, "acct-1").
		Return(developerWithCV("https://proj.supabase.co/storage/v1/object/public/cvs/acct-1/cv-1.pdf"), nil)
	f.store.On("PresignGet", ctx, "cvs", "acct-1/cv-1.pdf", 5*time.Minute).Return("https://signed", nil)

	url, err := f.uc.CVDownloadURL(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, "https://signed", url)
}

func TestDeleteCV(t *testing.T) {
	t.Run("Should delete object, audit rows and matching pointer", func(t *testing.T) {
		f := newUploadFixture(nil, nil)
		ctx := ownerCtx("acct-1")
		f.devs.On("GetByAccountID", ctx, "acct-1").Return(developerWithCV("acct-1/cv-1.pdf"), nil)
		f.store.On("Delete", ctx, "cvs", "acct-1/cv-1.pdf").Return(nil)
		f.uploads.On("DeleteByPath", ctx, "acct-1", domain.PurposeCV, "acct-1/cv-1.pdf").Return(nil)
		f.pointers.On("ClearIfMatch", ctx, "acct-1", domain.PurposeCV, "acct-1/cv-1.pdf").Return(nil)

		require.NoError(t, f.uc.DeleteCV(ctx, "acct-1"))
		f.pointers.AssertExpectations(t)
	})

	t.Run("Should leave the pointer when the audit delete fails", func(t *testing.T) {
		f := newUploadFixture(nil, nil)
		ctx := ownerCtx("acct-1")
		f.devs.On("GetByAccountID", ctx, "acct-1").Return(developerWithCV("acct-1/cv-1.pdf"), nil)
		f.store.On("Delete", ctx, "cvs", "acct-1/cv-1.pdf").Return(nil)
		f.uploads.On("DeleteByPath", ctx, "acct-1", domain.PurposeCV, "acct-1/cv-1.pdf").Return(errors.New("boom"))

		require.Error(t, f.uc.DeleteCV(ctx, "acct-1"))
		f.pointers.AssertNotCalled(t, "ClearIfMatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should report a missing CV", func(t *testing.T) {
		f := newUploadFixture(nil, nil)
		ctx := ownerCtx("acct-1")
		f.devs.On("GetByAccountID", ctx, "acct-1").Return(&domain.DeveloperProfile{}, nil)

		err := f.uc.DeleteCV(ctx, "acct-1")
		assert.Equal(t, 404, apperror.CodeOf(err))
	})
}
