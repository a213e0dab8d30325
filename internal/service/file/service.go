package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
)

var ErrUnsupportedType = errors.New("unsupported file type")

var (
	imageTypes = map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
	}
	attachmentTypes = map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".pdf":  "application/pdf",
	}
)

type FileService interface {
	// UploadAvatar stores an employee avatar and returns its public URL.
	UploadAvatar(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error)

	// UploadLeaveAttachment stores a supporting document and returns its public URL.
	UploadLeaveAttachment(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error)

	// DeleteFile removes a file previously returned by one of the upload methods.
	DeleteFile(ctx context.Context, url string) error
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

// UploadAvatar uploads employee avatar
func (s *fileServiceImpl) UploadAvatar(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error) {
	return s.upload(ctx, "avatars", employeeID, file, filename, imageTypes)
}

// UploadLeaveAttachment uploads a leave request attachment
func (s *fileServiceImpl) UploadLeaveAttachment(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error) {
	return s.upload(ctx, "leave-attachments", employeeID, file, filename, attachmentTypes)
}

func (s *fileServiceImpl) upload(ctx context.Context, folder, employeeID string, file io.Reader, filename string, allowed map[string]string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowed[ext]
	if !ok {
		return "", ErrUnsupportedType
	}

	key := path.Join(folder, employeeID, fmt.Sprintf("%s%s", uuid.Must(uuid.NewV7()).String(), ext))

	stored, err := s.storage.Upload(ctx, file, key, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", folder, err)
	}

	return s.storage.URL(stored), nil
}

// DeleteFile implements FileService.
func (s *fileServiceImpl) DeleteFile(ctx context.Context, url string) error {
	base := strings.TrimSuffix(s.storage.URL(""), "/")
	key := strings.TrimPrefix(strings.TrimPrefix(url, base), "/")
	if key == url || key == "" {
		return storage.ErrInvalidPath
	}
	return s.storage.Delete(ctx, key)
}
