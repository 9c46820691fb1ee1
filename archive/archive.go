package archive

import (
	"bytes"
	"concordia-courses/helpers"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/twinj/uuid"
)

// Archiver keeps the raw bulk files that were uploaded
type Archiver interface {
	Store(ctx context.Context, name string, data []byte) (string, error)
}

// objectPutter is the part of *minio.Client used here
type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinioArchiver stores files in an S3 compatible bucket
type MinioArchiver struct {
	client objectPutter
	bucket string
}

// NewMinioArchiver uses an existing bucket (client is a *minio.Client)
func NewMinioArchiver(client objectPutter, bucket string) *MinioArchiver {
	return &MinioArchiver{client: client, bucket: bucket}
}

// ObjectName builds a unique name: reviews/<date>/<uuid>_<name>
func ObjectName(name string, t time.Time) string {
	return fmt.Sprintf("reviews/%s/%s_%s", t.Format("2006-01-02"), uuid.NewV4().String(), name)
}

// Store uploads data and returns the object name
func (a *MinioArchiver) Store(ctx context.Context, name string, data []byte) (string, error) {

	objectName := ObjectName(name, time.Now())

	_, err := a.client.PutObject(ctx, a.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	return objectName, nil
}

// NopArchiver drops files (archive not configured)
type NopArchiver struct{}

// Store does nothing
func (NopArchiver) Store(ctx context.Context, name string, data []byte) (string, error) {
	return "", nil
}
