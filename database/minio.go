package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var minioClient *minio.Client

// OpenMinioConnection connects to the upload archive and makes sure the bucket exists
func OpenMinioConnection() error {
	var err error

	minioClient, err = minio.New(os.Getenv("ARCHIVE_ENDPOINT"), &minio.Options{
		Creds:  credentials.NewStaticV4(os.Getenv("ARCHIVE_ACCESS_KEY"), os.Getenv("ARCHIVE_SECRET_KEY"), ""),
		Secure: os.Getenv("ARCHIVE_SECURE") == "YES",
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bucket := os.Getenv("ARCHIVE_BUCKET")
	exists, err := minioClient.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if !exists {
		if err = minioClient.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	return nil
}

// GetMinioConnection returns a reference to the shared connection
func GetMinioConnection() *minio.Client {
	return minioClient
}
