package services

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioService is the durable object store for converted artifacts.
type MinioService struct {
	Client        *minio.Client
	BucketName    string
	PublicBaseURL string
}

var minioInstance *MinioService

func InitializeMinio(endpoint, accessKey, secretKey, bucket, publicBaseURL string, useSSL bool) error {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %v", err)
	}

	// Create bucket if it doesn't exist
	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		err = client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("Created bucket: %s", bucket)
	}

	minioInstance = &MinioService{
		Client:        client,
		BucketName:    bucket,
		PublicBaseURL: publicBaseURL,
	}

	log.Println("Connected to MinIO successfully")
	return nil
}

func GetMinioService() *MinioService {
	return minioInstance
}

// CheckConnection for health checks
func (m *MinioService) CheckConnection() error {
	if m == nil || m.Client == nil {
		return fmt.Errorf("minio service not initialized")
	}
	_, err := m.Client.BucketExists(context.Background(), m.BucketName)
	return err
}

// Upload stores an artifact and returns its shareable URL.
func (m *MinioService) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := m.Client.PutObject(
		ctx,
		m.BucketName,
		objectName,
		reader,
		size,
		minio.PutObjectOptions{
			ContentType: contentType,
		},
	)
	if err != nil {
		return "", err
	}
	return m.ObjectURL(objectName), nil
}

func (m *MinioService) Delete(ctx context.Context, objectName string) error {
	return m.Client.RemoveObject(ctx, m.BucketName, objectName, minio.RemoveObjectOptions{})
}

func (m *MinioService) ObjectURL(objectName string) string {
	// Presigned URLs would be the production choice; the gateway in
	// front of the bucket serves /files publicly for now.
	return fmt.Sprintf("%s/files/%s", m.PublicBaseURL, objectName)
}
