package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/innoviahub/meeting-transcription/internal/domain/entities"
	"github.com/innoviahub/meeting-transcription/pkg/config"
)

// MinIOClient wraps MinIO operations
type MinIOClient struct {
	client *minio.Client
	bucket string
}

// NewMinIOClient creates a new MinIO client and makes sure the bucket exists
func NewMinIOClient(ctx context.Context, cfg *config.StorageConfig) (*MinIOClient, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	client := &MinIOClient{
		client: minioClient,
		bucket: cfg.BucketName,
	}

	if err := client.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return client, nil
}

// ensureBucket creates the bucket when it does not exist yet. Transcripts are
// private, so no public policy is attached.
func (m *MinIOClient) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// UploadFile uploads a file to MinIO
func (m *MinIOClient) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}

	return nil
}

// UploadText uploads text content to MinIO
func (m *MinIOClient) UploadText(ctx context.Context, objectName string, content string) error {
	reader := bytes.NewReader([]byte(content))
	return m.UploadFile(ctx, objectName, reader, int64(len(content)), "text/plain; charset=utf-8")
}

// ArchiveTranscript stores a plain-text copy of a persisted recording.
func (m *MinIOClient) ArchiveTranscript(ctx context.Context, recording *entities.MeetingRecording) error {
	return m.UploadText(ctx, TranscriptObjectName(recording), RenderTranscript(recording))
}

// TranscriptObjectName is recordings/<bookingID>/<recordingID>.txt.
func TranscriptObjectName(recording *entities.MeetingRecording) string {
	return fmt.Sprintf("recordings/%d/%d.txt", recording.BookingID, recording.ID)
}

// RenderTranscript formats a recording as a readable text document.
func RenderTranscript(recording *entities.MeetingRecording) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meeting: %d\n", recording.BookingID)
	fmt.Fprintf(&b, "Recorded by: %s (%s)\n", recording.UserName, recording.UserID)
	fmt.Fprintf(&b, "File: %s (%d bytes)\n", recording.FileName, recording.FileSizeBytes)
	fmt.Fprintf(&b, "Created: %s\n\n", recording.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC"))

	b.WriteString("Summary\n")
	b.WriteString(recording.Summary)
	b.WriteString("\n\nAction items\n")
	for i, item := range recording.ActionItems() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	b.WriteString("\nTranscript\n")
	b.WriteString(recording.Transcription)
	b.WriteString("\n")
	return b.String()
}
