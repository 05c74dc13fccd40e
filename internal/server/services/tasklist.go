package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sc "github.com/dmitrijs2005/procman/internal/server/config"
	"github.com/dmitrijs2005/procman/internal/server/models"
	"github.com/dmitrijs2005/procman/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// TaskListService stores an opaque per-user task-list document and hands out
// presigned object-storage URLs for archive upload/download.
type TaskListService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewTaskListService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config) *TaskListService {
	return &TaskListService{
		db:          db,
		repomanager: repomanager,
		config:      config,
	}
}

func GetRandomStorageKey(userID int64) string {
	d := time.Now()
	return fmt.Sprintf("tasklists/%d/%d/%d/%d/%v", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *TaskListService) Save(ctx context.Context, userID int64, data []byte) (*models.TaskList, error) {
	return s.repomanager.TaskLists(s.db).Save(ctx, userID, data)
}

func (s *TaskListService) Get(ctx context.Context, userID int64) (*models.TaskList, error) {
	return s.repomanager.TaskLists(s.db).Get(ctx, userID)
}

func (s *TaskListService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// ArchiveUploadURL returns a fresh storage key and a presigned PUT URL the
// client can upload a task-list archive to.
func (s *TaskListService) ArchiveUploadURL(ctx context.Context, userID int64) (string, string, error) {

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := GetRandomStorageKey(userID)

	// Presigned PUT
	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))

	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// ArchiveDownloadURL returns a presigned GET URL for a previously uploaded
// archive key.
func (s *TaskListService) ArchiveDownloadURL(ctx context.Context, key string) (string, error) {

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	// Presigned GET
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
