package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/minibank/internal/common"
	"github.com/dmitrijs2005/minibank/internal/logging"
	"github.com/dmitrijs2005/minibank/internal/money"
	"github.com/dmitrijs2005/minibank/internal/server/config"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	timeNow = time.Now
)

// Statement is a stored account statement and a temporary link to it.
type Statement struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

type statementDocument struct {
	Username    string          `json:"username"`
	GeneratedAt time.Time       `json:"generated_at"`
	Balance     string          `json:"balance"`
	Entries     []statementLine `json:"entries"`
}

type statementLine struct {
	ID        int64     `json:"id"`
	Direction string    `json:"direction"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Amount    string    `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// StatementService renders account history to JSON in object storage.
type StatementService struct {
	transfers *TransferService
	config    *config.Config
	log       logging.Logger
}

func NewStatementService(transfers *TransferService, cfg *config.Config, log logging.Logger) *StatementService {
	return &StatementService{transfers: transfers, config: cfg, log: log.With("module", "statements")}
}

// StatementKey builds the object key for a statement generated at t.
func StatementKey(username string, t time.Time) string {
	return fmt.Sprintf("statements/%s/%04d/%02d/%02d/%s.json", username, t.Year(), int(t.Month()), t.Day(), uuid.New())
}

func (s *StatementService) clients(ctx context.Context) (*s3.Client, *s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, newS3PresignClient(client), nil
}

// Export writes the latest limit history entries plus the current balance
// and returns a presigned GET link valid for the configured TTL.
func (s *StatementService) Export(ctx context.Context, username string, limit int) (*Statement, error) {
	balance, err := s.transfers.GetBalance(ctx, username)
	if err != nil {
		return nil, err
	}
	entries, err := s.transfers.GetHistory(ctx, username, limit)
	if err != nil {
		return nil, err
	}

	now := timeNow().UTC()
	doc := statementDocument{
		Username:    username,
		GeneratedAt: now,
		Balance:     money.Format(balance),
		Entries:     make([]statementLine, 0, len(entries)),
	}
	for _, e := range entries {
		doc.Entries = append(doc.Entries, statementLine{
			ID:        e.ID,
			Direction: string(e.Direction),
			Sender:    e.SenderUsername,
			Receiver:  e.ReceiverUsername,
			Amount:    money.Format(e.Amount),
			Status:    e.Status,
			CreatedAt: e.CreatedAt,
		})
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, s.storageFault(ctx, "encode statement", username, err)
	}

	client, presignClient, err := s.clients(ctx)
	if err != nil {
		return nil, s.storageFault(ctx, "init object storage", username, err)
	}

	bucket := s.config.S3Bucket
	key := StatementKey(username, now)

	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return nil, s.storageFault(ctx, "upload statement", username, err)
	}

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.StatementURLTTL))
	if err != nil {
		return nil, s.storageFault(ctx, "presign statement", username, err)
	}

	s.log.Info(ctx, "statement exported", "username", username, "key", key, "entries", len(doc.Entries))
	return &Statement{Key: key, URL: req.URL, ExpiresAt: now.Add(s.config.StatementURLTTL)}, nil
}

func (s *StatementService) storageFault(ctx context.Context, op, username string, err error) error {
	s.log.Error(ctx, op+" failed", "username", username, "error", err)
	return common.WrapError(common.CodeInternal, "statement storage unavailable", err)
}
