package labeltext

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dosewise/dosewise-platform/pkg/logging"
)

// s3API is the subset of the S3 client the archive uses.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archive keeps raw fetched label documents in S3 so rule extraction can be
// re-run against historical labels. If bucket is empty, all writes are no-ops.
type Archive struct {
	bucket   string
	s3Client s3API
	logger   *logging.Logger
}

func NewArchive(s3Client s3API, bucket string, logger *logging.Logger) *Archive {
	if logger == nil {
		logger = logging.Default()
	}
	return &Archive{bucket: bucket, s3Client: s3Client, logger: logger}
}

// Enabled reports whether archival is configured.
func (a *Archive) Enabled() bool {
	return a != nil && a.bucket != "" && a.s3Client != nil
}

// Store writes the label sections as JSON, keyed by medication name and
// fetch date.
func (a *Archive) Store(ctx context.Context, medName string, s *Sections) error {
	if !a.Enabled() || s == nil {
		return nil
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("labeltext: marshal label: %w", err)
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("labels/v1/%s/%d-%02d-%02d.json",
		slugify(medName), now.Year(), now.Month(), now.Day())

	_, err = a.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("labeltext: s3 put %s: %w", key, err)
	}

	a.logger.Debug("archived label document", "medication", medName, "s3_key", key)
	return nil
}

func slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, name)
}
