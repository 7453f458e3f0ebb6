// Package collect implements the external collectors that feed the bond
// reference and treasury curve CSVs refdata parses: downloading a
// government XLS/CSV report, scraping a quote page, and persisting the
// result to local parquet or S3.
package collect

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/parquet-go/parquet-go"

	"bondoas/internal/refdata"
)

var ErrDataUnavailable = fmt.Errorf("collect: data unavailable for the requested date")
var ErrInvalidRow = fmt.Errorf("collect: invalid row")

// CollectedRecord pairs one parsed bond reference row with the error that
// prevented it from being used, if any.
type CollectedRecord struct {
	Record refdata.BondRecord
	Err    error
}

// CollectedBonds is the result of one collector run: the rows that parsed
// cleanly, plus the rows that didn't and why.
type CollectedBonds struct {
	Records        []refdata.BondRecord
	Failures       []CollectedRecord
	Source         string
	SettlementDate time.Time
}

func NewCollectedBonds(source string, date time.Time) *CollectedBonds {
	return &CollectedBonds{Source: source, SettlementDate: date}
}

func (c *CollectedBonds) Add(cr CollectedRecord) {
	if cr.Err == nil {
		c.Records = append(c.Records, cr.Record)
	} else {
		c.Failures = append(c.Failures, cr)
	}
}

// Collector fetches reference bond rows for a settlement date from one
// external source.
type Collector interface {
	Collect(ctx context.Context, date time.Time) (*CollectedBonds, error)
	Source() string
}

func writeRecords(records []refdata.BondRecord, output io.Writer) error {
	writer := parquet.NewGenericWriter[refdata.BondRecord](output)
	defer writer.Close()

	if _, err := writer.Write(records); err != nil {
		return fmt.Errorf("collect: failed to write records: %w", err)
	}
	return nil
}

// StoreToPath writes collected as parquet under basepath/YYYY/MM/DD/<source>.parquet.
func StoreToPath(collected *CollectedBonds, basepath string) (string, error) {
	date := collected.SettlementDate

	dir := fmt.Sprintf("%s%c%04d%c%02d%c%02d",
		basepath, filepath.Separator,
		date.UTC().Year(), filepath.Separator,
		date.UTC().Month(), filepath.Separator,
		date.UTC().Day())

	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", err
	}

	outPath := fmt.Sprintf("%s%c%s.parquet", dir, filepath.Separator, collected.Source)

	file, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := writeRecords(collected.Records, file); err != nil {
		return "", err
	}
	return outPath, nil
}

// S3Path is an s3://bucket/prefix destination.
type S3Path struct {
	Bucket string
	Prefix string
}

func ParseS3(path string) (*S3Path, error) {
	if !strings.HasPrefix(path, "s3://") {
		return nil, fmt.Errorf("collect: path must start with s3://")
	}
	path = strings.TrimPrefix(path, "s3://")
	parts := strings.SplitN(path, "/", 2)

	bucket := parts[0]
	var prefix string
	if len(parts) > 1 {
		prefix = strings.TrimSuffix(parts[1], "/")
	}

	return &S3Path{Bucket: bucket, Prefix: prefix}, nil
}

// StoreToS3 writes collected as parquet to dst, keyed by YYYY/MM/DD/<source>.parquet.
func StoreToS3(ctx context.Context, collected *CollectedBonds, client *s3.Client, dst *S3Path) (string, error) {
	tmp, err := os.CreateTemp("", "bondoas-*.parquet")
	if err != nil {
		return "", fmt.Errorf("collect: failed to create temp file: %w", err)
	}
	defer tmp.Close()
	defer os.Remove(tmp.Name())

	if err := writeRecords(collected.Records, tmp); err != nil {
		return "", err
	}
	if _, err := tmp.Seek(0, 0); err != nil {
		return "", fmt.Errorf("collect: failed to seek to start of file: %w", err)
	}

	date := collected.SettlementDate
	key := fmt.Sprintf("%04d/%02d/%02d/%s.parquet",
		date.UTC().Year(), date.UTC().Month(), date.UTC().Day(), collected.Source)
	if dst.Prefix != "" {
		key = fmt.Sprintf("%s/%s", dst.Prefix, key)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(dst.Bucket),
		Key:    aws.String(key),
		Body:   tmp,
	}
	if _, err := client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("collect: failed to upload to s3://%s/%s: %w", dst.Bucket, key, err)
	}

	return fmt.Sprintf("s3://%s/%s", dst.Bucket, key), nil
}
