package main

import (
	"bondoas/internal/collect"
	"time"

	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/pbnjay/grate/xls"
)

var (
	envBucketName   = "BONDOAS_DATA_BUCKET_NAME"
	envBucketPrefix = "BONDOAS_DATA_BUCKET_PREFIX"
	envReportURL    = "BONDOAS_VENDOR_REPORT_URL"
)

func collectData() error {
	bucketName := os.Getenv(envBucketName)
	if bucketName == "" {
		return fmt.Errorf("%s is not set", envBucketName)
	}
	reportURL := os.Getenv(envReportURL)
	if reportURL == "" {
		return fmt.Errorf("%s is not set", envReportURL)
	}

	bucketPrefix := os.Getenv(envBucketPrefix)

	path := &collect.S3Path{
		Bucket: bucketName,
		Prefix: bucketPrefix,
	}

	ctx := context.Background()

	collector := collect.NewVendorXLSCollector(reportURL)

	collected, err := collector.Collect(ctx, time.Now())
	if err != nil {
		return err
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	s3Client := s3.NewFromConfig(cfg)

	outPath, err := collect.StoreToS3(ctx, collected, s3Client, path)
	if err != nil {
		return err
	}

	fmt.Printf("Stored data to %s\n", outPath)

	return nil
}

func responseWithFailure(rec events.SQSMessage) events.SQSEventResponse {
	return events.SQSEventResponse{
		BatchItemFailures: []events.SQSBatchItemFailure{
			{
				ItemIdentifier: rec.MessageId,
			},
		},
	}
}

func handler(request events.SQSEvent) (events.SQSEventResponse, error) {
	err := collectData()

	if err != nil && len(request.Records) > 0 {
		rec := request.Records[0]
		return responseWithFailure(rec), fmt.Errorf("failed to collect data: %v", err)
	}

	return events.SQSEventResponse{}, nil
}

func main() {
	lambda.Start(handler)
}
