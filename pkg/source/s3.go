package source

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vango-dev/emtpl/internal/errors"
)

// S3API is the subset of *s3.Client used by S3.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// S3 loads templates from objects in an S3 bucket. Template "a/b" is the
// object prefix + "a/b" + extension.
//
// Example usage:
//
//	client := source.NewS3Client("eu-west-1")
//	src := source.NewS3(client, "my-bucket", "templates/", ".html")
type S3 struct {
	client S3API
	bucket string
	prefix string
	ext    string
}

// NewS3 creates an S3 source.
func NewS3(client S3API, bucket, prefix, ext string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix, ext: ext}
}

// NewS3Client creates an S3 client for region using the standard
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN
// environment variables.
func NewS3Client(region string) *s3.Client {
	return s3.New(s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	})
}

func envCredentials(context.Context) (aws.Credentials, error) {
	id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, stderrors.New("source: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}, nil
}

// Load implements Source.
func (s *S3) Load(ctx context.Context, name string) (string, error) {
	n, err := cleanName(name)
	if err != nil {
		return "", err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + n + s.ext),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if stderrors.As(err, &nsk) {
			return "", notFound(name)
		}
		return "", errors.New("S002").WithDetail("s3://" + s.bucket + "/" + s.prefix + n + s.ext).Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", errors.New("S002").Wrap(err)
	}
	return string(data), nil
}

// List implements Source.
func (s *S3) List(ctx context.Context) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var names []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.New("S002").Wrap(err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil || !strings.HasSuffix(*obj.Key, s.ext) {
				continue
			}
			names = append(names, strings.TrimSuffix(strings.TrimPrefix(*obj.Key, s.prefix), s.ext))
		}
	}
	sort.Strings(names)
	return names, nil
}
