package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrInvalidS3URI is returned for paths that are not s3://bucket/key.
var ErrInvalidS3URI = errors.New("invalid S3 URI")

var errUploadAborted = errors.New("upload aborted")

// S3URI represents a parsed S3 URI.
type S3URI struct {
	Bucket string
	Key    string
}

func (u S3URI) String() string {
	if u.Key == "" {
		return "s3://" + u.Bucket
	}
	return "s3://" + u.Bucket + "/" + u.Key
}

// ParseS3URI parses an S3 URI like s3://bucket/path/to/object.
func ParseS3URI(uri string) (S3URI, error) {
	if !IsS3URI(uri) {
		return S3URI{}, fmt.Errorf("%w: %s: must start with s3://", ErrInvalidS3URI, uri)
	}

	bucket, key, _ := strings.Cut(strings.TrimPrefix(uri, "s3://"), "/")
	if bucket == "" {
		return S3URI{}, fmt.Errorf("%w: %s: missing bucket name", ErrInvalidS3URI, uri)
	}

	return S3URI{Bucket: bucket, Key: key}, nil
}

// S3Storage implements Storage for AWS S3.
type S3Storage struct {
	client   *s3.Client
	uploader *manager.Uploader
}

// NewS3Storage creates an S3 backend from the default AWS configuration.
// An empty region uses the region from the environment.
func NewS3Storage(ctx context.Context, region string) (*S3Storage, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewS3StorageFromClient(s3.NewFromConfig(cfg)), nil
}

// NewS3StorageFromClient wraps an existing S3 client.
func NewS3StorageFromClient(client *s3.Client) *S3Storage {
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 10 * 1024 * 1024
		u.Concurrency = 3
	})
	return &S3Storage{client: client, uploader: uploader}
}

func (s *S3Storage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	uri, err := parseObjectURI(path)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(uri.Bucket),
		Key:    aws.String(uri.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", uri, err)
	}
	return out.Body, nil
}

// Create streams writes to a multipart upload. The upload completes when
// the returned writer is closed and is cancelled when it is aborted.
func (s *S3Storage) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	uri, err := parseObjectURI(path)
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	w := &s3Writer{pw: pw, done: make(chan error, 1)}

	go func() {
		_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(uri.Bucket),
			Key:    aws.String(uri.Key),
			Body:   pr,
		})
		if err != nil {
			err = fmt.Errorf("failed to upload %s: %w", uri, err)
		}
		pr.CloseWithError(err)
		w.done <- err
	}()

	return w, nil
}

func (s *S3Storage) Exists(ctx context.Context, path string) (bool, error) {
	uri, err := parseObjectURI(path)
	if err != nil {
		return false, err
	}

	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(uri.Bucket),
		Key:    aws.String(uri.Key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func parseObjectURI(path string) (S3URI, error) {
	uri, err := ParseS3URI(path)
	if err != nil {
		return S3URI{}, err
	}
	if uri.Key == "" {
		return S3URI{}, fmt.Errorf("%w: %s: missing object key", ErrInvalidS3URI, path)
	}
	return uri, nil
}

type s3Writer struct {
	pw   *io.PipeWriter
	done chan error
	err  error
	once bool
}

func (w *s3Writer) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *s3Writer) Close() error {
	if w.once {
		return w.err
	}
	w.once = true
	_ = w.pw.Close()
	w.err = <-w.done
	return w.err
}

// Abort fails the upload with cause so the uploader discards any parts
// already sent and no object is stored.
func (w *s3Writer) Abort(cause error) error {
	if w.once {
		return w.err
	}
	w.once = true
	if cause == nil {
		cause = errUploadAborted
	}
	_ = w.pw.CloseWithError(cause)
	<-w.done
	return nil
}
