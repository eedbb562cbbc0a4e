package asyncfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// NewDefaultS3Client builds an s3.Client from the standard AWS
// credential/region chain (env vars, shared config, instance profile).
// Pass the result to WithS3Client when an additional root or a write
// target uses an s3:// URI.
func NewDefaultS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("asyncfile: loading AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

func (fs *FileSystem) s3AttributesWith(ctx context.Context, bucket, key string) (exists, isDir, isDot bool, err error) {
	if fs.s3Client == nil {
		return false, false, false, errors.New("asyncfile: s3 root referenced but no S3 client configured")
	}
	_, err = fs.s3Client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err == nil {
		return true, false, false, nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchKey") {
		return false, false, false, nil
	}
	return false, false, false, err
}

type s3ReadHandle struct {
	body io.ReadCloser
	size int64
}

func (h *s3ReadHandle) Size() int64 { return h.size }

func (h *s3ReadHandle) ReadChunk(buf []byte) (n int, eof bool, err error) {
	n, err = h.body.Read(buf)
	if err == io.EOF {
		return n, true, nil
	}
	if err != nil {
		return n, false, err
	}
	return n, false, nil
}

func (h *s3ReadHandle) Close() error { return h.body.Close() }

func (fs *FileSystem) openS3ForRead(ctx context.Context, bucket, key string) (candidateHandle, int64, error) {
	if fs.s3Client == nil {
		return nil, 0, errors.New("asyncfile: s3 root referenced but no S3 client configured")
	}
	out, err := fs.s3Client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return nil, 0, err
	}
	size := int64(0)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return &s3ReadHandle{body: out.Body, size: size}, size, nil
}

func (fs *FileSystem) writeS3(ctx context.Context, bucket, key string, buf []byte) error {
	if fs.s3Client == nil {
		return errors.New("asyncfile: s3 root referenced but no S3 client configured")
	}
	_, err := fs.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(buf),
	})
	return err
}
