//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 The flowgraph authors
//
// This file is part of flowgraph.
//
// flowgraph is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// flowgraph is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with flowgraph. If not, see https://www.gnu.org/licenses/.

package adapters

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hangy/flowgraph/block"
	"github.com/hangy/flowgraph/container"
)

// S3SinkError wraps an S3 object-sink failure with the operation that
// produced it.
type S3SinkError struct {
	Op  string
	Err error
}

func (e *S3SinkError) Error() string { return fmt.Sprintf("s3 sink %s: %v", e.Op, e.Err) }
func (e *S3SinkError) Unwrap() error { return e.Err }

// Object is a single pre-built payload for NewS3ObjectSink: a key and
// the bytes to store under it. Deriving Key/Body from a domain object
// is the caller's responsibility.
type Object struct {
	Key         string
	Body        []byte
	ContentType string
}

// S3SinkOptions configures NewS3ObjectSink.
type S3SinkOptions struct {
	Bucket          string
	Region          string
	Profile         string
	StaticAccessKey string
	StaticSecretKey string
	ForcePathStyle  bool
}

// S3SinkOption mutates S3SinkOptions during construction.
type S3SinkOption func(*S3SinkOptions)

func WithS3Region(region string) S3SinkOption {
	return func(o *S3SinkOptions) { o.Region = region }
}

func WithS3Profile(profile string) S3SinkOption {
	return func(o *S3SinkOptions) { o.Profile = profile }
}

// WithS3StaticCredentials bypasses the default credential chain with
// an explicit access key pair, for S3-compatible endpoints that do not
// support the usual profile/instance-role discovery.
func WithS3StaticCredentials(accessKey, secretKey string) S3SinkOption {
	return func(o *S3SinkOptions) { o.StaticAccessKey, o.StaticSecretKey = accessKey, secretKey }
}

func WithS3ForcePathStyle(force bool) S3SinkOption {
	return func(o *S3SinkOptions) { o.ForcePathStyle = force }
}

func resolveS3Options(bucket string, opts []S3SinkOption) S3SinkOptions {
	o := S3SinkOptions{Bucket: bucket, Region: "us-east-1"}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

// NewS3ObjectSink loads AWS configuration and returns an InputContainer
// leaf that PUTs each object it receives directly to bucket.
func NewS3ObjectSink(
	ctx context.Context, bucket string, opts ...S3SinkOption,
) (*container.InputContainer[Object], error) {
	o := resolveS3Options(bucket, opts)

	var loadOpts []func(*awsconfig.LoadOptions) error
	loadOpts = append(loadOpts, awsconfig.WithRegion(o.Region))
	if o.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(o.Profile))
	}
	if o.StaticAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.StaticAccessKey, o.StaticSecretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, &S3SinkError{Op: "load_config", Err: err}
	}

	client := s3.NewFromConfig(cfg, func(opts *s3.Options) {
		opts.UsePathStyle = o.ForcePathStyle
	})

	sink := block.NewActionBlock[Object](ctx, func(ctx context.Context, obj Object) error {
		input := &s3.PutObjectInput{
			Bucket: aws.String(o.Bucket),
			Key:    aws.String(obj.Key),
			Body:   bytes.NewReader(obj.Body),
		}
		if obj.ContentType != "" {
			input.ContentType = aws.String(obj.ContentType)
		}
		if _, err := client.PutObject(ctx, input); err != nil {
			return &S3SinkError{Op: "put_object", Err: err}
		}
		return nil
	})

	return container.NewInputContainer[Object](sink, container.WithContainerName(o.Bucket+"Sink"))
}
