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
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hangy/flowgraph/block"
	"github.com/hangy/flowgraph/container"
)

// MongoSinkError wraps a MongoDB bulk-sink failure with the operation
// that produced it.
type MongoSinkError struct {
	Op  string
	Err error
}

func (e *MongoSinkError) Error() string { return fmt.Sprintf("mongo sink %s: %v", e.Op, e.Err) }
func (e *MongoSinkError) Unwrap() error { return e.Err }

// MongoSinkOptions configures NewMongoBulkSink.
type MongoSinkOptions struct {
	URI           string
	Database      string
	Collection    string
	BatchSize     int
	Timeout       time.Duration
	Ordered       bool
	MaxPoolSize   uint64
}

// MongoSinkOption mutates MongoSinkOptions during construction.
type MongoSinkOption func(*MongoSinkOptions)

func WithMongoSinkBatchSize(n int) MongoSinkOption {
	return func(o *MongoSinkOptions) { o.BatchSize = n }
}

func WithMongoSinkOrdered(ordered bool) MongoSinkOption {
	return func(o *MongoSinkOptions) { o.Ordered = ordered }
}

func WithMongoSinkTimeout(d time.Duration) MongoSinkOption {
	return func(o *MongoSinkOptions) { o.Timeout = d }
}

func resolveMongoOptions(uri, database, collection string, opts []MongoSinkOption) MongoSinkOptions {
	o := MongoSinkOptions{
		URI:        uri,
		Database:   database,
		Collection: collection,
		BatchSize:  500,
		Timeout:    10 * time.Second,
		Ordered:    false,
	}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

type mongoBatcher struct {
	coll    *mongo.Collection
	opts    MongoSinkOptions
	mu      sync.Mutex
	pending []bson.M
}

func (m *mongoBatcher) add(ctx context.Context, doc bson.M) error {
	m.mu.Lock()
	m.pending = append(m.pending, doc)
	shouldFlush := len(m.pending) >= m.opts.BatchSize
	m.mu.Unlock()
	if shouldFlush {
		return m.flush(ctx)
	}
	return nil
}

func (m *mongoBatcher) flush(ctx context.Context) error {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()
	if len(batch) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, len(batch))
	for i, doc := range batch {
		models[i] = mongo.NewInsertOneModel().SetDocument(doc)
	}

	ctx, cancel := context.WithTimeout(ctx, m.opts.Timeout)
	defer cancel()

	bulkOpts := options.BulkWrite().SetOrdered(m.opts.Ordered)
	if _, err := m.coll.BulkWrite(ctx, models, bulkOpts); err != nil {
		return &MongoSinkError{Op: "bulk_write", Err: err}
	}
	return nil
}

// NewMongoBulkSink connects to MongoDB and returns an InputContainer
// leaf that batches incoming documents and flushes them via
// BulkWrite.
func NewMongoBulkSink(
	ctx context.Context, uri, database, collection string, opts ...MongoSinkOption,
) (*container.InputContainer[bson.M], *mongo.Client, error) {
	o := resolveMongoOptions(uri, database, collection, opts)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(o.URI))
	if err != nil {
		return nil, nil, &MongoSinkError{Op: "connect", Err: err}
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, nil, &MongoSinkError{Op: "ping", Err: err}
	}

	coll := client.Database(o.Database).Collection(o.Collection)
	batcher := &mongoBatcher{coll: coll, opts: o}

	sink := block.NewActionBlock[bson.M](ctx, func(ctx context.Context, doc bson.M) error {
		return batcher.add(ctx, doc)
	})

	ic, err := container.NewInputContainer[bson.M](sink, container.WithContainerName(o.Collection+"Sink"))
	if err != nil {
		client.Disconnect(ctx)
		return nil, nil, err
	}

	go func() {
		<-sink.Completion().Done()
		batcher.flush(context.Background())
	}()

	return ic, client, nil
}
