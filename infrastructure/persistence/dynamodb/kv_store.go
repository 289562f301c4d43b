// Package dynamodb stores records in a DynamoDB table keyed by PK/SK.
//
// Each record has a manifest item at SK=CURRENT. Values up to ChunkBytes live
// inline on the manifest; larger values are split across chunk items at
// SK=CURRENT#<generation>#<index>, and the manifest names the generation that
// is live. A write lands its chunks first and then flips the manifest with a
// conditional put, so readers never see a half-written generation.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forever-us/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

const currentSK = "CURRENT"

const (
	// ChunkBytes is the largest slice of a value written to one item.
	// DynamoDB caps an item at 400 KB including attribute names and keys.
	ChunkBytes = 350 << 10

	// MaxValueBytes is the largest value Put accepts
	MaxValueBytes = 32 << 20
)

// ErrConcurrentWrite is returned when another writer replaced the record
// between reading and flipping the manifest
var ErrConcurrentWrite = errors.New("record was replaced concurrently")

// Client is the subset of the DynamoDB API the store uses
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// ddbManifest represents the item that names the live value of a record.
// Items written before chunking have only Document and read as generation 0.
type ddbManifest struct {
	PK         string `dynamodbav:"PK"`                  // DOCUMENT#<key>
	SK         string `dynamodbav:"SK"`                  // CURRENT
	Document   []byte `dynamodbav:"Document,omitempty"`  // inline value when Chunks is 0
	Generation int64  `dynamodbav:"Generation"`          // bumped on every write
	Chunks     int    `dynamodbav:"Chunks"`              // number of chunk items
	Size       int    `dynamodbav:"Size"`                // value length in bytes
	UpdatedAt  string `dynamodbav:"UpdatedAt,omitempty"` // RFC3339 timestamp
}

// ddbChunk represents one slice of a chunked value
type ddbChunk struct {
	PK   string `dynamodbav:"PK"` // DOCUMENT#<key>
	SK   string `dynamodbav:"SK"` // CURRENT#<generation>#<index>
	Data []byte `dynamodbav:"Data"`
}

// KVStore keeps records in a DynamoDB table
type KVStore struct {
	client    Client
	tableName string
	logger    *zap.Logger
}

var _ ports.KeyValueStore = (*KVStore)(nil)

// NewKVStore creates a store over an existing table
func NewKVStore(client Client, tableName string, logger *zap.Logger) *KVStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KVStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Get reads the manifest and, for chunked values, every chunk of the live generation
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	m, found, err := s.readManifest(ctx, key, "Document", "Generation", "Chunks", "Size")
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ports.ErrKeyNotFound
	}
	if m.Chunks == 0 {
		return m.Document, nil
	}

	value := make([]byte, 0, m.Size)
	for i := 0; i < m.Chunks; i++ {
		data, err := s.readChunk(ctx, key, m.Generation, i)
		if err != nil {
			return nil, err
		}
		value = append(value, data...)
	}
	if len(value) != m.Size {
		return nil, fmt.Errorf("document generation %d is %d bytes, manifest says %d", m.Generation, len(value), m.Size)
	}
	return value, nil
}

// Put writes value as a new generation and retires the previous one.
// Values over MaxValueBytes are rejected with ports.ErrValueTooLarge before
// anything is written.
func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	if len(value) > MaxValueBytes {
		return fmt.Errorf("%w: document is %d bytes, the dynamodb store holds at most %d",
			ports.ErrValueTooLarge, len(value), MaxValueBytes)
	}

	prev, exists, err := s.readManifest(ctx, key, "Generation", "Chunks")
	if err != nil {
		return err
	}

	next := ddbManifest{
		PK:         partitionKey(key),
		SK:         currentSK,
		Generation: prev.Generation + 1,
		Size:       len(value),
		UpdatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if len(value) <= ChunkBytes {
		next.Document = value
	} else {
		for i, part := range split(value, ChunkBytes) {
			if err := s.writeChunk(ctx, key, next.Generation, i, part); err != nil {
				s.deleteChunks(ctx, key, next.Generation, i)
				return err
			}
			next.Chunks = i + 1
		}
	}

	if err := s.writeManifest(ctx, next, prev, exists); err != nil {
		s.deleteChunks(ctx, key, next.Generation, next.Chunks)
		return err
	}

	if prev.Chunks > 0 {
		s.deleteChunks(ctx, key, prev.Generation, prev.Chunks)
	}

	s.logger.Debug("Stored document",
		zap.String("table", s.tableName),
		zap.String("pk", partitionKey(key)),
		zap.Int64("generation", next.Generation),
		zap.Int("chunks", next.Chunks),
		zap.Int("bytes", len(value)),
	)
	return nil
}

// Close is a no-op; the SDK client holds no resources that need releasing
func (s *KVStore) Close() error {
	return nil
}

func (s *KVStore) readManifest(ctx context.Context, key string, fields ...string) (ddbManifest, bool, error) {
	var m ddbManifest
	item, err := s.getItem(ctx, itemKey(key, currentSK), fields...)
	if err != nil {
		return m, false, err
	}
	if len(item) == 0 {
		return m, false, nil
	}
	if err := attributevalue.UnmarshalMap(item, &m); err != nil {
		return m, false, fmt.Errorf("failed to unmarshal document item: %w", err)
	}
	return m, true, nil
}

func (s *KVStore) readChunk(ctx context.Context, key string, generation int64, index int) ([]byte, error) {
	item, err := s.getItem(ctx, itemKey(key, chunkSK(generation, index)), "Data")
	if err != nil {
		return nil, err
	}
	if len(item) == 0 {
		return nil, fmt.Errorf("chunk %d of document generation %d is missing", index, generation)
	}
	var chunk ddbChunk
	if err := attributevalue.UnmarshalMap(item, &chunk); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chunk item: %w", err)
	}
	return chunk.Data, nil
}

func (s *KVStore) getItem(ctx context.Context, key map[string]types.AttributeValue, fields ...string) (map[string]types.AttributeValue, error) {
	proj := expression.NamesList(expression.Name(fields[0]))
	for _, f := range fields[1:] {
		proj = proj.AddNames(expression.Name(f))
	}
	expr, err := expression.NewBuilder().WithProjection(proj).Build()
	if err != nil {
		return nil, fmt.Errorf("build projection: %w", err)
	}

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(s.tableName),
		Key:                      key,
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
		ConsistentRead:           aws.Bool(true),
	})
	if err != nil {
		return nil, s.apiFailure("get item", err)
	}
	return result.Item, nil
}

func (s *KVStore) writeChunk(ctx context.Context, key string, generation int64, index int, data []byte) error {
	item, err := attributevalue.MarshalMap(ddbChunk{
		PK:   partitionKey(key),
		SK:   chunkSK(generation, index),
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal chunk item: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return s.apiFailure(fmt.Sprintf("put chunk %d", index), err)
	}
	return nil
}

// writeManifest replaces the manifest only if it still names prev
func (s *KVStore) writeManifest(ctx context.Context, next, prev ddbManifest, exists bool) error {
	item, err := attributevalue.MarshalMap(next)
	if err != nil {
		return fmt.Errorf("failed to marshal document item: %w", err)
	}

	var cond expression.ConditionBuilder
	switch {
	case !exists:
		cond = expression.AttributeNotExists(expression.Name("PK"))
	case prev.Generation == 0:
		cond = expression.AttributeNotExists(expression.Name("Generation"))
	default:
		cond = expression.Name("Generation").Equal(expression.Value(prev.Generation))
	}
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("build condition: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	var conflict *types.ConditionalCheckFailedException
	if errors.As(err, &conflict) {
		return fmt.Errorf("%w: expected generation %d", ErrConcurrentWrite, prev.Generation)
	}
	if err != nil {
		return s.apiFailure("put item", err)
	}
	return nil
}

// deleteChunks removes chunk items [0, count) of a generation. Failures only
// leave unreachable items behind, so they are logged and not returned.
func (s *KVStore) deleteChunks(ctx context.Context, key string, generation int64, count int) {
	for i := 0; i < count; i++ {
		_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.tableName),
			Key:       itemKey(key, chunkSK(generation, i)),
		})
		if err != nil {
			s.logger.Warn("Failed to delete stale document chunk",
				zap.String("pk", partitionKey(key)),
				zap.Int64("generation", generation),
				zap.Int("chunk", i),
				zap.Error(err),
			)
		}
	}
}

// apiFailure wraps a failed call, naming the service error code when there is one
func (s *KVStore) apiFailure(operation string, err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("dynamodb %s: %w", operation, err)
	}
	s.logger.Warn("DynamoDB rejected call",
		zap.String("table", s.tableName),
		zap.String("operation", operation),
		zap.String("code", apiErr.ErrorCode()),
		zap.String("fault", apiErr.ErrorFault().String()),
	)
	return fmt.Errorf("dynamodb %s: %s: %w", operation, apiErr.ErrorCode(), err)
}

func split(value []byte, size int) [][]byte {
	parts := make([][]byte, 0, (len(value)+size-1)/size)
	for len(value) > size {
		parts = append(parts, value[:size])
		value = value[size:]
	}
	return append(parts, value)
}

func partitionKey(key string) string {
	return fmt.Sprintf("DOCUMENT#%s", key)
}

func chunkSK(generation int64, index int) string {
	return fmt.Sprintf("%s#%d#%04d", currentSK, generation, index)
}

func itemKey(key, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: partitionKey(key)},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}
