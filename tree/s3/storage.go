package s3

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/mwantia/projtree/data"
	"github.com/mwantia/projtree/tree"
)

const snapshotName = "tree.json"

// Storage persists project tree records as a single JSON snapshot object in
// an S3 compatible bucket.
//
// The snapshot is rewritten on every mutation. A failed upload leaves the
// previous records in place.
type Storage struct {
	mu sync.Mutex

	client     *minio.Client
	bucketName string
	key        string

	records map[int64]tree.Record
}

type snapshot struct {
	Records []tree.Record `json:"records"`
}

// Config contains the connection settings of the bucket.
type Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool

	// Prefix is prepended to the snapshot object name (optional)
	Prefix string
}

func New(config *Config) (*Storage, error) {
	if config == nil || config.Endpoint == "" || config.Bucket == "" {
		return nil, fmt.Errorf("s3 storage requires an endpoint and a bucket")
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	return &Storage{
		client:     client,
		bucketName: config.Bucket,
		key:        snapshotKey(config.Prefix),
		records:    make(map[int64]tree.Record),
	}, nil
}

// Open creates the storage and loads it into a tree.
func Open(ctx context.Context, config *Config) (*tree.Persistent, error) {
	s, err := New(config)
	if err != nil {
		return nil, err
	}
	return tree.Open(ctx, s)
}

func snapshotKey(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return snapshotName
	}
	return prefix + "/" + snapshotName
}

func (*Storage) Name() string {
	return "s3"
}

func (s *Storage) Load(ctx context.Context) ([]tree.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("bucket '%s' does not exist", s.bucketName)
	}

	if _, err := s.client.StatObject(ctx, s.bucketName, s.key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			s.records = make(map[int64]tree.Record)
			return nil, nil
		}
		return nil, err
	}

	object, err := s.client.GetObject(ctx, s.bucketName, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer object.Close()

	var snap snapshot
	if err := json.NewDecoder(object).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode '%s': %w", s.key, err)
	}

	s.records = make(map[int64]tree.Record, len(snap.Records))
	for _, record := range snap.Records {
		s.records[record.ID] = record
	}

	return snap.Records, nil
}

func (s *Storage) Insert(ctx context.Context, record tree.Record) error {
	return s.apply(ctx, func(records map[int64]tree.Record) error {
		if _, exists := records[record.ID]; exists {
			return data.Exists(record.ID)
		}
		records[record.ID] = record
		return nil
	})
}

func (s *Storage) Move(ctx context.Context, id, parentID, position int64) error {
	return s.apply(ctx, func(records map[int64]tree.Record) error {
		record, exists := records[id]
		if !exists {
			return data.NotFound("item %d", id)
		}
		record.ParentID = parentID
		record.Position = position
		records[id] = record
		return nil
	})
}

func (s *Storage) Rename(ctx context.Context, id int64, name string) error {
	return s.apply(ctx, func(records map[int64]tree.Record) error {
		record, exists := records[id]
		if !exists {
			return data.NotFound("item %d", id)
		}
		record.Name = name
		records[id] = record
		return nil
	})
}

func (s *Storage) Delete(ctx context.Context, ids []int64) error {
	return s.apply(ctx, func(records map[int64]tree.Record) error {
		for _, id := range ids {
			delete(records, id)
		}
		return nil
	})
}

func (s *Storage) Close(ctx context.Context) error {
	return nil
}

// apply runs fn on a copy of the records and uploads the result. The
// records are only replaced once the upload succeeded.
func (s *Storage) apply(ctx context.Context, fn func(records map[int64]tree.Record) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := maps.Clone(s.records)
	if err := fn(records); err != nil {
		return err
	}

	value, err := encode(records)
	if err != nil {
		return err
	}

	if _, err := s.client.PutObject(ctx, s.bucketName, s.key, bytes.NewReader(value), int64(len(value)), minio.PutObjectOptions{
		ContentType: "application/json",
	}); err != nil {
		return err
	}

	s.records = records
	return nil
}

// encode writes the records ordered by position.
func encode(records map[int64]tree.Record) ([]byte, error) {
	snap := snapshot{Records: slices.Collect(maps.Values(records))}
	slices.SortFunc(snap.Records, func(a, b tree.Record) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return json.Marshal(snap)
}
