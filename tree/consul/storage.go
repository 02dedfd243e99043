package consul

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/projtree/data"
	"github.com/mwantia/projtree/tree"
)

// Consul rejects transactions with more operations.
const maxTxnOps = 64

// Storage persists project tree records in the Consul KV store.
//
// Every record is a JSON value under "<prefix>/items/<id>". Values are
// rewritten with check-and-set, so concurrent writers fail instead of
// overwriting each other.
type Storage struct {
	mu     sync.Mutex
	kv     *api.KV
	config *Config
}

// Config contains configuration options for the Consul storage.
type Config struct {
	// Address of the Consul server (default: "127.0.0.1:8500")
	Address string

	// Token for Consul ACL authentication (optional)
	Token string

	// Datacenter to use (optional)
	Datacenter string

	// Prefix for all keys of the tree (default: "projtree")
	Prefix string
}

func New(config *Config) (*Storage, error) {
	if config == nil {
		config = &Config{}
	}
	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}
	if config.Prefix == "" {
		config.Prefix = "projtree"
	}

	clientConfig := api.DefaultConfig()
	clientConfig.Address = config.Address
	if config.Token != "" {
		clientConfig.Token = config.Token
	}
	if config.Datacenter != "" {
		clientConfig.Datacenter = config.Datacenter
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}

	return &Storage{
		kv:     client.KV(),
		config: config,
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

func (*Storage) Name() string {
	return "consul"
}

// itemsPrefix returns the key prefix shared by every record.
func (s *Storage) itemsPrefix() string {
	return strings.Trim(s.config.Prefix, "/") + "/items/"
}

func (s *Storage) key(id int64) string {
	return s.itemsPrefix() + strconv.FormatInt(id, 10)
}

func (s *Storage) Load(ctx context.Context) ([]tree.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairs, _, err := s.kv.List(s.itemsPrefix(), (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}

	records := make([]tree.Record, 0, len(pairs))
	for _, pair := range pairs {
		var record tree.Record
		if err := json.Unmarshal(pair.Value, &record); err != nil {
			return nil, fmt.Errorf("failed to decode '%s': %w", pair.Key, err)
		}
		records = append(records, record)
	}

	return records, nil
}

func (s *Storage) Insert(ctx context.Context, record tree.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, err := json.Marshal(record)
	if err != nil {
		return err
	}

	// A ModifyIndex of 0 only writes keys that do not exist yet
	pair := &api.KVPair{Key: s.key(record.ID), Value: value}
	ok, _, err := s.kv.CAS(pair, (&api.WriteOptions{}).WithContext(ctx))
	if err != nil {
		return err
	}
	if !ok {
		return data.Exists(record.ID)
	}
	return nil
}

func (s *Storage) Move(ctx context.Context, id, parentID, position int64) error {
	return s.update(ctx, id, func(record *tree.Record) {
		record.ParentID = parentID
		record.Position = position
	})
}

func (s *Storage) Rename(ctx context.Context, id int64, name string) error {
	return s.update(ctx, id, func(record *tree.Record) {
		record.Name = name
	})
}

func (s *Storage) update(ctx context.Context, id int64, fn func(record *tree.Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair, _, err := s.kv.Get(s.key(id), (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return err
	}
	if pair == nil {
		return data.NotFound("item %d", id)
	}

	var record tree.Record
	if err := json.Unmarshal(pair.Value, &record); err != nil {
		return fmt.Errorf("failed to decode '%s': %w", pair.Key, err)
	}
	fn(&record)

	if pair.Value, err = json.Marshal(record); err != nil {
		return err
	}

	ok, _, err := s.kv.CAS(pair, (&api.WriteOptions{}).WithContext(ctx))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("item %d was modified concurrently", id)
	}
	return nil
}

// Delete removes the records in transactions of at most maxTxnOps keys.
func (s *Storage) Delete(ctx context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for start := 0; start < len(ids); start += maxTxnOps {
		end := min(start+maxTxnOps, len(ids))

		ops := make(api.KVTxnOps, 0, end-start)
		for _, id := range ids[start:end] {
			ops = append(ops, &api.KVTxnOp{Verb: api.KVDelete, Key: s.key(id)})
		}

		ok, response, _, err := s.kv.Txn(ops, (&api.QueryOptions{}).WithContext(ctx))
		if err != nil {
			return err
		}
		if !ok {
			return txnError(response)
		}
	}

	return nil
}

// Close does nothing, the Consul client holds no connection state.
func (s *Storage) Close(ctx context.Context) error {
	return nil
}

// Truncate deletes every record of the tree.
func (s *Storage) Truncate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.kv.DeleteTree(s.itemsPrefix(), (&api.WriteOptions{}).WithContext(ctx))
	return err
}

func txnError(response *api.KVTxnResponse) error {
	if response == nil || len(response.Errors) == 0 {
		return fmt.Errorf("consul transaction rolled back")
	}

	messages := make([]string, 0, len(response.Errors))
	for _, e := range response.Errors {
		messages = append(messages, e.What)
	}
	return fmt.Errorf("consul transaction rolled back: %s", strings.Join(messages, "; "))
}
