package rediskv

import (
	"context"
	"slices"
	"sync"

	"github.com/kailas-cloud/termdex/internal/db"
)

// fakeKV is an in-memory kv with per-command error injection.
type fakeKV struct {
	mu     sync.Mutex
	values map[string][]byte
	sets   map[string]map[string]struct{}

	errs  map[string]error // keyed by db.Op*
	calls map[string]int
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		values: make(map[string][]byte),
		sets:   make(map[string]map[string]struct{}),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (f *fakeKV) hit(op string) error {
	f.calls[op]++
	return f.errs[op]
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit(db.OpGet); err != nil {
		return nil, err
	}
	v, ok := f.values[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return slices.Clone(v), nil
}

func (f *fakeKV) MGet(_ context.Context, keys []string) ([][]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit(db.OpMGet); err != nil {
		return nil, err
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		if v, ok := f.values[k]; ok {
			out[i] = slices.Clone(v)
		}
	}
	return out, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit(db.OpSet); err != nil {
		return err
	}
	f.values[key] = slices.Clone(value)
	return nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit(db.OpDel); err != nil {
		return err
	}
	for _, k := range keys {
		delete(f.values, k)
		delete(f.sets, k)
	}
	return nil
}

func (f *fakeKV) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit(db.OpExists); err != nil {
		return false, err
	}
	_, ok := f.values[key]
	if !ok {
		_, ok = f.sets[key]
	}
	return ok, nil
}

func (f *fakeKV) SAdd(_ context.Context, key string, members ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit(db.OpSAdd); err != nil {
		return err
	}
	set, ok := f.sets[key]
	if !ok {
		set = make(map[string]struct{})
		f.sets[key] = set
	}
	for _, m := range members {
		set[m] = struct{}{}
	}
	return nil
}

func (f *fakeKV) SRem(_ context.Context, key string, members ...string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit(db.OpSRem); err != nil {
		return 0, err
	}
	var n int64
	set := f.sets[key]
	for _, m := range members {
		if _, ok := set[m]; ok {
			delete(set, m)
			n++
		}
	}
	if set != nil && len(set) == 0 {
		delete(f.sets, key)
	}
	return n, nil
}

func (f *fakeKV) SMembers(_ context.Context, key string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit(db.OpSMembers); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(f.sets[key]))
	for m := range f.sets[key] {
		out = append(out, m)
	}
	return out, nil
}
