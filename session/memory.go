// Copyright (c) 2025 BVK Chaitanya

// Package session implements stores for pending trade selections.
package session

import (
	"context"

	"github.com/bvk/papertrade/syncmap"
	"github.com/bvk/papertrade/trade"
)

// MemStore keeps pending trade selections in process memory. All selections
// are lost when the process restarts.
type MemStore struct {
	m syncmap.Map[int64, *trade.Session]
}

func NewMemStore() *MemStore {
	return new(MemStore)
}

func (s *MemStore) Begin(_ context.Context, uid int64, v *trade.Session) error {
	x := *v
	s.m.Store(uid, &x)
	return nil
}

func (s *MemStore) Peek(_ context.Context, uid int64) (*trade.Session, error) {
	v, ok := s.m.Load(uid)
	if !ok {
		return nil, nil
	}
	x := *v
	return &x, nil
}

func (s *MemStore) Take(_ context.Context, uid int64) (*trade.Session, error) {
	v, ok := s.m.LoadAndDelete(uid)
	if !ok {
		return nil, nil
	}
	return v, nil
}
