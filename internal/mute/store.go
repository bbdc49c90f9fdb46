// Package mute keeps the per-group list of muted members.
//
// The registry lives in memory and is mirrored to a Persister: it is loaded
// once when the Store is opened and written back in full after every change.
package mute

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

var ErrInvalidID = errors.New("group and member ids must not be empty")

// Registry is the persisted shape: group id -> muted member ids.
type Registry map[string][]string

// Persister loads and saves the whole registry.
type Persister interface {
	Load(ctx context.Context) (Registry, error)
	Save(ctx context.Context, reg Registry) error
}

type Store struct {
	mu        sync.RWMutex
	groups    map[string]map[string]struct{}
	persister Persister
	log       *slog.Logger
}

// Open loads the registry from p. A backend with nothing stored yields an
// empty registry.
func Open(ctx context.Context, p Persister, log *slog.Logger) (*Store, error) {
	reg, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load mute registry: %w", err)
	}

	s := &Store{
		groups:    make(map[string]map[string]struct{}, len(reg)),
		persister: p,
		log:       log,
	}
	for group, members := range reg {
		for _, m := range members {
			s.add(group, m)
		}
	}

	log.Info("mute registry loaded", "groups", len(s.groups))
	return s, nil
}

func (s *Store) IsMuted(groupID, memberID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.groups[groupID][memberID]
	return ok
}

// Muted returns the sorted members muted in groupID.
func (s *Store) Muted(groupID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedKeys(s.groups[groupID])
}

// Mute adds memberID to groupID's set and persists the registry. Muting an
// already muted member changes nothing and reports added=false.
func (s *Store) Mute(ctx context.Context, groupID, memberID string) (bool, error) {
	groupID, memberID, err := normalize(groupID, memberID)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.add(groupID, memberID) {
		return false, nil
	}
	if err := s.persister.Save(ctx, s.snapshot()); err != nil {
		s.remove(groupID, memberID)
		return false, fmt.Errorf("persist mute of %s in %s: %w", memberID, groupID, err)
	}

	s.log.Debug("member muted", "group", groupID, "member", memberID)
	return true, nil
}

// Unmute removes memberID from groupID's set. It reports false without
// touching storage when the member was not muted.
func (s *Store) Unmute(ctx context.Context, groupID, memberID string) (bool, error) {
	groupID, memberID, err := normalize(groupID, memberID)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.remove(groupID, memberID) {
		return false, nil
	}
	if err := s.persister.Save(ctx, s.snapshot()); err != nil {
		s.add(groupID, memberID)
		return false, fmt.Errorf("persist unmute of %s in %s: %w", memberID, groupID, err)
	}

	s.log.Debug("member unmuted", "group", groupID, "member", memberID)
	return true, nil
}

// add and remove expect the lock to be held.
func (s *Store) add(groupID, memberID string) bool {
	set, ok := s.groups[groupID]
	if !ok {
		set = make(map[string]struct{})
		s.groups[groupID] = set
	}
	if _, exists := set[memberID]; exists {
		return false
	}
	set[memberID] = struct{}{}
	return true
}

func (s *Store) remove(groupID, memberID string) bool {
	set := s.groups[groupID]
	if _, exists := set[memberID]; !exists {
		return false
	}
	delete(set, memberID)
	if len(set) == 0 {
		delete(s.groups, groupID)
	}
	return true
}

func (s *Store) snapshot() Registry {
	reg := make(Registry, len(s.groups))
	for group, set := range s.groups {
		reg[group] = sortedKeys(set)
	}
	return reg
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func normalize(groupID, memberID string) (string, string, error) {
	groupID = strings.TrimSpace(groupID)
	memberID = strings.TrimSpace(memberID)
	if groupID == "" || memberID == "" {
		return "", "", ErrInvalidID
	}
	return groupID, memberID, nil
}
