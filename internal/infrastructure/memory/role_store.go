package memory

import (
	"context"
	"sync"

	"github.com/eccennah/AuditStock/internal/domain/auth"
)

// RoleStore is an in-memory reference implementation of the external
// role/authorization store. The owner identity given at construction is
// bootstrapped as admin; further assignments go through Grant and Revoke.
type RoleStore struct {
	mu    sync.RWMutex
	roles map[auth.Identity]map[auth.Role]struct{}
}

func NewRoleStore(owner auth.Identity) *RoleStore {
	s := &RoleStore{
		roles: make(map[auth.Identity]map[auth.Role]struct{}),
	}
	if owner != auth.Anonymous {
		s.assign(owner, auth.RoleAdmin)
	}
	return s
}

func (s *RoleStore) HasRole(ctx context.Context, id auth.Identity, role auth.Role) bool {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.roles[id][role]
	return ok
}

// Grant assigns role to id. Only an admin may grant.
func (s *RoleStore) Grant(ctx context.Context, actor, id auth.Identity, role auth.Role) error {
	if !s.HasRole(ctx, actor, auth.RoleAdmin) {
		return auth.ErrNotAuthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.assign(id, role)
	return nil
}

// Revoke removes role from id. Only an admin may revoke.
func (s *RoleStore) Revoke(ctx context.Context, actor, id auth.Identity, role auth.Role) error {
	if !s.HasRole(ctx, actor, auth.RoleAdmin) {
		return auth.ErrNotAuthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if set, ok := s.roles[id]; ok {
		delete(set, role)
		if len(set) == 0 {
			delete(s.roles, id)
		}
	}
	return nil
}

func (s *RoleStore) assign(id auth.Identity, role auth.Role) {
	set, ok := s.roles[id]
	if !ok {
		set = make(map[auth.Role]struct{})
		s.roles[id] = set
	}
	set[role] = struct{}{}
}
