package registry

import (
	"sort"
	"sync"

	commonerrors "github.com/AlibekovAA/no-tion/internal/common/errors"
	"github.com/AlibekovAA/no-tion/internal/observability/metrics"
	"github.com/AlibekovAA/no-tion/internal/user/domain"
)

// Registry maps usernames to their users for the lifetime of the process.
// Entries are never removed so a name can reconnect and resume its notes.
type Registry struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func New() *Registry {
	return &Registry{
		users: make(map[string]*domain.User),
	}
}

// ConnectOrCreate returns the user registered under name, creating it on
// first use. Concurrent first calls for the same name observe one user.
func (r *Registry) ConnectOrCreate(name string) (*domain.User, error) {
	if name == "" {
		return nil, commonerrors.ErrEmptyUsername
	}

	r.mu.RLock()
	user, ok := r.users[name]
	r.mu.RUnlock()
	if ok {
		return user, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[name]; ok {
		return user, nil
	}

	user = domain.NewUser(name)
	r.users[name] = user
	metrics.UsersRegistered.Set(float64(len(r.users)))

	return user, nil
}

func (r *Registry) Lookup(name string) (*domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[name]
	return user, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.users))
	for name := range r.users {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}
