package credentials

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophrecharge/internal/client/models"
)

type MemoryRepository struct {
	mu    sync.Mutex
	c     models.Credential
	found bool
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Save(_ context.Context, c models.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.c, r.found = c, true
	return nil
}

func (r *MemoryRepository) Load(_ context.Context) (models.Credential, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.c, r.found, nil
}

func (r *MemoryRepository) Delete(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.c, r.found = models.Credential{}, false
	return nil
}
