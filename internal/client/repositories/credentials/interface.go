package credentials

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophrecharge/internal/client/models"
)

// ErrStorageUnavailable is returned by repositories that cannot reach their
// storage medium.
var ErrStorageUnavailable = errors.New("credential storage unavailable")

type Repository interface {
	Save(ctx context.Context, c models.Credential) error
	// Load returns found=false and a nil error when nothing is stored.
	Load(ctx context.Context) (c models.Credential, found bool, err error)
	Delete(ctx context.Context) error
}

// Unavailable is a Repository whose storage is never reachable.
type Unavailable struct{}

func (Unavailable) Save(context.Context, models.Credential) error { return ErrStorageUnavailable }

func (Unavailable) Load(context.Context) (models.Credential, bool, error) {
	return models.Credential{}, false, ErrStorageUnavailable
}

func (Unavailable) Delete(context.Context) error { return ErrStorageUnavailable }
