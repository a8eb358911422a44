package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophrecharge/internal/client/models"
	"github.com/dmitrijs2005/gophrecharge/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, c models.Credential) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO credentials (name, value, expires_at, secure, same_site, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, models.CredentialName, c.Value, c.ExpiresAt.Unix(), c.Secure, int(c.SameSite), time.Now().Unix())
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Load(ctx context.Context) (models.Credential, bool, error) {
	var (
		c        models.Credential
		expires  int64
		sameSite int
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT value, expires_at, secure, same_site FROM credentials WHERE name = ?
	`, models.CredentialName).Scan(&c.Value, &expires, &c.Secure, &sameSite)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Credential{}, false, nil
	}
	if err != nil {
		return models.Credential{}, false, fmt.Errorf("failed to load credential: %w", err)
	}

	c.ExpiresAt = time.Unix(expires, 0)
	c.SameSite = http.SameSite(sameSite)
	return c, true, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
