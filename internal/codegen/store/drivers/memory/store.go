// Package memory provides an in-process Store for tests and single-node
// deployments that do not need persistence across restarts.
package memory

import (
	"context"

	"github.com/adwaithkm1/web-code-generator/internal/codegen/store"
)

type Store struct {
	accounts  *accountsRepo
	artifacts *artifactsRepo
	sessions  *sessionsRepo
}

func NewStore() *Store {
	return &Store{
		accounts:  newAccountsRepo(),
		artifacts: newArtifactsRepo(),
		sessions:  newSessionsRepo(),
	}
}

func (s *Store) Accounts() store.Accounts   { return s.accounts }
func (s *Store) Artifacts() store.Artifacts { return s.artifacts }
func (s *Store) Sessions() store.Sessions   { return s.sessions }

// ApplyMigrations is a no-op; the in-memory driver has no schema.
func (s *Store) ApplyMigrations() error { return nil }

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }
