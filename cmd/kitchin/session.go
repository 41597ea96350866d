package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ramsey-B/kitchin/db"
	"github.com/Ramsey-B/kitchin/internal/services/catalog"
	"github.com/Ramsey-B/kitchin/pkg/client"
	"github.com/Ramsey-B/kitchin/pkg/initialize"
	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/mutations"
	"github.com/Ramsey-B/kitchin/pkg/projections"
	"github.com/Ramsey-B/kitchin/pkg/replica"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// session is a short lived replica. Against KITCHIN_SERVER_URL it syncs with the server;
// without one it runs on an in-memory store holding only the built-in catalog.
type session struct {
	store    *replica.Store
	contract *mutations.Contract
	remote   bool
}

func openSession(ctx context.Context, e *env) (*session, error) {
	var backend replica.Backend
	remote := e.cfg.ServerURL != ""

	if remote {
		cfg := client.DefaultConfig()
		cfg.BaseURL = e.cfg.ServerURL
		cfg.ClientID = e.cfg.ClientID
		c, err := client.NewClient(cfg, e.logger)
		if err != nil {
			return nil, err
		}
		backend = c
	} else {
		items, err := builtinCatalog()
		if err != nil {
			return nil, err
		}
		backend = replica.NewMemoryBackend(items...)
		e.logger.Warn("KITCHIN_SERVER_URL is not set, changes are kept in memory only")
	}

	store := replica.NewStore(backend, e.logger, replica.Config{
		RetryBaseDelay: e.cfg.ReplicaRetryBaseDelay,
		RetryMaxDelay:  e.cfg.ReplicaRetryMaxDelay,
	})
	if err := store.Refresh(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	contract := mutations.NewContract(store, e.logger, mutations.WithSingletonPolicy(mutations.SingletonPolicy(e.cfg.SingletonPolicy)))

	if !remote {
		if _, err := initialize.NewInitializer(contract, nil, e.logger).Observe(ctx, store.Snapshot()); err != nil {
			store.Close()
			return nil, err
		}
	}

	return &session{store: store, contract: contract, remote: remote}, nil
}

// close pushes everything that is still pending and stops the replica.
func (s *session) close(ctx context.Context) error {
	defer s.store.Close()
	return s.store.Flush(ctx)
}

// selection resolves the plan and list to work on. Ids given with --plan or --list must
// exist.
func (s *session) selection(planID, listID string) (projections.Selection, error) {
	return projections.ResolveExplicitSelection(s.store.Snapshot(), projections.Selection{
		MealPlanID:     planID,
		ShoppingListID: listID,
	})
}

// withSession opens a session for fn and flushes it afterwards, keeping fn's error first.
func withSession(cmd *cobra.Command, e *env, fn func(s *session) error) error {
	s, err := openSession(cmd.Context(), e)
	if err != nil {
		return err
	}

	runErr := fn(s)
	closeErr := s.close(cmd.Context())
	return errors.Join(runErr, closeErr)
}

func builtinCatalog() ([]models.CommonGroceryItem, error) {
	f, err := db.Files.Open(db.CatalogSeed)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	items, err := catalog.Parse(f)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].ID = uuid.New().String()
	}
	return items, nil
}

func newWatchCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print change events from the server until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if e.cfg.ServerURL == "" {
				return errors.New("watch needs KITCHIN_SERVER_URL")
			}

			cfg := client.DefaultConfig()
			cfg.BaseURL = e.cfg.ServerURL
			cfg.ClientID = e.cfg.ClientID
			c, err := client.NewClient(cfg, e.logger)
			if err != nil {
				return err
			}

			return c.Watch(cmd.Context(), func(event models.ChangeEvent) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n", event.OccurredAt.Format("15:04:05"), event.Operation, event.Table, event.EntityID)
			})
		},
	}
}
