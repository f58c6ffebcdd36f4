package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/instreg/registration-admin/internal/core/domain"
)

// PermissionSynchronizer reconciles the persisted catalog with the declared
// permission manifest. It only inserts: identifiers later removed from the
// manifest stay in the catalog untouched, so catalog drift is accepted rather
// than reconciled.
type PermissionSynchronizer struct {
	manifest []string
	catalog  *PermissionService
	logger   *zap.Logger
}

// NewPermissionSynchronizer constructs a synchronizer over an explicit
// manifest of permission system names.
func NewPermissionSynchronizer(manifest []string, catalog *PermissionService, logger *zap.Logger) *PermissionSynchronizer {
	return &PermissionSynchronizer{
		manifest: manifest,
		catalog:  catalog,
		logger:   logger,
	}
}

// Run inserts every declared permission missing from the catalog and returns
// the number of inserts. A second run with an unchanged manifest inserts
// nothing.
func (s *PermissionSynchronizer) Run(ctx context.Context) (int, error) {
	existing, err := s.catalog.List(ctx, false)
	if err != nil {
		return 0, fmt.Errorf("load permission catalog: %w", err)
	}

	known := make(map[string]struct{}, len(existing))
	for _, permission := range existing {
		known[permission.SystemName] = struct{}{}
	}

	inserted := 0
	for _, systemName := range s.manifest {
		if _, ok := known[systemName]; ok {
			continue
		}

		permission, err := s.catalog.Create(ctx, CreatePermissionInput{
			SystemName:  systemName,
			Name:        systemName,
			Category:    domain.CategoryOf(systemName),
			Description: fmt.Sprintf("Auto-provisioned permission %s", systemName),
			IsActive:    true,
		})
		if err != nil {
			return inserted, fmt.Errorf("provision permission %q: %w", systemName, err)
		}

		known[systemName] = struct{}{}
		inserted++
		s.logger.Info("provisioned permission",
			zap.String("system_name", permission.SystemName),
			zap.String("category", permission.Category),
		)
	}

	s.logger.Info("permission catalog synchronized",
		zap.Int("declared", len(s.manifest)),
		zap.Int("inserted", inserted),
	)

	return inserted, nil
}
