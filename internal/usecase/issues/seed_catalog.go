package issues

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"issuetracker/internal/domain/issue"
	"issuetracker/internal/errs"
)

// Catalog lists the label and user names to make available.
type Catalog struct {
	Labels []string `toml:"labels"`
	Users  []string `toml:"users"`
}

type CatalogResult struct {
	Labels []issue.Label `json:"labels"`
	Users  []issue.User  `json:"users"`
}

func LoadCatalog(path string) (Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Catalog{}, errors.New("catalog file is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, errs.Wrapf(err, "read catalog %q", path)
	}

	var catalog Catalog
	if err := toml.Unmarshal(raw, &catalog); err != nil {
		return Catalog{}, errs.Validationf("parse catalog %q: %v", path, err)
	}
	return catalog, nil
}

// SeedCatalog upserts labels and users by name. Running it twice is a no-op.
func (s *Service) SeedCatalog(ctx context.Context, catalog Catalog) (CatalogResult, error) {
	if err := s.ready(ctx); err != nil {
		return CatalogResult{}, err
	}

	result := CatalogResult{Labels: []issue.Label{}, Users: []issue.User{}}
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		for _, name := range catalog.Labels {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			label, err := s.repo.UpsertLabel(txCtx, name)
			if err != nil {
				return err
			}
			result.Labels = append(result.Labels, label)
		}

		for _, name := range catalog.Users {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			user, err := s.repo.UpsertUser(txCtx, name)
			if err != nil {
				return err
			}
			result.Users = append(result.Users, user)
		}
		return nil
	}); err != nil {
		return CatalogResult{}, err
	}

	return result, nil
}
