package catalog

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/tracing"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type CommonGroceryItemRepository interface {
	Upsert(ctx context.Context, item models.CommonGroceryItem) error
}

// Entry is one catalog line of the seed file.
type Entry struct {
	Category        models.Category `yaml:"category"`
	Name            string          `yaml:"name"`
	DefaultQuantity string          `yaml:"default_quantity"`
	DefaultUnit     string          `yaml:"default_unit"`
	EstimatedPrice  *int64          `yaml:"estimated_price"`
}

type File struct {
	Items []Entry `yaml:"items"`
}

// Parse decodes a seed file. Entries are global catalog items; names are trimmed and
// duplicate (category, name) pairs are rejected.
func Parse(r io.Reader) ([]models.CommonGroceryItem, error) {
	var file File
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	seen := make(map[string]bool, len(file.Items))
	items := make([]models.CommonGroceryItem, 0, len(file.Items))
	for i, entry := range file.Items {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog entry %d: name is required", i)
		}
		if !entry.Category.IsValid() {
			return nil, fmt.Errorf("catalog entry %d (%s): invalid category %q", i, name, entry.Category)
		}

		key := string(entry.Category) + "/" + strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("catalog entry %d: duplicate %s in %s", i, name, entry.Category)
		}
		seen[key] = true

		quantity := strings.TrimSpace(entry.DefaultQuantity)
		if quantity == "" {
			quantity = models.DefaultQuantity
		}

		item := models.CommonGroceryItem{
			Category:        entry.Category,
			Name:            name,
			DefaultQuantity: quantity,
			EstimatedPrice:  entry.EstimatedPrice,
			IsGlobal:        true,
		}
		if unit := strings.TrimSpace(entry.DefaultUnit); unit != "" {
			item.DefaultUnit = &unit
		}
		items = append(items, item)
	}
	return items, nil
}

type Service struct {
	repo   CommonGroceryItemRepository
	logger ectologger.Logger
}

func NewService(repo CommonGroceryItemRepository, logger ectologger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Seed upserts every entry of the catalog file at path inside fsys.
func (s *Service) Seed(ctx context.Context, fsys fs.FS, path string) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.Seed")
	defer span.End()

	f, err := fsys.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()

	items, err := Parse(f)
	if err != nil {
		return 0, err
	}

	for _, item := range items {
		item.ID = uuid.New().String()
		if err := s.repo.Upsert(ctx, item); err != nil {
			s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"category": item.Category,
				"name":     item.Name,
			}).Error("failed to seed catalog item")
			return 0, err
		}
	}

	s.logger.WithContext(ctx).Infof("seeded %d common grocery items from %s", len(items), path)
	return len(items), nil
}
