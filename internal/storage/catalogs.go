package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/trailstate/trailstate/pkg/catalog"
)

// Catalog operations (filesystem-backed)

func (r *RedisStore) GetCatalog(ctx context.Context, name string) (*catalog.Catalog, error) {
	return readCatalog(r.dataDir, name)
}

func (r *RedisStore) ListCatalogs(ctx context.Context) ([]string, error) {
	return listCatalogs(r.dataDir)
}

// readCatalog loads one card database from dataDir/catalogs. The name is
// the file stem: "weather" reads catalogs/weather.json.
func readCatalog(dataDir, name string) (*catalog.Catalog, error) {
	path := filepath.Join(dataDir, "catalogs", name+".json")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("catalog not found: %s", name)
	}

	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", name, err)
	}
	return cat, nil
}

func listCatalogs(dataDir string) ([]string, error) {
	catalogsPath := filepath.Join(dataDir, "catalogs")

	entries, err := os.ReadDir(catalogsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read catalogs directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}

	return names, nil
}
