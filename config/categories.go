package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sidhant-sriv/gallery-api/models"
)

type categoriesFile struct {
	Categories []models.Category `yaml:"categories"`
}

// DefaultCategories is the layout the site ships with.
func DefaultCategories() []models.Category {
	return []models.Category{
		{
			Name:           "bw1",
			Title:          "Black & White I",
			Group:          "bw",
			DataFile:       "bw1.json",
			AssetDir:       "assets/gallery/bw1/sheets",
			AssetURLPrefix: "public/assets/gallery/bw1/sheets",
			PublicPath:     "/bw/bw1",
			DashboardPath:  "/dashboard/bw/bw1",
		},
		{
			Name:           "bw2",
			Title:          "Black & White II",
			Group:          "bw",
			DataFile:       "bw2.json",
			AssetDir:       "assets/gallery/bw2/sheets",
			AssetURLPrefix: "public/assets/gallery/bw2/sheets",
			PublicPath:     "/bw/bw2",
			DashboardPath:  "/dashboard/bw/bw2",
		},
		{
			Name:           "color",
			Title:          "Color",
			DataFile:       "color.json",
			AssetDir:       "assets/gallery/color/sheets",
			AssetURLPrefix: "public/assets/gallery/color/sheets",
			PublicPath:     "/color",
			DashboardPath:  "/dashboard/color",
		},
		{
			Name:           "events",
			Title:          "Events",
			DataFile:       "events.json",
			AssetDir:       "assets/events",
			AssetURLPrefix: "public/assets/events",
			PublicPath:     "/events",
			DashboardPath:  "/dashboard/events",
		},
		{
			Name:           "shop",
			Title:          "Shop",
			DataFile:       "shop.json",
			AssetDir:       "assets/shop",
			AssetURLPrefix: "public/assets/shop",
			PublicPath:     "/shop",
			ReadOnly:       true,
		},
	}
}

// LoadCategories returns the category layout from path, or the defaults when path is empty.
// Relative data files resolve against dataDir and relative asset dirs against publicDir.
func LoadCategories(path, dataDir, publicDir string) ([]models.Category, error) {
	cats := DefaultCategories()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading categories file: %w", err)
		}
		var f categoriesFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("parsing categories file: %w", err)
		}
		cats = f.Categories
	}

	if err := ValidateCategories(cats); err != nil {
		return nil, err
	}

	for i := range cats {
		if !filepath.IsAbs(cats[i].DataFile) {
			cats[i].DataFile = filepath.Join(dataDir, cats[i].DataFile)
		}
		if !filepath.IsAbs(cats[i].AssetDir) {
			cats[i].AssetDir = filepath.Join(publicDir, cats[i].AssetDir)
		}
	}
	return cats, nil
}

// ValidateCategories rejects layouts with missing fields or clashing names and routes.
func ValidateCategories(cats []models.Category) error {
	if len(cats) == 0 {
		return fmt.Errorf("no categories configured")
	}
	names := make(map[string]bool)
	paths := make(map[string]string)
	for _, c := range cats {
		switch {
		case c.Name == "":
			return fmt.Errorf("category without a name")
		case c.DataFile == "":
			return fmt.Errorf("category %q: data_file is required", c.Name)
		case c.PublicPath == "":
			return fmt.Errorf("category %q: public_path is required", c.Name)
		case !c.ReadOnly && (c.AssetDir == "" || c.AssetURLPrefix == ""):
			return fmt.Errorf("category %q: asset_dir and asset_url_prefix are required", c.Name)
		}
		if names[c.Name] {
			return fmt.Errorf("duplicate category %q", c.Name)
		}
		names[c.Name] = true

		for _, p := range []string{c.PublicPath, c.DashboardPath} {
			if p == "" {
				continue
			}
			if other, ok := paths[p]; ok {
				return fmt.Errorf("category %q: path %s already used by %q", c.Name, p, other)
			}
			paths[p] = c.Name
		}
	}
	return nil
}
