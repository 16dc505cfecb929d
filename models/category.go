package models

import "path"

// Category describes one independently managed image collection.
type Category struct {
	Name           string `yaml:"name" json:"name"`
	Title          string `yaml:"title" json:"title"`
	Group          string `yaml:"group,omitempty" json:"group,omitempty"`
	DataFile       string `yaml:"data_file" json:"data_file"`
	AssetDir       string `yaml:"asset_dir" json:"asset_dir"`
	AssetURLPrefix string `yaml:"asset_url_prefix" json:"asset_url_prefix"`
	PublicPath     string `yaml:"public_path" json:"public_path"`
	DashboardPath  string `yaml:"dashboard_path,omitempty" json:"dashboard_path,omitempty"`
	ReadOnly       bool   `yaml:"read_only,omitempty" json:"read_only,omitempty"`
}

// AssetURL is the url recorded for an uploaded file in this category.
func (c Category) AssetURL(filename string) string {
	return path.Join(c.AssetURLPrefix, filename)
}

// Manageable reports whether the dashboard may add or remove items.
func (c Category) Manageable() bool {
	return !c.ReadOnly && c.DashboardPath != ""
}
