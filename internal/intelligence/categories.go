package intelligence

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"fsintel/internal/config"
)

// CategoryOther is assigned when no table claims the extension.
const CategoryOther = "other"

// defaultCategories maps each fixed category to its extension table.
// Extensions are lowercased with the leading dot.
var defaultCategories = map[string][]string{
	"documentation": {".md", ".txt", ".rst", ".pdf", ".doc", ".docx", ".odt", ".rtf", ".tex"},
	"code":          {".go", ".py", ".js", ".jsx", ".ts", ".tsx", ".java", ".c", ".cpp", ".h", ".rs", ".rb", ".php", ".sh", ".html", ".css", ".sql"},
	"data":          {".csv", ".json", ".xml", ".xlsx", ".xls", ".parquet", ".db", ".sqlite", ".jsonl", ".tsv"},
	"media":         {".png", ".jpg", ".jpeg", ".gif", ".bmp", ".svg", ".webp", ".mp3", ".wav", ".mp4", ".mov", ".avi", ".mkv"},
	"archive":       {".zip", ".tar", ".gz", ".bz2", ".xz", ".7z", ".rar"},
	"config":        {".yaml", ".yml", ".toml", ".ini", ".cfg", ".conf", ".env", ".properties"},
	"executable":    {".exe", ".bat", ".cmd", ".ps1", ".bin", ".dll", ".so", ".dylib", ".app", ".msi"},
}

// CategoryOverridesFile sits inside the state directory and lets a user
// extend or replace extension tables without rebuilding.
const CategoryOverridesFile = "categories.yaml"

// CategorySet resolves extensions to categories.
type CategorySet struct {
	byExtension map[string]string
}

// LoadCategories builds the category set from the built-in tables plus
// any overrides found under root's state directory. Override entries
// win over built-ins for the extensions they name.
func LoadCategories(root string) (*CategorySet, error) {
	set := newCategorySet(defaultCategories)

	path := filepath.Join(root, config.ConfigDirName, CategoryOverridesFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return set, nil
		}
		return nil, fmt.Errorf("reading category overrides: %w", err)
	}

	overrides := map[string][]string{}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", CategoryOverridesFile, err)
	}
	set.apply(overrides)
	return set, nil
}

func newCategorySet(tables map[string][]string) *CategorySet {
	set := &CategorySet{byExtension: make(map[string]string)}
	set.apply(tables)
	return set
}

func (c *CategorySet) apply(tables map[string][]string) {
	for category, exts := range tables {
		for _, ext := range exts {
			c.byExtension[ext] = category
		}
	}
}

// Categorize returns the category owning ext, or CategoryOther.
func (c *CategorySet) Categorize(ext string) string {
	if cat, ok := c.byExtension[ext]; ok {
		return cat
	}
	return CategoryOther
}
