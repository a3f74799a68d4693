package schema

// CatalogClassificationPatternTable represents the 'catalog.classificationpattern' table
type CatalogClassificationPatternTable struct {
	Table     string
	ID        string
	Language  string
	Category  string
	Pattern   string
	CreatedAt string
}

// CatalogClassificationPattern is the schema definition for catalog.classificationpattern
var CatalogClassificationPattern = CatalogClassificationPatternTable{
	Table:     "catalog.classificationpattern",
	ID:        "id",
	Language:  "language",
	Category:  "category",
	Pattern:   "pattern",
	CreatedAt: "createdat",
}

func (t CatalogClassificationPatternTable) Columns() []string {
	return []string{t.ID, t.Language, t.Category, t.Pattern, t.CreatedAt}
}
