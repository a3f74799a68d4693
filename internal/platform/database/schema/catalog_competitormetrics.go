package schema

// CatalogCompetitorMetricsTable represents the 'catalog.competitormetrics' table
type CatalogCompetitorMetricsTable struct {
	Table        string
	CompetitorID string
	Payload      string
	ComputedAt   string
}

// CatalogCompetitorMetrics is the schema definition for catalog.competitormetrics
var CatalogCompetitorMetrics = CatalogCompetitorMetricsTable{
	Table:        "catalog.competitormetrics",
	CompetitorID: "competitorid",
	Payload:      "payload",
	ComputedAt:   "computedat",
}

func (t CatalogCompetitorMetricsTable) Columns() []string {
	return []string{t.CompetitorID, t.Payload, t.ComputedAt}
}
