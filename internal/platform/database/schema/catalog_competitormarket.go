package schema

// CatalogCompetitorMarketTable represents the 'catalog.competitormarket' table
type CatalogCompetitorMarketTable struct {
	Table        string
	CompetitorID string
	Country      string
}

// CatalogCompetitorMarket is the schema definition for catalog.competitormarket
var CatalogCompetitorMarket = CatalogCompetitorMarketTable{
	Table:        "catalog.competitormarket",
	CompetitorID: "competitorid",
	Country:      "country",
}

func (t CatalogCompetitorMarketTable) Columns() []string {
	return []string{t.CompetitorID, t.Country}
}
