package schema

// CatalogCompetitorTable represents the 'catalog.competitor' table
type CatalogCompetitorTable struct {
	Table           string
	ID              string
	Name            string
	ChannelID       string
	Country         string
	SubscriberCount string
	CreatedAt       string
	UpdatedAt       string
}

// CatalogCompetitor is the schema definition for catalog.competitor
var CatalogCompetitor = CatalogCompetitorTable{
	Table:           "catalog.competitor",
	ID:              "id",
	Name:            "name",
	ChannelID:       "channelid",
	Country:         "country",
	SubscriberCount: "subscribercount",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

func (t CatalogCompetitorTable) Columns() []string {
	return []string{t.ID, t.Name, t.ChannelID, t.Country, t.SubscriberCount, t.CreatedAt, t.UpdatedAt}
}
