package schema

// CatalogPlaylistTable represents the 'catalog.playlist' table
type CatalogPlaylistTable struct {
	Table                string
	ID                   string
	CompetitorID         string
	ExternalID           string
	Title                string
	Description          string
	VideoCount           string
	Category             string
	ClassificationSource string
	IsHumanValidated     string
	CreatedAt            string
	UpdatedAt            string
}

// CatalogPlaylist is the schema definition for catalog.playlist
var CatalogPlaylist = CatalogPlaylistTable{
	Table:                "catalog.playlist",
	ID:                   "id",
	CompetitorID:         "competitorid",
	ExternalID:           "externalid",
	Title:                "title",
	Description:          "description",
	VideoCount:           "videocount",
	Category:             "category",
	ClassificationSource: "classificationsource",
	IsHumanValidated:     "ishumanvalidated",
	CreatedAt:            "createdat",
	UpdatedAt:            "updatedat",
}

func (t CatalogPlaylistTable) Columns() []string {
	return []string{t.ID, t.CompetitorID, t.ExternalID, t.Title, t.Description, t.VideoCount, t.Category, t.ClassificationSource, t.IsHumanValidated, t.CreatedAt, t.UpdatedAt}
}
