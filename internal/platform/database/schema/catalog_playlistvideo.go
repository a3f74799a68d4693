package schema

// CatalogPlaylistVideoTable represents the 'catalog.playlistvideo' table
type CatalogPlaylistVideoTable struct {
	Table      string
	PlaylistID string
	VideoID    string
}

// CatalogPlaylistVideo is the schema definition for catalog.playlistvideo
var CatalogPlaylistVideo = CatalogPlaylistVideoTable{
	Table:      "catalog.playlistvideo",
	PlaylistID: "playlistid",
	VideoID:    "videoid",
}

func (t CatalogPlaylistVideoTable) Columns() []string {
	return []string{t.PlaylistID, t.VideoID}
}
