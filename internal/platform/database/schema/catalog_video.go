package schema

// CatalogVideoTable represents the 'catalog.video' table
type CatalogVideoTable struct {
	Table                string
	ID                   string
	CompetitorID         string
	ExternalID           string
	Title                string
	Description          string
	DurationSeconds      string
	DurationText         string
	PublishedAt          string
	ViewCount            string
	LikeCount            string
	CommentCount         string
	ThumbnailURL         string
	Category             string
	ClassificationSource string
	IsHumanValidated     string
	ClassificationDate   string
	IsShort              string
	CreatedAt            string
	UpdatedAt            string
}

// CatalogVideo is the schema definition for catalog.video
var CatalogVideo = CatalogVideoTable{
	Table:                "catalog.video",
	ID:                   "id",
	CompetitorID:         "competitorid",
	ExternalID:           "externalid",
	Title:                "title",
	Description:          "description",
	DurationSeconds:      "durationseconds",
	DurationText:         "durationtext",
	PublishedAt:          "publishedat",
	ViewCount:            "viewcount",
	LikeCount:            "likecount",
	CommentCount:         "commentcount",
	ThumbnailURL:         "thumbnailurl",
	Category:             "category",
	ClassificationSource: "classificationsource",
	IsHumanValidated:     "ishumanvalidated",
	ClassificationDate:   "classificationdate",
	IsShort:              "isshort",
	CreatedAt:            "createdat",
	UpdatedAt:            "updatedat",
}

func (t CatalogVideoTable) Columns() []string {
	return []string{t.ID, t.CompetitorID, t.ExternalID, t.Title, t.Description, t.DurationSeconds, t.DurationText, t.PublishedAt, t.ViewCount, t.LikeCount, t.CommentCount, t.ThumbnailURL, t.Category, t.ClassificationSource, t.IsHumanValidated, t.ClassificationDate, t.IsShort, t.CreatedAt, t.UpdatedAt}
}
