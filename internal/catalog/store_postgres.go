// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/channelscope/internal/platform/apperr"
	"github.com/taibuivan/channelscope/internal/platform/database/schema"
	"github.com/taibuivan/channelscope/internal/platform/dberr"
)

// querier is the subset shared by the pool and an open transaction.
type querier interface {
	Query(context context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(context context.Context, sql string, args ...any) pgx.Row
	Exec(context context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore implements [Store] on the catalog schema.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a store bound to pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// # Competitors

func (repository *PostgresStore) ListCompetitors(context context.Context) ([]*Competitor, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s ASC`,
		strings.Join(schema.CatalogCompetitor.Columns(), ", "),
		schema.CatalogCompetitor.Table, schema.CatalogCompetitor.ID,
	)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_competitors")
	}
	defer rows.Close()

	var competitors []*Competitor
	byID := make(map[string]*Competitor)
	for rows.Next() {
		competitor, err := scanCompetitor(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_competitor")
		}
		competitors = append(competitors, competitor)
		byID[competitor.ID] = competitor
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_competitors")
	}

	markets, err := repository.markets(context, repository.pool, "")
	if err != nil {
		return nil, err
	}
	for competitorID, countries := range markets {
		if competitor, ok := byID[competitorID]; ok {
			competitor.Markets = countries
		}
	}

	return competitors, nil
}

func (repository *PostgresStore) GetCompetitor(context context.Context, id string) (*Competitor, error) {
	return repository.getCompetitor(context, repository.pool, id)
}

func (repository *PostgresStore) getCompetitor(context context.Context, db querier, id string) (*Competitor, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.CatalogCompetitor.Columns(), ", "),
		schema.CatalogCompetitor.Table, schema.CatalogCompetitor.ID,
	)

	competitor, err := scanCompetitor(db.QueryRow(context, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("Competitor")
		}
		return nil, dberr.Wrap(err, "get_competitor")
	}

	markets, err := repository.markets(context, db, id)
	if err != nil {
		return nil, err
	}
	competitor.Markets = markets[id]

	return competitor, nil
}

/*
UpsertCompetitor creates or updates a competitor row and replaces its markets.

Description: The competitor row and its market list are written in one
transaction. Markets follow the clear-and-insert pattern used for every
junction table.

Parameters:
  - context: context.Context
  - competitor: *Competitor

Returns:
  - error: Store or invariant failures
*/
func (repository *PostgresStore) UpsertCompetitor(context context.Context, competitor *Competitor) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_upsert_competitor")
	}
	defer transaction.Rollback(context)

	if err := upsertCompetitor(context, transaction, competitor); err != nil {
		return err
	}
	if err := replaceMarkets(context, transaction, competitor.ID, competitor.Markets); err != nil {
		return err
	}

	return dberr.Wrap(transaction.Commit(context), "commit_upsert_competitor")
}

func (repository *PostgresStore) DeleteCompetitor(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CatalogCompetitor.Table, schema.CatalogCompetitor.ID)

	response, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_competitor")
	}
	if response.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// # Working Set

/*
LoadState reads everything a competitor owns into a working set.

Description: Competitor, videos, playlists and memberships are read inside one
read-only transaction so the set is a consistent snapshot.

Parameters:
  - context: context.Context
  - competitorID: string

Returns:
  - *State: The working set
  - error: NotFound when the competitor does not exist
*/
func (repository *PostgresStore) LoadState(context context.Context, competitorID string) (*State, error) {
	transaction, err := repository.pool.BeginTx(context, pgx.TxOptions{AccessMode: pgx.ReadOnly, IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, dberr.Wrap(err, "begin_load_state")
	}
	defer transaction.Rollback(context)

	competitor, err := repository.getCompetitor(context, transaction, competitorID)
	if err != nil {
		return nil, err
	}

	videos, err := listVideos(context, transaction, competitorID)
	if err != nil {
		return nil, err
	}

	playlists, err := listPlaylists(context, transaction, competitorID)
	if err != nil {
		return nil, err
	}

	memberships, err := listMemberships(context, transaction, competitorID)
	if err != nil {
		return nil, err
	}

	return NewState(competitor, videos, playlists, memberships), nil
}

/*
Commit writes the changes of one phase atomically.

Description: Competitor, videos and playlists are upserted with a single
pgx.Batch, then memberships are inserted through a join that only matches rows
of one competitor. A membership that inserts nothing and does not already
exist breaks that rule and aborts the transaction.

Parameters:
  - context: context.Context
  - changes: Changes

Returns:
  - error: InvariantViolation, Store, or a cancellation wrapped as Store
*/
func (repository *PostgresStore) Commit(context context.Context, changes Changes) error {
	if changes.IsEmpty() {
		return nil
	}
	if err := changes.Validate(); err != nil {
		return err
	}

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_commit")
	}
	defer transaction.Rollback(context)

	if changes.Competitor != nil {
		if err := upsertCompetitor(context, transaction, changes.Competitor); err != nil {
			return err
		}
	}

	if err := upsertRows(context, transaction, changes); err != nil {
		return err
	}

	if err := insertMemberships(context, transaction, changes.Memberships); err != nil {
		return err
	}

	if changes.Snapshot != nil {
		if err := upsertSnapshot(context, transaction, changes.CompetitorID, changes.Snapshot); err != nil {
			return err
		}
	}

	return dberr.Wrap(transaction.Commit(context), "commit")
}

// # Snapshots

func (repository *PostgresStore) GetSnapshot(context context.Context, competitorID string) (*MetricsSnapshot, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.CatalogCompetitorMetrics.Payload, schema.CatalogCompetitorMetrics.Table, schema.CatalogCompetitorMetrics.CompetitorID,
	)

	var payload []byte
	if err := repository.pool.QueryRow(context, query, competitorID).Scan(&payload); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("Metrics snapshot")
		}
		return nil, dberr.Wrap(err, "get_snapshot")
	}

	snapshot := &MetricsSnapshot{}
	if err := json.Unmarshal(payload, snapshot); err != nil {
		return nil, apperr.Store("decode_snapshot", err)
	}
	return snapshot, nil
}

func (repository *PostgresStore) ListSnapshots(context context.Context) ([]*MetricsSnapshot, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s ASC`,
		schema.CatalogCompetitorMetrics.Payload, schema.CatalogCompetitorMetrics.Table, schema.CatalogCompetitorMetrics.CompetitorID,
	)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_snapshots")
	}
	defer rows.Close()

	var snapshots []*MetricsSnapshot
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, dberr.Wrap(err, "scan_snapshot")
		}
		snapshot := &MetricsSnapshot{}
		if err := json.Unmarshal(payload, snapshot); err != nil {
			return nil, apperr.Store("decode_snapshot", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, dberr.Wrap(rows.Err(), "list_snapshots")
}

// # Patterns

func (repository *PostgresStore) ListPatterns(context context.Context) ([]Pattern, error) {
	table := schema.CatalogClassificationPattern
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s ORDER BY %s ASC`,
		table.Language, table.Category, table.Pattern, table.Table, table.ID,
	)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_patterns")
	}
	defer rows.Close()

	var patterns []Pattern
	for rows.Next() {
		var pattern Pattern
		var category string
		if err := rows.Scan(&pattern.Language, &category, &pattern.Pattern); err != nil {
			return nil, dberr.Wrap(err, "scan_pattern")
		}
		pattern.Category = ParseCategory(category)
		patterns = append(patterns, pattern)
	}

	return patterns, dberr.Wrap(rows.Err(), "list_patterns")
}

func (repository *PostgresStore) AddPattern(context context.Context, pattern Pattern) error {
	table := schema.CatalogClassificationPattern
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		SELECT $1, $2, $3
		WHERE NOT EXISTS (
			SELECT 1 FROM %s WHERE %s = $1 AND %s = $2 AND lower(%s) = lower($3)
		)
		ON CONFLICT DO NOTHING
	`,
		table.Table, table.Language, table.Category, table.Pattern,
		table.Table, table.Language, table.Category, table.Pattern,
	)

	_, err := repository.pool.Exec(context, query, pattern.Language, string(pattern.Category), pattern.Pattern)
	return dberr.Wrap(err, "add_pattern")
}

func (repository *PostgresStore) RemovePattern(context context.Context, pattern Pattern) error {
	table := schema.CatalogClassificationPattern
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2 AND lower(%s) = lower($3)`,
		table.Table, table.Language, table.Category, table.Pattern,
	)

	_, err := repository.pool.Exec(context, query, pattern.Language, string(pattern.Category), pattern.Pattern)
	return dberr.Wrap(err, "remove_pattern")
}

// # Internals

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompetitor(row rowScanner) (*Competitor, error) {
	competitor := &Competitor{}
	err := row.Scan(
		&competitor.ID, &competitor.Name, &competitor.ChannelID, &competitor.Country,
		&competitor.SubscriberCount, &competitor.CreatedAt, &competitor.UpdatedAt,
	)
	return competitor, err
}

// markets returns countries per competitor, optionally restricted to one id.
func (repository *PostgresStore) markets(context context.Context, db querier, competitorID string) (map[string][]string, error) {
	table := schema.CatalogCompetitorMarket
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE ($1 = '' OR %s = $1) ORDER BY %s, %s`,
		table.CompetitorID, table.Country, table.Table, table.CompetitorID, table.CompetitorID, table.Country,
	)

	rows, err := db.Query(context, query, competitorID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_markets")
	}
	defer rows.Close()

	markets := make(map[string][]string)
	for rows.Next() {
		var id, country string
		if err := rows.Scan(&id, &country); err != nil {
			return nil, dberr.Wrap(err, "scan_market")
		}
		markets[id] = append(markets[id], country)
	}

	return markets, dberr.Wrap(rows.Err(), "list_markets")
}

func upsertCompetitor(context context.Context, transaction pgx.Tx, competitor *Competitor) error {
	table := schema.CatalogCompetitor
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = NOW()
	`,
		table.Table, table.ID, table.Name, table.ChannelID, table.Country, table.SubscriberCount, table.CreatedAt, table.UpdatedAt,
		table.ID,
		table.Name, table.Name, table.ChannelID, table.ChannelID, table.Country, table.Country,
		table.SubscriberCount, table.SubscriberCount, table.UpdatedAt,
	)

	_, err := transaction.Exec(context, query,
		competitor.ID, competitor.Name, competitor.ChannelID, competitor.Country, competitor.SubscriberCount,
	)
	return dberr.Wrap(err, "upsert_competitor")
}

func replaceMarkets(context context.Context, transaction pgx.Tx, competitorID string, markets []string) error {
	table := schema.CatalogCompetitorMarket

	clear := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table.Table, table.CompetitorID)
	if _, err := transaction.Exec(context, clear, competitorID); err != nil {
		return dberr.Wrap(err, "clear_markets")
	}
	if len(markets) == 0 {
		return nil
	}

	insert := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		table.Table, table.CompetitorID, table.Country,
	)
	batch := &pgx.Batch{}
	for _, country := range markets {
		batch.Queue(insert, competitorID, country)
	}

	return dberr.Wrap(transaction.SendBatch(context, batch).Close(), "insert_markets")
}

func listVideos(context context.Context, db querier, competitorID string) ([]*Video, error) {
	table := schema.CatalogVideo
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s WHERE %s = $1 ORDER BY %s ASC
	`,
		table.ID, table.CompetitorID, table.ExternalID, table.Title, table.Description,
		table.DurationSeconds, table.DurationText, table.PublishedAt, table.ViewCount,
		table.LikeCount, table.CommentCount, table.ThumbnailURL, table.Category,
		table.ClassificationSource, table.IsHumanValidated, table.ClassificationDate, table.IsShort,
		table.Table, table.CompetitorID, table.ID,
	)

	rows, err := db.Query(context, query, competitorID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_videos")
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		video := &Video{}
		var publishedAt *time.Time
		var category, source string
		if err := rows.Scan(
			&video.ID, &video.CompetitorID, &video.ExternalID, &video.Title, &video.Description,
			&video.DurationSeconds, &video.DurationText, &publishedAt, &video.ViewCount,
			&video.LikeCount, &video.CommentCount, &video.ThumbnailURL, &category,
			&source, &video.IsHumanValidated, &video.ClassificationDate, &video.IsShort,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_video")
		}
		if publishedAt != nil {
			video.PublishedAt = publishedAt.UTC()
		}
		video.Category = ParseCategory(category)
		video.Source = ParseSource(source)
		videos = append(videos, video)
	}

	return videos, dberr.Wrap(rows.Err(), "list_videos")
}

func listPlaylists(context context.Context, db querier, competitorID string) ([]*Playlist, error) {
	table := schema.CatalogPlaylist
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s WHERE %s = $1 ORDER BY %s ASC
	`,
		table.ID, table.CompetitorID, table.ExternalID, table.Title, table.Description,
		table.VideoCount, table.Category, table.ClassificationSource, table.IsHumanValidated,
		table.Table, table.CompetitorID, table.ID,
	)

	rows, err := db.Query(context, query, competitorID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_playlists")
	}
	defer rows.Close()

	var playlists []*Playlist
	for rows.Next() {
		playlist := &Playlist{}
		var category, source string
		if err := rows.Scan(
			&playlist.ID, &playlist.CompetitorID, &playlist.ExternalID, &playlist.Title, &playlist.Description,
			&playlist.VideoCount, &category, &source, &playlist.IsHumanValidated,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_playlist")
		}
		playlist.Category = ParseCategory(category)
		playlist.Source = ParseSource(source)
		playlists = append(playlists, playlist)
	}

	return playlists, dberr.Wrap(rows.Err(), "list_playlists")
}

func listMemberships(context context.Context, db querier, competitorID string) ([]Membership, error) {
	query := fmt.Sprintf(`
		SELECT m.%s, m.%s
		FROM %s m
		JOIN %s p ON p.%s = m.%s
		WHERE p.%s = $1
		ORDER BY m.%s, m.%s
	`,
		schema.CatalogPlaylistVideo.PlaylistID, schema.CatalogPlaylistVideo.VideoID,
		schema.CatalogPlaylistVideo.Table,
		schema.CatalogPlaylist.Table, schema.CatalogPlaylist.ID, schema.CatalogPlaylistVideo.PlaylistID,
		schema.CatalogPlaylist.CompetitorID,
		schema.CatalogPlaylistVideo.PlaylistID, schema.CatalogPlaylistVideo.VideoID,
	)

	rows, err := db.Query(context, query, competitorID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_memberships")
	}
	defer rows.Close()

	var memberships []Membership
	for rows.Next() {
		var membership Membership
		if err := rows.Scan(&membership.PlaylistID, &membership.VideoID); err != nil {
			return nil, dberr.Wrap(err, "scan_membership")
		}
		memberships = append(memberships, membership)
	}

	return memberships, dberr.Wrap(rows.Err(), "list_memberships")
}

// upsertRows queues every video and playlist of changes in one batch.
func upsertRows(context context.Context, transaction pgx.Tx, changes Changes) error {
	if len(changes.Videos) == 0 && len(changes.Playlists) == 0 {
		return nil
	}

	video := schema.CatalogVideo
	videoQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s,
			%s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s,
			%s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s,
			%s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = NOW()
		WHERE %s.%s = EXCLUDED.%s
		RETURNING %s
	`,
		video.Table, video.ID, video.CompetitorID, video.ExternalID, video.Title, video.Description,
		video.DurationSeconds, video.DurationText, video.PublishedAt, video.ViewCount, video.LikeCount,
		video.CommentCount, video.ThumbnailURL, video.Category, video.ClassificationSource,
		video.IsHumanValidated, video.ClassificationDate, video.IsShort, video.CreatedAt, video.UpdatedAt,
		video.ID,
		video.Title, video.Title, video.Description, video.Description,
		video.DurationSeconds, video.DurationSeconds, video.DurationText, video.DurationText,
		video.PublishedAt, video.PublishedAt, video.ViewCount, video.ViewCount,
		video.LikeCount, video.LikeCount, video.CommentCount, video.CommentCount,
		video.ThumbnailURL, video.ThumbnailURL, video.Category, video.Category,
		video.ClassificationSource, video.ClassificationSource, video.IsHumanValidated, video.IsHumanValidated,
		video.ClassificationDate, video.ClassificationDate, video.IsShort, video.IsShort,
		video.ExternalID, video.ExternalID, video.UpdatedAt,
		video.Table, video.CompetitorID, video.CompetitorID,
		video.ID,
	)

	playlist := schema.CatalogPlaylist
	playlistQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s,
			%s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = NOW()
		WHERE %s.%s = EXCLUDED.%s
		RETURNING %s
	`,
		playlist.Table, playlist.ID, playlist.CompetitorID, playlist.ExternalID, playlist.Title,
		playlist.Description, playlist.VideoCount, playlist.Category, playlist.ClassificationSource,
		playlist.IsHumanValidated, playlist.CreatedAt, playlist.UpdatedAt,
		playlist.ID,
		playlist.Title, playlist.Title, playlist.Description, playlist.Description,
		playlist.VideoCount, playlist.VideoCount, playlist.Category, playlist.Category,
		playlist.ClassificationSource, playlist.ClassificationSource,
		playlist.IsHumanValidated, playlist.IsHumanValidated, playlist.UpdatedAt,
		playlist.Table, playlist.CompetitorID, playlist.CompetitorID,
		playlist.ID,
	)

	batch := &pgx.Batch{}
	for _, v := range changes.Videos {
		var publishedAt *time.Time
		if !v.PublishedAt.IsZero() {
			date := v.PublishedAt.UTC()
			publishedAt = &date
		}
		batch.Queue(videoQuery,
			v.ID, v.CompetitorID, v.ExternalID, v.Title, v.Description,
			v.DurationSeconds, v.DurationText, publishedAt, v.ViewCount, v.LikeCount,
			v.CommentCount, v.ThumbnailURL, string(v.Category), v.Source.String(),
			v.IsHumanValidated, v.ClassificationDate, v.IsShort,
		)
	}
	for _, p := range changes.Playlists {
		batch.Queue(playlistQuery,
			p.ID, p.CompetitorID, p.ExternalID, p.Title, p.Description,
			p.VideoCount, string(p.Category), p.Source.String(), p.IsHumanValidated,
		)
	}

	results := transaction.SendBatch(context, batch)
	defer results.Close()

	// A conflicting id owned by another competitor updates nothing and returns no row.
	for _, v := range changes.Videos {
		if err := scanUpserted(results, "video", v.ID); err != nil {
			return err
		}
	}
	for _, p := range changes.Playlists {
		if err := scanUpserted(results, "playlist", p.ID); err != nil {
			return err
		}
	}

	return dberr.Wrap(results.Close(), "upsert_rows")
}

func scanUpserted(results pgx.BatchResults, kind, id string) error {
	var written string
	err := results.QueryRow().Scan(&written)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.InvariantViolation(fmt.Sprintf("%s %s is owned by another competitor", kind, id))
	}
	return dberr.Wrap(err, "upsert_rows")
}

// insertMemberships links playlists to videos only when both share a competitor.
func insertMemberships(context context.Context, transaction pgx.Tx, memberships []Membership) error {
	if len(memberships) == 0 {
		return nil
	}

	link := schema.CatalogPlaylistVideo
	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		SELECT p.%s, v.%s
		FROM %s p JOIN %s v ON v.%s = p.%s
		WHERE p.%s = $1 AND v.%s = $2
		ON CONFLICT DO NOTHING
	`,
		link.Table, link.PlaylistID, link.VideoID,
		schema.CatalogPlaylist.ID, schema.CatalogVideo.ID,
		schema.CatalogPlaylist.Table, schema.CatalogVideo.Table,
		schema.CatalogVideo.CompetitorID, schema.CatalogPlaylist.CompetitorID,
		schema.CatalogPlaylist.ID, schema.CatalogVideo.ID,
	)
	exists := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		link.Table, link.PlaylistID, link.VideoID,
	)

	batch := &pgx.Batch{}
	for _, membership := range memberships {
		batch.Queue(insert, membership.PlaylistID, membership.VideoID)
	}

	results := transaction.SendBatch(context, batch)
	var skipped []Membership
	for _, membership := range memberships {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return dberr.Wrap(err, "insert_membership")
		}
		if tag.RowsAffected() == 0 {
			skipped = append(skipped, membership)
		}
	}
	if err := results.Close(); err != nil {
		return dberr.Wrap(err, "insert_memberships")
	}

	// A skipped insert is fine for an existing link; otherwise the join refused it.
	for _, membership := range skipped {
		var found bool
		if err := transaction.QueryRow(context, exists, membership.PlaylistID, membership.VideoID).Scan(&found); err != nil {
			return dberr.Wrap(err, "check_membership")
		}
		if !found {
			return apperr.InvariantViolation(fmt.Sprintf("membership %s→%s does not join rows of one competitor", membership.PlaylistID, membership.VideoID))
		}
	}

	return nil
}

func upsertSnapshot(context context.Context, transaction pgx.Tx, competitorID string, snapshot *MetricsSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return apperr.Store("encode_snapshot", err)
	}

	table := schema.CatalogCompetitorMetrics
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)
		ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s, %s = EXCLUDED.%s
	`,
		table.Table, table.CompetitorID, table.Payload, table.ComputedAt,
		table.CompetitorID, table.Payload, table.Payload, table.ComputedAt, table.ComputedAt,
	)

	_, err = transaction.Exec(context, query, competitorID, payload, snapshot.ComputedAt)
	return dberr.Wrap(err, "upsert_snapshot")
}
