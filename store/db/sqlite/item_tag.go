package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hrygo/folio/store"
)

func (d *DB) CreateItemTag(ctx context.Context, create *store.ItemTag) (*store.ItemTag, error) {
	schema, err := create.Kind.TagSchema()
	if err != nil {
		return nil, err
	}

	fields := []string{schema.ItemColumn, "tag_id"}
	args := []any{create.ItemID, create.TagID}
	if create.CreatedTs != 0 {
		fields, args = append(fields, "created_ts", "updated_ts"), append(args, create.CreatedTs, create.CreatedTs)
	}

	stmt := `INSERT INTO ` + schema.Table + ` (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id, created_ts, updated_ts`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID, &create.CreatedTs, &create.UpdatedTs); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", schema.Table, convertError(err))
	}
	return create, nil
}

func (d *DB) CreateItemTags(ctx context.Context, create *store.CreateItemTags) ([]*store.ItemTag, error) {
	schema, err := create.Kind.TagSchema()
	if err != nil {
		return nil, err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	stmt := `INSERT INTO ` + schema.Table + ` (` + schema.ItemColumn + `, tag_id)
		VALUES (` + placeholders(2) + `)
		ON CONFLICT (` + schema.ItemColumn + `, tag_id) DO NOTHING
		RETURNING id, created_ts, updated_ts`
	list := []*store.ItemTag{}
	for _, tagID := range create.TagIDList {
		itemTag := &store.ItemTag{Kind: create.Kind, ItemID: create.ItemID, TagID: tagID}
		err := tx.QueryRowContext(ctx, stmt, create.ItemID, tagID).Scan(&itemTag.ID, &itemTag.CreatedTs, &itemTag.UpdatedTs)
		if errors.Is(err, sql.ErrNoRows) {
			// Already linked.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", schema.Table, convertError(err))
		}
		list = append(list, itemTag)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return list, nil
}

func (d *DB) ListItemTags(ctx context.Context, find *store.FindItemTag) ([]*store.ItemTag, error) {
	schema, err := find.Kind.TagSchema()
	if err != nil {
		return nil, err
	}

	where, args := itemTagWhere(schema, find)
	query := `SELECT id, ` + schema.ItemColumn + `, tag_id, created_ts, updated_ts FROM ` + schema.Table + ` WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC, id DESC` + limitOffset(find.Limit, find.Offset)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", schema.Table, err)
	}
	defer rows.Close()

	list := []*store.ItemTag{}
	for rows.Next() {
		itemTag := &store.ItemTag{Kind: find.Kind}
		if err := rows.Scan(&itemTag.ID, &itemTag.ItemID, &itemTag.TagID, &itemTag.CreatedTs, &itemTag.UpdatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", schema.Table, err)
		}
		list = append(list, itemTag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", schema.Table, err)
	}
	return list, nil
}

func (d *DB) CountItemTags(ctx context.Context, find *store.FindItemTag) (int, error) {
	schema, err := find.Kind.TagSchema()
	if err != nil {
		return 0, err
	}

	where, args := itemTagWhere(schema, find)
	var count int
	query := `SELECT COUNT(*) FROM ` + schema.Table + ` WHERE ` + strings.Join(where, " AND ")
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", schema.Table, err)
	}
	return count, nil
}

func (d *DB) DeleteItemTag(ctx context.Context, delete *store.DeleteItemTag) error {
	schema, err := delete.Kind.TagSchema()
	if err != nil {
		return err
	}

	where, args := itemTagWhere(schema, &store.FindItemTag{ID: delete.ID, ItemID: delete.ItemID, TagID: delete.TagID})
	if len(where) == 1 {
		return fmt.Errorf("refusing to delete every row of %s", schema.Table)
	}
	if _, err := d.db.ExecContext(ctx, `DELETE FROM `+schema.Table+` WHERE `+strings.Join(where, " AND "), args...); err != nil {
		return fmt.Errorf("failed to delete %s: %w", schema.Table, err)
	}
	return nil
}

func (d *DB) ListTagCounts(ctx context.Context, find *store.FindTagCount) ([]*store.TagCount, error) {
	schema, err := find.Kind.TagSchema()
	if err != nil {
		return nil, err
	}

	query := `SELECT it.tag_id, COUNT(DISTINCT it.` + schema.ItemColumn + `) AS item_count
		FROM ` + schema.Table + ` it
		JOIN tag ON tag.id = it.tag_id
		GROUP BY it.tag_id, tag.name
		ORDER BY item_count DESC, tag.name ASC
		LIMIT ` + placeholder(1)
	rows, err := d.db.QueryContext(ctx, query, find.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to count tags of %s: %w", schema.Table, err)
	}
	defer rows.Close()

	list := []*store.TagCount{}
	for rows.Next() {
		count := &store.TagCount{}
		if err := rows.Scan(&count.TagID, &count.ItemCount); err != nil {
			return nil, fmt.Errorf("failed to scan tag count: %w", err)
		}
		list = append(list, count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tag counts: %w", err)
	}
	return list, nil
}

func itemTagWhere(schema store.ItemTagSchema, find *store.FindItemTag) ([]string, []any) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.ItemID != nil {
		where, args = append(where, schema.ItemColumn+" = "+placeholder(len(args)+1)), append(args, *find.ItemID)
	}
	if find.TagID != nil {
		where, args = append(where, "tag_id = "+placeholder(len(args)+1)), append(args, *find.TagID)
	}
	if len(find.TagIDList) > 0 {
		holders := []string{}
		for _, id := range find.TagIDList {
			holders, args = append(holders, placeholder(len(args)+1)), append(args, id)
		}
		where = append(where, "tag_id IN ("+strings.Join(holders, ", ")+")")
	}
	if find.ExcludeItemID != nil {
		where, args = append(where, schema.ItemColumn+" <> "+placeholder(len(args)+1)), append(args, *find.ExcludeItemID)
	}
	return where, args
}
