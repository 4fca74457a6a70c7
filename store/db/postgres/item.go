package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/folio/store"
)

func (d *DB) CreatePost(ctx context.Context, create *store.Post) (*store.Post, error) {
	fields := []string{"uid", "creator_id", "content"}
	args := []any{create.UID, create.CreatorID, create.Content}
	if create.CreatedTs != 0 {
		fields, args = append(fields, "created_ts", "updated_ts"), append(args, create.CreatedTs, create.CreatedTs)
	}

	stmt := `INSERT INTO post (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id, created_ts, updated_ts`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID, &create.CreatedTs, &create.UpdatedTs); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", convertError(err))
	}
	return create, nil
}

func (d *DB) ListPosts(ctx context.Context, find *store.FindPost) ([]*store.Post, error) {
	where, args := itemWhere(find.ID, find.IDList, find.UID, find.CreatorID)
	query := `SELECT id, uid, creator_id, content, created_ts, updated_ts FROM post WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC, id DESC` + limitOffset(find.Limit, find.Offset)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	list := []*store.Post{}
	for rows.Next() {
		post := &store.Post{}
		if err := rows.Scan(&post.ID, &post.UID, &post.CreatorID, &post.Content, &post.CreatedTs, &post.UpdatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		list = append(list, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return list, nil
}

func (d *DB) DeletePost(ctx context.Context, delete *store.DeletePost) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM post WHERE id = `+placeholder(1), delete.ID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *DB) CreateProject(ctx context.Context, create *store.Project) (*store.Project, error) {
	fields := []string{"uid", "creator_id", "title", "description"}
	args := []any{create.UID, create.CreatorID, create.Title, create.Description}
	if create.CreatedTs != 0 {
		fields, args = append(fields, "created_ts", "updated_ts"), append(args, create.CreatedTs, create.CreatedTs)
	}

	stmt := `INSERT INTO project (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id, created_ts, updated_ts`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID, &create.CreatedTs, &create.UpdatedTs); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", convertError(err))
	}
	return create, nil
}

func (d *DB) ListProjects(ctx context.Context, find *store.FindProject) ([]*store.Project, error) {
	where, args := itemWhere(find.ID, find.IDList, find.UID, find.CreatorID)
	query := `SELECT id, uid, creator_id, title, description, created_ts, updated_ts FROM project WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC, id DESC` + limitOffset(find.Limit, find.Offset)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	list := []*store.Project{}
	for rows.Next() {
		project := &store.Project{}
		if err := rows.Scan(&project.ID, &project.UID, &project.CreatorID, &project.Title, &project.Description, &project.CreatedTs, &project.UpdatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		list = append(list, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return list, nil
}

func (d *DB) DeleteProject(ctx context.Context, delete *store.DeleteProject) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM project WHERE id = `+placeholder(1), delete.ID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func itemWhere(id *int32, idList []int32, uid *string, creatorID *int32) ([]string, []any) {
	where, args := []string{"1 = 1"}, []any{}
	if id != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *id)
	}
	if len(idList) > 0 {
		where, args = append(where, "id = ANY("+placeholder(len(args)+1)+")"), append(args, int64Array(idList))
	}
	if uid != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *uid)
	}
	if creatorID != nil {
		where, args = append(where, "creator_id = "+placeholder(len(args)+1)), append(args, *creatorID)
	}
	return where, args
}

func limitOffset(limit, offset *int) string {
	if limit == nil {
		return ""
	}
	s := fmt.Sprintf(" LIMIT %d", *limit)
	if offset != nil {
		s = fmt.Sprintf("%s OFFSET %d", s, *offset)
	}
	return s
}
