package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dkarpov/freedomwall/internal/apperrors"
	"github.com/dkarpov/freedomwall/internal/models"
)

type PostRepo struct {
	DB DBTX
}

const createPost = `-- name: CreatePost
WITH inserted AS (
	INSERT INTO posts (id, user_id, content)
	VALUES ($1, $2, $3)
	RETURNING id, user_id, content, created_at
)
SELECT inserted.id, inserted.user_id, users.username, inserted.content, inserted.created_at
FROM inserted
JOIN users ON users.id = inserted.user_id
`

func (r *PostRepo) CreatePost(ctx context.Context, userID uuid.UUID, content string) (models.Post, error) {
	rows, _ := r.DB.Query(ctx, createPost, uuid.New(), userID, content)
	post, err := pgx.CollectOneRow(rows, rowToPost)

	if err != nil {
		return post, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

const listPosts = `-- name: ListPosts
SELECT posts.id, posts.user_id, users.username, posts.content, posts.created_at
FROM posts
JOIN users ON users.id = posts.user_id
ORDER BY posts.created_at DESC
`

func (r *PostRepo) ListPosts(ctx context.Context) ([]models.Post, error) {
	rows, _ := r.DB.Query(ctx, listPosts)
	posts, err := pgx.CollectRows(rows, rowToPost)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return posts, nil
}

const deletePost = `-- name: DeletePost
DELETE FROM posts
WHERE id = $1 AND user_id = $2
`

// Delete post owned by the user
// Ownership is part of the delete predicate: a post that exists but belongs
// to someone else is indistinguishable from a missing one
func (r *PostRepo) DeletePost(ctx context.Context, postID uuid.UUID, userID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deletePost, postID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrPostNotFound
	}

	return nil
}

func rowToPost(row pgx.CollectableRow) (models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.UserID, &p.Username, &p.Content, &p.CreatedAt)
	return p, err
}
