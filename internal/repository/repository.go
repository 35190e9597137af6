package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/dkarpov/freedomwall/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with username exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, hashedPassword string) (models.User, error)

	// Get user by it's id or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

// Post repository interface
type PostRepo interface {
	// Create post for the user
	CreatePost(ctx context.Context, userID uuid.UUID, content string) (models.Post, error)

	// List all posts joined with author usernames, newest first
	ListPosts(ctx context.Context) ([]models.Post, error)

	// Delete post owned by the user
	// Has to return apperrors.ErrPostNotFound if no post with that id belongs to the user:
	// callers can't tell a foreign post from a missing one
	DeletePost(ctx context.Context, postID uuid.UUID, userID uuid.UUID) error
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	// Save token in repository
	Save(ctx context.Context, token models.RefreshToken) error

	// Return the token if it exists in the database
	// It should return result even if it expired or used already
	Get(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Mark token as used
	// If the token is already used, must not overwrite the existing 'usedAt'
	// and must return apperrors.ErrRefreshTokenIsUsed
	MarkUsed(ctx context.Context, tokenString string) (models.RefreshToken, error)
}

// Storage combines all repositories and provides transaction support
type Storage interface {
	User() UserRepo
	Post() PostRepo
	Refresh() RefreshTokenRepo

	// Run fn within a single database transaction
	InTx(ctx context.Context, fn func(Storage) error) error
}
