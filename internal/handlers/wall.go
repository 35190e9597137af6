package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dkarpov/freedomwall/internal/apperrors"
	"github.com/dkarpov/freedomwall/internal/handlers/render"
	"github.com/dkarpov/freedomwall/internal/handlers/userctx"
	"github.com/dkarpov/freedomwall/internal/models"
)

type wallService interface {
	// Publish post for the user
	// Has to return apperrors.ErrPostContentEmpty when content trims to nothing
	CreatePost(ctx context.Context, userID uuid.UUID, content string) (models.Post, error)

	// List the whole wall, shuffled
	ListPosts(ctx context.Context) ([]models.Post, error)

	// Delete the user's own post
	// Has to return apperrors.ErrPostNotFound for foreign or missing posts
	DeletePost(ctx context.Context, postID uuid.UUID, userID uuid.UUID) error
}

type WallHandler struct {
	wall wallService
}

type PostResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func NewWall(wall wallService) *WallHandler {
	return &WallHandler{wall: wall}
}

// List the feed
// Public on purpose: the wall is readable without logging in, only writing
// needs an account
func (h *WallHandler) list(w http.ResponseWriter, r *http.Request) {
	posts, err := h.wall.ListPosts(r.Context())
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		response = append(response, PostResponse{
			ID:        p.ID,
			UserID:    p.UserID,
			Username:  p.Username,
			Content:   p.Content,
			CreatedAt: p.CreatedAt,
		})
	}

	render.JSON(w, response)
}

func (h *WallHandler) create(w http.ResponseWriter, r *http.Request) {
	type CreatePostRequest struct {
		Content string `json:"content" validate:"required"`
	}

	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := render.BindAndValidate[CreatePostRequest](w, r)
	if err != nil {
		return
	}

	post, err := h.wall.CreatePost(r.Context(), user.ID, data.Content)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPostContentEmpty):
			render.ServiceError(w, "Post content must not be empty", http.StatusBadRequest)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, PostResponse{
		ID:        post.ID,
		UserID:    post.UserID,
		Username:  post.Username,
		Content:   post.Content,
		CreatedAt: post.CreatedAt,
	}, http.StatusCreated)
}

func (h *WallHandler) delete(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	postID, err := uuid.Parse(r.PathValue("postID"))
	if err != nil {
		render.ServiceError(w, "Invalid post id", http.StatusBadRequest)
		return
	}

	err = h.wall.DeletePost(r.Context(), postID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPostNotFound):
			render.ServiceError(w, "Post not found", http.StatusNotFound)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
