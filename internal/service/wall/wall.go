package wall

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/dkarpov/freedomwall/internal/apperrors"
	"github.com/dkarpov/freedomwall/internal/models"
	"github.com/dkarpov/freedomwall/internal/repository"
)

// Wall service: everything that happens to posts on the freedom wall
type WallService struct {
	postRepo repository.PostRepo
}

func NewService(postRepo repository.PostRepo) *WallService {
	return &WallService{postRepo: postRepo}
}

// Publish post on the wall for the user
// Content that is empty after trimming is rejected with ErrPostContentEmpty
func (s *WallService) CreatePost(ctx context.Context, userID uuid.UUID, content string) (models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Post{}, apperrors.ErrPostContentEmpty
	}

	post, err := s.postRepo.CreatePost(ctx, userID, content)
	if err != nil {
		return post, fmt.Errorf("can't create post. Err: %w", err)
	}

	return post, nil
}

// List the whole wall in randomized display order
// The shuffle on every read is a product decision inherited from the first
// version of the wall, not an accident: the feed is anti-chronological on
// purpose. Two calls return the same set of posts, likely in different order.
func (s *WallService) ListPosts(ctx context.Context) ([]models.Post, error) {
	posts, err := s.postRepo.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't list posts. Err: %w", err)
	}

	rand.Shuffle(len(posts), func(i, j int) {
		posts[i], posts[j] = posts[j], posts[i]
	})

	return posts, nil
}

// Delete the user's own post
// Ownership is enforced here (well, in the repo query), not by whatever the
// client chooses to render: deleting a foreign or missing post returns
// ErrPostNotFound
func (s *WallService) DeletePost(ctx context.Context, postID uuid.UUID, userID uuid.UUID) error {
	return s.postRepo.DeletePost(ctx, postID, userID)
}
