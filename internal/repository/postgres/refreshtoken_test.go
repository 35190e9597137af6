package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkarpov/freedomwall/internal/apperrors"
	"github.com/dkarpov/freedomwall/internal/models"
	"github.com/dkarpov/freedomwall/internal/testutil"
)

func Test_RefreshTokenRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	newToken := func(t *testing.T, tx pgx.Tx, tokenString string) models.RefreshToken {
		t.Helper()

		user, err := (&UserRepo{DB: tx}).CreateUser(t.Context(), "token-owner-"+tokenString, "hash")
		require.NoError(t, err)

		now := time.Now().Truncate(time.Microsecond)
		return models.RefreshToken{
			ID:        uuid.New(),
			UserID:    user.ID,
			Token:     tokenString,
			CreatedAt: now,
			ExpiresAt: now.Add(24 * time.Hour),
			UsedAt:    nil,
		}
	}

	t.Run("save and get ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}
			token := newToken(t, tx, "token-one")

			require.NoError(t, r.Save(t.Context(), token))

			got, err := r.Get(t.Context(), "token-one")

			require.NoError(t, err)
			assert.Equal(t, token.ID, got.ID)
			assert.Equal(t, token.UserID, got.UserID)
			assert.Equal(t, token.Token, got.Token)
			assert.Nil(t, got.UsedAt, "fresh token should not be used")
		})
	})

	t.Run("get unknown token fail", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}

			_, err := r.Get(t.Context(), "never-saved")

			assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})

	t.Run("mark used once ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}
			token := newToken(t, tx, "token-used-once")
			require.NoError(t, r.Save(t.Context(), token))

			got, err := r.MarkUsed(t.Context(), "token-used-once")

			require.NoError(t, err)
			require.NotNil(t, got.UsedAt)
			assert.WithinDuration(t, time.Now(), *got.UsedAt, time.Second)
		})
	})

	t.Run("mark used twice fail", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}
			token := newToken(t, tx, "token-used-twice")
			require.NoError(t, r.Save(t.Context(), token))

			first, err := r.MarkUsed(t.Context(), "token-used-twice")
			require.NoError(t, err)

			second, err := r.MarkUsed(t.Context(), "token-used-twice")

			assert.ErrorIs(t, err, apperrors.ErrRefreshTokenIsUsed)
			require.NotNil(t, second.UsedAt)
			assert.Equal(t, *first.UsedAt, *second.UsedAt, "original used_at should not be overwritten")
		})
	})

	t.Run("mark unknown token fail", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}

			_, err := r.MarkUsed(t.Context(), "never-saved")

			assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})
}
