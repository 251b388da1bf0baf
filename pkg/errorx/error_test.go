package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesSentinelThroughWrapping(t *testing.T) {
	err := fmt.Errorf("like post 7: %w", ErrAlreadyLiked)

	require.True(t, errors.Is(err, ErrAlreadyLiked))
	require.False(t, errors.Is(err, ErrLikeNotFound))
	require.Equal(t, Conflict, KindOf(err))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(Internal, cause, "failed to load post")

	require.ErrorIs(t, err, cause)
	require.Equal(t, "connection reset", err.Details())
	require.Equal(t, "failed to load post: connection reset", err.Error())
}

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		InvalidInput: http.StatusBadRequest,
		AuthRequired: http.StatusUnauthorized,
		Forbidden:    http.StatusForbidden,
		NotFound:     http.StatusNotFound,
		Conflict:     http.StatusConflict,
		Internal:     http.StatusInternalServerError,
	}
	for kind, status := range cases {
		require.Equal(t, status, kind.Status(), kind.String())
	}
	require.Equal(t, Internal, KindOf(errors.New("boom")))
}
