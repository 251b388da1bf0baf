package services

import (
	"bytes"
	"context"
	"io/fs"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anonto42/gamematch/backend/internal/models"
	"github.com/anonto42/gamematch/backend/internal/testutil"
	"github.com/anonto42/gamematch/backend/pkg/errorx"
	"github.com/anonto42/gamematch/backend/pkg/storage"
)

func fileHeader(t *testing.T, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="avatar"; filename="avatar.bin"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["avatar"][0]
}

func TestUpdateProfileWithAvatar(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	local, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir(), PublicURL: "/uploads"})
	require.NoError(t, err)
	svc := NewProfileService(NewIdentityService(store), local)

	user := testutil.CreateUser(t, store, "user|42", "Before")
	name := "After"

	profile, err := svc.UpdateProfile(ctx, user, models.UpdateProfileRequest{DisplayName: &name}, fileHeader(t, "image/png", []byte("png")))
	require.NoError(t, err)
	require.Equal(t, "After", profile.DisplayName)
	require.Equal(t, "user|42@example.com", profile.Email)
	require.True(t, strings.HasPrefix(profile.AvatarURL, "/uploads/avatars/user_42/"), profile.AvatarURL)
	require.True(t, strings.HasSuffix(profile.AvatarURL, ".png"))

	key := strings.TrimPrefix(profile.AvatarURL, "/uploads/")
	data, err := os.ReadFile(filepath.Join(local.BasePath(), key))
	require.NoError(t, err)
	require.Equal(t, "png", string(data))
}

func TestUpdateProfileRejectsNonImage(t *testing.T) {
	store := testutil.NewStore(t)
	local, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir(), PublicURL: "/uploads"})
	require.NoError(t, err)
	svc := NewProfileService(NewIdentityService(store), local)
	user := testutil.CreateUser(t, store, "u", "U")

	_, err = svc.UpdateProfile(context.Background(), user, models.UpdateProfileRequest{}, fileHeader(t, "text/plain", []byte("hi")))
	require.ErrorIs(t, err, errorx.ErrInvalidUpload)
}

func storedFiles(t *testing.T, root string) []string {
	t.Helper()

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestUpdateProfileRejectedEditRemovesAvatar(t *testing.T) {
	store := testutil.NewStore(t)
	local, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir(), PublicURL: "/uploads"})
	require.NoError(t, err)
	svc := NewProfileService(NewIdentityService(store), local)
	user := testutil.CreateUser(t, store, "u", "U")

	blank := "   "
	_, err = svc.UpdateProfile(context.Background(), user, models.UpdateProfileRequest{DisplayName: &blank}, fileHeader(t, "image/png", []byte("png")))
	require.Equal(t, errorx.InvalidInput, errorx.KindOf(err))
	require.Empty(t, storedFiles(t, local.BasePath()))

	got, err := store.Users.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Empty(t, got.AvatarURL)
}

func TestUpdateProfileReplacesPreviousAvatar(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	local, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir(), PublicURL: "/uploads"})
	require.NoError(t, err)
	svc := NewProfileService(NewIdentityService(store), local)
	user := testutil.CreateUser(t, store, "u", "U")

	first, err := svc.UpdateProfile(ctx, user, models.UpdateProfileRequest{}, fileHeader(t, "image/png", []byte("one")))
	require.NoError(t, err)

	user, err = store.Users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	second, err := svc.UpdateProfile(ctx, user, models.UpdateProfileRequest{}, fileHeader(t, "image/jpeg", []byte("two")))
	require.NoError(t, err)
	require.NotEqual(t, first.AvatarURL, second.AvatarURL)

	key := strings.TrimPrefix(second.AvatarURL, "/uploads/")
	require.Equal(t, []string{key}, storedFiles(t, local.BasePath()))
}

func TestUpdateProfileLeavesProviderAvatarAlone(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	local, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir(), PublicURL: "/uploads"})
	require.NoError(t, err)
	svc := NewProfileService(NewIdentityService(store), local)

	user := testutil.CreateUser(t, store, "u", "U")
	user.AvatarURL = "https://lh3.googleusercontent.com/a/pic.png"

	profile, err := svc.UpdateProfile(ctx, user, models.UpdateProfileRequest{}, fileHeader(t, "image/png", []byte("png")))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(profile.AvatarURL, "/uploads/avatars/u/"))
	require.Len(t, storedFiles(t, local.BasePath()), 1)
}
