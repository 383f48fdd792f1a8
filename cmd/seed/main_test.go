package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/notes/internal/domain"
)

func TestRun_NoArgs(t *testing.T) {
	err := run(context.Background(), nil, commands{}, &bytes.Buffer{})

	assert.ErrorIs(t, err, errUsage)
}

func TestRun_UnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"drop"}, commands{}, &bytes.Buffer{})

	assert.ErrorIs(t, err, errUsage)
}

func TestRun_Category(t *testing.T) {
	cmd := commands{
		createCategory: func(_ context.Context, name, slug string) (domain.Category, error) {
			assert.Equal(t, "Travel", name)
			assert.Equal(t, "", slug)
			return domain.Category{ID: 1, Name: name, Slug: "travel"}, nil
		},
	}
	var out bytes.Buffer

	err := run(context.Background(), []string{"category", "-name", "Travel"}, cmd, &out)

	require.NoError(t, err)
	assert.Equal(t, "category 1 travel\n", out.String())
}

func TestRun_User(t *testing.T) {
	cmd := commands{
		createUser: func(_ context.Context, username, password string, superuser bool, perms []domain.Permission) (domain.User, error) {
			assert.Equal(t, "editor", username)
			assert.Equal(t, "s3cret", password)
			assert.False(t, superuser)
			assert.Equal(t, []domain.Permission{domain.PermAddNote, domain.PermChangeNote}, perms)
			return domain.User{ID: 2, Username: username}, nil
		},
	}
	var out bytes.Buffer

	err := run(context.Background(), []string{
		"user", "-username", "editor", "-password", "s3cret", "-perms", "notes.add_note, notes.change_note",
	}, cmd, &out)

	require.NoError(t, err)
	assert.Equal(t, "user 2 editor\n", out.String())
}

func TestRun_DeleteTag(t *testing.T) {
	var deleted string
	cmd := commands{
		deleteTag: func(_ context.Context, slug string) error {
			deleted = slug
			return nil
		},
	}

	err := run(context.Background(), []string{"delete-tag", "-slug", "road"}, cmd, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, "road", deleted)
}

func TestRun_DeleteCategoryProtected(t *testing.T) {
	cmd := commands{
		deleteCategory: func(context.Context, string) error { return domain.ErrProtected },
	}

	err := run(context.Background(), []string{"delete-category", "-slug", "travel"}, cmd, &bytes.Buffer{})

	assert.ErrorIs(t, err, domain.ErrProtected)
}

func TestRun_DeleteUser(t *testing.T) {
	cmd := commands{
		deleteUser: func(_ context.Context, username string) error {
			assert.Equal(t, "editor", username)
			return nil
		},
	}
	var out bytes.Buffer

	err := run(context.Background(), []string{"delete-user", "-username", "editor"}, cmd, &out)

	require.NoError(t, err)
	assert.Equal(t, "deleted user editor\n", out.String())
}

func TestRun_DeleteUserRequiresUsername(t *testing.T) {
	err := run(context.Background(), []string{"delete-user"}, commands{}, &bytes.Buffer{})

	assert.ErrorContains(t, err, "-username is required")
}

func TestRun_DeleteRequiresSlug(t *testing.T) {
	err := run(context.Background(), []string{"delete-category"}, commands{}, &bytes.Buffer{})

	assert.ErrorContains(t, err, "-slug is required")
}

func TestParsePermissions(t *testing.T) {
	perms, err := parsePermissions("")
	require.NoError(t, err)
	assert.Empty(t, perms)

	_, err = parsePermissions("notes.add_note,notes.publish")
	assert.ErrorContains(t, err, "notes.publish")
}
