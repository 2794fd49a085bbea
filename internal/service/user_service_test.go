package service

import (
	"context"
	"testing"

	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserServiceList(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.List(ctx, principal(f.member), "")
	require.ErrorIs(t, err, domain.ErrForbidden)

	all, err := f.users.List(ctx, principal(f.admin), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	members, err := f.users.List(ctx, principal(f.admin), "team_member")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, f.other.Name, members[0].Name, "ordered by name")

	_, err = f.users.List(ctx, principal(f.admin), "OWNER")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestUserServiceCreateUser(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.CreateUser(ctx, NewUserInput{
		Email:    "New.Person@Example.com",
		Name:     "New Person",
		Role:     "TEAM_MEMBER",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "new.person@example.com", u.Email)
	assert.Equal(t, "hashed:correct horse", u.HashedPassword)

	_, err = f.users.CreateUser(ctx, NewUserInput{
		Email: "new.person@example.com", Name: "Again", Role: "ADMIN", Password: "correct horse",
	})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, "email is already registered", domain.MessageOf(err))

	_, err = f.users.CreateUser(ctx, NewUserInput{
		Email: "short@example.com", Name: "Short", Role: "ADMIN", Password: "abc",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestUserServiceCreateUsersSkipsExisting(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	inputs := []NewUserInput{
		{Email: f.member.Email, Name: "Dup", Role: "TEAM_MEMBER", Password: "password1"},
		{Email: "fresh@example.com", Name: "Fresh", Role: "TEAM_MEMBER", Password: "password1"},
	}

	created, err := f.users.CreateUsers(context.Background(), inputs, true)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "fresh@example.com", created[0].Email)

	_, err = f.users.CreateUsers(context.Background(), inputs[:1], false)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
