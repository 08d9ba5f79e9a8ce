package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/digital-diary-api/internal/dto"
	"github.com/noah-isme/digital-diary-api/internal/models"
	"github.com/noah-isme/digital-diary-api/internal/service"
)

type stubUsers struct {
	got service.NewUserInput
}

func (s *stubUsers) CreateUser(_ context.Context, in service.NewUserInput) (*models.User, error) {
	s.got = in
	return &models.User{ID: "u-1", Email: in.Email, Role: in.Role}, nil
}

type stubSeeder struct {
	err error
}

func (s *stubSeeder) Run(context.Context) (*dto.SeedSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.SeedSummary{Students: 170, Grades: 2500, Attendance: 3700}, nil
}

func setup(t *testing.T) (*commandLine, *stubUsers, *[]string, *bytes.Buffer) {
	t.Helper()
	users := &stubUsers{}
	var migrations []string
	out := &bytes.Buffer{}
	cli := &commandLine{
		users:  users,
		seeder: &stubSeeder{},
		migrate: func(command string, args ...string) error {
			migrations = append(migrations, command)
			return nil
		},
		out: out,
	}
	return cli, users, &migrations, out
}

func stubPassword(t *testing.T, pwd string, err error) {
	t.Helper()
	original := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), err }
	t.Cleanup(func() { readPasswordFunc = original })
}

func Test_commandLine_usage(t *testing.T) {
	cli, _, _, out := setup(t)

	for _, args := range [][]string{{"admin"}, {"admin", "unknown"}, {"admin", "migrate", "sideways"}} {
		err := cli.run(context.Background(), args)
		assert.ErrorIs(t, err, errHelp)
	}
	assert.Contains(t, out.String(), "Usage:")
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, migrations, _ := setup(t)

	require.NoError(t, cli.run(context.Background(), []string{"admin", "migrate"}))
	require.NoError(t, cli.run(context.Background(), []string{"admin", "migrate", "status"}))
	require.NoError(t, cli.run(context.Background(), []string{"admin", "migrate", "down"}))

	assert.Equal(t, []string{"up", "status", "down"}, *migrations)
}

func Test_commandLine_adduser(t *testing.T) {
	cli, users, _, out := setup(t)
	stubPassword(t, "s3cret-pass", nil)

	err := cli.run(context.Background(), []string{"admin", "adduser", "-email", "t@school.ru", "-name", "Мария Ивановна"})
	require.NoError(t, err)

	assert.Equal(t, service.NewUserInput{
		Email:    "t@school.ru",
		FullName: "Мария Ивановна",
		Password: "s3cret-pass",
		Role:     models.RoleTeacher,
	}, users.got)
	assert.Contains(t, out.String(), "created TEACHER t@school.ru")
}

func Test_commandLine_adduserMissingInput(t *testing.T) {
	cli, users, _, _ := setup(t)
	stubPassword(t, "", nil)

	assert.ErrorIs(t, cli.run(context.Background(), []string{"admin", "adduser", "-email", "t@school.ru"}), errHelp)
	assert.ErrorIs(t, cli.run(context.Background(), []string{"admin", "adduser", "-email", "t@school.ru", "-name", "T"}), errHelp)
	assert.Empty(t, users.got.Email)
}

func Test_commandLine_seed(t *testing.T) {
	cli, _, _, out := setup(t)

	require.NoError(t, cli.run(context.Background(), []string{"admin", "seed"}))
	assert.Contains(t, out.String(), "seeded 170 students, 2500 grades, 3700 attendance marks")

	cli.seeder = &stubSeeder{err: errors.New("no teacher account found")}
	assert.EqualError(t, cli.run(context.Background(), []string{"admin", "seed"}), "no teacher account found")
}
