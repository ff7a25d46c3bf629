package db

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestInsertAndCommandText(t *testing.T) {
	d := setupTestDB(t)

	c, err := d.Insert("echo hello", "hi", "says hello", "demo")
	require.NoError(t, err)
	assert.NotZero(t, c.ID)

	text, err := d.CommandText("hi")
	require.NoError(t, err)
	assert.Equal(t, "echo hello", text)
}

func TestInsertAssignsIncreasingIDs(t *testing.T) {
	d := setupTestDB(t)

	a, err := d.Insert("echo a", "a", "", "s")
	require.NoError(t, err)
	b, err := d.Insert("echo b", "b", "", "s")
	require.NoError(t, err)
	assert.Greater(t, b.ID, a.ID)
}

func TestInsertDuplicate(t *testing.T) {
	tests := []struct {
		name      string
		command   string
		alias     string
		wantField string
	}{
		{"same alias", "echo other", "hi", "alias"},
		{"same command", "echo hello", "other", "command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupTestDB(t)
			_, err := d.Insert("echo hello", "hi", "", "demo")
			require.NoError(t, err)

			_, err = d.Insert(tt.command, tt.alias, "", "demo")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDuplicate))

			var dup *DuplicateError
			require.True(t, errors.As(err, &dup))
			assert.Equal(t, tt.wantField, dup.Field)

			n, err := d.Count()
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}
}

func TestGet(t *testing.T) {
	d := setupTestDB(t)
	inserted, err := d.Insert("ls -la", "ll", "long listing", "fs")
	require.NoError(t, err)

	got, err := d.Get("ll")
	require.NoError(t, err)
	assert.Equal(t, *inserted, *got)

	_, err = d.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = d.CommandText("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListKeepsInsertionOrder(t *testing.T) {
	d := setupTestDB(t)

	all, err := d.List()
	require.NoError(t, err)
	assert.Empty(t, all)

	for _, alias := range []string{"c", "a", "b"} {
		_, err := d.Insert("echo "+alias, alias, "", "svc-"+alias)
		require.NoError(t, err)
	}

	all, err = d.List()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Alias)
	assert.Equal(t, "a", all[1].Alias)
	assert.Equal(t, "b", all[2].Alias)
}

func TestListField(t *testing.T) {
	d := setupTestDB(t)
	_, err := d.Insert("echo 1", "one", "", "x")
	require.NoError(t, err)
	_, err = d.Insert("echo 2", "two", "", "y")
	require.NoError(t, err)
	_, err = d.Insert("echo 3", "three", "", "x")
	require.NoError(t, err)

	aliases, err := d.ListField(FieldAlias)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, aliases)

	services, err := d.ListField(FieldService)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "x"}, services)

	_, err = d.ListField(Field(42))
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestFindByService(t *testing.T) {
	d := setupTestDB(t)
	_, err := d.Insert("docker ps", "dps", "", "docker")
	require.NoError(t, err)
	_, err = d.Insert("git status", "gs", "", "git")
	require.NoError(t, err)
	_, err = d.Insert("docker images", "dim", "", "docker")
	require.NoError(t, err)

	found, err := d.FindByService("docker")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "dps", found[0].Alias)
	assert.Equal(t, "dim", found[1].Alias)

	none, err := d.FindByService("k8s")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestDeleteByAlias(t *testing.T) {
	d := setupTestDB(t)
	_, err := d.Insert("echo hello", "hi", "", "demo")
	require.NoError(t, err)

	require.NoError(t, d.DeleteByAlias("hi"))

	_, err = d.CommandText("hi")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, d.DeleteByAlias("hi"), ErrNotFound)
}

func TestDeleteByService(t *testing.T) {
	d := setupTestDB(t)
	_, err := d.Insert("docker ps", "dps", "", "docker")
	require.NoError(t, err)
	_, err = d.Insert("docker images", "dim", "", "docker")
	require.NoError(t, err)
	_, err = d.Insert("git status", "gs", "", "git")
	require.NoError(t, err)

	n, err := d.DeleteByService("docker")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rest, err := d.List()
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "gs", rest[0].Alias)

	n, err = d.DeleteByService("docker")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateField(t *testing.T) {
	d := setupTestDB(t)
	orig, err := d.Insert("echo hello", "hi", "old info", "demo")
	require.NoError(t, err)

	require.NoError(t, d.UpdateField("hi", MutableInfo, "new info"))
	require.NoError(t, d.UpdateField("hi", MutableService, "greetings"))
	require.NoError(t, d.UpdateField("hi", MutableCommand, "echo hey"))

	got, err := d.Get("hi")
	require.NoError(t, err)
	assert.Equal(t, orig.ID, got.ID)
	assert.Equal(t, "echo hey", got.Command)
	assert.Equal(t, "new info", got.Info)
	assert.Equal(t, "greetings", got.Service)

	assert.ErrorIs(t, d.UpdateField("missing", MutableInfo, "x"), ErrNotFound)
	assert.ErrorIs(t, d.UpdateField("hi", Mutable(9), "x"), ErrUnknownField)
}

func TestUpdateFieldDuplicateCommandKeepsOldValue(t *testing.T) {
	d := setupTestDB(t)
	_, err := d.Insert("echo a", "a", "", "s")
	require.NoError(t, err)
	_, err = d.Insert("echo b", "b", "", "s")
	require.NoError(t, err)

	err = d.UpdateField("b", MutableCommand, "echo a")
	var dup *DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "command", dup.Field)

	text, err := d.CommandText("b")
	require.NoError(t, err)
	assert.Equal(t, "echo b", text)
}

func TestRenameAlias(t *testing.T) {
	d := setupTestDB(t)
	orig, err := d.Insert("echo hello", "init_alias", "test_info", "test_service")
	require.NoError(t, err)

	require.NoError(t, d.RenameAlias("init_alias", "new_alias"))

	got, err := d.Get("new_alias")
	require.NoError(t, err)
	assert.Equal(t, orig.ID, got.ID)
	assert.Equal(t, orig.Command, got.Command)
	assert.Equal(t, orig.Info, got.Info)
	assert.Equal(t, orig.Service, got.Service)

	_, err = d.Get("init_alias")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRenameAliasErrors(t *testing.T) {
	d := setupTestDB(t)
	_, err := d.Insert("echo a", "a", "", "s")
	require.NoError(t, err)
	_, err = d.Insert("echo b", "b", "", "s")
	require.NoError(t, err)

	assert.ErrorIs(t, d.RenameAlias("missing", "c"), ErrNotFound)

	err = d.RenameAlias("a", "b")
	assert.ErrorIs(t, err, ErrDuplicate)

	text, err := d.CommandText("a")
	require.NoError(t, err)
	assert.Equal(t, "echo a", text)
}

func TestDataSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	d, err := Open(path)
	require.NoError(t, err)
	_, err = d.Insert("echo persisted", "p", "", "s")
	require.NoError(t, err)
	require.NoError(t, d.Close())

	d, err = Open(path)
	require.NoError(t, err)
	defer d.Close()

	text, err := d.CommandText("p")
	require.NoError(t, err)
	assert.Equal(t, "echo persisted", text)
}

func TestOpenUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := Open(filepath.Join(blocker, "sub", "store.db"))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, FileName), path)
}
