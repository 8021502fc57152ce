package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func tempStore(ctx context.Context, t *testing.T) *Store {
	dir := t.TempDir()
	st, err := Open(ctx, Options{
		Driver:   DriverSQLite,
		DSN:      filepath.Join(dir, "nested", "packbox.db"),
		CacheTTL: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dsn := filepath.Join(dir, "data", "packbox.db")
	st, err := Open(ctx, Options{DSN: dsn})
	require.NoError(t, err)
	require.Equal(t, DriverSQLite, st.Driver())
	require.NoError(t, st.Ping(ctx))
	require.NoError(t, st.CreateUser(ctx, "bob", "salt.key"))
	require.NoError(t, st.Close())

	_, err = os.Stat(dsn)
	require.NoError(t, err, "database file should have been created")

	// re-opening must keep the data and skip applied migrations
	st, err = Open(ctx, Options{DSN: dsn})
	require.NoError(t, err)
	defer st.Close()
	exists, err := st.UserExists(ctx, "bob")
	require.NoError(t, err)
	require.True(t, exists)

	_, err = Open(ctx, Options{Driver: "oracle", DSN: "x"})
	var unsupported UnsupportedDriver
	require.ErrorAs(t, err, &unsupported)

	_, err = Open(ctx, Options{Driver: DriverSQLite})
	require.Error(t, err)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	st := tempStore(ctx, t)

	exists, err := st.UserExists(ctx, "bob")
	require.NoError(t, err)
	require.False(t, exists)

	_, found, err := st.LookupVerifier(ctx, "bob")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, st.CreateUser(ctx, "bob", "aa.bb"))
	exists, err = st.UserExists(ctx, "bob")
	require.NoError(t, err)
	require.True(t, exists)

	verifier, found, err := st.LookupVerifier(ctx, "bob")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "aa.bb", verifier)

	err = st.CreateUser(ctx, "bob", "cc.dd")
	var dup DuplicateUser
	require.ErrorAs(t, err, &dup)
	require.True(t, dup.Conflict())
	require.Equal(t, "bob", dup.Username)

	// names are case sensitive
	require.NoError(t, st.CreateUser(ctx, "Bob", "ee.ff"))
}

func TestItems(t *testing.T) {
	ctx := context.Background()
	st := tempStore(ctx, t)

	_, err := st.AddItem(ctx, "", 1)
	var invalid InvalidItem
	require.ErrorAs(t, err, &invalid)
	_, err = st.AddItem(ctx, "lamp", 0)
	require.ErrorAs(t, err, &invalid)

	items, err := st.ItemsInBox(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)

	lamp, err := st.AddItem(ctx, "lamp", 1)
	require.NoError(t, err)
	require.NotEmpty(t, lamp.ID)
	require.Equal(t, 1, lamp.BoxNumber)

	// the empty listing above was cached, adding must invalidate it
	items, err = st.ItemsInBox(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []Item{lamp}, items)

	book, err := st.AddItem(ctx, "book", 1)
	require.NoError(t, err)
	_, err = st.AddItem(ctx, "Desk Lamp", 2)
	require.NoError(t, err)

	items, err = st.ItemsInBox(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []Item{book, lamp}, items)

	// served from the cache this time
	items, err = st.ItemsInBox(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []Item{book, lamp}, items)

	found, err := st.FindItems(ctx, "LAMP")
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, "Desk Lamp", found[0].Name)
	require.Equal(t, 2, found[0].BoxNumber)
	require.Equal(t, "lamp", found[1].Name)

	found, err = st.FindItems(ctx, "chair")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Empty(t, found)
}

func TestFindItemsEscapesWildcards(t *testing.T) {
	ctx := context.Background()
	st := tempStore(ctx, t)
	for _, name := range []string{"100% cotton", "1000 cotton", "snake_case", "snakecase", `back\slash`} {
		_, err := st.AddItem(ctx, name, 3)
		require.NoError(t, err)
	}
	for fragment, expected := range map[string]string{
		"0%":       "100% cotton",
		"e_c":      "snake_case",
		`k\s`:      `back\slash`,
		"% cotton": "100% cotton",
	} {
		found, err := st.FindItems(ctx, fragment)
		require.NoError(t, err)
		require.Len(t, found, 1, "fragment %q", fragment)
		require.Equal(t, expected, found[0].Name)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	require.False(t, isUniqueViolation(nil))
	require.False(t, isUniqueViolation(errors.New("boom")))
}

func TestFindItemsFoldsUnicode(t *testing.T) {
	ctx := context.Background()
	st := tempStore(ctx, t)
	ecole, err := st.AddItem(ctx, "École Notebook", 4)
	require.NoError(t, err)
	_, err = st.AddItem(ctx, "Ecole Notebook", 4)
	require.NoError(t, err)

	for _, fragment := range []string{"éc", "ÉC", "école"} {
		found, err := st.FindItems(ctx, fragment)
		require.NoError(t, err)
		require.Equal(t, []Item{ecole}, found, "fragment %q", fragment)
	}
}
