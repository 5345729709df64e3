package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_ForeignKeysOn(t *testing.T) {
	sdb, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "fk.db"))
	require.NoError(t, err)
	defer sdb.Close()

	var on int
	require.NoError(t, sdb.QueryRow("PRAGMA foreign_keys").Scan(&on))
	require.Equal(t, 1, on)
}
