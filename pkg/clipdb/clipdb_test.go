// Copyright 2020-2021 The OS-NVR Authors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package clipdb

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	dbPath := filepath.Join(t.TempDir(), "clips.db")

	clipDB := NewDB(dbPath, &sync.WaitGroup{})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, clipDB.Init(ctx))

	return clipDB
}

func TestPutGet(t *testing.T) {
	clipDB := newTestDB(t)

	blob := []byte{1, 2, 3}
	require.NoError(t, clipDB.Put("walk", blob))

	actual, err := clipDB.Get("walk")
	require.NoError(t, err)
	require.Equal(t, blob, actual)

	t.Run("replace", func(t *testing.T) {
		require.NoError(t, clipDB.Put("walk", []byte{4}))

		actual, err := clipDB.Get("walk")
		require.NoError(t, err)
		require.Equal(t, []byte{4}, actual)
	})
	t.Run("notExist", func(t *testing.T) {
		_, err := clipDB.Get("run")
		require.ErrorIs(t, err, ErrClipNotExist)
	})
}

func TestList(t *testing.T) {
	clipDB := newTestDB(t)

	require.NoError(t, clipDB.Put("walk", []byte{1}))
	require.NoError(t, clipDB.Put("idle", []byte{2}))
	require.NoError(t, clipDB.Put("run", []byte{3}))

	names, err := clipDB.List()
	require.NoError(t, err)
	require.Equal(t, []string{"idle", "run", "walk"}, names)
}

func TestMaxKeys(t *testing.T) {
	clipDB := newTestDB(t)
	clipDB.maxKeys = 2

	require.NoError(t, clipDB.Put("a", []byte{1}))
	require.NoError(t, clipDB.Put("b", []byte{2}))
	require.NoError(t, clipDB.Put("c", []byte{3}))

	names, err := clipDB.List()
	require.NoError(t, err)
	require.Equal(t, []string{"b", "c"}, names)
}
