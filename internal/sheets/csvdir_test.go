package sheets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadCSVDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Phil.csv", "GM:,Phil\nPos.,Player\nQB,Josh Allen\n")
	writeFile(t, dir, "Dexter.csv", "GM:,Dexter\n")
	writeFile(t, dir, "notes.txt", "not a tab")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0755))

	grids, err := LoadCSVDir(dir)
	require.NoError(t, err)
	require.Len(t, grids, 2)

	// Sorted by file name.
	assert.Equal(t, "Dexter", grids[0].Name)
	assert.Equal(t, "Phil", grids[1].Name)
	assert.Equal(t, []string{"QB", "Josh Allen"}, grids[1].Rows[2])
}

func TestLoadCSVDir_RaggedRows(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sheet.csv", "a,b,c\nd\ne,f\n")

	grids, err := LoadCSVDir(dir)
	require.NoError(t, err)
	require.Len(t, grids, 1)

	assert.Equal(t, [][]string{{"a", "b", "c"}, {"d"}, {"e", "f"}}, grids[0].Rows)
}

func TestLoadCSVDir_MissingDir(t *testing.T) {
	_, err := LoadCSVDir(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestLoadCSVDir_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.csv", "a,\"unclosed\n")

	_, err := LoadCSVDir(dir)
	assert.Error(t, err)
}

func TestLoadCSVFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "player_feed.csv", "name,position\nJosh Allen,QB\n")

	grid, err := LoadCSVFile(filepath.Join(dir, "player_feed.csv"))
	require.NoError(t, err)

	assert.Equal(t, "player_feed", grid.Name)
	require.Len(t, grid.Rows, 2)
	assert.Equal(t, []string{"Josh Allen", "QB"}, grid.Rows[1])
}

func TestLoadCSVFile_Missing(t *testing.T) {
	_, err := LoadCSVFile(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestLoadCSVFile_StripsBOM(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "player_identity.csv", "\ufeffplayer_id,display_name\n1,Josh Allen\n")

	grid, err := LoadCSVFile(filepath.Join(dir, "player_identity.csv"))
	require.NoError(t, err)

	assert.Equal(t, "player_id", grid.Rows[0][0])
}
