package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSV parses a written file back, stripping the BOM first.
func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = bytes.TrimPrefix(data, utf8BOM)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteSimpleCSV(t *testing.T) {
	base := t.TempDir()
	writer := NewCSVWriter(base)

	err := writer.WriteSimpleCSV("out.csv",
		[]string{"gm", "player"},
		[][]string{
			{"Dexter", "Josh Allen"},
			{"Phil", "Jared Goff"},
		})
	require.NoError(t, err)

	path := filepath.Join(base, "out.csv")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, utf8BOM), "expected UTF-8 BOM prefix")

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"gm", "player"}, rows[0])
	assert.Equal(t, []string{"Phil", "Jared Goff"}, rows[2])
}

func TestWriteCSV_Append(t *testing.T) {
	base := t.TempDir()
	writer := NewCSVWriter(base)

	require.NoError(t, writer.WriteCSV("out.csv", WriteOptions{
		Headers:   []string{"gm"},
		Records:   [][]string{{"Dexter"}},
		BOMPrefix: true,
	}))
	require.NoError(t, writer.WriteCSV("out.csv", WriteOptions{
		Records: [][]string{{"Phil"}, {"Quinn"}},
		Append:  true,
	}))

	rows := readCSV(t, filepath.Join(base, "out.csv"))
	assert.Equal(t, [][]string{{"gm"}, {"Dexter"}, {"Phil"}, {"Quinn"}}, rows)
}

func TestWriteCSV_CreatesDirectories(t *testing.T) {
	base := t.TempDir()
	writer := NewCSVWriter(base)

	err := writer.WriteSimpleCSV(
		filepath.Join("rosters", "dt=2025-09-01", "rosters.csv"),
		[]string{"gm"}, nil)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(base, "rosters", "dt=2025-09-01", "rosters.csv"))
}

func TestWriteCSV_AbsolutePath(t *testing.T) {
	writer := NewCSVWriter(t.TempDir())

	target := filepath.Join(t.TempDir(), "abs.csv")
	require.NoError(t, writer.WriteSimpleCSV(target, []string{"h"}, [][]string{{"v"}}))

	assert.FileExists(t, target)
}

func TestStreamWriter(t *testing.T) {
	base := t.TempDir()
	writer := NewCSVWriter(base)

	stream, err := writer.CreateStreamWriter("stream.csv", []string{"transaction_id", "gm"})
	require.NoError(t, err)

	require.NoError(t, stream.WriteRecord([]string{"2025-001", "Dexter"}))
	require.NoError(t, stream.WriteRecord([]string{"2025-002", "Phil"}))
	require.NoError(t, stream.Close())

	rows := readCSV(t, filepath.Join(base, "stream.csv"))
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2025-002", "Phil"}, rows[2])
}
