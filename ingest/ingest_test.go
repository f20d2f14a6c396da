package ingest

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/TFMV/notegraph/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
	"name": "dreams",
	"nodes": [
		{"id": "1", "label": "Dreams", "x": 10, "y": 20},
		{"id": "2", "label": "Illusions", "data": {"mood": "calm"}},
		{"id": "3"}
	],
	"edges": [
		{"source": "1", "target": "2"},
		{"id": "custom", "source": "2", "target": "3"},
		{"source": "3", "target": "99"}
	]
}`

func TestJSONProcessor(t *testing.T) {
	g, err := NewJSONProcessor().ProcessData([]byte(sampleJSON))
	require.NoError(t, err)

	assert.Equal(t, "dreams", g.Name)
	require.Len(t, g.Nodes, 3)
	assert.Equal(t, &graph.Vector{X: 10, Y: 20}, g.Nodes[0].Position())
	assert.Nil(t, g.Nodes[1].Position())
	assert.Equal(t, "calm", g.Nodes[1].Properties["mood"])
	assert.Equal(t, "3", g.Nodes[2].Label, "label falls back to id")

	require.Len(t, g.Edges, 3)
	assert.Equal(t, "1-2", g.Edges[0].ID)
	assert.Equal(t, "custom", g.Edges[1].ID)
	assert.Len(t, g.DanglingEdges(), 1)
}

func TestJSONProcessor_InvalidJSON(t *testing.T) {
	_, err := NewJSONProcessor().ProcessData([]byte(`{"nodes": [`))
	assert.Error(t, err)
}

func TestCSVProcessor(t *testing.T) {
	data := "source,target,title\n1,2,Dreams\n1,3,Dreams\n2,3,Illusions\n"

	g, err := NewCSVProcessor().ProcessData([]byte(data))
	require.NoError(t, err)

	require.Len(t, g.Nodes, 3)
	assert.Equal(t, "Dreams", g.Nodes[0].Label)
	assert.Equal(t, "2", g.Nodes[1].Label)
	require.Len(t, g.Edges, 3)
	assert.Equal(t, "2-3", g.Edges[2].ID)
}

func TestCSVProcessor_MissingColumns(t *testing.T) {
	_, err := NewCSVProcessor().ProcessData([]byte("a,b\n1,2\n"))
	assert.Error(t, err)
}

func TestGetProcessor(t *testing.T) {
	p, err := GetProcessor(".JSON")
	require.NoError(t, err)
	assert.Equal(t, "JSON Processor", p.GetName())

	p, err = GetProcessor("csv")
	require.NoError(t, err)
	assert.Equal(t, "CSV Processor", p.GetName())

	_, err = GetProcessor("log")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	g, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 3)

	_, err = LoadFile(filepath.Join(dir, "notes.xml"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func createNotesDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	stmts := []string{
		`CREATE TABLE notes (id INTEGER PRIMARY KEY, title TEXT)`,
		`CREATE TABLE note_links (note_id INTEGER, linked_note_id INTEGER)`,
		`INSERT INTO notes (id, title) VALUES (1, 'Dreams'), (2, 'Memories'), (3, NULL)`,
		`INSERT INTO note_links (note_id, linked_note_id) VALUES (1, 2), (2, 3), (3, 7)`,
	}
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err)
	}
	return path
}

func TestSQLiteSource(t *testing.T) {
	path := createNotesDB(t)

	src, err := OpenSQLite(path)
	require.NoError(t, err)
	defer src.Close()

	g, err := src.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, g.Nodes, 3)
	assert.Equal(t, "1", g.Nodes[0].ID)
	assert.Equal(t, "Dreams", g.Nodes[0].Label)
	assert.Equal(t, "", g.Nodes[2].Label)

	require.Len(t, g.Edges, 3)
	assert.Equal(t, "1-2", g.Edges[0].ID)
	assert.Equal(t, "3", g.Edges[2].Source)
	assert.Equal(t, "7", g.Edges[2].Target)
}

func TestLoadFile_SQLite(t *testing.T) {
	g, err := LoadFile(createNotesDB(t))
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.DanglingEdges(), 1)
}

func TestOpenSQLite_MissingFile(t *testing.T) {
	_, err := OpenSQLite(filepath.Join(t.TempDir(), "nope.db"))
	assert.Error(t, err)
}
