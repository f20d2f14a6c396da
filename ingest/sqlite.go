package ingest

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/TFMV/notegraph/models"
	_ "github.com/mattn/go-sqlite3"
)

const (
	notesQuery = `SELECT id, title FROM notes ORDER BY id`
	linksQuery = `SELECT note_id, linked_note_id FROM note_links ORDER BY note_id, linked_note_id`
)

// SQLiteSource reads snapshots from a notes database with the tables
// notes(id, title) and note_links(note_id, linked_note_id).
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens the database at path read-only.
func OpenSQLite(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &SQLiteSource{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// Load fetches every note and link. Note ids become node ids; links get the
// id "note_id-linked_note_id".
func (s *SQLiteSource) Load(ctx context.Context) (*models.Graph, error) {
	graph := models.NewGraph("notes")

	rows, err := s.db.QueryContext(ctx, notesQuery)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var title sql.NullString
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		graph.AddNode(models.NewNodeWithID(id, "note", title.String, nil))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read notes: %w", err)
	}

	links, err := s.db.QueryContext(ctx, linksQuery)
	if err != nil {
		return nil, fmt.Errorf("query note_links: %w", err)
	}
	defer links.Close()
	for links.Next() {
		var from, to string
		if err := links.Scan(&from, &to); err != nil {
			return nil, fmt.Errorf("scan note_link: %w", err)
		}
		graph.AddEdge(models.NewEdgeWithID(from+"-"+to, from, to, "link"))
	}
	if err := links.Err(); err != nil {
		return nil, fmt.Errorf("read note_links: %w", err)
	}

	return graph, nil
}

func loadSQLiteFile(path string) (*models.Graph, error) {
	src, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return src.Load(context.Background())
}
