// Package ingest turns external data into snapshots the layout engine can merge.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/TFMV/notegraph/models"
	log "github.com/sirupsen/logrus"
)

// ErrUnsupportedFormat is returned for input formats no processor handles.
var ErrUnsupportedFormat = errors.New("unsupported format")

// DataProcessor defines the interface that all data processors must implement
type DataProcessor interface {
	// ProcessData takes raw data bytes and returns a snapshot
	ProcessData(data []byte) (*models.Graph, error)

	// GetName returns the name of the processor
	GetName() string
}

// JSONProcessor handles JSON snapshots of the form
// {"nodes":[{"id","label","x","y","data"}],"edges":[{"id","source","target"}]}
type JSONProcessor struct{}

// NewJSONProcessor creates a new JSON processor
func NewJSONProcessor() *JSONProcessor {
	return &JSONProcessor{}
}

// GetName returns the name of the processor
func (p *JSONProcessor) GetName() string {
	return "JSON Processor"
}

// ProcessData processes JSON data. Nodes without an id are kept so the
// simulation can count and skip them; edges to unknown nodes are kept too.
func (p *JSONProcessor) ProcessData(data []byte) (*models.Graph, error) {
	var graphData struct {
		Name  string `json:"name"`
		Nodes []struct {
			ID    string         `json:"id"`
			Label string         `json:"label"`
			Type  string         `json:"type"`
			X     *float64       `json:"x"`
			Y     *float64       `json:"y"`
			Data  map[string]any `json:"data,omitempty"`
		} `json:"nodes"`
		Edges []struct {
			ID     string `json:"id"`
			Source string `json:"source"`
			Target string `json:"target"`
			Type   string `json:"type"`
		} `json:"edges"`
	}

	if err := json.Unmarshal(data, &graphData); err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}

	name := graphData.Name
	if name == "" {
		name = "JSON Import"
	}
	graph := models.NewGraph(name)

	for _, n := range graphData.Nodes {
		label := n.Label
		if label == "" {
			label = n.ID
		}
		node := models.NewNodeWithID(n.ID, n.Type, label, n.Data)
		node.X, node.Y = n.X, n.Y
		graph.AddNode(node)
	}

	for _, e := range graphData.Edges {
		id := e.ID
		if id == "" {
			id = e.Source + "-" + e.Target
		}
		graph.AddEdge(models.NewEdgeWithID(id, e.Source, e.Target, e.Type))
	}

	return graph, nil
}

// CSVProcessor handles edge lists with source and target columns and an
// optional label column naming the source record
type CSVProcessor struct{}

// NewCSVProcessor creates a new CSV processor
func NewCSVProcessor() *CSVProcessor {
	return &CSVProcessor{}
}

// GetName returns the name of the processor
func (p *CSVProcessor) GetName() string {
	return "CSV Processor"
}

// ProcessData processes CSV data
func (p *CSVProcessor) ProcessData(data []byte) (*models.Graph, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	sourceIdx, targetIdx, labelIdx := -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "source", "from", "src":
			sourceIdx = i
		case "target", "to", "dst":
			targetIdx = i
		case "label", "name", "title":
			labelIdx = i
		}
	}

	if sourceIdx == -1 || targetIdx == -1 {
		return nil, fmt.Errorf("CSV must contain source and target columns")
	}

	graph := models.NewGraph("CSV Import")
	seen := make(map[string]bool)

	addNode := func(id, label string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		if label == "" {
			label = id
		}
		graph.AddNode(models.NewNodeWithID(id, "", label, nil))
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV row: %w", err)
		}

		sourceID := row[sourceIdx]
		targetID := row[targetIdx]

		label := ""
		if labelIdx >= 0 && labelIdx < len(row) {
			label = row[labelIdx]
		}
		addNode(sourceID, label)
		addNode(targetID, "")

		graph.AddEdge(models.NewEdgeWithID(sourceID+"-"+targetID, sourceID, targetID, ""))
	}

	return graph, nil
}

// GetProcessor returns the appropriate processor for the given format
func GetProcessor(format string) (DataProcessor, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		return NewJSONProcessor(), nil
	case "csv":
		return NewCSVProcessor(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// LoadFile reads a snapshot from disk, choosing the processor by extension.
// SQLite databases (.db, .sqlite, .sqlite3) are opened with OpenSQLite.
func LoadFile(path string) (*models.Graph, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		graph *models.Graph
		err   error
	)
	switch ext {
	case ".db", ".sqlite", ".sqlite3":
		graph, err = loadSQLiteFile(path)
	default:
		var processor DataProcessor
		processor, err = GetProcessor(ext)
		if err != nil {
			return nil, err
		}
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		graph, err = processor.ProcessData(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to process %s: %w", path, err)
	}

	if dangling := graph.DanglingEdges(); len(dangling) > 0 {
		log.WithFields(log.Fields{
			"caller": "ingest",
			"file":   path,
			"edges":  len(dangling),
		}).Warn("snapshot has edges to unknown nodes")
	}
	return graph, nil
}
