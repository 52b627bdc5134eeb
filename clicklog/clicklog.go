package clicklog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Row is one behaviors-file record: an impression with the user's
// serialized click history (space-joined article ids).
type Row struct {
	ImpressionID string
	UserID       string
	Timestamp    string
	History      string
	Impressions  string
}

// Snapshot holds the click-log rows plus the per-user set of clicked
// article ids derived from them. It is the in-memory view of the
// click-log collaborator; RecordClick mutates both representations.
type Snapshot struct {
	rows      []Row
	rowByUser map[string]int // index of the user's first row
	history   map[string]map[string]struct{}
}

// Load reads a headerless tab-separated behaviors file
// (ImpressionId, userId, timestamp, click_history, impressions).
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("clicklog: open %s: %w", path, err)
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("clicklog: parse %s: %w", path, err)
	}
	return s, nil
}

// Parse reads behaviors rows from r. See Load for the expected format.
func Parse(r io.Reader) (*Snapshot, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	s := &Snapshot{
		rowByUser: make(map[string]int),
		history:   make(map[string]map[string]struct{}),
	}

	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", line+1, err)
		}
		line++

		field := func(i int) string {
			if i < len(record) {
				return record[i]
			}
			return ""
		}
		row := Row{
			ImpressionID: field(0),
			UserID:       field(1),
			Timestamp:    field(2),
			History:      field(3),
			Impressions:  field(4),
		}
		if row.UserID == "" {
			return nil, fmt.Errorf("row %d: missing user id", line)
		}

		s.addRow(row)
	}

	return s, nil
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		rowByUser: make(map[string]int),
		history:   make(map[string]map[string]struct{}),
	}
}

func (s *Snapshot) addRow(row Row) {
	s.rows = append(s.rows, row)
	if _, seen := s.rowByUser[row.UserID]; !seen {
		s.rowByUser[row.UserID] = len(s.rows) - 1
	}

	set := s.history[row.UserID]
	if set == nil {
		set = make(map[string]struct{})
		s.history[row.UserID] = set
	}
	for _, id := range strings.Fields(row.History) {
		set[id] = struct{}{}
	}
}

// RecordClick adds articleID to the user's clicked set, creating the set
// for a first-time user, and reports whether the click was new (duplicate
// clicks collapse). If the user already has a log row, the id is appended
// to its space-joined history field; otherwise a new row with an empty
// impressions field is appended.
func (s *Snapshot) RecordClick(userID, articleID string) bool {
	set := s.history[userID]
	if set == nil {
		set = make(map[string]struct{})
		s.history[userID] = set
	}
	_, dup := set[articleID]
	set[articleID] = struct{}{}

	if idx, ok := s.rowByUser[userID]; ok {
		row := &s.rows[idx]
		if row.History == "" {
			row.History = articleID
		} else {
			row.History = row.History + " " + articleID
		}
		return !dup
	}

	s.rows = append(s.rows, Row{
		UserID:      userID,
		History:     articleID,
		Impressions: "",
	})
	s.rowByUser[userID] = len(s.rows) - 1
	return !dup
}

// HistoryByUser returns the per-user clicked-article sets. The belief
// store reads this snapshot directly; callers must not retain it across
// a RecordClick for the same user.
func (s *Snapshot) HistoryByUser() map[string]map[string]struct{} {
	return s.history
}

// Users returns all user ids present in the log, in row order.
func (s *Snapshot) Users() []string {
	out := make([]string, 0, len(s.rowByUser))
	seen := make(map[string]struct{}, len(s.rowByUser))
	for _, row := range s.rows {
		if _, ok := seen[row.UserID]; ok {
			continue
		}
		seen[row.UserID] = struct{}{}
		out = append(out, row.UserID)
	}
	return out
}

// Rows returns the current log rows.
func (s *Snapshot) Rows() []Row {
	return s.rows
}

// Len returns the number of log rows.
func (s *Snapshot) Len() int {
	return len(s.rows)
}
