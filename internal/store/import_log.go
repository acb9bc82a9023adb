package store

import "fmt"

// CreateImportLog opens an import-log row and returns its id.
func (s *Store) CreateImportLog(batchID, filename, filePath string, fileSize int64) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_logs (batch_id, filename, file_path, file_size, status)
		VALUES (?, ?, ?, ?, 'processing')
	`, batchID, filename, filePath, fileSize)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// CompleteImportLog closes an import-log row with its final counters.
func (s *Store) CompleteImportLog(id int64, totalRows, importedRows, errorRows int, status, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE import_logs SET
			total_rows = ?,
			imported_rows = ?,
			error_rows = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, totalRows, importedRows, errorRows, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// ImportLogEntry is one row of the import history.
type ImportLogEntry struct {
	ID           int64  `json:"id"`
	BatchID      string `json:"batchId"`
	Filename     string `json:"filename"`
	Status       string `json:"status"`
	TotalRows    int    `json:"totalRows"`
	ImportedRows int    `json:"importedRows"`
	ErrorRows    int    `json:"errorRows"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

// ImportHistory lists the most recent imports, newest first.
func (s *Store) ImportHistory(limit int) ([]ImportLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, batch_id, filename, status,
			total_rows, imported_rows, error_rows,
			COALESCE(error_message, ''), created_at
		FROM import_logs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import history: %w", err)
	}
	defer rows.Close()

	var out []ImportLogEntry
	for rows.Next() {
		var e ImportLogEntry
		if err := rows.Scan(&e.ID, &e.BatchID, &e.Filename, &e.Status,
			&e.TotalRows, &e.ImportedRows, &e.ErrorRows, &e.ErrorMessage, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate import logs: %w", err)
	}
	return out, nil
}
