package table

// Store binds a file path and column layout so callers can load and save
// without carrying both around.
type Store struct {
	path string
	cols Columns
}

// NewStore creates a Store for the CSV file at path.
func NewStore(path string, cols Columns) *Store {
	return &Store{path: path, cols: cols}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Columns returns the column layout used to validate loaded tables.
func (s *Store) Columns() Columns {
	return s.cols
}

// Load reads the table from disk. See Load.
func (s *Store) Load() (*Table, error) {
	return Load(s.path, s.cols)
}

// Save writes t over the store's file. See Save.
func (s *Store) Save(t *Table) error {
	return Save(t, s.path)
}
