package layout

import (
	"bufio"
	"encoding/csv"
	"os"
)

// RecordWriter appends delimited records to an existing artifact file.
type RecordWriter struct {
	path string
	file *os.File
	buf  *bufio.Writer
	csv  *csv.Writer
	rows int
}

// OpenAppend opens an existing file for appending records. The file must have
// been created beforehand with its header; it is never created here.
func OpenAppend(path string) (*RecordWriter, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return nil, &IOError{Op: "open for append", Path: path, Err: err}
	}
	buf := bufio.NewWriterSize(f, 64*1024)
	w := csv.NewWriter(buf)
	w.Comma = Delimiter
	return &RecordWriter{path: path, file: f, buf: buf, csv: w}, nil
}

// Write appends one record. Fields containing the delimiter, quotes or line
// breaks are quoted.
func (w *RecordWriter) Write(record []string) error {
	if err := w.csv.Write(record); err != nil {
		return &IOError{Op: "write", Path: w.path, Err: err}
	}
	w.rows++
	return nil
}

// Rows returns how many records were written.
func (w *RecordWriter) Rows() int { return w.rows }

// Close flushes buffered records and closes the file.
func (w *RecordWriter) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return &IOError{Op: "write", Path: w.path, Err: err}
	}
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return &IOError{Op: "flush", Path: w.path, Err: err}
	}
	if err := w.file.Close(); err != nil {
		return &IOError{Op: "close", Path: w.path, Err: err}
	}
	return nil
}
