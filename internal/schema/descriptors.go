package schema

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mvp-joe/graphport/internal/layout"
)

// descriptorHeader leads the foreign-key descriptor file. The first three
// fields are the relationship type and the two join columns.
var descriptorHeader = []string{"type", "source_column", "target_column", "source_label", "target_label"}

// WriteDescriptors encodes descriptors in the foreign-key descriptor format.
func WriteDescriptors(w io.Writer, descriptors []RelationshipDescriptor) error {
	cw := csv.NewWriter(w)
	cw.Comma = layout.Delimiter
	if err := cw.Write(descriptorHeader); err != nil {
		return err
	}
	for _, d := range descriptors {
		if err := cw.Write([]string{d.Type, d.SourceColumn, d.TargetColumn, d.SourceLabel, d.TargetLabel}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadDescriptors decodes a foreign-key descriptor file.
func ReadDescriptors(r io.Reader) ([]RelationshipDescriptor, error) {
	cr := csv.NewReader(r)
	cr.Comma = layout.Delimiter
	cr.FieldsPerRecord = len(descriptorHeader)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("descriptor file is empty")
		}
		return nil, fmt.Errorf("failed to read descriptor header: %w", err)
	}
	if strings.Join(header, ";") != strings.Join(descriptorHeader, ";") {
		return nil, fmt.Errorf("unexpected descriptor header %q", strings.Join(header, ";"))
	}

	var descriptors []RelationshipDescriptor
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read descriptor: %w", err)
		}
		descriptors = append(descriptors, RelationshipDescriptor{
			Type:         rec[0],
			SourceColumn: rec[1],
			TargetColumn: rec[2],
			SourceLabel:  rec[3],
			TargetLabel:  rec[4],
		})
	}
	return descriptors, nil
}

// LoadDescriptors reads the descriptor file at path.
func LoadDescriptors(path string) ([]RelationshipDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &layout.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	descriptors, err := ReadDescriptors(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return descriptors, nil
}
