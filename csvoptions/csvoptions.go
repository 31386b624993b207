// Package csvoptions reads and writes the options (alternatives) file
// format (spec §6.2): semicolon-delimited CSV with one of two recognised
// header shapes. Like xmlmodel, this package is a deliberate standard-
// library exception — no third-party CSV library appears anywhere in the
// retrieval pack (see DESIGN.md).
package csvoptions

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/quesnel/efyj-go/internal/errs"
	"github.com/quesnel/efyj-go/model"
	"github.com/quesnel/efyj-go/options"
)

const (
	headerSimulation = "simulation"
	headerPlace      = "place"
	headerDepartment = "department"
	headerYear       = "year"
)

// Read parses path against m's basic-attribute scales, producing a Matrix
// column-aligned to m's declared basic-attribute order regardless of the
// CSV's own column order (spec §6.2 "headers are mapped by name").
func Read(path string, m *model.Model) (*options.Matrix, error) {
	const op = "csvoptions.Read"
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindFileAccess, op, err).AtLine(path, 0, 0)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, errs.Wrap(errs.KindParseOptions, op, err).AtLine(path, 1, 0)
	}

	hasPlace := len(header) > 1 && header[1] == headerPlace
	leading := 3
	if hasPlace {
		leading = 4
	}
	if len(header) < leading+2 {
		return nil, errs.New(errs.KindParseOptions, op, "not enough columns for a header").AtLine(path, 1, 0)
	}

	basicNames := m.BasicAttributeNames()
	basicCols := make([]int, len(basicNames))
	for i, name := range basicNames {
		col := -1
		for c := leading; c < len(header)-1; c++ {
			if header[c] == name {
				col = c
				break
			}
		}
		if col < 0 {
			return nil, errs.New(errs.KindParseOptions, op,
				fmt.Sprintf("unknown basic attribute %q not found in header", name)).AtLine(path, 1, 0)
		}
		basicCols[i] = col
	}
	rootCol := len(header) - 1

	var rows []options.Option
	line := 1
	for {
		record, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errs.Wrap(errs.KindParseOptions, op, err).AtLine(path, line+1, 0)
		}
		line++

		if len(record) != len(header) {
			return nil, errs.New(errs.KindParseOptions, op,
				fmt.Sprintf("row has %d columns, header has %d", len(record), len(header))).AtLine(path, line, 0)
		}

		row, err := parseRow(m, record, basicCols, rootCol, hasPlace, path, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, *row)
	}

	return &options.Matrix{BasicNames: basicNames, HasPlace: hasPlace, Rows: rows}, nil
}

func parseRow(m *model.Model, record []string, basicCols []int, rootCol int, hasPlace bool, path string, line int) (*options.Option, error) {
	const op = "csvoptions.Read"

	place := options.NoPlace
	deptCol, yearCol := 1, 2
	if hasPlace {
		var err error
		place, err = parseInt(record[1], path, line, 2, op)
		if err != nil {
			return nil, err
		}
		deptCol, yearCol = 2, 3
	}

	dept, err := parseInt(record[deptCol], path, line, deptCol+1, op)
	if err != nil {
		return nil, err
	}
	year, err := parseInt(record[yearCol], path, line, yearCol+1, op)
	if err != nil {
		return nil, err
	}

	values := make([]int, len(basicCols))
	for i, col := range basicCols {
		attrIdx := m.BasicAttributeIndices()[i]
		idx, ok := m.Attributes[attrIdx].Scale.FindValue(record[col])
		if !ok {
			return nil, errs.New(errs.KindParseOptions, op,
				fmt.Sprintf("unknown scale value %q for attribute %q", record[col], m.Attributes[attrIdx].Name)).
				AtLine(path, line, col+1)
		}
		values[i] = idx
	}

	observed, ok := m.Root().Scale.FindValue(record[rootCol])
	if !ok {
		return nil, errs.New(errs.KindParseOptions, op,
			fmt.Sprintf("unknown root scale value %q", record[rootCol])).AtLine(path, line, rootCol+1)
	}

	return &options.Option{
		Identifier: record[0],
		Place:      place,
		Department: dept,
		Year:       year,
		Observed:   observed,
		Values:     values,
	}, nil
}

func parseInt(field, path string, line, col int, op string) (int, error) {
	v, err := strconv.Atoi(field)
	if err != nil {
		return 0, errs.Wrap(errs.KindParseOptions, op, err).AtLine(path, line, col)
	}
	return v, nil
}

// Write serialises data back to CSV, columns ordered by m's own basic-
// attribute order, using the header shape with a place column (four
// leading columns instead of three) when data.HasPlace.
func Write(path string, data *options.Matrix, m *model.Model) error {
	const op = "csvoptions.Write"
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.KindFileAccess, op, err).AtLine(path, 0, 0)
	}
	defer f.Close()
	return WriteTo(f, data, m)
}

// WriteTo serialises data to w in the same shape Write uses, for callers
// that already hold an io.Writer (e.g. the CLI's stdout dump) instead of a
// file path.
func WriteTo(w io.Writer, data *options.Matrix, m *model.Model) error {
	const op = "csvoptions.Write"
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	header := []string{headerSimulation}
	if data.HasPlace {
		header = append(header, headerPlace)
	}
	header = append(header, headerDepartment, headerYear)
	header = append(header, data.BasicNames...)
	header = append(header, m.Root().Name)
	if err := cw.Write(header); err != nil {
		return errs.Wrap(errs.KindParseOptions, op, err)
	}

	for _, row := range data.Rows {
		record := []string{row.Identifier}
		if data.HasPlace {
			record = append(record, strconv.Itoa(row.Place))
		}
		record = append(record, strconv.Itoa(row.Department), strconv.Itoa(row.Year))
		for i, v := range row.Values {
			attrIdx := m.BasicAttributeIndices()[i]
			record = append(record, scaleName(m.Attributes[attrIdx].Scale, v))
		}
		record = append(record, scaleName(m.Root().Scale, row.Observed))
		if err := cw.Write(record); err != nil {
			return errs.Wrap(errs.KindParseOptions, op, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func scaleName(s model.Scale, index int) string {
	if index < 0 || index >= len(s.Values) {
		return ""
	}
	return s.Values[index].Name
}
