// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"fmt"
	"strings"
)

// DataSet is the tabular payload passed between operators: a list of named
// columns and rows of Values. Rows all have len(ColNames) cells.
type DataSet struct {
	ColNames []string
	Rows     [][]Value
}

// NewDataSet returns an empty DataSet with the given columns.
func NewDataSet(cols ...string) *DataSet {
	return &DataSet{ColNames: cols}
}

// AddRow appends a row. The cell count must match the column count.
func (d *DataSet) AddRow(cells ...Value) error {
	if len(cells) != len(d.ColNames) {
		return fmt.Errorf("row has %d cells, dataset has %d columns", len(cells), len(d.ColNames))
	}
	d.Rows = append(d.Rows, cells)
	return nil
}

// ColIndex returns the index of the named column, or ok=false.
func (d *DataSet) ColIndex(name string) (idx int, ok bool) {
	for i, c := range d.ColNames {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// NumRows returns the row count. Safe on a nil DataSet.
func (d *DataSet) NumRows() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// NumCols returns the column count. Safe on a nil DataSet.
func (d *DataSet) NumCols() int {
	if d == nil {
		return 0
	}
	return len(d.ColNames)
}

// Equal reports whether two DataSets have the same columns and rows in the
// same order.
func (d *DataSet) Equal(o *DataSet) bool {
	if d == nil || o == nil {
		return d.NumRows() == 0 && o.NumRows() == 0 && d.NumCols() == 0 && o.NumCols() == 0
	}
	if len(d.ColNames) != len(o.ColNames) || len(d.Rows) != len(o.Rows) {
		return false
	}
	for i := range d.ColNames {
		if d.ColNames[i] != o.ColNames[i] {
			return false
		}
	}
	for i := range d.Rows {
		for j := range d.Rows[i] {
			if !d.Rows[i][j].Equal(o.Rows[i][j]) {
				return false
			}
		}
	}
	return true
}

func (d *DataSet) String() string {
	if d == nil {
		return "DataSet{}"
	}
	b := strings.Builder{}
	b.Grow(64)
	b.WriteString("DataSet{")
	b.WriteString(strings.Join(d.ColNames, ","))
	for _, row := range d.Rows {
		b.WriteString(" | ")
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			cell.Key(&b)
		}
	}
	b.WriteByte('}')
	return b.String()
}
