// Package resultsio reads and writes the attribute-sorted, relevance-scored
// result lists the filtering package operates on. Input is a tab-separated
// stream of <id, attribute, relevance> triples; entries with non-positive
// relevance are dropped at read time since the filtering metrics treat them
// as non-contributing, and the list is re-sorted by ascending attribute if
// the input was not already sorted.
package resultsio

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/rsavio/attrfilter/pkg/errors"

	"github.com/rsavio/attrfilter/internal/filtering"
)

// ResultsList is one attribute-sorted, relevance-scored list read from the
// input. Ids and Attributes are kept alongside Relevances purely for
// traceability in reports; the filtering package itself only ever consumes
// Relevances.
type ResultsList struct {
	IDs        []string
	Attributes []float64
	Relevances []filtering.Relevance
}

// Len reports the number of entries retained after dropping non-positive
// relevances.
func (l ResultsList) Len() int {
	return len(l.Relevances)
}

// MinMax scans Relevances for the minimum and maximum value. Panics if the
// list is empty; callers must check Len() first.
func (l ResultsList) MinMax() filtering.MinMax {
	mm := filtering.MinMax{Min: l.Relevances[0], Max: l.Relevances[0]}
	for _, r := range l.Relevances[1:] {
		if r < mm.Min {
			mm.Min = r
		}
		if r > mm.Max {
			mm.Max = r
		}
	}
	return mm
}

// ReadList parses a stream of <id>\t<attribute>\t<relevance>\n rows. When
// hasCountPrefix is set, the stream must begin with a line holding the
// number of rows to read (the stdin convention); otherwise rows are read
// until EOF, as when reading a file.
func ReadList(r io.Reader, hasCountPrefix bool) (ResultsList, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var list ResultsList
	isSorted := true
	lastAttribute := -1.0
	lastAttributeSet := false
	lineNo := 0

	count := -1
	if hasCountPrefix {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return ResultsList{}, fmt.Errorf("%w: reading input: %v", apperrors.ErrInputFormat, err)
			}
			return ResultsList{}, fmt.Errorf("%w: missing count prefix", apperrors.ErrInputFormat)
		}
		lineNo++
		n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil {
			return ResultsList{}, fmt.Errorf("%w: line %d: invalid count prefix %q: %v", apperrors.ErrInputFormat, lineNo, scanner.Text(), err)
		}
		count = n
	}

	rowsRead := 0
	for (count < 0 || rowsRead < count) && scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		rowsRead++
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return ResultsList{}, fmt.Errorf("%w: line %d: expected 3 tab-separated fields, got %d", apperrors.ErrInputFormat, lineNo, len(fields))
		}

		id := fields[0]
		attribute, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return ResultsList{}, fmt.Errorf("%w: line %d: invalid attribute value %q: %v", apperrors.ErrInputFormat, lineNo, fields[1], err)
		}
		relevance, err := strconv.ParseFloat(fields[2], 32)
		if err != nil {
			return ResultsList{}, fmt.Errorf("%w: line %d: invalid relevance value %q: %v", apperrors.ErrInputFormat, lineNo, fields[2], err)
		}

		if lastAttributeSet && attribute < lastAttribute {
			isSorted = false
		}
		lastAttribute = attribute
		lastAttributeSet = true

		if relevance <= 0 {
			continue
		}

		list.IDs = append(list.IDs, id)
		list.Attributes = append(list.Attributes, attribute)
		list.Relevances = append(list.Relevances, filtering.Relevance(relevance))
	}
	if err := scanner.Err(); err != nil {
		return ResultsList{}, fmt.Errorf("%w: reading input: %v", apperrors.ErrInputFormat, err)
	}
	if count >= 0 && rowsRead < count {
		return ResultsList{}, fmt.Errorf("%w: stream ended after %d of %d promised rows", apperrors.ErrInputFormat, rowsRead, count)
	}

	if !isSorted {
		sortByAttribute(&list)
	}

	return list, nil
}

// WriteList serialises a ResultsList back into the same tab-separated
// format ReadList accepts. It exists for round-tripping test fixtures and
// debugging dumps of post-pruning sublists.
func WriteList(w io.Writer, list ResultsList) error {
	writer := bufio.NewWriter(w)
	for i := range list.Relevances {
		if _, err := fmt.Fprintf(writer, "%s\t%g\t%g\n", list.IDs[i], list.Attributes[i], list.Relevances[i]); err != nil {
			return fmt.Errorf("writing results list: %w", err)
		}
	}
	return writer.Flush()
}

func sortByAttribute(list *ResultsList) {
	perm := make([]int, len(list.Attributes))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool {
		return list.Attributes[perm[i]] < list.Attributes[perm[j]]
	})

	ids := make([]string, len(perm))
	attributes := make([]float64, len(perm))
	relevances := make([]filtering.Relevance, len(perm))
	for i, p := range perm {
		ids[i] = list.IDs[p]
		attributes[i] = list.Attributes[p]
		relevances[i] = list.Relevances[p]
	}
	list.IDs = ids
	list.Attributes = attributes
	list.Relevances = relevances
}
