package resultsio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/rsavio/attrfilter/pkg/errors"
)

func TestReadListDropsNonPositiveRelevance(t *testing.T) {
	input := "doc1\t1.0\t3\ndoc2\t2.0\t0\ndoc3\t3.0\t-1\ndoc4\t4.0\t5\n"
	list, err := ReadList(strings.NewReader(input), false)
	if err != nil {
		t.Fatalf("ReadList: %v", err)
	}
	if list.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", list.Len())
	}
	if list.IDs[0] != "doc1" || list.IDs[1] != "doc4" {
		t.Errorf("IDs = %v, want [doc1 doc4]", list.IDs)
	}
}

func TestReadListSortsUnsortedAttributes(t *testing.T) {
	input := "doc1\t3.0\t5\ndoc2\t1.0\t3\ndoc3\t2.0\t4\n"
	list, err := ReadList(strings.NewReader(input), false)
	if err != nil {
		t.Fatalf("ReadList: %v", err)
	}
	wantIDs := []string{"doc2", "doc3", "doc1"}
	for i, id := range wantIDs {
		if list.IDs[i] != id {
			t.Errorf("IDs[%d] = %v, want %v", i, list.IDs[i], id)
		}
	}
	for i := 1; i < len(list.Attributes); i++ {
		if list.Attributes[i-1] > list.Attributes[i] {
			t.Errorf("attributes not sorted ascending: %v", list.Attributes)
		}
	}
}

func TestReadListRejectsMalformedRow(t *testing.T) {
	input := "doc1\t1.0\n"
	_, err := ReadList(strings.NewReader(input), false)
	if !errors.Is(err, apperrors.ErrInputFormat) {
		t.Errorf("expected ErrInputFormat, got %v", err)
	}
}

func TestReadListRejectsNonNumericAttribute(t *testing.T) {
	input := "doc1\tnotanumber\t3\n"
	_, err := ReadList(strings.NewReader(input), false)
	if !errors.Is(err, apperrors.ErrInputFormat) {
		t.Errorf("expected ErrInputFormat, got %v", err)
	}
}

func TestWriteListRoundTrip(t *testing.T) {
	input := "doc1\t1.0\t3\ndoc2\t2.0\t4\n"
	list, err := ReadList(strings.NewReader(input), false)
	if err != nil {
		t.Fatalf("ReadList: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteList(&buf, list); err != nil {
		t.Fatalf("WriteList: %v", err)
	}

	roundTripped, err := ReadList(&buf, false)
	if err != nil {
		t.Fatalf("ReadList (round trip): %v", err)
	}

	if roundTripped.Len() != list.Len() {
		t.Fatalf("round trip Len() = %d, want %d", roundTripped.Len(), list.Len())
	}
	for i := range list.Relevances {
		if roundTripped.Relevances[i] != list.Relevances[i] {
			t.Errorf("relevance[%d] = %v, want %v", i, roundTripped.Relevances[i], list.Relevances[i])
		}
		if roundTripped.IDs[i] != list.IDs[i] {
			t.Errorf("id[%d] = %v, want %v", i, roundTripped.IDs[i], list.IDs[i])
		}
	}
}

func TestResultsListMinMax(t *testing.T) {
	list, err := ReadList(strings.NewReader("a\t1\t3\nb\t2\t7\nc\t3\t1\n"), false)
	if err != nil {
		t.Fatalf("ReadList: %v", err)
	}
	mm := list.MinMax()
	if mm.Min != 1 || mm.Max != 7 {
		t.Errorf("MinMax() = %+v, want {1 7}", mm)
	}
}

func TestReadListEmptyInput(t *testing.T) {
	list, err := ReadList(strings.NewReader(""), false)
	if err != nil {
		t.Fatalf("ReadList: %v", err)
	}
	if list.Len() != 0 {
		t.Errorf("Len() = %d, want 0", list.Len())
	}
}

func TestReadListWithCountPrefix(t *testing.T) {
	input := "2\ndoc1\t1.0\t3\ndoc2\t2.0\t4\n"
	list, err := ReadList(strings.NewReader(input), true)
	if err != nil {
		t.Fatalf("ReadList: %v", err)
	}
	if list.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", list.Len())
	}
}

func TestReadListWithCountPrefixRejectsShortStream(t *testing.T) {
	input := "3\ndoc1\t1.0\t3\ndoc2\t2.0\t4\n"
	_, err := ReadList(strings.NewReader(input), true)
	if !errors.Is(err, apperrors.ErrInputFormat) {
		t.Errorf("expected ErrInputFormat, got %v", err)
	}
}

func TestReadListRejectsMissingCountPrefix(t *testing.T) {
	_, err := ReadList(strings.NewReader(""), true)
	if !errors.Is(err, apperrors.ErrInputFormat) {
		t.Errorf("expected ErrInputFormat, got %v", err)
	}
}
