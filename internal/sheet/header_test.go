package sheet

import (
	"strings"
	"testing"
	"time"

	"github.com/sheetdrop/sheetdrop/internal/model"
)

func TestParseHeaderSpec(t *testing.T) {
	spec, err := ParseHeaderSpec(" POC, Team ,Feedback")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !spec.Equal([]string{"POC", "Team", "Feedback"}) {
		t.Fatalf("unexpected spec %v", spec)
	}
	if _, err := ParseHeaderSpec("POC,,Feedback"); err == nil {
		t.Fatalf("empty column name should be rejected")
	}
}

func TestHeaderEqualIsCellWise(t *testing.T) {
	spec := HeaderSpec{"POC", "Team"}
	if spec.Equal([]string{"POC"}) {
		t.Fatalf("shorter row must not match")
	}
	if spec.Equal([]string{"POC", "Team", "Date"}) {
		t.Fatalf("longer row must not match")
	}
	if spec.Equal([]string{"poc", "Team"}) {
		t.Fatalf("comparison is case sensitive")
	}
	if !spec.Equal([]string{"POC", "Team"}) {
		t.Fatalf("identical cells must match")
	}
}

func TestRowBuilderRejectsUnknownColumn(t *testing.T) {
	if _, err := NewRowBuilder(HeaderSpec{"POC", "Severity"}); err == nil {
		t.Fatalf("unknown column must fail at construction")
	}
	if _, err := NewRowBuilder(nil); err == nil {
		t.Fatalf("empty header must fail at construction")
	}
}

func TestRowBuilderFollowsHeaderOrder(t *testing.T) {
	builder, err := NewRowBuilder(HeaderSpec{"Feedback", "POC", "Attachments"})
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	row := builder.Build(RowInput{
		Draft:       model.Draft{POC: "Alice", Feedback: "too slow"},
		Attachments: "https://example.com/a.png",
	})
	want := []string{"too slow", "Alice", "https://example.com/a.png"}
	if strings.Join(row, "|") != strings.Join(want, "|") {
		t.Fatalf("row %v, want %v", row, want)
	}
}

func TestBlankFieldsRenderPlaceholder(t *testing.T) {
	builder, err := NewRowBuilder(DefaultHeader)
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	row := builder.Build(RowInput{
		Draft: model.Draft{
			POC:      "Bob",
			Feedback: "broken link",
			Date:     time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		},
	})
	want := []string{"Bob", "N/A", "2026-01-02", "N/A", "broken link", "N/A", "N/A", "N/A"}
	if strings.Join(row, "|") != strings.Join(want, "|") {
		t.Fatalf("row %v, want %v", row, want)
	}
}

func TestZeroDateDefaultsToToday(t *testing.T) {
	builder, err := NewRowBuilder(HeaderSpec{"Date"})
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	row := builder.Build(RowInput{})
	if row[0] != time.Now().Format("2006-01-02") {
		t.Fatalf("date cell %q is not today", row[0])
	}
}
