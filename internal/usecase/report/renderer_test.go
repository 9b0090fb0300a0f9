package report

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/johnquangdev/cyberon-reporter/internal/domain/entities"
)

func openArtifact(t *testing.T, a *entities.ReportArtifact) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(a.Content))
	if err != nil {
		t.Fatalf("rendered workbook is unreadable: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestRender_RowsInOrder(t *testing.T) {
	record := &entities.AttendanceRecord{
		Group: "Group A",
		Date:  "01.01.2024",
		Attendees: []entities.AttendeeEntry{
			{Name: "Иван", WasPresent: true, Cyberons: entities.Cyberons{Base: 1, Activity: 2, Achievement: 3, Total: 6}},
			{Name: "Мария", WasPresent: false},
			{Name: "Олег", WasPresent: true, Cyberons: entities.Cyberons{Base: 1, Activity: 0.5, Total: 1.5}},
		},
	}

	artifact, err := NewRenderer(nil).Render(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact.ContentType != entities.XLSXContentType {
		t.Errorf("unexpected content type %q", artifact.ContentType)
	}

	f := openArtifact(t, artifact)
	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != SheetName {
		t.Fatalf("expected single sheet %q, got %v", SheetName, sheets)
	}

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	if len(rows) != 1+len(record.Attendees) {
		t.Fatalf("expected %d rows, got %d", 1+len(record.Attendees), len(rows))
	}
	for i, h := range Headers {
		if rows[0][i] != h {
			t.Errorf("header %d: expected %q, got %q", i, h, rows[0][i])
		}
	}

	want := [][]string{
		{"Иван", "Да", "1", "2", "3", "6"},
		{"Мария", "Нет", "0", "0", "0", "0"},
		{"Олег", "Да", "1", "0.5", "0", "1.5"},
	}
	for i, w := range want {
		got := rows[i+1]
		for j := range w {
			if got[j] != w[j] {
				t.Errorf("row %d col %d: expected %q, got %q", i+2, j, w[j], got[j])
			}
		}
	}
}

func TestRender_EmptyAttendeesIsHeaderOnly(t *testing.T) {
	artifact, err := NewRenderer(nil).Render(entities.NewAttendanceRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := openArtifact(t, artifact).GetRows(SheetName)
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
	if artifact.Filename != "отчет_неизвестно_неизвестно.xlsx" {
		t.Errorf("unexpected filename %q", artifact.Filename)
	}
}

func TestRender_LayoutIsFixed(t *testing.T) {
	artifact, err := NewRenderer(nil).Render(entities.NewAttendanceRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := openArtifact(t, artifact)

	for col, want := range ColumnWidths {
		got, err := f.GetColWidth(SheetName, col)
		if err != nil {
			t.Fatalf("failed to read width of %s: %v", col, err)
		}
		if got != want {
			t.Errorf("column %s: expected width %v, got %v", col, want, got)
		}
	}

	styleID, err := f.GetCellStyle(SheetName, "A1")
	if err != nil {
		t.Fatalf("failed to read header style: %v", err)
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		t.Fatalf("failed to resolve header style: %v", err)
	}
	if style.Font == nil || !style.Font.Bold {
		t.Error("expected bold header")
	}
}

func TestRender_NilRecord(t *testing.T) {
	if _, err := NewRenderer(nil).Render(nil); err == nil {
		t.Fatal("expected error for nil record")
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		group, date, want string
	}{
		{"Group A", "01.01.2024", "отчет_Group_A_01.01.2024.xlsx"},
		{"неизвестно", "неизвестно", "отчет_неизвестно_неизвестно.xlsx"},
		{"Группа  Б", "1 января", "отчет_Группа__Б_1_января.xlsx"},
		{"A/B", "01\t02", "отчет_A_B_01_02.xlsx"},
		{"", "", "отчет_неизвестно_неизвестно.xlsx"},
	}

	for _, tt := range tests {
		if got := Filename(tt.group, tt.date); got != tt.want {
			t.Errorf("Filename(%q, %q) = %q, want %q", tt.group, tt.date, got, tt.want)
		}
	}
}
