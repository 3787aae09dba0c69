package drive

import (
	"testing"
	"time"
)

func TestReportPath(t *testing.T) {
	got := ReportPath("Petrov_Ivan")
	want := "TutorDesk/Petrov_Ivan/service-data/text_report.txt"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDocumentPath(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	got := DocumentPath("Petrov_Ivan", "Homework", "Homework", 3, now)
	want := "TutorDesk/Petrov_Ivan/Homework/03_Homework_2024-06-15.pdf"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSanitizeStripsSeparators(t *testing.T) {
	got := ReportPath("Pet/rov_I\\van")
	want := "TutorDesk/Pet_rov_I_van/service-data/text_report.txt"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
