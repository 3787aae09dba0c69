package drive

import (
	"fmt"
	"strings"
	"time"
)

const (
	// rootFolder is the top-level folder for all teacher data.
	rootFolder = "TutorDesk"

	// serviceFolder holds machine-maintained files, report artifact included.
	serviceFolder = "service-data"

	// reportFilename is the per-student cumulative report artifact.
	reportFilename = "text_report.txt"
)

// ReportPath returns the deterministic artifact path for a student folder
// ("Surname_Name").
func ReportPath(studentFolder string) string {
	return fmt.Sprintf("%s/%s/%s/%s", rootFolder, sanitize(studentFolder), serviceFolder, reportFilename)
}

// CategoryPrefix returns the folder all rendered documents of one category
// live under for a student.
func CategoryPrefix(studentFolder, category string) string {
	return fmt.Sprintf("%s/%s/%s", rootFolder, sanitize(studentFolder), sanitize(category))
}

// DocumentPath builds the path for a rendered PDF. seq is the count of files
// already present in the category folder, so names sort in upload order.
func DocumentPath(studentFolder, category, base string, seq int, now time.Time) string {
	name := fmt.Sprintf("%02d_%s_%s.pdf", seq, sanitize(base), now.Format("2006-01-02"))
	return CategoryPrefix(studentFolder, category) + "/" + name
}

// sanitize strips path separators from user-derived segments.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return strings.TrimSpace(s)
}
