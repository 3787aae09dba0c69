package botui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/tutordesk/internal/docgen"
)

// Callback data layout. Telegram limits callback data to 64 bytes, so the
// scheme stays short: "verb:studentID[:category-slug]".
const (
	cbAddStudent    = "students:add"
	cbStudentPrefix = "student:"
	cbDeletePrefix  = "del:"
	cbGenPrefix     = "gen:"
	cbAcceptPrefix  = "accept:"
	cbRevisePrefix  = "revise:"
	cbLangPrefix    = "lang:"
	cbDriveToken    = "settings:token"
	cbLatexToggle   = "settings:latex"
)

func studentCallback(studentID int64) string {
	return fmt.Sprintf("%s%d", cbStudentPrefix, studentID)
}

func deleteCallback(studentID int64) string {
	return fmt.Sprintf("%s%d", cbDeletePrefix, studentID)
}

func genCallback(studentID int64, c docgen.Category) string {
	return fmt.Sprintf("%s%d:%s", cbGenPrefix, studentID, c)
}

func acceptCallback(studentID int64, c docgen.Category) string {
	return fmt.Sprintf("%s%d:%s", cbAcceptPrefix, studentID, c)
}

func reviseCallback(studentID int64, c docgen.Category) string {
	return fmt.Sprintf("%s%d:%s", cbRevisePrefix, studentID, c)
}

// parseStudentID parses callback data of the form "<prefix><id>".
func parseStudentID(data, prefix string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse student id from %q: %w", data, err)
	}
	return id, nil
}

// parseStudentCategory parses callback data of the form
// "<prefix><id>:<category-slug>".
func parseStudentCategory(data, prefix string) (int64, docgen.Category, error) {
	rest := strings.TrimPrefix(data, prefix)
	idPart, slug, ok := strings.Cut(rest, ":")
	if !ok {
		return 0, 0, fmt.Errorf("malformed callback %q", data)
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse student id from %q: %w", data, err)
	}
	category, ok := docgen.CategoryBySlug(slug)
	if !ok {
		return 0, 0, fmt.Errorf("unknown category %q in callback %q", slug, data)
	}
	return id, category, nil
}
