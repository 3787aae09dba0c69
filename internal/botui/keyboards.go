package botui

import (
	"github.com/go-telegram/bot/models"

	"github.com/abhisek/tutordesk/internal/docgen"
	"github.com/abhisek/tutordesk/internal/store"
)

// studentListKeyboard builds one button per student plus the add button.
func studentListKeyboard(lang string, students []store.Student) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	for _, s := range students {
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         s.DisplayName(),
			CallbackData: studentCallback(s.ID),
		}})
	}
	rows = append(rows, []models.InlineKeyboardButton{{
		Text:         msg(lang, "add_student"),
		CallbackData: cbAddStudent,
	}})
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// categoryKeyboard builds the generation menu for one student: two
// categories per row, then chat and delete.
func categoryKeyboard(lang string, studentID int64) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	var row []models.InlineKeyboardButton

	for _, c := range docgen.Categories {
		if c == docgen.CategoryChat {
			continue
		}
		row = append(row, models.InlineKeyboardButton{
			Text:         c.Label(lang),
			CallbackData: genCallback(studentID, c),
		})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, []models.InlineKeyboardButton{{
		Text:         msg(lang, "chat"),
		CallbackData: genCallback(studentID, docgen.CategoryChat),
	}})
	rows = append(rows, []models.InlineKeyboardButton{{
		Text:         msg(lang, "delete"),
		CallbackData: deleteCallback(studentID),
	}})
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// draftKeyboard offers accept and revise for a pending draft.
func draftKeyboard(lang string, studentID int64, c docgen.Category) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{{
		{Text: msg(lang, "accept"), CallbackData: acceptCallback(studentID, c)},
		{Text: msg(lang, "revise"), CallbackData: reviseCallback(studentID, c)},
	}}}
}

// settingsKeyboard offers language switching, the drive token and the
// LaTeX output toggle.
func settingsKeyboard(lang string, useLatex bool) *models.InlineKeyboardMarkup {
	latexKey := "latex_off"
	if useLatex {
		latexKey = "latex_on"
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{
			{Text: "🇷🇺 Русский", CallbackData: cbLangPrefix + "ru"},
			{Text: "🇬🇧 English", CallbackData: cbLangPrefix + "en"},
		},
		{
			{Text: msg(lang, "set_token"), CallbackData: cbDriveToken},
		},
		{
			{Text: msg(lang, latexKey), CallbackData: cbLatexToggle},
		},
	}}
}
