package botui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/abhisek/tutordesk/internal/docgen"
	"github.com/abhisek/tutordesk/internal/drive"
	"github.com/abhisek/tutordesk/internal/store"
	"github.com/abhisek/tutordesk/internal/workflow"
)

func (b *Bot) handleStart(ctx context.Context, _ *bot.Bot, update *models.Update) {
	from := update.Message.From
	teacher, err := b.db.TeacherByTelegramID(ctx, from.ID)
	if errors.Is(err, store.ErrNotFound) {
		teacher = &store.Teacher{
			TelegramID: from.ID,
			Login:      from.Username,
			Name:       from.FirstName,
			Surname:    from.LastName,
			Language:   "ru",
		}
		if from.LanguageCode != "" && from.LanguageCode != "ru" {
			teacher.Language = "en"
		}
		err = b.db.CreateTeacher(ctx, teacher)
	}
	if err != nil {
		b.log.Error().Err(err).Int64("telegram_id", from.ID).Msg("start failed")
		b.send(ctx, update.Message.Chat.ID, msg("en", "error"), nil)
		return
	}
	b.states.Clear(update.Message.Chat.ID)
	b.send(ctx, update.Message.Chat.ID, msg(teacher.Language, "welcome"), nil)
}

func (b *Bot) handleStudents(ctx context.Context, _ *bot.Bot, update *models.Update) {
	teacher, ok := b.teacherFor(ctx, update.Message.Chat.ID, update.Message.From.ID)
	if !ok {
		return
	}
	b.sendStudentList(ctx, update.Message.Chat.ID, teacher)
}

func (b *Bot) handleSettings(ctx context.Context, _ *bot.Bot, update *models.Update) {
	teacher, ok := b.teacherFor(ctx, update.Message.Chat.ID, update.Message.From.ID)
	if !ok {
		return
	}
	b.send(ctx, update.Message.Chat.ID, msg(teacher.Language, "settings"), settingsKeyboard(teacher.Language, teacher.UseLatex))
}

// handleDefault catches everything without a command route: callbacks from
// inline menus and plain text interpreted through the chat state.
func (b *Bot) handleDefault(ctx context.Context, _ *bot.Bot, update *models.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleText(ctx, update.Message)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *models.CallbackQuery) {
	origin := callbackMessage(cb)
	if origin == nil {
		b.answerCallback(ctx, cb, "")
		return
	}
	chatID := origin.Chat.ID

	teacher, ok := b.teacherFor(ctx, chatID, cb.From.ID)
	if !ok {
		b.answerCallback(ctx, cb, "")
		return
	}
	b.answerCallback(ctx, cb, "")

	data := cb.Data
	switch {
	case data == cbAddStudent:
		b.states.SetState(chatID, StateAddingStudent)
		b.send(ctx, chatID, msg(teacher.Language, "add_student_howto"), nil)

	case strings.HasPrefix(data, cbDeletePrefix):
		b.handleDelete(ctx, chatID, teacher, data)

	case strings.HasPrefix(data, cbStudentPrefix):
		b.handleStudentMenu(ctx, chatID, teacher, data)

	case strings.HasPrefix(data, cbGenPrefix):
		b.handleGenerate(ctx, chatID, teacher, data)

	case strings.HasPrefix(data, cbAcceptPrefix):
		b.handleAccept(ctx, chatID, teacher, data)

	case strings.HasPrefix(data, cbRevisePrefix):
		b.handleRevise(ctx, chatID, teacher, data)

	case strings.HasPrefix(data, cbLangPrefix):
		b.handleLanguage(ctx, chatID, teacher, strings.TrimPrefix(data, cbLangPrefix))

	case data == cbDriveToken:
		b.states.SetState(chatID, StateAwaitingToken)
		b.send(ctx, chatID, msg(teacher.Language, "ask_token"), nil)

	case data == cbLatexToggle:
		b.handleLatexToggle(ctx, chatID, teacher)

	default:
		b.log.Warn().Str("data", data).Msg("unknown callback")
	}
}

func (b *Bot) handleText(ctx context.Context, m *models.Message) {
	chatID := m.Chat.ID
	teacher, ok := b.teacherFor(ctx, chatID, m.From.ID)
	if !ok {
		return
	}

	switch b.states.State(chatID) {
	case StateAddingStudent:
		b.finishAddStudent(ctx, chatID, teacher, m.Text)
	case StateAwaitingTopic:
		b.finishTopic(ctx, chatID, teacher, m.Text)
	case StateAwaitingChat:
		b.finishChat(ctx, chatID, teacher, m.Text)
	case StateAwaitingFeedbck:
		b.finishFeedback(ctx, chatID, teacher, m.Text)
	case StateAwaitingToken:
		b.finishToken(ctx, chatID, teacher, m.Text)
	default:
		b.send(ctx, chatID, msg(teacher.Language, "welcome"), nil)
	}
}

func (b *Bot) handleStudentMenu(ctx context.Context, chatID int64, teacher *store.Teacher, data string) {
	id, err := parseStudentID(data, cbStudentPrefix)
	if err != nil {
		b.log.Warn().Err(err).Msg("bad student callback")
		return
	}
	student, err := b.db.StudentByID(ctx, teacher.ID, id)
	if err != nil {
		b.send(ctx, chatID, msg(teacher.Language, "error"), nil)
		return
	}
	text := fmt.Sprintf(msg(teacher.Language, "pick_category"), student.DisplayName())
	b.send(ctx, chatID, text, categoryKeyboard(teacher.Language, student.ID))
}

func (b *Bot) handleDelete(ctx context.Context, chatID int64, teacher *store.Teacher, data string) {
	id, err := parseStudentID(data, cbDeletePrefix)
	if err != nil {
		b.log.Warn().Err(err).Msg("bad delete callback")
		return
	}
	if err := b.db.DeleteStudent(ctx, teacher.ID, id); err != nil {
		b.send(ctx, chatID, msg(teacher.Language, "error"), nil)
		return
	}
	b.send(ctx, chatID, msg(teacher.Language, "student_deleted"), nil)
	b.sendStudentList(ctx, chatID, teacher)
}

// documentFormat picks the output format for a fresh draft. Chat replies
// are never LaTeX: they go back as plain messages, not documents.
func documentFormat(teacher *store.Teacher, category docgen.Category) docgen.Format {
	if teacher.UseLatex && category != docgen.CategoryChat {
		return docgen.FormatTeX
	}
	return docgen.FormatText
}

// topicCategories are the categories that ask for a topic before generating.
func topicCategory(c docgen.Category) bool {
	switch c {
	case docgen.CategoryHomework, docgen.CategoryClasswork, docgen.CategoryMaterials, docgen.CategorySolutionCheck:
		return true
	}
	return false
}

func (b *Bot) handleGenerate(ctx context.Context, chatID int64, teacher *store.Teacher, data string) {
	studentID, category, err := parseStudentCategory(data, cbGenPrefix)
	if err != nil {
		b.log.Warn().Err(err).Msg("bad generate callback")
		return
	}

	switch {
	case category == docgen.CategoryChat:
		b.states.SetState(chatID, StateAwaitingChat)
		b.states.SetData(chatID, "student_id", studentID)
		b.send(ctx, chatID, msg(teacher.Language, "ask_chat"), nil)

	case topicCategory(category):
		b.states.SetState(chatID, StateAwaitingTopic)
		b.states.SetData(chatID, "student_id", studentID)
		b.states.SetData(chatID, "category", category)
		b.send(ctx, chatID, msg(teacher.Language, "ask_topic"), nil)

	default:
		b.generate(ctx, chatID, teacher, studentID, category, "")
	}
}

func (b *Bot) handleAccept(ctx context.Context, chatID int64, teacher *store.Teacher, data string) {
	studentID, category, err := parseStudentCategory(data, cbAcceptPrefix)
	if err != nil {
		b.log.Warn().Err(err).Msg("bad accept callback")
		return
	}
	student, err := b.db.StudentByID(ctx, teacher.ID, studentID)
	if err != nil {
		b.send(ctx, chatID, msg(teacher.Language, "error"), nil)
		return
	}

	path, err := b.wf.Accept(ctx, teacher, student, category)
	switch {
	case errors.Is(err, workflow.ErrNoDraft):
		b.send(ctx, chatID, msg(teacher.Language, "no_draft"), nil)
	case errors.Is(err, drive.ErrNoCredential):
		b.send(ctx, chatID, msg(teacher.Language, "no_token"), nil)
	case err != nil:
		b.log.Error().Err(err).Msg("accept failed")
		b.send(ctx, chatID, msg(teacher.Language, "accept_failed"), nil)
	default:
		b.send(ctx, chatID, fmt.Sprintf(msg(teacher.Language, "accepted"), path), nil)
	}
}

func (b *Bot) handleRevise(ctx context.Context, chatID int64, teacher *store.Teacher, data string) {
	studentID, category, err := parseStudentCategory(data, cbRevisePrefix)
	if err != nil {
		b.log.Warn().Err(err).Msg("bad revise callback")
		return
	}
	student, err := b.db.StudentByID(ctx, teacher.ID, studentID)
	if err != nil {
		b.send(ctx, chatID, msg(teacher.Language, "error"), nil)
		return
	}
	if err := b.wf.Revise(teacher, student, category); err != nil {
		b.send(ctx, chatID, msg(teacher.Language, "no_draft"), nil)
		return
	}
	b.states.SetState(chatID, StateAwaitingFeedbck)
	b.states.SetData(chatID, "student_id", studentID)
	b.states.SetData(chatID, "category", category)
	b.send(ctx, chatID, msg(teacher.Language, "ask_feedback"), nil)
}

func (b *Bot) handleLanguage(ctx context.Context, chatID int64, teacher *store.Teacher, lang string) {
	if lang != "ru" && lang != "en" {
		return
	}
	teacher.Language = lang
	if err := b.db.UpdateTeacher(ctx, teacher); err != nil {
		b.send(ctx, chatID, msg(teacher.Language, "error"), nil)
		return
	}
	b.send(ctx, chatID, msg(lang, "lang_saved"), nil)
}

func (b *Bot) handleLatexToggle(ctx context.Context, chatID int64, teacher *store.Teacher) {
	teacher.UseLatex = !teacher.UseLatex
	if err := b.db.UpdateTeacher(ctx, teacher); err != nil {
		b.send(ctx, chatID, msg(teacher.Language, "error"), nil)
		return
	}
	saved := "latex_saved_off"
	if teacher.UseLatex {
		saved = "latex_saved_on"
	}
	b.send(ctx, chatID, msg(teacher.Language, saved), settingsKeyboard(teacher.Language, teacher.UseLatex))
}

func (b *Bot) finishAddStudent(ctx context.Context, chatID int64, teacher *store.Teacher, text string) {
	student, err := parseStudentLine(text)
	if err != nil {
		b.send(ctx, chatID, msg(teacher.Language, "bad_student_line"), nil)
		return
	}
	student.TeacherID = teacher.ID
	if err := b.db.CreateStudent(ctx, student); err != nil {
		b.log.Error().Err(err).Msg("create student failed")
		b.send(ctx, chatID, msg(teacher.Language, "error"), nil)
		return
	}
	b.states.Clear(chatID)
	b.send(ctx, chatID, msg(teacher.Language, "student_added"), nil)
	b.sendStudentList(ctx, chatID, teacher)
}

func (b *Bot) finishTopic(ctx context.Context, chatID int64, teacher *store.Teacher, text string) {
	studentID, category, ok := b.pendingGeneration(chatID)
	if !ok {
		b.states.Clear(chatID)
		return
	}
	topic := strings.TrimSpace(text)
	if topic == "-" {
		topic = ""
	}
	b.states.Clear(chatID)
	b.generate(ctx, chatID, teacher, studentID, category, topic)
}

func (b *Bot) finishChat(ctx context.Context, chatID int64, teacher *store.Teacher, text string) {
	v, ok := b.states.Data(chatID, "student_id")
	if !ok {
		b.states.Clear(chatID)
		return
	}
	studentID := v.(int64)
	b.states.Clear(chatID)
	b.generate(ctx, chatID, teacher, studentID, docgen.CategoryChat, text)
}

func (b *Bot) finishFeedback(ctx context.Context, chatID int64, teacher *store.Teacher, text string) {
	studentID, category, ok := b.pendingGeneration(chatID)
	if !ok {
		b.states.Clear(chatID)
		return
	}
	student, err := b.db.StudentByID(ctx, teacher.ID, studentID)
	if err != nil {
		b.send(ctx, chatID, msg(teacher.Language, "error"), nil)
		return
	}
	b.states.Clear(chatID)

	b.send(ctx, chatID, msg(teacher.Language, "generating"), nil)
	draft, err := b.wf.Feedback(ctx, teacher, student, category, text)
	if err != nil {
		b.log.Error().Err(err).Msg("feedback regeneration failed")
		b.send(ctx, chatID, msg(teacher.Language, "gen_failed"), nil)
		return
	}
	b.sendDraft(ctx, chatID, teacher, studentID, draft)
}

func (b *Bot) finishToken(ctx context.Context, chatID int64, teacher *store.Teacher, text string) {
	if err := b.db.SetDriveToken(ctx, teacher.ID, strings.TrimSpace(text)); err != nil {
		b.send(ctx, chatID, msg(teacher.Language, "error"), nil)
		return
	}
	b.states.Clear(chatID)
	b.send(ctx, chatID, msg(teacher.Language, "token_saved"), nil)
}

// generate runs a fresh draft for the teacher and presents it with the
// accept/revise buttons. Chat replies are sent as-is without confirmation.
func (b *Bot) generate(ctx context.Context, chatID int64, teacher *store.Teacher, studentID int64, category docgen.Category, topic string) {
	student, err := b.db.StudentByID(ctx, teacher.ID, studentID)
	if err != nil {
		b.send(ctx, chatID, msg(teacher.Language, "error"), nil)
		return
	}

	b.send(ctx, chatID, msg(teacher.Language, "generating"), nil)

	draft, err := b.wf.Start(ctx, teacher, student, category, topic, documentFormat(teacher, category))
	if err != nil {
		b.log.Error().Err(err).Str("category", category.String()).Msg("generation failed")
		b.send(ctx, chatID, msg(teacher.Language, "gen_failed"), nil)
		return
	}

	if category == docgen.CategoryChat {
		// A chat answer is not a document; nothing to confirm or upload.
		b.wf.Abandon(teacher, student, category)
		b.send(ctx, chatID, draft.Document.Text, nil)
		return
	}

	b.sendDraft(ctx, chatID, teacher, studentID, draft)
}

func (b *Bot) sendDraft(ctx context.Context, chatID int64, teacher *store.Teacher, studentID int64, draft *workflow.Draft) {
	b.send(ctx, chatID, draft.Document.Text, nil)
	if draft.Document.AnswerKey != "" {
		b.send(ctx, chatID, msg(teacher.Language, "answer_key")+"\n\n"+draft.Document.AnswerKey, nil)
	}
	if draft.Document.CapExceeded {
		b.send(ctx, chatID, fmt.Sprintf(msg(teacher.Language, "cap_exceeded"), draft.Document.MonthlyCount), nil)
	}
	b.send(ctx, chatID, msg(teacher.Language, "draft_ready"), draftKeyboard(teacher.Language, studentID, draft.Category))
}

func (b *Bot) sendStudentList(ctx context.Context, chatID int64, teacher *store.Teacher) {
	students, err := b.db.ListStudents(ctx, teacher.ID)
	if err != nil {
		b.send(ctx, chatID, msg(teacher.Language, "error"), nil)
		return
	}
	header := msg(teacher.Language, "students_header")
	if len(students) == 0 {
		header = msg(teacher.Language, "students_empty")
	}
	b.send(ctx, chatID, header, studentListKeyboard(teacher.Language, students))
}

func (b *Bot) teacherFor(ctx context.Context, chatID, telegramID int64) (*store.Teacher, bool) {
	teacher, err := b.db.TeacherByTelegramID(ctx, telegramID)
	if errors.Is(err, store.ErrNotFound) {
		b.send(ctx, chatID, msg("en", "welcome"), nil)
		return nil, false
	}
	if err != nil {
		b.log.Error().Err(err).Int64("telegram_id", telegramID).Msg("teacher lookup failed")
		return nil, false
	}
	return teacher, true
}

func (b *Bot) pendingGeneration(chatID int64) (int64, docgen.Category, bool) {
	sv, ok := b.states.Data(chatID, "student_id")
	if !ok {
		return 0, 0, false
	}
	cv, ok := b.states.Data(chatID, "category")
	if !ok {
		return 0, 0, false
	}
	return sv.(int64), cv.(docgen.Category), true
}

// parseStudentLine parses "Surname Name; subject; class". Subject and class
// are optional.
func parseStudentLine(text string) (*store.Student, error) {
	parts := strings.Split(text, ";")
	fio := strings.Fields(strings.TrimSpace(parts[0]))
	if len(fio) < 2 {
		return nil, fmt.Errorf("expected surname and name in %q", text)
	}

	student := &store.Student{
		Surname: fio[0],
		Name:    strings.Join(fio[1:], " "),
	}
	if len(parts) > 1 {
		student.Subject = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		student.Class = strings.TrimSpace(parts[2])
	}
	return student, nil
}
