package botui

// messages holds the chat texts per language. Unknown languages fall back
// to English.
var messages = map[string]map[string]string{
	"ru": {
		"welcome":           "👋 Добро пожаловать в TutorDesk! Используйте /students для работы с учениками и /settings для настроек.",
		"students_header":   "👥 Ваши ученики:",
		"students_empty":    "У вас пока нет учеников. Нажмите кнопку ниже, чтобы добавить первого.",
		"add_student":       "➕ Добавить ученика",
		"add_student_howto": "Пришлите данные ученика одной строкой:\nФамилия Имя; предмет; класс",
		"student_added":     "✅ Ученик добавлен.",
		"student_deleted":   "🗑 Ученик удалён вместе с занятиями.",
		"bad_student_line":  "⚠️ Не удалось разобрать строку. Формат: Фамилия Имя; предмет; класс",
		"pick_category":     "📄 Что сгенерировать для ученика %s?",
		"ask_topic":         "Укажите тему (или пришлите «-», чтобы пропустить):",
		"ask_chat":          "Напишите ваш вопрос:",
		"generating":        "⏳ Генерирую, это может занять до минуты...",
		"draft_ready":       "Черновик готов. Принять или отправить на доработку?",
		"accept":            "✅ Принять",
		"revise":            "✏️ Доработать",
		"ask_feedback":      "Напишите, что исправить:",
		"accepted":          "✅ Документ сохранён: %s",
		"gen_failed":        "❌ Не удалось сгенерировать документ. Попробуйте позже.",
		"accept_failed":     "❌ Не удалось сохранить документ. Черновик не потерян, попробуйте ещё раз.",
		"no_draft":          "Нет черновика для подтверждения.",
		"cap_exceeded":      "⚠️ Превышен месячный лимит генераций для этого ученика (%d).",
		"answer_key":        "🔑 Ключ с ответами (не показывайте ученику):",
		"settings":          "⚙️ Настройки",
		"set_language":      "🌐 Язык",
		"set_token":         "🔐 Токен хранилища",
		"ask_token":         "Пришлите токен доступа к хранилищу:",
		"token_saved":       "✅ Токен сохранён.",
		"latex_on":          "📐 PDF через LaTeX: вкл",
		"latex_off":         "📐 PDF через LaTeX: выкл",
		"latex_saved_on":    "✅ Документы будут генерироваться в LaTeX.",
		"latex_saved_off":   "✅ Документы будут генерироваться в обычном тексте.",
		"no_token":          "⚠️ Хранилище не подключено. Добавьте токен в /settings.",
		"lang_saved":        "✅ Язык переключён на русский.",
		"delete":            "🗑 Удалить",
		"chat":              "💬 Задать вопрос",
		"error":             "❌ Что-то пошло не так.",
	},
	"en": {
		"welcome":           "👋 Welcome to TutorDesk! Use /students to manage your students and /settings for preferences.",
		"students_header":   "👥 Your students:",
		"students_empty":    "No students yet. Use the button below to add your first one.",
		"add_student":       "➕ Add student",
		"add_student_howto": "Send the student as one line:\nSurname Name; subject; class",
		"student_added":     "✅ Student added.",
		"student_deleted":   "🗑 Student deleted along with their lessons.",
		"bad_student_line":  "⚠️ Could not parse that. Format: Surname Name; subject; class",
		"pick_category":     "📄 What should I generate for %s?",
		"ask_topic":         "Send the topic (or \"-\" to skip):",
		"ask_chat":          "Send your question:",
		"generating":        "⏳ Generating, this can take up to a minute...",
		"draft_ready":       "Draft ready. Accept it or request changes?",
		"accept":            "✅ Accept",
		"revise":            "✏️ Revise",
		"ask_feedback":      "Describe what to change:",
		"accepted":          "✅ Document saved: %s",
		"gen_failed":        "❌ Generation failed. Please try again later.",
		"accept_failed":     "❌ Could not save the document. The draft is kept, try again.",
		"no_draft":          "No pending draft to confirm.",
		"cap_exceeded":      "⚠️ Monthly generation cap exceeded for this student (%d).",
		"answer_key":        "🔑 Answer key (do not show the student):",
		"settings":          "⚙️ Settings",
		"set_language":      "🌐 Language",
		"set_token":         "🔐 Storage token",
		"ask_token":         "Send the storage access token:",
		"token_saved":       "✅ Token saved.",
		"latex_on":          "📐 PDF via LaTeX: on",
		"latex_off":         "📐 PDF via LaTeX: off",
		"latex_saved_on":    "✅ Documents will be generated as LaTeX.",
		"latex_saved_off":   "✅ Documents will be generated as plain text.",
		"no_token":          "⚠️ Storage is not connected. Add the token in /settings.",
		"lang_saved":        "✅ Language switched to English.",
		"delete":            "🗑 Delete",
		"chat":              "💬 Ask a question",
		"error":             "❌ Something went wrong.",
	},
}

// msg returns the chat text for a language and key.
func msg(lang, key string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	return messages["en"][key]
}
