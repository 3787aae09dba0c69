package docgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an experienced private tutor's assistant. You prepare study documents for individual students.

Rules:
- Write for the specific student described in the request; respect their level and goals.
- Answer in the language of the request.
- Be concrete: real exercises, real topics, real criteria. No placeholder text.
- Never invent facts about the student beyond what the request states.`

// texInstruction is appended when the caller wants a LaTeX document.
const texInstructionRU = "\n\nОформи результат как полный корректный LaTeX-документ: \\documentclass, преамбула с поддержкой кириллицы, \\begin{document} ... \\end{document}. Без пояснений вне документа."
const texInstructionEN = "\n\nFormat the result as a complete valid LaTeX document: \\documentclass, preamble, \\begin{document} ... \\end{document}. No prose outside the document."

// buildUserMessage constructs the generation prompt for one category.
// reportContext is the student's current report text, included read-only.
func buildUserMessage(input GenerateInput, profile, reportContext string) string {
	ru := input.Teacher.Language == "ru"
	subject := input.Student.Subject
	if subject == "" {
		if ru {
			subject = "предмет"
		} else {
			subject = "the subject"
		}
	}

	var b strings.Builder
	b.WriteString(categoryInstruction(input, subject, ru))

	if profile != "" {
		if ru {
			fmt.Fprintf(&b, " Исходные данные об ученике: %s.", profile)
		} else {
			fmt.Fprintf(&b, " Student info: %s.", profile)
		}
	}

	if reportContext != "" {
		if ru {
			b.WriteString("\n\nТекущий отчёт по ученику (только для контекста, не пересказывай его):\n")
		} else {
			b.WriteString("\n\nCurrent student report (context only, do not restate it):\n")
		}
		b.WriteString(reportContext)
	}

	if input.Format == FormatTeX {
		if ru {
			b.WriteString(texInstructionRU)
		} else {
			b.WriteString(texInstructionEN)
		}
	}

	return b.String()
}

func categoryInstruction(input GenerateInput, subject string, ru bool) string {
	student := input.Student.DisplayName()
	topic := input.Topic

	switch input.Category {
	case CategoryPlan:
		if ru {
			return fmt.Sprintf("Составь подробный учебный план по предмету %s для ученика %s. Распредели темы по занятиям и укажи цели каждого этапа.", subject, student)
		}
		return fmt.Sprintf("Create a detailed study plan for %s for the student %s. Outline topics by session and state the objectives for each stage.", subject, student)

	case CategoryHomework:
		if ru {
			s := fmt.Sprintf("Составь домашнее задание по предмету %s.", subject)
			if topic != "" {
				s += fmt.Sprintf(" Тема урока: %s.", topic)
			}
			return s + " Задание должно быть разноплановым: теория, практика и творческий элемент."
		}
		s := fmt.Sprintf("Create homework for the subject %s.", subject)
		if topic != "" {
			s += fmt.Sprintf(" Topic: %s.", topic)
		}
		return s + " Include theoretical, practical and creative tasks."

	case CategoryClasswork:
		if ru {
			s := fmt.Sprintf("Составь контрольную работу по предмету %s.", subject)
			if topic != "" {
				s += fmt.Sprintf(" Тема: %s.", topic)
			}
			return s + " Включи задания разного уровня сложности и укажи критерии оценки."
		}
		s := fmt.Sprintf("Create a test for %s.", subject)
		if topic != "" {
			s += fmt.Sprintf(" Topic: %s.", topic)
		}
		return s + " Include questions of various difficulty levels and specify assessment criteria."

	case CategoryAssignment:
		if ru {
			return fmt.Sprintf("Составь задания по предмету %s для ученика %s. Задания должны включать теоретическую часть и практические упражнения.", subject, student)
		}
		return fmt.Sprintf("Create assignments for the subject %s for the student %s. The assignments should include theoretical and practical exercises.", subject, student)

	case CategoryMaterials:
		if ru {
			s := fmt.Sprintf("Подбери обучающие материалы (статьи, видео, сайты, PDF) по предмету %s.", subject)
			if topic != "" {
				s = fmt.Sprintf("Подбери обучающие материалы (статьи, видео, сайты, PDF) по теме %s по предмету %s.", topic, subject)
			}
			return s + " Укажи ссылки, если возможно."
		}
		s := fmt.Sprintf("Find study materials (articles, videos, websites, PDFs) for %s.", subject)
		if topic != "" {
			s = fmt.Sprintf("Find study materials (articles, videos, websites, PDFs) for the topic %s in %s.", topic, subject)
		}
		return s + " Include links if possible."

	case CategoryDiagnosticTest:
		if ru {
			return fmt.Sprintf("Составь диагностический тест по предмету %s для ученика %s, чтобы определить текущий уровень знаний. Отдельно приведи ключ с ответами и короткое резюме теста для журнала занятий.", subject, student)
		}
		return fmt.Sprintf("Create a diagnostic test for %s for the student %s to assess their current level. Provide the answer key separately and a short summary of the test for the lesson log.", subject, student)

	case CategoryProgressReport:
		if ru {
			return fmt.Sprintf("Сформируй отчёт о прогрессе ученика %s по предмету %s на основе отчёта ниже: что пройдено, динамика, трудности, рекомендации.", student, subject)
		}
		return fmt.Sprintf("Write a progress report for the student %s in %s based on the report below: covered material, trajectory, difficulties, recommendations.", student, subject)

	case CategorySolutionCheck:
		if ru {
			return fmt.Sprintf("Проверь решение ученика по предмету %s. Укажи ошибки, объясни их и приведи верное решение.\n\nРешение ученика:\n%s", subject, topic)
		}
		return fmt.Sprintf("Check the student's solution for %s. Point out mistakes, explain them and show the correct solution.\n\nStudent's solution:\n%s", subject, topic)

	case CategoryChat:
		return topic
	}
	return topic
}

// buildFeedbackMessage constructs the revision prompt: the previous draft
// verbatim plus the teacher's literal feedback.
func buildFeedbackMessage(input GenerateInput) string {
	ru := input.Teacher.Language == "ru"

	var b strings.Builder
	if ru {
		b.WriteString("Вот документ, подготовленный ранее:\n\n")
		b.WriteString(input.PreviousDraft)
		b.WriteString("\n\nЗамечания преподавателя:\n")
		b.WriteString(input.Feedback)
		b.WriteString("\n\nПерепиши документ с учётом замечаний. Сохрани структуру и всё, к чему замечаний нет.")
	} else {
		b.WriteString("Here is the previously prepared document:\n\n")
		b.WriteString(input.PreviousDraft)
		b.WriteString("\n\nTeacher's feedback:\n")
		b.WriteString(input.Feedback)
		b.WriteString("\n\nRewrite the document applying the feedback. Keep the structure and everything not mentioned in the feedback.")
	}

	if input.Format == FormatTeX {
		if ru {
			b.WriteString(texInstructionRU)
		} else {
			b.WriteString(texInstructionEN)
		}
	}

	return b.String()
}
