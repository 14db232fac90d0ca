package reply

import (
	"fmt"
	"strings"
)

// SystemInstruction is the fixed persona for the generative strategy: a
// warm, empathetic Russian-language counselor that never makes diagnostic
// claims and does not replace professional help.
const SystemInstruction = "Ты опытный психолог-консультант по отношениям и чуткий слушатель. " +
	"Отвечай на русском языке, тепло и эмпатично, отражай чувства собеседницы, " +
	"задавай один мягкий уточняющий вопрос, если информации мало. " +
	"Давай практичные и бережные рекомендации без давления. " +
	"Не используй медицинские диагнозы и не заменяй профессиональную помощь."

const genericPrompt = "Поддержи участницу, будь чутким слушателем и дай мягкий совет."

// buildPrompt builds the user turn for the generative call. A non-empty
// history is enumerated 1-indexed, oldest first; an empty history yields a
// generic supportive prompt.
func buildPrompt(history []string) string {
	if len(history) == 0 {
		return genericPrompt
	}

	var sb strings.Builder
	sb.WriteString("Вот последние сообщения участницы (до 10):\n")
	for i, text := range history {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, text)
	}
	sb.WriteString("Сделай вывод по общей сути и ответь бережно.")
	return sb.String()
}
