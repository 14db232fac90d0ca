// Package tips holds the fixed catalog of canned supportive phrases and
// random selection over it.
package tips

import "math/rand/v2"

// catalog is the fixed ordered list of supportive phrases. It is loaded at
// process start and never modified.
var catalog = []string{
	"Замечайте свои эмоции: назовите чувство вслух — это снижает его интенсивность.",
	"Говорите через 'я-сообщения': 'я чувствую…' вместо 'ты всегда…'.",
	"Сохраняйте паузу перед ответом — 3 глубоких вдоха помогают вернуть ясность.",
	"Формулируйте просьбы конкретно: что, когда и как было бы полезно.",
	"Практикуйте благодарность: ежедневно фиксируйте 3 вещи, за которые благодарны.",
	"Отделяйте факт от интерпретации: 'Он не ответил 2 часа' ≠ 'Ему всё равно'.",
	"Дайте себе право на отдых без чувства вины — это ресурс для семьи.",
	"Ставьте границы мягко: 'Мне важно… поэтому я…'.",
}

// Random returns a uniformly random phrase from the catalog.
func Random() string {
	return catalog[rand.IntN(len(catalog))]
}

// All returns a copy of the catalog in its fixed order.
func All() []string {
	out := make([]string, len(catalog))
	copy(out, catalog)
	return out
}

// Contains reports whether text is a member of the catalog.
func Contains(text string) bool {
	for _, tip := range catalog {
		if tip == text {
			return true
		}
	}
	return false
}
