package engine

import (
	"sort"

	"github.com/AmmarAzhad/civils/internal/domain"
)

// SequenceGroup — один шаг: все tasks с общим sequence.
type SequenceGroup struct {
	// Sequence — номер шага.
	Sequence int

	// Tasks — tasks шага, упорядоченные по task ID.
	Tasks []domain.Task
}

// GroupBySequence группирует tasks по sequence и возвращает группы
// по возрастанию sequence. Внутри группы tasks упорядочены по ID —
// это детерминированный порядок, в котором step runner выполняет
// sync tasks шага.
//
// Функция чистая и тотальная: пустой вход даёт пустой результат,
// повторная группировка уже сгруппированных tasks ничего не меняет.
func GroupBySequence(tasks []domain.Task) []SequenceGroup {
	if len(tasks) == 0 {
		return nil
	}

	bySeq := make(map[int][]domain.Task)
	for _, task := range tasks {
		bySeq[task.Sequence] = append(bySeq[task.Sequence], task)
	}

	sequences := make([]int, 0, len(bySeq))
	for seq := range bySeq {
		sequences = append(sequences, seq)
	}
	sort.Ints(sequences)

	groups := make([]SequenceGroup, 0, len(sequences))
	for _, seq := range sequences {
		group := bySeq[seq]
		sort.Slice(group, func(i, j int) bool {
			return group[i].ID < group[j].ID
		})
		groups = append(groups, SequenceGroup{Sequence: seq, Tasks: group})
	}

	return groups
}
