// Package engine содержит движок выполнения workflow.
//
// Engine отвечает за:
//   - Группировку tasks по sequence в шаги (group.go)
//   - Выполнение одного шага: sync tasks последовательно,
//     async tasks параллельно (step.go)
//   - Оркестрацию запуска целиком: создание Execution, переходы
//     PENDING → RUNNING → COMPLETED/FAILED, short-circuit при
//     падении шага (orchestrator.go)
//   - Поток StatusUpdate для вызывающего (sink.go)
//
// Сама работа task для engine непрозрачна: её выполняет Executor (executor.go),
// возвращающий Outcome. Падение task — обычные данные, не ошибка;
// ошибками (error) являются только сбои самой оркестрации.
package engine
