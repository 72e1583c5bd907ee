// Package ui is the Fyne desktop host. It drives the orchestrator tick from a
// ticker on the Fyne main goroutine and renders the task list it reports.
package ui
