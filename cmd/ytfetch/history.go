package main

import (
	"context"
	"fmt"
	"io"

	"github.com/ytget/ytfetch/internal/model"
)

// HistoryTimeFormat is the timestamp layout of -history output
const HistoryTimeFormat = "2006-01-02 15:04"

type historyReader interface {
	Recent(ctx context.Context, limit int) ([]model.Task, error)
}

// printHistory writes the limit most recent downloads to w, newest first
func printHistory(ctx context.Context, store historyReader, limit int, w io.Writer) error {
	tasks, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "no downloads recorded")
		return err
	}

	for _, task := range tasks {
		line := fmt.Sprintf("%s  %-11s  %s",
			task.FinishedAt.Local().Format(HistoryTimeFormat), task.Status, task.GetDisplayTitle())
		if task.Title != "" {
			line += "  " + task.URL
		}
		if task.Err != "" {
			line += "  (" + task.Err + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
