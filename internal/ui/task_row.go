package ui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/ytfetch/internal/model"
)

// TaskRow represents a compact task row widget
type TaskRow struct {
	widget.BaseWidget

	task model.Task

	// UI components
	thumbnail   *canvas.Image
	titleLabel  *widget.Label
	statusLabel *widget.Label
	progressBar *widget.ProgressBar

	// Action buttons
	cancelBtn *widget.Button
	folderBtn *widget.Button
	removeBtn *widget.Button

	// Callbacks
	onCancel func(taskID string)
	onOpen   func(dir string)
	onRemove func(taskID string)
}

// NewTaskRow creates a new task row widget
func NewTaskRow() *TaskRow {
	tr := &TaskRow{}
	tr.ExtendBaseWidget(tr)
	tr.createUI()
	tr.updateFromTask()
	return tr
}

// SetCallbacks sets the action callbacks
func (tr *TaskRow) SetCallbacks(onCancel func(taskID string), onOpen func(dir string), onRemove func(taskID string)) {
	tr.onCancel = onCancel
	tr.onOpen = onOpen
	tr.onRemove = onRemove
}

// UpdateTask updates the row with new task data and an optional thumbnail
func (tr *TaskRow) UpdateTask(task model.Task, thumb image.Image) {
	tr.task = task
	tr.thumbnail.Image = thumb
	tr.updateFromTask()
	tr.Refresh()
}

// createUI creates the UI components
func (tr *TaskRow) createUI() {
	tr.thumbnail = &canvas.Image{FillMode: canvas.ImageFillContain}
	tr.thumbnail.SetMinSize(fyne.NewSize(ThumbnailWidth, ThumbnailHeight))

	tr.titleLabel = widget.NewLabel("")
	tr.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	tr.titleLabel.Truncation = fyne.TextTruncateEllipsis

	tr.statusLabel = widget.NewLabel("")
	tr.statusLabel.Truncation = fyne.TextTruncateEllipsis

	tr.progressBar = widget.NewProgressBar()

	tr.cancelBtn = widget.NewButton(IconStop+" Cancel", func() {
		if tr.onCancel != nil {
			tr.onCancel(tr.task.ID)
		}
	})
	tr.folderBtn = widget.NewButton(IconFolder+" Open folder", func() {
		if tr.onOpen != nil {
			tr.onOpen(tr.task.Directory)
		}
	})
	tr.removeBtn = widget.NewButton(IconClose+" Remove", func() {
		if tr.onRemove != nil {
			tr.onRemove(tr.task.ID)
		}
	})
}

// updateFromTask updates UI components based on task state
func (tr *TaskRow) updateFromTask() {
	tr.titleLabel.SetText(tr.task.GetDisplayTitle())
	tr.progressBar.SetValue(tr.task.Progress)

	switch tr.task.Status {
	case model.TaskStatusFailed:
		tr.statusLabel.Importance = widget.DangerImportance
		tr.statusLabel.SetText(IconError + " " + tr.task.GetStatusLine())
	case model.TaskStatusDone:
		tr.statusLabel.Importance = widget.SuccessImportance
		tr.statusLabel.SetText(tr.task.GetStatusLine())
	case model.TaskStatusDownloading:
		tr.statusLabel.Importance = widget.HighImportance
		tr.statusLabel.SetText(IconPlay + " " + tr.task.GetStatusLine())
	default:
		tr.statusLabel.Importance = widget.MediumImportance
		tr.statusLabel.SetText(tr.task.GetStatusLine())
	}

	tr.updateButtons()
}

// updateButtons shows Cancel for active tasks and Open folder / Remove for finished ones
func (tr *TaskRow) updateButtons() {
	if tr.task.Status.IsActive() {
		tr.cancelBtn.Show()
		tr.folderBtn.Hide()
		tr.removeBtn.Hide()
		return
	}

	tr.cancelBtn.Hide()
	tr.removeBtn.Show()
	if tr.task.Status == model.TaskStatusDone && tr.task.Directory != "" {
		tr.folderBtn.Show()
	} else {
		tr.folderBtn.Hide()
	}
}

// CreateRenderer creates the widget renderer
func (tr *TaskRow) CreateRenderer() fyne.WidgetRenderer {
	fixedWidth := func(w float32, obj fyne.CanvasObject) fyne.CanvasObject {
		spacer := canvas.NewRectangle(color.Transparent)
		spacer.SetMinSize(fyne.NewSize(w, obj.MinSize().Height))
		return container.NewStack(spacer, obj)
	}

	info := container.NewVBox(
		tr.titleLabel,
		container.NewHBox(fixedWidth(ProgressBarWidth, tr.progressBar), fixedWidth(StatusLabelWidth, tr.statusLabel)),
	)
	actions := container.NewHBox(tr.cancelBtn, tr.folderBtn, tr.removeBtn)
	row := container.NewBorder(nil, widget.NewSeparator(), tr.thumbnail, actions, info)

	return widget.NewSimpleRenderer(row)
}
