package ui

import (
	"context"
	"errors"
	"image"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/ytfetch/internal/config"
	"github.com/ytget/ytfetch/internal/model"
	"github.com/ytget/ytfetch/internal/orchestrator"
	"github.com/ytget/ytfetch/internal/platform"
	"github.com/ytget/ytfetch/internal/router"
	"github.com/ytget/ytfetch/pkg/logster"
)

// TaskManager is the part of the orchestrator the UI drives
type TaskManager interface {
	Submit(ctx context.Context, sub model.Submission) (string, error)
	Tick() router.Stats
	Cancel(id string) bool
	Remove(id string) bool
	ClearFinished() int
	Task(id string) (model.Task, bool)
	Tasks() iter.Seq[model.Task]
	Thumbnail(videoID string) (image.Image, bool)
}

// RootUI represents the main UI structure
type RootUI struct {
	window   fyne.Window
	manager  TaskManager
	settings *config.Settings
	logger   logster.Logger
	interval time.Duration

	urlEntry      *widget.Entry
	qualitySelect *widget.Select
	dirLabel      *widget.Label
	downloadBtn   *widget.Button
	noticeLabel   *widget.Label
	taskList      *widget.List

	tasks []model.Task

	stopOnce sync.Once
	stop     chan struct{}
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, manager TaskManager, settings *config.Settings, logger logster.Logger, interval time.Duration) *RootUI {
	if interval <= 0 {
		interval = TickInterval
	}
	ui := &RootUI{
		window:   window,
		manager:  manager,
		settings: settings,
		logger:   logger.WithField("component", "ui"),
		interval: interval,
		stop:     make(chan struct{}),
	}
	ui.setupUI()
	return ui
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.createMenu()

	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder("Paste a video or playlist URL")
	ui.urlEntry.Validator = ui.validateURL
	// Trigger download when user presses Enter in the URL field
	ui.urlEntry.OnSubmitted = func(string) {
		ui.onDownloadClick()
	}

	ui.qualitySelect = widget.NewSelect(qualityOptions(), func(selected string) {
		ui.settings.SetQuality(model.ParseQuality(selected))
	})
	ui.qualitySelect.SetSelected(string(ui.settings.GetQuality()))

	ui.downloadBtn = widget.NewButton("Download", ui.onDownloadClick)
	ui.downloadBtn.Importance = widget.HighImportance

	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	ui.dirLabel = widget.NewLabel(ui.settings.GetDownloadDirectory())
	ui.dirLabel.Truncation = fyne.TextTruncateEllipsis
	folderBtn := widget.NewButton(IconFolder, ui.onChooseFolder)

	ui.noticeLabel = widget.NewLabel("")
	ui.noticeLabel.Hide()

	urlRow := container.NewBorder(nil, nil, settingsBtn, container.NewHBox(ui.qualitySelect, ui.downloadBtn), ui.urlEntry)
	dirRow := container.NewBorder(nil, nil, folderBtn, nil, ui.dirLabel)
	top := container.NewVBox(urlRow, dirRow, ui.noticeLabel)

	ui.taskList = widget.NewList(
		func() int {
			return len(ui.tasks)
		},
		func() fyne.CanvasObject {
			row := NewTaskRow()
			row.SetCallbacks(ui.onCancelTask, ui.onOpenFolder, ui.onRemoveTask)
			return row
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) { ui.updateTaskItem(id, obj) },
	)

	ui.window.SetContent(container.NewBorder(top, nil, nil, nil, ui.taskList))
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem("Settings", ui.onShowSettings)
	clearItem := fyne.NewMenuItem("Clear finished", ui.onClearFinished)

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu("File", settingsItem, clearItem),
	))
}

// Start begins ticking the task manager on the Fyne main goroutine
func (ui *RootUI) Start() {
	go func() {
		ticker := time.NewTicker(ui.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ui.stop:
				return
			case <-ticker.C:
				fyne.Do(ui.tick)
			}
		}
	}()
}

// Stop ends the tick loop
func (ui *RootUI) Stop() {
	ui.stopOnce.Do(func() { close(ui.stop) })
}

// tick runs one consumer cycle and redraws the list
func (ui *RootUI) tick() {
	stats := ui.manager.Tick()

	for _, id := range stats.Exited {
		task, ok := ui.manager.Task(id)
		if !ok {
			continue
		}
		switch task.Status {
		case model.TaskStatusDone:
			if ui.settings.GetAutoRevealOnComplete() {
				ui.onOpenFolder(task.Directory)
			}
		case model.TaskStatusFailed:
			ui.showNotice(task.GetDisplayTitle() + ": " + task.Err)
		}
	}

	ui.refreshTasks()
}

// refreshTasks snapshots the task list for rendering
func (ui *RootUI) refreshTasks() {
	ui.tasks = slices.Collect(ui.manager.Tasks())
	ui.taskList.Refresh()
}

// updateTaskItem fills a recycled row with the task at id
func (ui *RootUI) updateTaskItem(id widget.ListItemID, item fyne.CanvasObject) {
	if id < 0 || id >= len(ui.tasks) {
		return
	}
	row, ok := item.(*TaskRow)
	if !ok {
		return
	}
	task := ui.tasks[id]
	thumb, _ := ui.manager.Thumbnail(task.VideoID)
	row.UpdateTask(task, thumb)
}

// validateURL validates the entered URL
func (ui *RootUI) validateURL(input string) error {
	if strings.TrimSpace(input) == "" {
		return nil // Empty is allowed
	}
	return orchestrator.ValidateURL(input)
}

// onDownloadClick handles the download button click
func (ui *RootUI) onDownloadClick() {
	urlText := strings.TrimSpace(ui.urlEntry.Text)
	if urlText == "" {
		ui.showNotice("Please enter a URL")
		return
	}

	sub := model.Submission{
		URL:       urlText,
		Quality:   model.ParseQuality(ui.qualitySelect.Selected),
		Directory: ui.settings.GetDownloadDirectory(),
	}
	id, err := ui.manager.Submit(context.Background(), sub)
	if err != nil {
		if errors.Is(err, orchestrator.ErrInvalidURL) {
			ui.showNotice("Invalid URL: " + err.Error())
		} else {
			ui.showNotice("Error: " + err.Error())
		}
		ui.logger.WithError(err).Warnf("submit rejected")
		return
	}

	if id == "" {
		ui.showNotice("Loading playlist...")
	} else {
		ui.hideNotice()
	}
	ui.urlEntry.SetText("")
	ui.refreshTasks()
}

// onChooseFolder picks the download directory
func (ui *RootUI) onChooseFolder() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		ui.settings.SetDownloadDirectory(uri.Path())
		ui.dirLabel.SetText(uri.Path())
	}, ui.window)
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	NewSettingsDialog(ui.settings, ui.window, func() {
		ui.dirLabel.SetText(ui.settings.GetDownloadDirectory())
		ui.qualitySelect.SetSelected(string(ui.settings.GetQuality()))
		ui.showNotice("Settings saved")
	}).Show()
}

func (ui *RootUI) onCancelTask(taskID string) {
	ui.manager.Cancel(taskID)
}

func (ui *RootUI) onRemoveTask(taskID string) {
	ui.manager.Remove(taskID)
	ui.refreshTasks()
}

func (ui *RootUI) onClearFinished() {
	ui.manager.ClearFinished()
	ui.refreshTasks()
}

// onOpenFolder reveals dir in the system file manager
func (ui *RootUI) onOpenFolder(dir string) {
	if dir == "" {
		return
	}
	if err := platform.OpenFolder(dir); err != nil {
		ui.logger.WithError(err).Warnf("failed to open %s", dir)
		ui.showNotice("Could not open folder: " + err.Error())
	}
}

// showNotice displays a message under the URL row
func (ui *RootUI) showNotice(message string) {
	ui.noticeLabel.SetText(message)
	ui.noticeLabel.Show()
}

func (ui *RootUI) hideNotice() {
	ui.noticeLabel.Hide()
}
