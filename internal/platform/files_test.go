package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCreateDirectoryIfNotExists(t *testing.T) {
	// Create temporary directory for testing
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "test_dir")

	// Directory should not exist initially
	if _, err := os.Stat(testDir); !os.IsNotExist(err) {
		t.Fatalf("Test directory already exists: %s", testDir)
	}

	// Create directory
	err := CreateDirectoryIfNotExists(testDir)
	if err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	// Directory should now exist
	if _, err := os.Stat(testDir); os.IsNotExist(err) {
		t.Fatalf("Directory was not created: %s", testDir)
	}

	// Second call should not fail
	err = CreateDirectoryIfNotExists(testDir)
	if err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}
}

func TestGetHomeDownloadsDir(t *testing.T) {
	downloadsDir, err := GetHomeDownloadsDir()
	if err != nil {
		t.Fatalf("Failed to get downloads directory: %v", err)
	}

	// Should end with "Downloads"
	if filepath.Base(downloadsDir) != "Downloads" {
		t.Errorf("Expected directory to end with 'Downloads', got: %s", downloadsDir)
	}
}

func TestOpenFolder_NonExistent(t *testing.T) {
	err := OpenFolder(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("Expected error for non-existent folder, got nil")
	}
}

func TestOpenFolder_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "video.mp4")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	if err := OpenFolder(file); err == nil {
		t.Error("Expected error when opening a regular file as folder")
	}
}

func TestFolderCommand(t *testing.T) {
	tests := []struct {
		goos     string
		expected string
	}{
		{OSDarwin, OpenCommand},
		{OSWindows, ExplorerCommand},
	}

	for _, test := range tests {
		cmd, err := folderCommand(test.goos, "/tmp")
		if err != nil {
			t.Fatalf("folderCommand(%s) returned error: %v", test.goos, err)
		}
		if filepath.Base(cmd.Args[0]) != test.expected {
			t.Errorf("folderCommand(%s) = %s, expected %s", test.goos, cmd.Args[0], test.expected)
		}
		if cmd.Args[len(cmd.Args)-1] != "/tmp" {
			t.Errorf("folderCommand(%s) last arg = %s, expected /tmp", test.goos, cmd.Args[len(cmd.Args)-1])
		}
	}

	if _, err := folderCommand("plan9", "/tmp"); err == nil {
		t.Error("Expected error for unsupported OS")
	}
}
