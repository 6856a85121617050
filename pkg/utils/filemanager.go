// =============================================================================
// Sales Analytics - File Manager Utility
// =============================================================================
//
// This module provides file utilities for the pipeline, including:
//   - Output directory management
//   - Output file naming with placeholders
//   - Reject log generation (skipped and invalid input lines)
//
// NAMING PLACEHOLDERS:
//   {run_id}    - The run identifier
//   {uuid}      - A fresh random UUID
//   {timestamp} - Run timestamp (YYYYMMDD_HHMMSS)
//   {date}      - Run date (YYYYMMDD)
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager prepares the locations of the files a run writes.
type FileManager struct {
	// OutputPaths are the files the run will create. Empty entries are
	// ignored.
	OutputPaths []string
}

// NewFileManager creates a FileManager for the given output files.
func NewFileManager(outputPaths ...string) *FileManager {
	return &FileManager{OutputPaths: outputPaths}
}

// EnsureDirectories creates the parent directory of every output path.
func (fm *FileManager) EnsureDirectories() error {
	for _, path := range fm.OutputPaths {
		if path == "" {
			continue
		}
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE NAMING
// =============================================================================

// ExpandFileName replaces the naming placeholders in pattern.
//
// PARAMETERS:
//   - pattern: A path that may contain placeholders.
//   - runID: Substituted for {run_id}.
//   - now: The run time used for {timestamp} and {date}.
//
// RETURNS:
//   - The expanded path. A pattern without placeholders is returned as is.
func ExpandFileName(pattern, runID string, now time.Time) string {
	if !strings.Contains(pattern, "{") {
		return pattern
	}

	replacements := map[string]string{
		"{run_id}":    runID,
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
	}

	result := pattern
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	// Each {uuid} gets its own value.
	for strings.Contains(result, "{uuid}") {
		result = strings.Replace(result, "{uuid}", uuid.New().String(), 1)
	}

	return result
}

// =============================================================================
// REJECT LOG GENERATION
// =============================================================================

// Reject kinds.
const (
	RejectSkipped = "skipped"
	RejectInvalid = "invalid"
)

// RejectEntry describes one input line that did not reach the report.
type RejectEntry struct {
	// Kind is RejectSkipped (malformed line) or RejectInvalid (failed a
	// validation rule).
	Kind string

	// LineNumber is the 1-based line in the input file, when known.
	LineNumber int

	// Reason is the skip reason or the violated rule.
	Reason string

	Message       string
	TransactionID string
	FieldName     string
	FieldValue    string
}

// WriteRejectLog writes reject entries to logPath.
//
// PARAMETERS:
//   - entries: The entries to write. Nothing is written when empty.
//   - logPath: Destination file. Parent directories are created.
//   - generated: Timestamp printed in the header.
//
// RETURNS:
//   - The path written, or "" when there was nothing to write.
//   - An error if writing fails.
func WriteRejectLog(entries []RejectEntry, logPath string, generated time.Time) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	if err := NewFileManager(logPath).EnsureDirectories(); err != nil {
		return "", err
	}

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create reject log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	skipped, invalid := 0, 0
	for _, entry := range entries {
		if entry.Kind == RejectSkipped {
			skipped++
		} else {
			invalid++
		}
	}

	header := fmt.Sprintf("Sales Analytics - Reject Log\n"+
		"Generated: %s\n"+
		"Total Rejects: %d (skipped: %d, invalid: %d)\n"+
		"================================================================================\n\n",
		generated.Format("2006-01-02 15:04:05"),
		len(entries), skipped, invalid)
	writer.WriteString(header)

	for i, entry := range entries {
		entryStr := fmt.Sprintf("Reject #%d\n"+
			"  Kind:           %s\n"+
			"  Reason:         %s\n",
			i+1,
			entry.Kind,
			entry.Reason)

		if entry.LineNumber > 0 {
			entryStr += fmt.Sprintf("  Line Number:    %d\n", entry.LineNumber)
		}
		if entry.TransactionID != "" {
			entryStr += fmt.Sprintf("  Transaction ID: %s\n", entry.TransactionID)
		}
		if entry.FieldName != "" {
			entryStr += fmt.Sprintf("  Field:          %s\n", entry.FieldName)
		}
		if entry.FieldValue != "" {
			entryStr += fmt.Sprintf("  Value:          %s\n", entry.FieldValue)
		}
		if entry.Message != "" {
			entryStr += fmt.Sprintf("  Message:        %s\n", entry.Message)
		}

		entryStr += "\n"
		writer.WriteString(entryStr)
	}

	footer := "================================================================================\n" +
		"End of Reject Log\n"
	writer.WriteString(footer)

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush reject log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
