package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/inputmodule/inputmodule-go/pkg/log"
)

// createTestLogFile writes events to a temp log file and returns its path.
func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.cborlog")
	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create log file: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close log file: %v", err)
	}
	return path
}

func TestFormatReportEvent(t *testing.T) {
	ts := time.Date(2026, 8, 28, 10, 15, 32, 123456000, time.UTC)
	event := log.Event{
		Timestamp:  ts,
		SessionID:  "abc12345-6789-0123-4567-890abcdef012",
		Direction:  log.DirectionOut,
		Layer:      log.LayerTransport,
		Category:   log.CategoryReport,
		DevicePath: "/dev/hidraw3",
		DeviceKind: "LED_MATRIX",
		Report: &log.ReportEvent{
			Size: 42,
			Data: []byte{0x32, 0xAC, 0x06},
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "2026-08-28T10:15:32.123456Z") {
		t.Errorf("expected formatted timestamp, got: %s", output)
	}
	if !strings.Contains(output, "[session:abc12345]") {
		t.Errorf("expected shortened session ID, got: %s", output)
	}
	if !strings.Contains(output, "OUT") {
		t.Errorf("expected OUT direction, got: %s", output)
	}
	if !strings.Contains(output, "TRANSPORT") {
		t.Errorf("expected TRANSPORT layer, got: %s", output)
	}
	if !strings.Contains(output, "42 bytes") {
		t.Errorf("expected report size, got: %s", output)
	}
	if !strings.Contains(output, "32ac06") {
		t.Errorf("expected hex data, got: %s", output)
	}
	if !strings.Contains(output, "/dev/hidraw3 (LED_MATRIX)") {
		t.Errorf("expected device line, got: %s", output)
	}
}

func TestFormatCommandEvent(t *testing.T) {
	event := log.Event{
		Timestamp: time.Now(),
		SessionID: "abc12345",
		Layer:     log.LayerCodec,
		Category:  log.CategoryCommand,
		Command:   &log.CommandEvent{ID: 0x06, Name: "DRAW", PayloadLen: 39},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "Command: DRAW (0x06)") {
		t.Errorf("expected command line, got: %s", output)
	}
	if !strings.Contains(output, "PayloadLen: 39") {
		t.Errorf("expected payload length, got: %s", output)
	}
}

func TestFormatRetryEvent(t *testing.T) {
	event := log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerSession,
		Category:  log.CategoryRetry,
		Retry:     &log.RetryEvent{Attempt: 2, Backoff: 20 * time.Millisecond, Reason: "write timeout"},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "Attempt: 2") {
		t.Errorf("expected attempt number, got: %s", output)
	}
	if !strings.Contains(output, "Backoff: 20.000ms") {
		t.Errorf("expected backoff, got: %s", output)
	}
	if !strings.Contains(output, "Reason: write timeout") {
		t.Errorf("expected reason, got: %s", output)
	}
}

func TestFormatStateChangeEvent(t *testing.T) {
	event := log.Event{
		Timestamp:   time.Now(),
		Layer:       log.LayerSession,
		Category:    log.CategoryState,
		StateChange: &log.StateChangeEvent{OldState: "CONNECTED", NewState: "DEGRADED", Reason: "short write"},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "CONNECTED -> DEGRADED") {
		t.Errorf("expected transition, got: %s", output)
	}
	if !strings.Contains(output, "Reason: short write") {
		t.Errorf("expected reason, got: %s", output)
	}
}

func TestRunViewFilters(t *testing.T) {
	ts := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Layer: log.LayerTransport, Category: log.CategoryReport, Report: &log.ReportEvent{Size: 4}},
		{Timestamp: ts, Layer: log.LayerCodec, Category: log.CategoryCommand, Command: &log.CommandEvent{ID: 0, Name: "BRIGHTNESS", PayloadLen: 1}},
		{Timestamp: ts, Layer: log.LayerSession, Category: log.CategoryRetry, Retry: &log.RetryEvent{Attempt: 1}},
	}
	path := createTestLogFile(t, events)

	layer := log.LayerCodec
	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{Layer: &layer}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "BRIGHTNESS") {
		t.Errorf("expected codec event in output, got: %s", output)
	}
	if strings.Contains(output, "Retry") {
		t.Errorf("filtered event leaked into output: %s", output)
	}
}

func TestRunStats(t *testing.T) {
	ts := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, SessionID: "sess-aaaa-bbbb", Layer: log.LayerTransport, Category: log.CategoryReport, DevicePath: "/dev/hidraw3", DeviceKind: "LED_MATRIX"},
		{Timestamp: ts.Add(time.Second), SessionID: "sess-aaaa-bbbb", Layer: log.LayerSession, Category: log.CategoryRetry, Retry: &log.RetryEvent{Attempt: 1, Reopened: true}},
		{Timestamp: ts, SessionID: "sess-cccc-dddd", Layer: log.LayerSession, Category: log.CategoryState, StateChange: &log.StateChangeEvent{NewState: "FAILED"}},
		{Timestamp: ts, SessionID: "sess-cccc-dddd", Layer: log.LayerTransport, Category: log.CategoryError, Error: &log.ErrorEventData{Message: "boom"}},
	}
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Total Events: 4") {
		t.Errorf("expected total count, got: %s", output)
	}
	if !strings.Contains(output, "Sessions: 2") {
		t.Errorf("expected session count, got: %s", output)
	}
	if !strings.Contains(output, "Retries: 1 (1 with reopen)") {
		t.Errorf("expected retry summary, got: %s", output)
	}
	if !strings.Contains(output, "Errors: 1") {
		t.Errorf("expected error count, got: %s", output)
	}
	if !strings.Contains(output, "Last state: FAILED") {
		t.Errorf("expected last state, got: %s", output)
	}
}

func TestRunFilter(t *testing.T) {
	ts := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, SessionID: "keep-session", Category: log.CategoryReport, Report: &log.ReportEvent{Size: 4}},
		{Timestamp: ts, SessionID: "drop-session", Category: log.CategoryReport, Report: &log.ReportEvent{Size: 4}},
	}
	path := createTestLogFile(t, events)
	output := filepath.Join(t.TempDir(), "filtered.cborlog")

	err := RunFilter(path, FilterOptions{Output: output, SessionID: "keep-session"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	reader, err := log.NewReader(output)
	if err != nil {
		t.Fatalf("failed to open filtered file: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != nil {
		t.Fatalf("failed to read filtered event: %v", err)
	}
	if event.SessionID != "keep-session" {
		t.Errorf("unexpected session %q in filtered output", event.SessionID)
	}
	if _, err := reader.Next(); err == nil {
		t.Error("expected exactly one filtered event")
	}
}

func TestRunExportCSV(t *testing.T) {
	ts := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, SessionID: "sess-1", Layer: log.LayerCodec, Category: log.CategoryCommand, Command: &log.CommandEvent{ID: 6, Name: "DRAW", PayloadLen: 39}},
	}
	path := createTestLogFile(t, events)
	out := filepath.Join(t.TempDir(), "export.csv")

	if err := RunExport(path, "csv", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !strings.Contains(string(data), "timestamp,session_id,direction,layer,category") {
		t.Errorf("expected CSV header, got: %s", data)
	}
	if !strings.Contains(string(data), "DRAW") {
		t.Errorf("expected command name in CSV, got: %s", data)
	}
}

func TestRunExportUnknownFormat(t *testing.T) {
	path := createTestLogFile(t, []log.Event{{Timestamp: time.Now()}})
	if err := RunExport(path, "xml", ""); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestParseFlags(t *testing.T) {
	if _, err := parseLayer("codec"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := parseLayer("wire"); err == nil {
		t.Error("expected error for unknown layer")
	}
	if _, err := parseDirection("in"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := parseCategory("retry"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := parseCategory("message"); err == nil {
		t.Error("expected error for unknown category")
	}
}
