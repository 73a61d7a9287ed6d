package output

import (
	"fmt"
	"os"

	"github.com/synqronlabs/mailaudit/audit"
	"github.com/tinylib/msgp/msgp"
)

// ReportWriter streams one MessagePack-encoded map per report to a file,
// appended as each domain is classified. The stream is a sequence of
// top-level maps, readable with any MessagePack decoder; no framing beyond
// the encoding itself.
type ReportWriter struct {
	file  *os.File
	w     *msgp.Writer
	runID string
}

var _ audit.Sink = (*ReportWriter)(nil)

// NewReportWriter opens path in append mode and returns a writer that tags
// every report with runID.
func NewReportWriter(path, runID string) (*ReportWriter, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening report file: %w", err)
	}
	return &ReportWriter{
		file:  file,
		w:     msgp.NewWriter(file),
		runID: runID,
	}, nil
}

// Write encodes a single report.
func (w *ReportWriter) Write(report audit.Report) error {
	if err := w.w.WriteMapHeader(4); err != nil {
		return err
	}
	if err := w.writeStringField("run", w.runID); err != nil {
		return err
	}
	if err := w.writeStringField("domain", report.Domain); err != nil {
		return err
	}
	if err := w.writeCheck("spf", report.SPF); err != nil {
		return err
	}
	if err := w.writeCheck("dmarc", report.DMARC); err != nil {
		return err
	}
	// Flush per report so an interrupted run leaves whole entries behind.
	return w.w.Flush()
}

func (w *ReportWriter) writeCheck(key string, check audit.Check) error {
	if err := w.w.WriteString(key); err != nil {
		return err
	}

	size := uint32(2) // status, authentic
	if check.Record != "" {
		size++
	}
	if check.Err != nil {
		size++
	}
	if err := w.w.WriteMapHeader(size); err != nil {
		return err
	}

	if err := w.writeStringField("status", check.Status.String()); err != nil {
		return err
	}
	if err := w.w.WriteString("authentic"); err != nil {
		return err
	}
	if err := w.w.WriteBool(check.Authentic); err != nil {
		return err
	}
	if check.Record != "" {
		if err := w.writeStringField("record", check.Record); err != nil {
			return err
		}
	}
	if check.Err != nil {
		if err := w.writeStringField("error", check.Err.Error()); err != nil {
			return err
		}
	}
	return nil
}

func (w *ReportWriter) writeStringField(key, value string) error {
	if err := w.w.WriteString(key); err != nil {
		return err
	}
	return w.w.WriteString(value)
}

// Close flushes buffered data and closes the underlying file.
func (w *ReportWriter) Close() error {
	flushErr := w.w.Flush()
	closeErr := w.file.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
