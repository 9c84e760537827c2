// Package core provides the error taxonomy and shared value types for backyard-e2e.
package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// Attachment represents a debug artifact captured when a scenario ends
type Attachment struct {
	Name        string `json:"name"`        // Descriptive name: screenshot, page_source
	ContentType string `json:"contentType"` // MIME type: image/png, application/xml
	Path        string `json:"path"`        // File path the artifact was written to
	Body        []byte `json:"-"`           // In-memory content (not serialized to JSON)
}

// Common attachment names
const (
	AttachmentScreenshot = "screenshot"
	AttachmentPageSource = "page_source"
)

// Common content types
const (
	ContentTypePNG = "image/png"
	ContentTypeXML = "application/xml"
)

// NewScreenshotAttachment creates a screenshot attachment
func NewScreenshotAttachment(path string, data []byte) Attachment {
	return Attachment{
		Name:        AttachmentScreenshot,
		ContentType: ContentTypePNG,
		Path:        path,
		Body:        data,
	}
}

// NewPageSourceAttachment creates a UI tree attachment
func NewPageSourceAttachment(path string, data []byte) Attachment {
	return Attachment{
		Name:        AttachmentPageSource,
		ContentType: ContentTypeXML,
		Path:        path,
		Body:        data,
	}
}

// ArtifactConfig controls when and what artifacts are captured
type ArtifactConfig struct {
	Dir string `yaml:"dir" json:"dir"` // Output directory, relative to home when not absolute

	// When to capture
	CaptureOnFailure bool `yaml:"captureOnFailure" json:"captureOnFailure"` // Default: true
	CaptureOnSuccess bool `yaml:"captureOnSuccess" json:"captureOnSuccess"` // Default: false

	// What to capture
	Screenshot bool `yaml:"screenshot" json:"screenshot"` // Default: true
	PageSource bool `yaml:"pageSource" json:"pageSource"` // Default: false
}

// DefaultArtifactConfig returns sensible defaults for artifact capture
func DefaultArtifactConfig() ArtifactConfig {
	return ArtifactConfig{
		Dir:              "screenshots",
		CaptureOnFailure: true,
		CaptureOnSuccess: false,
		Screenshot:       true,
		PageSource:       false,
	}
}

// ShouldCapture returns true if artifacts should be captured for the given status
func (c ArtifactConfig) ShouldCapture(status Status) bool {
	switch status {
	case StatusFailed:
		return c.CaptureOnFailure
	case StatusPassed:
		return c.CaptureOnSuccess
	default:
		return false
	}
}

// ArtifactCollector captures debug artifacts from a live session
type ArtifactCollector interface {
	// CaptureScreenshot takes a screenshot and returns PNG data
	CaptureScreenshot(ctx context.Context) ([]byte, error)

	// CapturePageSource returns the current UI tree as XML
	CapturePageSource(ctx context.Context) ([]byte, error)
}

// NullArtifactCollector is a no-op implementation for testing
type NullArtifactCollector struct{}

// CaptureScreenshot returns nil (no-op)
func (n NullArtifactCollector) CaptureScreenshot(context.Context) ([]byte, error) { return nil, nil }

// CapturePageSource returns nil (no-op)
func (n NullArtifactCollector) CapturePageSource(context.Context) ([]byte, error) { return nil, nil }

// ArtifactName builds a file name for a scenario artifact, e.g. "TestSmoke_S1_failure.png".
func ArtifactName(scenario string, status Status, ext string) string {
	r := strings.NewReplacer("/", "_", " ", "_", ":", "_", "\\", "_")
	return r.Replace(scenario) + "_" + statusSuffix(status) + ext
}

func statusSuffix(s Status) string {
	if s == StatusFailed {
		return "failure"
	}
	return s.String()
}

// CollectArtifacts captures what cfg asks for and writes it under dir.
// Capture errors are returned after every requested artifact has been attempted.
func CollectArtifacts(ctx context.Context, c ArtifactCollector, cfg ArtifactConfig, dir, scenario string, status Status) ([]Attachment, error) {
	if !cfg.ShouldCapture(status) {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var (
		out      []Attachment
		firstErr error
	)
	if cfg.Screenshot {
		data, err := c.CaptureScreenshot(ctx)
		if err == nil && data != nil {
			path := filepath.Join(dir, ArtifactName(scenario, status, ".png"))
			err = os.WriteFile(path, data, 0o644)
			if err == nil {
				out = append(out, NewScreenshotAttachment(path, data))
			}
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if cfg.PageSource {
		data, err := c.CapturePageSource(ctx)
		if err == nil && data != nil {
			path := filepath.Join(dir, ArtifactName(scenario, status, ".xml"))
			err = os.WriteFile(path, data, 0o644)
			if err == nil {
				out = append(out, NewPageSourceAttachment(path, data))
			}
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return out, firstErr
}
