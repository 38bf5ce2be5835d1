package session

import (
	"fmt"
	"os"

	"github.com/arc-language/core-builder/diagnostics"
	"github.com/arc-language/core-builder/verifier"
)

// Verify runs the verifier over the module, records its findings in the
// session diagnostics and reports whether the module is well formed
func (s *Session) Verify() bool {
	res := verifier.VerifyModule(s.Module)
	res.ReportTo(s.Diagnostics)
	for _, d := range res.Diagnostics() {
		switch d.Severity {
		case diagnostics.SeverityError:
			s.Logger.ErrorAt(d.Location.String(), "%s", d.Message)
		case diagnostics.SeverityWarning:
			s.Logger.WarningAt(d.Location.String(), "%s", d.Message)
		}
	}
	if res.OK() {
		s.Logger.Info("Module '%s' verified", s.Module.Name)
	}
	return res.OK()
}

// WriteIR writes the printed module to outputPath
func (s *Session) WriteIR(outputPath string) error {
	s.Logger.Info("Writing IR to: %s", outputPath)

	irText := s.Module.String()
	s.Logger.Debug("Generated %d bytes of IR text", len(irText))

	if err := os.WriteFile(outputPath, []byte(irText), 0644); err != nil {
		s.Logger.Error("Failed to write IR file '%s': %v", outputPath, err)
		return fmt.Errorf("failed to write IR file: %w", err)
	}
	return nil
}

// Fingerprint returns the content digest of the module
func (s *Session) Fingerprint() string {
	return s.Module.Fingerprint()
}
