package gateway

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Stdout implements Sender by writing messages to standard output.
// Intended for development; messages are never actually delivered.
type Stdout struct {
	writer io.Writer
}

// NewStdout creates a Stdout sender that prints messages to os.Stdout.
func NewStdout() *Stdout {
	return &Stdout{writer: os.Stdout}
}

// Send prints the message details and reports success.
func (s *Stdout) Send(_ context.Context, email Email) error {
	var b strings.Builder
	b.WriteString("--- stdout gateway: message ---\n")
	fmt.Fprintf(&b, "To:      %s\n", email.To)
	fmt.Fprintf(&b, "From:    %s\n", email.FromAddress)
	fmt.Fprintf(&b, "Subject: %s\n", email.Subject)
	fmt.Fprintf(&b, "Tag:     %s\n", email.Tag)
	fmt.Fprintf(&b, "Text:    (%d bytes)\n", len(email.TextBody))
	fmt.Fprintf(&b, "HTML:    (%d bytes)\n", len(email.HTMLBody))
	b.WriteString("--- end ---\n")

	if _, err := io.WriteString(s.writer, b.String()); err != nil {
		return fmt.Errorf("stdout: write: %w", err)
	}
	return nil
}
