package menupdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-gomail/gomail"

	"github.com/alnah/go-menupdf/internal/fileutil"
)

// Sink receives finished PDF bytes and reports where they went.
type Sink interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

// Sharer delivers a stored PDF, for example by opening or mailing it.
type Sharer interface {
	Share(ctx context.Context, path string) error
}

// Compile-time interface checks.
var (
	_ Sink   = (*DirSink)(nil)
	_ Sharer = (*OpenSharer)(nil)
	_ Sharer = (*MailSharer)(nil)
	_ Sharer = MultiSharer(nil)
)

// DirSink writes PDFs into a directory. Files appear atomically.
type DirSink struct {
	Dir string // "" means the working directory
}

// Save writes data as Dir/filename and returns the path.
func (s *DirSink) Save(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("%w: %q", ErrEmptyFilename, filename)
	}

	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, filename)
	// #nosec G306 -- PDF output files are intended to be readable
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// runFunc starts an external command.
type runFunc func(ctx context.Context, name string, args ...string) error

// startCommand starts name without binding it to ctx, so the opener
// outlives the export that launched it. The process is reaped in the
// background.
func startCommand(_ context.Context, name string, args ...string) error {
	// #nosec G204 -- opener is fixed per platform, path is our own output
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// OpenSharer opens the PDF with the platform's default viewer.
type OpenSharer struct {
	run runFunc
}

// NewOpenSharer returns a sharer using xdg-open, open or rundll32.
func NewOpenSharer() *OpenSharer {
	return &OpenSharer{run: startCommand}
}

// Share starts the viewer without waiting for it to exit.
func (o *OpenSharer) Share(ctx context.Context, path string) error {
	name, args := openerCommand(runtime.GOOS, path)
	run := o.run
	if run == nil {
		run = startCommand
	}
	if err := run(ctx, name, args...); err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrShare, path, err)
	}
	return nil
}

func openerCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		return "xdg-open", []string{path}
	}
}

// MailSettings configures SMTP delivery.
type MailSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
	Subject  string
}

// mailSender is satisfied by *gomail.Dialer.
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailSharer sends the PDF as an attachment.
type MailSharer struct {
	settings MailSettings
	sender   mailSender
}

// NewMailSharer returns a sharer that sends through the configured SMTP server.
func NewMailSharer(s MailSettings) *MailSharer {
	return &MailSharer{
		settings: s,
		sender:   gomail.NewDialer(s.Host, s.Port, s.Username, s.Password),
	}
}

// Share sends one message with path attached.
func (m *MailSharer) Share(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := m.settings.Subject
	if subject == "" {
		subject = filepath.Base(path)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.settings.From)
	msg.SetHeader("To", m.settings.To)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", "Cardápio em anexo.")
	msg.Attach(path)

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("%w: sending to %s: %v", ErrShare, m.settings.To, err)
	}
	return nil
}

// MultiSharer runs every sharer in order and joins their errors.
type MultiSharer []Sharer

// Share runs all sharers even when one fails.
func (ms MultiSharer) Share(ctx context.Context, path string) error {
	var errs []error
	for _, s := range ms {
		if err := s.Share(ctx, path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
