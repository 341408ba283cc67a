package messenger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Console prints messages to a writer and copies documents into OutDir.
// It stands in for Telegram when running jobs from the command line.
type Console struct {
	Out    io.Writer
	OutDir string

	mu   sync.Mutex
	next int
}

func NewConsole(out io.Writer, outDir string) *Console {
	return &Console{Out: out, OutDir: outDir}
}

func (c *Console) SendMessage(chatID int64, text string) (Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	fmt.Fprintf(c.Out, "[%d #%d] %s\n", chatID, c.next, text)
	return Handle{ChatID: chatID, MessageID: c.next}, nil
}

func (c *Console) EditMessage(h Handle, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.Out, "[%d #%d edited] %s\n", h.ChatID, h.MessageID, text)
	return nil
}

func (c *Console) SendDocument(chatID int64, path, caption string) error {
	if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(c.OutDir, filepath.Base(path))
	if err := copyFile(path, dst); err != nil {
		return fmt.Errorf("copy %s: %w", path, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.Out, "[%d document] %s (%s)\n", chatID, dst, caption)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
