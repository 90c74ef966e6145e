// Where: internal/ui/console.go
// What: Console output helpers for consistent CLI UX.
// Why: Standardize emojis, indentation, and structure across commands.
package ui

import (
	"fmt"
	"io"
)

// Console provides helper methods for formatted output.
// Methods write to Out and ignore write errors.
type Console struct {
	Out io.Writer
}

// New creates a new Console writing to the provided writer.
func New(out io.Writer) *Console {
	if out == nil {
		out = io.Discard
	}
	return &Console{Out: out}
}

// Header prints a section header with an emoji.
// Example: 📦 Resources:
func (c *Console) Header(emoji, title string) {
	fmt.Fprintf(c.Out, "%s %s\n", emoji, title)
}

// Item prints a key-value item with indentation.
// Example:    Key:               Value
func (c *Console) Item(key string, value any) {
	fmt.Fprintf(c.Out, "   %-18s %v\n", key+":", value)
}

// ItemPlain prints a generic indented line.
func (c *Console) ItemPlain(msg string) {
	fmt.Fprintf(c.Out, "   %s\n", msg)
}

// Success prints a success message with a checkmark.
func (c *Console) Success(msg string) {
	fmt.Fprintf(c.Out, "✅ %s\n", msg)
}

// Info prints an info message with an arrow.
func (c *Console) Info(msg string) {
	fmt.Fprintf(c.Out, "➜ %s\n", msg)
}

// Warn prints a warning.
func (c *Console) Warn(msg string) {
	fmt.Fprintf(c.Out, "⚠️  %s\n", msg)
}

// Error prints a failure message with a cross.
func (c *Console) Error(msg string) {
	fmt.Fprintf(c.Out, "❌ %s\n", msg)
}

// Route prints one routing hop of the resource graph.
// Example:    images --(s3:ObjectCreated:*)--> NewImageTopic
func (c *Console) Route(from, label, to string) {
	fmt.Fprintf(c.Out, "   %s --(%s)--> %s\n", from, label, to)
}

// Depth prints a queue's message counts, or that the queue is absent.
func (c *Console) Depth(queue string, visible, inFlight int, missing bool) {
	if missing {
		c.Item(queue, "not provisioned")
		return
	}
	c.Item(queue, fmt.Sprintf("%d visible, %d in flight", visible, inFlight))
}
