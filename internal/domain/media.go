package domain

import (
	"context"
	"io"
)

// MediaStore accepts a binary blob and returns a durable URL.
// Used solely by the event lifecycle for image attachments.
type MediaStore interface {
	Store(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error)
}

// Mailer sends a single message. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(to, subject, html, text string) error
}
