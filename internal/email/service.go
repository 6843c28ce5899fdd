// Package email takes care of rendering and sending the emails the app
// needs to deliver, most importantly the account verification email.
package email

import (
	"bytes"
	"context"
	"fmt"
	"io"
)

// TemplateElement is used by a renderer to identify the different parts of an email template.
type TemplateElement string

const (
	ElementSubject TemplateElement = "subject"
	ElementBody    TemplateElement = "body"
)

// Renderer is responsible for rendering email templates.
type Renderer interface {
	Render(w io.Writer, name string, element TemplateElement, data any) error
}

// Sender is responsible for actually sending an email.
type Sender interface {
	Send(ctx context.Context, from, recipient Address, subject, body string) error
}

// Service renders named email templates and hands them to a sender.
type Service struct {
	renderer Renderer
	sender   Sender
	from     Address
}

func NewService(renderer Renderer, sender Sender, from Address) *Service {
	return &Service{
		renderer: renderer,
		sender:   sender,
		from:     from,
	}
}

// Send renders the subject and body of the named template with the
// provided data and sends the result to the recipient.
func (s *Service) Send(ctx context.Context, name string, recipient Address, data any) error {
	var subject bytes.Buffer
	if err := s.renderer.Render(&subject, name, ElementSubject, data); err != nil {
		return fmt.Errorf("failed to render subject of %q: %w", name, err)
	}

	var body bytes.Buffer
	if err := s.renderer.Render(&body, name, ElementBody, data); err != nil {
		return fmt.Errorf("failed to render body of %q: %w", name, err)
	}

	return s.sender.Send(ctx, s.from, recipient, subject.String(), body.String())
}
