// Package notify sends schedule and deletion-report emails through the
// Mailtrap sending API.
package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultEndpoint = "https://send.api.mailtrap.io/api/send"

// Attachment is one base64-encoded file on an outgoing message.
type Attachment struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
}

// NewAttachment encodes raw content for sending.
func NewAttachment(content []byte, filename string) Attachment {
	return Attachment{
		Content:  base64.StdEncoding.EncodeToString(content),
		Filename: filename,
	}
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type message struct {
	From        address      `json:"from"`
	To          []address    `json:"to"`
	Subject     string       `json:"subject"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Mailer posts messages to the sending API with a fixed sender and
// receiver.
type Mailer struct {
	token      string
	sender     string
	senderName string
	receiver   string
	endpoint   string
	httpClient *http.Client
}

// NewMailer builds a mailer.  token is the API token; sender and receiver
// are email addresses.
func NewMailer(token, sender, senderName, receiver string) *Mailer {
	return &Mailer{
		token:      token,
		sender:     sender,
		senderName: senderName,
		receiver:   receiver,
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetEndpoint overrides the API endpoint; tests point it at a local
// server.
func (m *Mailer) SetEndpoint(endpoint string) { m.endpoint = endpoint }

// Send posts one message.
func (m *Mailer) Send(ctx context.Context, subject, text string, attachments []Attachment) error {
	body, err := json.Marshal(message{
		From:        address{Email: m.sender, Name: m.senderName},
		To:          []address{{Email: m.receiver}},
		Subject:     subject,
		Text:        text,
		Attachments: attachments,
	})
	if err != nil {
		return fmt.Errorf("marshal mail: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.token)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send mail: status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}
