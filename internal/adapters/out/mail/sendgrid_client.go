// internal/adapters/out/mail/sendgrid_client.go
package mail

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sony/gobreaker/v2"

	"talentagency/internal/platform/breaker"
)

var (
	ErrNoAPIKey   = errors.New("mail: sendgrid api key is empty")
	ErrNoFrom     = errors.New("mail: from address is empty")
	ErrNoTo       = errors.New("mail: to address is empty")
	ErrSendFailed = errors.New("mail: sendgrid send failed")
)

// Message is one outbound email.
type Message struct {
	FromName string
	From     string
	To       string
	ToName   string
	ReplyTo  string
	Subject  string
	Text     string
	HTML     string
}

// EmailClient は実際のメール送信クライアントを抽象化したインターフェースです。
type EmailClient interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridClient implements EmailClient.
type SendGridClient struct {
	apiKey string
	cb     *gobreaker.CircuitBreaker[*rest.Response]
	send   func(ctx context.Context, m *sgmail.SGMailV3) (*rest.Response, error)
}

func NewSendGridClient(apiKey string) *SendGridClient {
	c := &SendGridClient{
		apiKey: strings.TrimSpace(apiKey),
		cb:     breaker.New[*rest.Response]("sendgrid"),
	}
	c.send = func(ctx context.Context, m *sgmail.SGMailV3) (*rest.Response, error) {
		return sendgrid.NewSendClient(c.apiKey).SendWithContext(ctx, m)
	}
	return c
}

// Send sends an email using SendGrid. 4xx/5xx responses count as failures for
// the circuit breaker.
func (c *SendGridClient) Send(ctx context.Context, msg Message) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}
	if strings.TrimSpace(msg.From) == "" {
		return ErrNoFrom
	}
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoTo
	}

	m := buildSGMail(msg)

	resp, err := c.cb.Execute(func() (*rest.Response, error) {
		resp, err := c.send(ctx, m)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			return resp, fmt.Errorf("%w: status=%d body=%s", ErrSendFailed, resp.StatusCode, resp.Body)
		}
		return resp, nil
	})
	if err != nil {
		log.Printf("[sendgrid] send error to=%s subject=%q err=%v", maskEmail(msg.To), msg.Subject, err)
		return err
	}

	log.Printf("[sendgrid] mail sent: status=%d to=%s subject=%q", resp.StatusCode, maskEmail(msg.To), msg.Subject)
	return nil
}

func buildSGMail(msg Message) *sgmail.SGMailV3 {
	from := sgmail.NewEmail(msg.FromName, strings.TrimSpace(msg.From))
	to := sgmail.NewEmail(msg.ToName, strings.TrimSpace(msg.To))

	text := msg.Text
	if text == "" {
		text = msg.Subject
	}
	m := sgmail.NewSingleEmail(from, msg.Subject, to, text, msg.HTML)
	if rt := strings.TrimSpace(msg.ReplyTo); rt != "" {
		m.SetReplyTo(sgmail.NewEmail("", rt))
	}
	return m
}

// maskEmail keeps the first character of the local part: a***@example.com
func maskEmail(addr string) string {
	addr = strings.TrimSpace(addr)
	at := strings.Index(addr, "@")
	if at <= 0 {
		return "***"
	}
	return addr[:1] + "***" + addr[at:]
}
