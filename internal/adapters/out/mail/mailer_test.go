// internal/adapters/out/mail/mailer_test.go
package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentagency/internal/application/usecase"
	orderdom "talentagency/internal/domain/order"
	appdom "talentagency/internal/domain/serviceapp"
)

type captureClient struct {
	sent []Message
	err  error
}

func (c *captureClient) Send(_ context.Context, msg Message) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func newTestMailer(t *testing.T) (*Mailer, *captureClient) {
	t.Helper()
	c := &captureClient{}
	m, err := NewMailer(c, "no-reply@agency.example", "Agency Shop", "orders@agency.example")
	require.NoError(t, err)
	return m, c
}

func paidOrder() orderdom.Order {
	return orderdom.Order{
		ID:     "ord-42",
		UserID: "user-1",
		Items: []orderdom.LineItem{
			{ProductID: "p1", Name: "Team Jersey <XL>", Price: 5000, Quantity: 2},
			{ProductID: "p2", Name: "Headset", Price: 1500, Quantity: 1},
		},
		Delivery: orderdom.Delivery{
			Name:    "Ada", Email: "ada@example.com", Phone: "0800",
			Address: "1 Main St", City: "Lagos", State: "LA",
		},
		Subtotal:         11500,
		Total:            11500,
		Currency:         "NGN",
		PaymentReference: "AGY-1-ABCDEF0123",
	}
}

func TestMailer_NotifyMerchant(t *testing.T) {
	m, c := newTestMailer(t)

	require.NoError(t, m.NotifyMerchant(context.Background(), paidOrder()))
	require.Len(t, c.sent, 1)

	msg := c.sent[0]
	assert.Equal(t, "orders@agency.example", msg.To)
	assert.Equal(t, "ada@example.com", msg.ReplyTo)
	assert.Equal(t, "no-reply@agency.example", msg.From)
	assert.Contains(t, msg.Subject, "ord-42")
	assert.Contains(t, msg.Subject, "NGN 115.00")
	assert.Contains(t, msg.HTML, "Team Jersey &lt;XL&gt;")
	assert.NotContains(t, msg.HTML, "<XL>")
	assert.Contains(t, msg.HTML, "NGN 100.00")
	assert.Contains(t, msg.HTML, "AGY-1-ABCDEF0123")
	assert.Contains(t, msg.HTML, "Lagos")
	assert.Contains(t, msg.Text, "Total NGN 115.00")
}

func TestMailer_NotifyCustomer(t *testing.T) {
	m, c := newTestMailer(t)

	require.NoError(t, m.NotifyCustomer(context.Background(), paidOrder()))
	require.Len(t, c.sent, 1)
	assert.Equal(t, "ada@example.com", c.sent[0].To)
	assert.Equal(t, "Ada", c.sent[0].ToName)
	assert.Contains(t, c.sent[0].HTML, "Hi Ada")

	o := paidOrder()
	o.Delivery.Email = " "
	assert.ErrorIs(t, m.NotifyCustomer(context.Background(), o), ErrNoRecipient)
}

func TestMailer_Contact(t *testing.T) {
	m, c := newTestMailer(t)
	msg := usecase.ContactMessage{
		Name:    "Sam",
		Email:   "sam@example.com",
		Subject: "Sponsorship",
		Message: "<b>hello</b>",
	}

	require.NoError(t, m.NotifyContact(context.Background(), msg))
	require.NoError(t, m.AutoReplyContact(context.Background(), msg))
	require.Len(t, c.sent, 2)

	assert.Equal(t, "orders@agency.example", c.sent[0].To)
	assert.Equal(t, "sam@example.com", c.sent[0].ReplyTo)
	assert.Equal(t, "Contact form: Sponsorship", c.sent[0].Subject)
	assert.Contains(t, c.sent[0].HTML, "&lt;b&gt;hello&lt;/b&gt;")

	assert.Equal(t, "sam@example.com", c.sent[1].To)
	assert.Contains(t, c.sent[1].HTML, "Hi Sam")
}

func TestMailer_Application(t *testing.T) {
	m, c := newTestMailer(t)
	a := appdom.Application{
		ID:   "app-1", ServiceID: "coaching", ServiceName: "Coaching",
		Name: "Kim", Email: "kim@example.com", Status: appdom.StatusPending,
	}

	require.NoError(t, m.NotifyApplication(context.Background(), a))
	require.NoError(t, m.AutoReplyApplication(context.Background(), a))
	require.Len(t, c.sent, 2)
	assert.Contains(t, c.sent[0].HTML, "Coaching")
	assert.Contains(t, c.sent[0].HTML, "app-1")
	assert.Equal(t, "kim@example.com", c.sent[1].To)
	assert.Contains(t, c.sent[1].Subject, "Coaching")
}

func TestMailer_ClientError(t *testing.T) {
	m, c := newTestMailer(t)
	c.err = errors.New("relay down")

	err := m.NotifyMerchant(context.Background(), paidOrder())
	assert.EqualError(t, err, "relay down")
}
