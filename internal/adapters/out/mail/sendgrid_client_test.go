// internal/adapters/out/mail/sendgrid_client_test.go
package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/sendgrid/rest"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubClient(status int, err error) (*SendGridClient, *[]*sgmail.SGMailV3) {
	var got []*sgmail.SGMailV3
	c := NewSendGridClient("SG.test")
	c.send = func(_ context.Context, m *sgmail.SGMailV3) (*rest.Response, error) {
		got = append(got, m)
		if err != nil {
			return nil, err
		}
		return &rest.Response{StatusCode: status, Body: "{}"}, nil
	}
	return c, &got
}

func testMessage() Message {
	return Message{
		FromName: "Agency Shop",
		From:     "no-reply@agency.example",
		To:       "ada@example.com",
		ReplyTo:  "orders@agency.example",
		Subject:  "hello",
		Text:     "hi",
		HTML:     "<p>hi</p>",
	}
}

func TestSendGridClient_Send(t *testing.T) {
	c, got := stubClient(202, nil)

	require.NoError(t, c.Send(context.Background(), testMessage()))
	require.Len(t, *got, 1)

	m := (*got)[0]
	assert.Equal(t, "no-reply@agency.example", m.From.Address)
	assert.Equal(t, "hello", m.Subject)
	require.NotNil(t, m.ReplyTo)
	assert.Equal(t, "orders@agency.example", m.ReplyTo.Address)
	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "ada@example.com", m.Personalizations[0].To[0].Address)
}

func TestSendGridClient_Validation(t *testing.T) {
	c, got := stubClient(202, nil)

	msg := testMessage()
	msg.To = ""
	assert.ErrorIs(t, c.Send(context.Background(), msg), ErrNoTo)

	msg = testMessage()
	msg.From = " "
	assert.ErrorIs(t, c.Send(context.Background(), msg), ErrNoFrom)

	c.apiKey = ""
	assert.ErrorIs(t, c.Send(context.Background(), testMessage()), ErrNoAPIKey)
	assert.Empty(t, *got)
}

func TestSendGridClient_ErrorStatus(t *testing.T) {
	c, _ := stubClient(401, nil)

	err := c.Send(context.Background(), testMessage())
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.Contains(t, err.Error(), "status=401")
}

func TestSendGridClient_BreakerOpens(t *testing.T) {
	down := errors.New("dial tcp: connection refused")
	c, got := stubClient(0, down)

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, c.Send(context.Background(), testMessage()), down)
	}
	assert.ErrorIs(t, c.Send(context.Background(), testMessage()), gobreaker.ErrOpenState)
	assert.Len(t, *got, 5)
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "a***@example.com", maskEmail("ada@example.com"))
	assert.Equal(t, "***", maskEmail("nope"))
}
