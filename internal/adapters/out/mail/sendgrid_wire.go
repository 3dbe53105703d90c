// internal/adapters/out/mail/sendgrid_wire.go
package mail

import (
	"log"
	"strings"
)

// NewMailerWithSendGrid は SendGrid を使った Mailer を生成します。
// An empty key or sender is logged and the mailer is still returned; every send
// then fails with ErrNoAPIKey / ErrNoFrom and the callers treat it as a
// notification warning.
func NewMailerWithSendGrid(apiKey, fromAddr, fromName, merchantEmail string) (*Mailer, error) {
	if strings.TrimSpace(apiKey) == "" {
		log.Printf("[mail] WARN: SENDGRID_API_KEY is empty. Mailer will fail to send mail.")
	}
	if strings.TrimSpace(fromAddr) == "" {
		log.Printf("[mail] WARN: MAIL_FROM is empty. Mailer will fail to send mail.")
	}
	if strings.TrimSpace(merchantEmail) == "" {
		log.Printf("[mail] WARN: MERCHANT_EMAIL is empty. merchant copies will not be delivered.")
	}

	mailer, err := NewMailer(NewSendGridClient(apiKey), fromAddr, fromName, merchantEmail)
	if err != nil {
		return nil, err
	}

	log.Printf("[mail] MailerWithSendGrid initialized. from=%s merchant=%s", fromAddr, maskEmail(merchantEmail))
	return mailer, nil
}
