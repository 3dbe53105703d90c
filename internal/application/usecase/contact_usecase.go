// internal/application/usecase/contact_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

var ErrMailDelivery = errors.New("mail: delivery failed")

// ContactMessage is the public contact form.
type ContactMessage struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,max=20"`
	Subject string `json:"subject" validate:"omitempty,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

func (m *ContactMessage) normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Phone = strings.TrimSpace(m.Phone)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Message = strings.TrimSpace(m.Message)
}

type ContactUsecase struct {
	notifier InquiryNotifier
}

func NewContactUsecase(notifier InquiryNotifier) *ContactUsecase {
	return &ContactUsecase{notifier: notifier}
}

// Send delivers the merchant copy, then a best-effort auto-reply.
// autoReplied reports whether the second email went out.
func (uc *ContactUsecase) Send(ctx context.Context, msg ContactMessage) (autoReplied bool, err error) {
	msg.normalize()
	if err := validateStruct(msg); err != nil {
		return false, err
	}
	if uc.notifier == nil {
		return false, ErrMailDelivery
	}
	if err := uc.notifier.NotifyContact(ctx, msg); err != nil {
		log.Printf("[contact_uc] merchant copy failed email=%s err=%v", msg.Email, err)
		return false, fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	if err := uc.notifier.AutoReplyContact(ctx, msg); err != nil {
		log.Printf("[contact_uc] auto-reply failed email=%s err=%v", msg.Email, err)
		return false, nil
	}
	return true, nil
}
