// internal/application/usecase/inquiry_ports.go
package usecase

import (
	"context"

	appdom "talentagency/internal/domain/serviceapp"
)

// InquiryNotifier sends the merchant copy and the visitor auto-reply for the
// contact form and for service applications.
type InquiryNotifier interface {
	NotifyContact(ctx context.Context, msg ContactMessage) error
	AutoReplyContact(ctx context.Context, msg ContactMessage) error
	NotifyApplication(ctx context.Context, a appdom.Application) error
	AutoReplyApplication(ctx context.Context, a appdom.Application) error
}
