// internal/application/usecase/service_application_usecase.go
package usecase

import (
	"context"
	"log"
	"strings"

	authdom "talentagency/internal/domain/auth"
	appdom "talentagency/internal/domain/serviceapp"
)

// ServiceApplicationInput is the public application form.
type ServiceApplicationInput struct {
	ServiceID   string `json:"serviceId" validate:"required_without=ServiceName,max=100"`
	ServiceName string `json:"serviceName" validate:"required_without=ServiceID,max=200"`
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"omitempty,max=20"`
	Message     string `json:"message" validate:"max=5000"`
}

func (in *ServiceApplicationInput) normalize() {
	in.ServiceID = strings.TrimSpace(in.ServiceID)
	in.ServiceName = strings.TrimSpace(in.ServiceName)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Message = strings.TrimSpace(in.Message)
}

type ServiceApplicationUsecase struct {
	repo     appdom.Repository
	notifier InquiryNotifier
	clock    Clock
}

func NewServiceApplicationUsecase(repo appdom.Repository, notifier InquiryNotifier, clock Clock) *ServiceApplicationUsecase {
	return &ServiceApplicationUsecase{repo: repo, notifier: notifier, clock: clockOrSystem(clock)}
}

// Submit stores a pending application, then sends the merchant copy and the
// auto-reply. Email failures are logged; the stored application stands.
func (uc *ServiceApplicationUsecase) Submit(ctx context.Context, in ServiceApplicationInput) (appdom.Application, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		return appdom.Application{}, err
	}
	a, err := appdom.New(in.ServiceID, in.ServiceName, in.Name, in.Email, in.Phone, in.Message, uc.clock.Now())
	if err != nil {
		return appdom.Application{}, err
	}
	created, err := uc.repo.Create(ctx, a)
	if err != nil {
		return appdom.Application{}, err
	}

	if uc.notifier != nil {
		if err := uc.notifier.NotifyApplication(ctx, created); err != nil {
			log.Printf("[service_application_uc] merchant copy failed id=%s err=%v", created.ID, err)
		}
		if err := uc.notifier.AutoReplyApplication(ctx, created); err != nil {
			log.Printf("[service_application_uc] auto-reply failed id=%s err=%v", created.ID, err)
		}
	}
	return created, nil
}

// List returns every application, newest first. Admin only.
func (uc *ServiceApplicationUsecase) List(ctx context.Context, caller authdom.Identity) ([]appdom.Application, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return uc.repo.List(ctx)
}

func (uc *ServiceApplicationUsecase) Get(ctx context.Context, caller authdom.Identity, id string) (appdom.Application, error) {
	if err := requireAdmin(caller); err != nil {
		return appdom.Application{}, err
	}
	return uc.repo.GetByID(ctx, strings.TrimSpace(id))
}
