// internal/domain/serviceapp/entity.go
package serviceapp

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Status string

// StatusPending is the only status the system ever writes.
const StatusPending Status = "pending"

var (
	ErrInvalidService = errors.New("serviceapp: invalid service")
	ErrInvalidName    = errors.New("serviceapp: invalid name")
	ErrInvalidEmail   = errors.New("serviceapp: invalid email")
	ErrNotFound       = errors.New("serviceapp: not found")
)

// Application is a visitor's request for one of the agency's services.
type Application struct {
	ID          string    `json:"id"`
	ServiceID   string    `json:"serviceId"`
	ServiceName string    `json:"serviceName"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Message     string    `json:"message,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func New(serviceID, serviceName, name, email, phone, message string, now time.Time) (Application, error) {
	a := Application{
		ServiceID:   strings.TrimSpace(serviceID),
		ServiceName: strings.TrimSpace(serviceName),
		Name:        strings.TrimSpace(name),
		Email:       strings.TrimSpace(email),
		Phone:       strings.TrimSpace(phone),
		Message:     strings.TrimSpace(message),
		Status:      StatusPending,
		CreatedAt:   now.UTC(),
	}
	if a.ServiceID == "" && a.ServiceName == "" {
		return Application{}, ErrInvalidService
	}
	if a.Name == "" {
		return Application{}, ErrInvalidName
	}
	if a.Email == "" {
		return Application{}, ErrInvalidEmail
	}
	return a, nil
}

// Repository persists applications in service-applications/{autoId}.
type Repository interface {
	Create(ctx context.Context, a Application) (Application, error)
	GetByID(ctx context.Context, id string) (Application, error)
	// List returns newest first.
	List(ctx context.Context) ([]Application, error)
}
