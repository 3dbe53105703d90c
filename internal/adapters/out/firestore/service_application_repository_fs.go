// internal/adapters/out/firestore/service_application_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	appdom "talentagency/internal/domain/serviceapp"
)

type ServiceApplicationRepositoryFS struct {
	Client *firestore.Client
}

func NewServiceApplicationRepositoryFS(client *firestore.Client) *ServiceApplicationRepositoryFS {
	return &ServiceApplicationRepositoryFS{Client: client}
}

func (r *ServiceApplicationRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("service-applications")
}

type serviceApplicationDoc struct {
	ServiceID   string    `firestore:"serviceId"`
	ServiceName string    `firestore:"serviceName"`
	Name        string    `firestore:"name"`
	Email       string    `firestore:"email"`
	Phone       string    `firestore:"phone,omitempty"`
	Message     string    `firestore:"message,omitempty"`
	Status      string    `firestore:"status"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

func (r *ServiceApplicationRepositoryFS) Create(ctx context.Context, a appdom.Application) (appdom.Application, error) {
	if r.Client == nil {
		return appdom.Application{}, errNilClient
	}
	ref := r.col().NewDoc()
	doc := serviceApplicationDoc{
		ServiceID:   a.ServiceID,
		ServiceName: a.ServiceName,
		Name:        a.Name,
		Email:       a.Email,
		Phone:       a.Phone,
		Message:     a.Message,
		Status:      string(a.Status),
		CreatedAt:   a.CreatedAt.UTC(),
	}
	if _, err := ref.Create(ctx, doc); err != nil {
		return appdom.Application{}, err
	}
	return toApplication(ref.ID, doc), nil
}

func (r *ServiceApplicationRepositoryFS) GetByID(ctx context.Context, id string) (appdom.Application, error) {
	if r.Client == nil {
		return appdom.Application{}, errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return appdom.Application{}, appdom.ErrNotFound
	}
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return appdom.Application{}, appdom.ErrNotFound
		}
		return appdom.Application{}, err
	}
	var d serviceApplicationDoc
	if err := snap.DataTo(&d); err != nil {
		return appdom.Application{}, err
	}
	return toApplication(snap.Ref.ID, d), nil
}

func (r *ServiceApplicationRepositoryFS) List(ctx context.Context) ([]appdom.Application, error) {
	if r.Client == nil {
		return nil, errNilClient
	}
	it := r.col().OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer it.Stop()

	out := []appdom.Application{}
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		var d serviceApplicationDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, err
		}
		out = append(out, toApplication(snap.Ref.ID, d))
	}
	return out, nil
}

func toApplication(id string, d serviceApplicationDoc) appdom.Application {
	st := appdom.Status(d.Status)
	if st == "" {
		st = appdom.StatusPending
	}
	return appdom.Application{
		ID:          id,
		ServiceID:   d.ServiceID,
		ServiceName: d.ServiceName,
		Name:        d.Name,
		Email:       d.Email,
		Phone:       d.Phone,
		Message:     d.Message,
		Status:      st,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}
