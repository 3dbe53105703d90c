package usecase

import (
	"context"
	"strconv"
	"sync"
	"testing"

	appdom "talentagency/internal/domain/serviceapp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memApplications struct {
	mu   sync.Mutex
	apps []appdom.Application
	err  error
}

func (m *memApplications) Create(_ context.Context, a appdom.Application) (appdom.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return appdom.Application{}, m.err
	}
	a.ID = "app-" + strconv.Itoa(len(m.apps)+1)
	m.apps = append(m.apps, a)
	return a, nil
}

func (m *memApplications) GetByID(_ context.Context, id string) (appdom.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.apps {
		if a.ID == id {
			return a, nil
		}
	}
	return appdom.Application{}, appdom.ErrNotFound
}

func (m *memApplications) List(_ context.Context) ([]appdom.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]appdom.Application, len(m.apps))
	for i := range m.apps {
		out[len(m.apps)-1-i] = m.apps[i]
	}
	return out, nil
}

func TestContactUsecase_Send(t *testing.T) {
	ctx := context.Background()
	n := &fakeNotifier{}
	uc := NewContactUsecase(n)

	replied, err := uc.Send(ctx, ContactMessage{Name: " Tobi ", Email: "tobi@example.com", Message: "Sponsorship?"})
	require.NoError(t, err)
	assert.True(t, replied)
	require.Len(t, n.contacts, 1)
	assert.Equal(t, "Tobi", n.contacts[0].Name)

	_, err = uc.Send(ctx, ContactMessage{Name: "x", Email: "not-an-email", Message: "m"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestContactUsecase_Send_Failures(t *testing.T) {
	ctx := context.Background()
	msg := ContactMessage{Name: "Tobi", Email: "tobi@example.com", Message: "hello"}

	n := &fakeNotifier{autoErr: errBoom}
	replied, err := NewContactUsecase(n).Send(ctx, msg)
	require.NoError(t, err, "auto-reply is best effort")
	assert.False(t, replied)

	n = &fakeNotifier{contactErr: errBoom}
	_, err = NewContactUsecase(n).Send(ctx, msg)
	assert.ErrorIs(t, err, ErrMailDelivery)

	_, err = NewContactUsecase(nil).Send(ctx, msg)
	assert.ErrorIs(t, err, ErrMailDelivery)
}

func TestServiceApplicationUsecase(t *testing.T) {
	ctx := context.Background()
	repo := &memApplications{}
	n := &fakeNotifier{contactErr: errBoom}
	uc := NewServiceApplicationUsecase(repo, n, fixedClock())

	_, err := uc.Submit(ctx, ServiceApplicationInput{Name: "Kemi", Email: "kemi@example.com"})
	assert.ErrorIs(t, err, ErrValidation, "a service id or name is required")

	a, err := uc.Submit(ctx, ServiceApplicationInput{ServiceName: "Team Management", Name: "Kemi", Email: "kemi@example.com"})
	require.NoError(t, err, "email failures do not fail the submission")
	assert.Equal(t, appdom.StatusPending, a.Status)
	assert.Len(t, n.autoApps, 1)

	_, err = uc.List(ctx, buyer)
	assert.ErrorIs(t, err, ErrForbidden)
	list, err := uc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	got, err := uc.Get(ctx, admin, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Team Management", got.ServiceName)
}
