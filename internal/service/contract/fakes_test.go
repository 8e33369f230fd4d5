package contract

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"

	"studioflow/internal/domain"
	"studioflow/internal/domain/models"
	contractModels "studioflow/internal/domain/models/contract"
	contractRepo "studioflow/internal/domain/repositories/contract"
)

// memContracts stores JSON copies so callers never share memory with the store
type memContracts struct {
	mu   sync.Mutex
	docs map[string][]byte
	puts int
}

func newMemContracts() *memContracts {
	return &memContracts{docs: make(map[string][]byte)}
}

func (r *memContracts) decode(data []byte) *contractModels.Contract {
	var c contractModels.Contract
	if err := json.Unmarshal(data, &c); err != nil {
		panic(err)
	}
	return &c
}

func (r *memContracts) Create(ctx context.Context, c *contractModels.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Revision = 1
	data, _ := json.Marshal(c)
	r.docs[c.ID] = data
	return nil
}

func (r *memContracts) Get(ctx context.Context, id, organizationID string) (*contractModels.Contract, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.OrganizationID != organizationID {
		return nil, &domain.NotFoundError{Message: "contract not found"}
	}
	return c, nil
}

func (r *memContracts) GetByID(ctx context.Context, id string) (*contractModels.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.docs[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "contract not found"}
	}
	return r.decode(data), nil
}

func (r *memContracts) List(ctx context.Context, organizationID string) ([]contractModels.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []contractModels.Contract{}
	for _, data := range r.docs {
		if c := r.decode(data); c.OrganizationID == organizationID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memContracts) Put(ctx context.Context, c *contractModels.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.docs[c.ID]
	if !ok {
		return &domain.NotFoundError{Message: "contract not found"}
	}
	if stored := r.decode(data); stored.Revision != c.Revision {
		return &domain.ConflictError{Message: "contract was modified concurrently", ResourceType: "contract", ResourceID: c.ID}
	}
	c.Revision++
	data, _ = json.Marshal(c)
	r.docs[c.ID] = data
	r.puts++
	return nil
}

func (r *memContracts) Subscribe(ctx context.Context, organizationID string, onChange contractRepo.ChangeFunc, onError contractRepo.ErrorFunc) (func(), error) {
	return func() {}, nil
}

type memClients struct {
	mu      sync.Mutex
	clients map[string]models.Client
}

func newMemClients(cs ...models.Client) *memClients {
	r := &memClients{clients: make(map[string]models.Client)}
	for _, c := range cs {
		r.clients[c.ID] = c
	}
	return r
}

func (r *memClients) Create(ctx context.Context, c *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	r.clients[c.ID] = *c
	return nil
}

func (r *memClients) Get(ctx context.Context, id, organizationID string) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok || c.OrganizationID != organizationID {
		return nil, &domain.NotFoundError{Message: "client not found"}
	}
	return &c, nil
}

func (r *memClients) List(ctx context.Context, organizationID string) ([]models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Client
	for _, c := range r.clients {
		if c.OrganizationID == organizationID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memClients) Put(ctx context.Context, c *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID] = *c
	return nil
}

type memNotifications struct {
	mu    sync.Mutex
	items []models.Notification
}

func (r *memNotifications) Create(ctx context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = uuid.NewString()
	r.items = append(r.items, *n)
	return nil
}

func (r *memNotifications) List(ctx context.Context, organizationID string, unreadOnly bool) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification(nil), r.items...), nil
}

func (r *memNotifications) MarkRead(ctx context.Context, id, organizationID string) error {
	return nil
}

// inlineWork runs the function directly; the fakes have nothing to roll back
type inlineWork struct{}

func (inlineWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type testDeps struct {
	Dependencies
	contracts     *memContracts
	clients       *memClients
	notifications *memNotifications
}

func newTestDeps() testDeps {
	contracts := newMemContracts()
	clients := newMemClients(models.Client{
		ID:             "client-1",
		OrganizationID: "org-1",
		Name:           "Jordan",
		Email:          "jordan@example.com",
		Status:         models.ClientWarm,
	})
	notifications := &memNotifications{}
	return testDeps{
		Dependencies: Dependencies{
			Contracts:     contracts,
			Clients:       clients,
			Notifications: notifications,
			Work:          inlineWork{},
			Now:           fixedClock,
		},
		contracts:     contracts,
		clients:       clients,
		notifications: notifications,
	}
}
