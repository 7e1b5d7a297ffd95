package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/lewismosage/acna-sub000/internal/model"
	"github.com/lewismosage/acna-sub000/internal/payments"
	"github.com/lewismosage/acna-sub000/internal/repository"
)

// memStore is an in-memory stand-in for the workshop, registration and
// payment repositories, mirroring their transaction semantics.
type memStore struct {
	workshops map[string]*model.Workshop
	regs      []model.Registration
	pays      map[string]*model.Payment
	nextID    int
}

func newMemStore() *memStore {
	return &memStore{
		workshops: map[string]*model.Workshop{},
		pays:      map[string]*model.Payment{},
	}
}

func (m *memStore) id() string {
	m.nextID++
	return fmt.Sprintf("id-%d", m.nextID)
}

func (m *memStore) addWorkshop(w model.Workshop) *model.Workshop {
	if w.ID == "" {
		w.ID = m.id()
	}
	if w.Currency == "" {
		w.Currency = "usd"
	}
	cp := w
	m.workshops[w.ID] = &cp
	return &cp
}

func (m *memStore) Create(ctx context.Context, req model.CreateWorkshopRequest) (*model.Workshop, error) {
	return m.addWorkshop(model.Workshop{
		Title:      req.Title,
		Date:       req.Date,
		Capacity:   req.Capacity,
		PriceCents: req.PriceCents,
		Currency:   req.Currency,
		Status:     model.WorkshopDraft,
	}), nil
}

func (m *memStore) List(ctx context.Context, f repository.ListFilter) ([]model.Workshop, error) {
	var out []model.Workshop
	for _, w := range m.workshops {
		if f.Status != nil && w.Status != *f.Status {
			continue
		}
		if f.Featured != nil && w.Featured != *f.Featured {
			continue
		}
		out = append(out, *w)
	}
	return out, nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*model.Workshop, error) {
	w, ok := m.workshops[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *memStore) TransitionStatus(ctx context.Context, id string, from, to model.WorkshopStatus) error {
	w, ok := m.workshops[id]
	if !ok {
		return repository.ErrNotFound
	}
	if w.Status != from {
		return model.ErrInvalidTransition
	}
	w.Status = to
	return nil
}

func (m *memStore) ToggleFeatured(ctx context.Context, id string) (bool, error) {
	w, ok := m.workshops[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	w.Featured = !w.Featured
	return w.Featured, nil
}

func (m *memStore) RegisterFree(ctx context.Context, workshopID string, att model.AttendeeRequest) (*model.Registration, error) {
	w, ok := m.workshops[workshopID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if w.Status != model.WorkshopOpen {
		return nil, repository.ErrWorkshopNotOpen
	}
	if w.Registered >= w.Capacity {
		return nil, repository.ErrWorkshopFull
	}
	if m.hasRegistration(workshopID, att.Email) {
		return nil, repository.ErrAlreadyRegistered
	}
	reg := model.Registration{
		ID: m.id(), WorkshopID: workshopID,
		FullName: att.FullName, Email: att.Email,
		PaymentStatus: model.PaymentFree,
		CreatedAt:     time.Now().UTC(),
	}
	m.regs = append(m.regs, reg)
	w.Registered++
	return &reg, nil
}

func (m *memStore) Exists(ctx context.Context, workshopID, email string) (bool, error) {
	return m.hasRegistration(workshopID, email), nil
}

func (m *memStore) ListByWorkshop(ctx context.Context, workshopID string) ([]model.Registration, error) {
	var out []model.Registration
	for _, r := range m.regs {
		if r.WorkshopID == workshopID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) hasRegistration(workshopID, email string) bool {
	for _, r := range m.regs {
		if r.WorkshopID == workshopID && r.Email == email {
			return true
		}
	}
	return false
}

func (m *memStore) FinalizeCheckout(ctx context.Context, p repository.FinalizeParams) (*model.Registration, *model.Payment, bool, error) {
	if pay, ok := m.pays[p.SessionID]; ok {
		for i := range m.regs {
			if m.regs[i].ID == pay.RegistrationID {
				return &m.regs[i], pay, true, nil
			}
		}
		return nil, pay, true, nil
	}
	w, ok := m.workshops[p.WorkshopID]
	if !ok {
		return nil, nil, false, repository.ErrNotFound
	}
	if w.Registered >= w.Capacity {
		return nil, nil, false, repository.ErrWorkshopFull
	}
	if m.hasRegistration(p.WorkshopID, p.Attendee.Email) {
		return nil, nil, false, repository.ErrAlreadyRegistered
	}
	reg := model.Registration{
		ID: m.id(), WorkshopID: p.WorkshopID,
		FullName: p.Attendee.FullName, Email: p.Attendee.Email,
		Organization:  p.Attendee.Organization,
		PaymentStatus: model.PaymentPaid,
		AmountCents:   p.AmountCents,
		CreatedAt:     time.Now().UTC(),
	}
	m.regs = append(m.regs, reg)
	pay := &model.Payment{
		ID: m.id(), RegistrationID: reg.ID, WorkshopID: p.WorkshopID,
		ProviderSessionID: p.SessionID,
		AmountCents:       p.AmountCents, Currency: p.Currency,
		Status:    model.PaymentSucceeded,
		CreatedAt: time.Now().UTC(),
	}
	m.pays[p.SessionID] = pay
	w.Registered++
	return &m.regs[len(m.regs)-1], pay, false, nil
}

func (m *memStore) InvoiceBySessionID(ctx context.Context, sessionID string) (*model.Invoice, error) {
	pay, ok := m.pays[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	inv := &model.Invoice{Payment: *pay}
	for _, r := range m.regs {
		if r.ID == pay.RegistrationID {
			inv.AttendeeName = r.FullName
			inv.AttendeeEmail = r.Email
			inv.Organization = r.Organization
		}
	}
	if w, ok := m.workshops[pay.WorkshopID]; ok {
		inv.WorkshopTitle = w.Title
		inv.WorkshopDate = w.Date
	}
	return inv, nil
}

// memNewsStore is an in-memory news repository.
type memNewsStore struct {
	posts  map[string]*model.NewsPost
	nextID int
}

func newMemNewsStore() *memNewsStore {
	return &memNewsStore{posts: map[string]*model.NewsPost{}}
}

func (m *memNewsStore) Create(ctx context.Context, req model.CreateNewsRequest) (*model.NewsPost, error) {
	m.nextID++
	n := &model.NewsPost{
		ID:     fmt.Sprintf("news-%d", m.nextID),
		Title:  req.Title,
		Body:   req.Body,
		Status: model.NewsDraft,
	}
	m.posts[n.ID] = n
	cp := *n
	return &cp, nil
}

func (m *memNewsStore) List(ctx context.Context, f repository.NewsFilter) ([]model.NewsPost, error) {
	var out []model.NewsPost
	for _, n := range m.posts {
		if f.Status != nil && n.Status != *f.Status {
			continue
		}
		if f.Featured != nil && n.Featured != *f.Featured {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (m *memNewsStore) GetAndCountView(ctx context.Context, id string) (*model.NewsPost, error) {
	n, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	n.ViewCount++
	cp := *n
	return &cp, nil
}

func (m *memNewsStore) GetByID(ctx context.Context, id string) (*model.NewsPost, error) {
	n, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *memNewsStore) Update(ctx context.Context, id string, req model.UpdateNewsRequest) (*model.NewsPost, error) {
	n, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	n.Title, n.Body = req.Title, req.Body
	cp := *n
	return &cp, nil
}

func (m *memNewsStore) TransitionStatus(ctx context.Context, id string, from, to model.NewsStatus) (*model.NewsPost, error) {
	n, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if n.Status != from {
		return nil, model.ErrInvalidTransition
	}
	n.Status = to
	if to == model.NewsPublished && n.PublishedAt == nil {
		now := time.Now().UTC()
		n.PublishedAt = &now
	}
	cp := *n
	return &cp, nil
}

func (m *memNewsStore) ToggleFeatured(ctx context.Context, id string) (bool, error) {
	n, ok := m.posts[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	n.Featured = !n.Featured
	return n.Featured, nil
}

// memUserStore is an in-memory user repository.
type memUserStore struct {
	users map[string]*model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[string]*model.User{}}
}

func (m *memUserStore) Create(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	if _, ok := m.users[email]; ok {
		return nil, repository.ErrDuplicateEmail
	}
	u := &model.User{
		ID:           fmt.Sprintf("user-%d", len(m.users)+1),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	m.users[email] = u
	return u, nil
}

func (m *memUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

// stubProvider is a canned payments.Provider for routes that never reach
// the real gateway in a test.
type stubProvider struct {
	session *model.CheckoutSession
	event   *payments.Event
	err     error
}

func (p *stubProvider) CreateSession(ctx context.Context, in payments.SessionParams) (*model.CheckoutSession, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.session != nil {
		return p.session, nil
	}
	return &model.CheckoutSession{SessionID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil
}

func (p *stubProvider) ParseEvent(payload []byte, sigHeader string) (*payments.Event, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.event, nil
}
