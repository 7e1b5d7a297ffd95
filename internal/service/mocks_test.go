package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lewismosage/acna-sub000/internal/model"
	"github.com/lewismosage/acna-sub000/internal/payments"
	"github.com/lewismosage/acna-sub000/internal/repository"
)

// In-memory fakes mirroring the repository transaction semantics, so the
// services can be exercised without a database.

type fakeStore struct {
	workshops map[string]*model.Workshop
	regs      []model.Registration
	pays      map[string]*model.Payment // keyed by provider session id
	nextID    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		workshops: map[string]*model.Workshop{},
		pays:      map[string]*model.Payment{},
	}
}

func (f *fakeStore) id() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeStore) addWorkshop(w model.Workshop) *model.Workshop {
	if w.ID == "" {
		w.ID = f.id()
	}
	if w.Currency == "" {
		w.Currency = "usd"
	}
	cp := w
	f.workshops[w.ID] = &cp
	return &cp
}

// WorkshopStore

func (f *fakeStore) Create(ctx context.Context, req model.CreateWorkshopRequest) (*model.Workshop, error) {
	w := f.addWorkshop(model.Workshop{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Capacity:    req.Capacity,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		Status:      model.WorkshopDraft,
	})
	return w, nil
}

func (f *fakeStore) List(ctx context.Context, filter repository.ListFilter) ([]model.Workshop, error) {
	var out []model.Workshop
	for _, w := range f.workshops {
		if filter.Status != nil && w.Status != *filter.Status {
			continue
		}
		if filter.Featured != nil && w.Featured != *filter.Featured {
			continue
		}
		out = append(out, *w)
	}
	return out, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*model.Workshop, error) {
	w, ok := f.workshops[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (f *fakeStore) TransitionStatus(ctx context.Context, id string, from, to model.WorkshopStatus) error {
	w, ok := f.workshops[id]
	if !ok {
		return repository.ErrNotFound
	}
	if w.Status != from {
		return model.ErrInvalidTransition
	}
	w.Status = to
	return nil
}

func (f *fakeStore) ToggleFeatured(ctx context.Context, id string) (bool, error) {
	w, ok := f.workshops[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	w.Featured = !w.Featured
	return w.Featured, nil
}

// RegistrationStore

func (f *fakeStore) RegisterFree(ctx context.Context, workshopID string, att model.AttendeeRequest) (*model.Registration, error) {
	w, ok := f.workshops[workshopID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if w.Status != model.WorkshopOpen {
		return nil, repository.ErrWorkshopNotOpen
	}
	if w.Registered >= w.Capacity {
		return nil, repository.ErrWorkshopFull
	}
	if f.hasRegistration(workshopID, att.Email) {
		return nil, repository.ErrAlreadyRegistered
	}
	reg := model.Registration{
		ID:            f.id(),
		WorkshopID:    workshopID,
		FullName:      att.FullName,
		Email:         att.Email,
		Organization:  att.Organization,
		PaymentStatus: model.PaymentFree,
		CreatedAt:     time.Now().UTC(),
	}
	f.regs = append(f.regs, reg)
	w.Registered++
	return &reg, nil
}

func (f *fakeStore) Exists(ctx context.Context, workshopID, email string) (bool, error) {
	return f.hasRegistration(workshopID, email), nil
}

func (f *fakeStore) ListByWorkshop(ctx context.Context, workshopID string) ([]model.Registration, error) {
	var out []model.Registration
	for _, r := range f.regs {
		if r.WorkshopID == workshopID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) hasRegistration(workshopID, email string) bool {
	for _, r := range f.regs {
		if r.WorkshopID == workshopID && r.Email == email {
			return true
		}
	}
	return false
}

// PaymentStore

func (f *fakeStore) FinalizeCheckout(ctx context.Context, p repository.FinalizeParams) (*model.Registration, *model.Payment, bool, error) {
	if pay, ok := f.pays[p.SessionID]; ok {
		for i := range f.regs {
			if f.regs[i].ID == pay.RegistrationID {
				return &f.regs[i], pay, true, nil
			}
		}
		return nil, pay, true, nil
	}
	w, ok := f.workshops[p.WorkshopID]
	if !ok {
		return nil, nil, false, repository.ErrNotFound
	}
	if w.Registered >= w.Capacity {
		return nil, nil, false, repository.ErrWorkshopFull
	}
	if f.hasRegistration(p.WorkshopID, p.Attendee.Email) {
		return nil, nil, false, repository.ErrAlreadyRegistered
	}
	reg := model.Registration{
		ID:            f.id(),
		WorkshopID:    p.WorkshopID,
		FullName:      p.Attendee.FullName,
		Email:         p.Attendee.Email,
		Organization:  p.Attendee.Organization,
		PaymentStatus: model.PaymentPaid,
		AmountCents:   p.AmountCents,
		CreatedAt:     time.Now().UTC(),
	}
	f.regs = append(f.regs, reg)
	pay := &model.Payment{
		ID:                f.id(),
		RegistrationID:    reg.ID,
		WorkshopID:        p.WorkshopID,
		ProviderSessionID: p.SessionID,
		AmountCents:       p.AmountCents,
		Currency:          p.Currency,
		Status:            model.PaymentSucceeded,
		CreatedAt:         time.Now().UTC(),
	}
	f.pays[p.SessionID] = pay
	w.Registered++
	return &f.regs[len(f.regs)-1], pay, false, nil
}

func (f *fakeStore) InvoiceBySessionID(ctx context.Context, sessionID string) (*model.Invoice, error) {
	pay, ok := f.pays[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	inv := &model.Invoice{Payment: *pay}
	for _, r := range f.regs {
		if r.ID == pay.RegistrationID {
			inv.AttendeeName = r.FullName
			inv.AttendeeEmail = r.Email
			inv.Organization = r.Organization
		}
	}
	if w, ok := f.workshops[pay.WorkshopID]; ok {
		inv.WorkshopTitle = w.Title
		inv.WorkshopDate = w.Date
	}
	return inv, nil
}

// NewsStore

type fakeNewsStore struct {
	posts  map[string]*model.NewsPost
	nextID int
}

func newFakeNewsStore() *fakeNewsStore {
	return &fakeNewsStore{posts: map[string]*model.NewsPost{}}
}

func (f *fakeNewsStore) Create(ctx context.Context, req model.CreateNewsRequest) (*model.NewsPost, error) {
	f.nextID++
	n := &model.NewsPost{
		ID:     fmt.Sprintf("news-%d", f.nextID),
		Title:  req.Title,
		Body:   req.Body,
		Status: model.NewsDraft,
	}
	f.posts[n.ID] = n
	cp := *n
	return &cp, nil
}

func (f *fakeNewsStore) List(ctx context.Context, filter repository.NewsFilter) ([]model.NewsPost, error) {
	var out []model.NewsPost
	for _, n := range f.posts {
		if filter.Status != nil && n.Status != *filter.Status {
			continue
		}
		if filter.Featured != nil && n.Featured != *filter.Featured {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (f *fakeNewsStore) GetAndCountView(ctx context.Context, id string) (*model.NewsPost, error) {
	n, ok := f.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	n.ViewCount++
	cp := *n
	return &cp, nil
}

func (f *fakeNewsStore) GetByID(ctx context.Context, id string) (*model.NewsPost, error) {
	n, ok := f.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNewsStore) Update(ctx context.Context, id string, req model.UpdateNewsRequest) (*model.NewsPost, error) {
	n, ok := f.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	n.Title, n.Body = req.Title, req.Body
	cp := *n
	return &cp, nil
}

func (f *fakeNewsStore) TransitionStatus(ctx context.Context, id string, from, to model.NewsStatus) (*model.NewsPost, error) {
	n, ok := f.posts[id]
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

func (f *fakeNewsStore) ToggleFeatured(ctx context.Context, id string) (bool, error) {
	n, ok := f.posts[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	n.Featured = !n.Featured
	return n.Featured, nil
}

// Other fakes

type recordingMailer struct {
	confirmations int
	receipts      int
	fail          error
}

func (m *recordingMailer) SendRegistrationConfirmation(model.Registration, model.Workshop) error {
	m.confirmations++
	return m.fail
}

func (m *recordingMailer) SendPaymentReceipt(model.Registration, model.Workshop, model.Payment) error {
	m.receipts++
	return m.fail
}

type fakeProvider struct {
	lastParams payments.SessionParams
	session    *model.CheckoutSession
	createErr  error
	event      *payments.Event
	parseErr   error
}

func (p *fakeProvider) CreateSession(ctx context.Context, in payments.SessionParams) (*model.CheckoutSession, error) {
	p.lastParams = in
	if p.createErr != nil {
		return nil, p.createErr
	}
	if p.session != nil {
		return p.session, nil
	}
	return &model.CheckoutSession{SessionID: "cs_fake_1", URL: "https://checkout.example/cs_fake_1"}, nil
}

func (p *fakeProvider) ParseEvent(payload []byte, sigHeader string) (*payments.Event, error) {
	if p.parseErr != nil {
		return nil, p.parseErr
	}
	return p.event, nil
}

type fakeUserStore struct {
	users map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*model.User{}}
}

func (f *fakeUserStore) Create(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	if _, ok := f.users[email]; ok {
		return nil, repository.ErrDuplicateEmail
	}
	u := &model.User{
		ID:           fmt.Sprintf("user-%d", len(f.users)+1),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	f.users[email] = u
	return u, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}
