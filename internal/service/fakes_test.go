package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agendly/bookhub/internal/model"
	"agendly/bookhub/internal/repository"
)

// In-memory repository doubles. Mutating methods mirror the conditional SQL
// of the postgres implementations so concurrency behavior carries over.

type fakeSubscriberRepo struct {
	mu   sync.Mutex
	subs map[uuid.UUID]*model.Subscriber

	getErr       error
	incrementErr error
}

func newFakeSubscriberRepo() *fakeSubscriberRepo {
	return &fakeSubscriberRepo{subs: make(map[uuid.UUID]*model.Subscriber)}
}

func (r *fakeSubscriberRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	sub, ok := r.subs[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *sub
	return &cp, nil
}

func (r *fakeSubscriberRepo) Create(_ context.Context, sub *model.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.subs[sub.UserID]; exists {
		return errors.New("duplicate key value violates unique constraint")
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	cp := *sub
	r.subs[sub.UserID] = &cp
	return nil
}

func (r *fakeSubscriberRepo) IncrementUsage(_ context.Context, userID uuid.UUID, limit int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incrementErr != nil {
		return false, r.incrementErr
	}
	sub, ok := r.subs[userID]
	if !ok || sub.MonthlyAppointmentsUsed >= limit {
		return false, nil
	}
	sub.MonthlyAppointmentsUsed++
	return true, nil
}

func (r *fakeSubscriberRepo) DecrementUsage(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub, ok := r.subs[userID]; ok && sub.MonthlyAppointmentsUsed > 0 {
		sub.MonthlyAppointmentsUsed--
	}
	return nil
}

func (r *fakeSubscriberRepo) RolloverPeriod(_ context.Context, userID uuid.UUID, prevPeriodEnd, newStart, newEnd time.Time, limit int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[userID]
	if !ok || !sub.BillingPeriodEnd.Equal(prevPeriodEnd) {
		return false, nil
	}
	sub.MonthlyAppointmentsUsed = 0
	sub.MonthlyLimit = limit
	sub.BillingPeriodStart = newStart
	sub.BillingPeriodEnd = newEnd
	return true, nil
}

func (r *fakeSubscriberRepo) ApplyBillingUpdate(_ context.Context, userID uuid.UUID, tier model.Tier, subscribed bool, subscriptionEnd *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[userID]
	if !ok {
		return nil
	}
	sub.Tier = tier
	sub.Subscribed = subscribed
	sub.MonthlyLimit = model.LimitsFor(tier).MonthlyLimit
	sub.SubscriptionEnd = subscriptionEnd
	return nil
}

func (r *fakeSubscriberRepo) ResetExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rolled int64
	for _, sub := range r.subs {
		if !sub.BillingPeriodEnd.After(now) {
			sub.MonthlyAppointmentsUsed = 0
			sub.BillingPeriodStart = sub.BillingPeriodEnd
			sub.BillingPeriodEnd = sub.BillingPeriodEnd.AddDate(0, 1, 0)
			rolled++
		}
	}
	return rolled, nil
}

type fakeAffiliateRepo struct {
	mu        sync.Mutex
	codes     map[uuid.UUID]*model.ReferralCode
	referrals map[uuid.UUID]*model.Referral
	credits   map[uuid.UUID]*model.AffiliateCredit
	rewards   []*model.AffiliateReward

	createCodeErr error
}

func newFakeAffiliateRepo() *fakeAffiliateRepo {
	return &fakeAffiliateRepo{
		codes:     make(map[uuid.UUID]*model.ReferralCode),
		referrals: make(map[uuid.UUID]*model.Referral),
		credits:   make(map[uuid.UUID]*model.AffiliateCredit),
	}
}

func (r *fakeAffiliateRepo) GetCodeByUserID(_ context.Context, userID uuid.UUID) (*model.ReferralCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.codes[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *code
	return &cp, nil
}

func (r *fakeAffiliateRepo) GetCodeByCode(_ context.Context, code string) (*model.ReferralCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rc := range r.codes {
		if rc.ReferralCode == code {
			cp := *rc
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAffiliateRepo) CreateCode(_ context.Context, code *model.ReferralCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createCodeErr != nil {
		return r.createCodeErr
	}
	if _, exists := r.codes[code.UserID]; exists {
		return errors.New("duplicate key value violates unique constraint")
	}
	for _, rc := range r.codes {
		if rc.ReferralCode == code.ReferralCode {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	cp := *code
	r.codes[code.UserID] = &cp
	return nil
}

func (r *fakeAffiliateRepo) CreateReferral(_ context.Context, ref *model.Referral) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.referrals {
		if existing.ReferredUserID == ref.ReferredUserID {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	if ref.ID == uuid.Nil {
		ref.ID = uuid.New()
	}
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now()
	}
	cp := *ref
	r.referrals[ref.ID] = &cp
	return nil
}

func (r *fakeAffiliateRepo) GetReferralByID(_ context.Context, id uuid.UUID) (*model.Referral, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref, ok := r.referrals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ref
	return &cp, nil
}

func (r *fakeAffiliateRepo) GetReferralByReferredUser(_ context.Context, referredUserID uuid.UUID) (*model.Referral, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ref := range r.referrals {
		if ref.ReferredUserID == referredUserID {
			cp := *ref
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAffiliateRepo) ListReferralsByReferrer(_ context.Context, referrerUserID uuid.UUID) ([]model.Referral, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Referral
	for _, ref := range r.referrals {
		if ref.ReferrerUserID == referrerUserID {
			out = append(out, *ref)
		}
	}
	return out, nil
}

func (r *fakeAffiliateRepo) ListReferrals(_ context.Context) ([]model.Referral, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Referral
	for _, ref := range r.referrals {
		out = append(out, *ref)
	}
	return out, nil
}

func (r *fakeAffiliateRepo) ListPendingCreatedBefore(_ context.Context, cutoff time.Time) ([]model.Referral, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Referral
	for _, ref := range r.referrals {
		if ref.Status == model.ReferralStatusPending && ref.CreatedAt.Before(cutoff) {
			out = append(out, *ref)
		}
	}
	return out, nil
}

func (r *fakeAffiliateRepo) CountReferralsByReferrer(_ context.Context, referrerUserID uuid.UUID) (repository.ReferralCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var counts repository.ReferralCounts
	for _, ref := range r.referrals {
		if ref.ReferrerUserID != referrerUserID {
			continue
		}
		counts.Total++
		switch ref.Status {
		case model.ReferralStatusPending:
			counts.Pending++
		case model.ReferralStatusCompleted:
			counts.Completed++
		}
	}
	return counts, nil
}

func (r *fakeAffiliateRepo) EnsureCredits(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.credits[userID]; !ok {
		r.credits[userID] = &model.AffiliateCredit{ID: uuid.New(), UserID: userID}
	}
	return nil
}

func (r *fakeAffiliateRepo) GetCredits(_ context.Context, userID uuid.UUID) (*model.AffiliateCredit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	credit, ok := r.credits[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *credit
	return &cp, nil
}

func (r *fakeAffiliateRepo) CompleteReferral(_ context.Context, referralID uuid.UUID, creditsAward int, completedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref, ok := r.referrals[referralID]
	if !ok || ref.Status != model.ReferralStatusPending {
		return false, nil
	}
	ref.Status = model.ReferralStatusCompleted
	ref.CompletedAt = &completedAt
	credit, ok := r.credits[ref.ReferrerUserID]
	if !ok {
		credit = &model.AffiliateCredit{ID: uuid.New(), UserID: ref.ReferrerUserID}
		r.credits[ref.ReferrerUserID] = credit
	}
	credit.CreditsEarned += creditsAward
	return true, nil
}

func (r *fakeAffiliateRepo) RedeemCredits(_ context.Context, userID uuid.UUID, reward *model.AffiliateReward) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	credit, ok := r.credits[userID]
	if !ok || credit.CreditsEarned-credit.CreditsUsed < reward.CreditsCost {
		return false, nil
	}
	credit.CreditsUsed += reward.CreditsCost
	if reward.ID == uuid.Nil {
		reward.ID = uuid.New()
	}
	cp := *reward
	r.rewards = append(r.rewards, &cp)
	return true, nil
}

func (r *fakeAffiliateRepo) CreateReward(_ context.Context, reward *model.AffiliateReward) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reward.ID == uuid.Nil {
		reward.ID = uuid.New()
	}
	cp := *reward
	r.rewards = append(r.rewards, &cp)
	return nil
}

func (r *fakeAffiliateRepo) ListActiveRewards(_ context.Context, userID uuid.UUID, now time.Time) ([]model.AffiliateReward, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AffiliateReward
	for _, reward := range r.rewards {
		if reward.UserID == userID && reward.ActiveAt(now) {
			out = append(out, *reward)
		}
	}
	return out, nil
}

func (r *fakeAffiliateRepo) ExpireLapsedRewards(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var expired int64
	for _, reward := range r.rewards {
		if reward.Status == model.RewardStatusActive && reward.ExpiresAt != nil && !reward.ExpiresAt.After(now) {
			reward.Status = model.RewardStatusExpired
			expired++
		}
	}
	return expired, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) GetByPhone(_ context.Context, phone string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Phone == phone {
			cp := *user
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) MarkPhoneVerified(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		user.PhoneVerified = true
	}
	return nil
}

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*model.Appointment
	deleted      int

	createErr error
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, appt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	cp := *appt
	r.appointments[appt.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appointments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *appt
	return &cp, nil
}

func (r *fakeAppointmentRepo) ListByUser(_ context.Context, userID uuid.UUID, from, to *time.Time) ([]model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Appointment
	for _, appt := range r.appointments {
		if appt.UserID != userID {
			continue
		}
		if from != nil && appt.Date.Before(*from) {
			continue
		}
		if to != nil && appt.Date.After(*to) {
			continue
		}
		out = append(out, *appt)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, appt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *appt
	r.appointments[appt.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if appt, ok := r.appointments[id]; ok {
		appt.Status = status
	}
	return nil
}

func (r *fakeAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.appointments, id)
	r.deleted++
	return nil
}

func (r *fakeAppointmentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.appointments)
}

type fakeClientRepo struct {
	mu      sync.Mutex
	clients map[uuid.UUID]*model.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[uuid.UUID]*model.Client)}
}

func (r *fakeClientRepo) Upsert(_ context.Context, client *model.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.clients {
		if existing.UserID == client.UserID && existing.Phone == client.Phone {
			existing.Name = client.Name
			return nil
		}
	}
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	cp := *client
	r.clients[client.ID] = &cp
	return nil
}

func (r *fakeClientRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *client
	return &cp, nil
}

func (r *fakeClientRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Client
	for _, client := range r.clients {
		if client.UserID == userID {
			out = append(out, *client)
		}
	}
	return out, nil
}

func (r *fakeClientRepo) Update(_ context.Context, client *model.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *client
	r.clients[client.ID] = &cp
	return nil
}

func (r *fakeClientRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, id)
	return nil
}

type fakeBusinessRepo struct {
	mu         sync.Mutex
	businesses map[uuid.UUID]*model.Business
}

func newFakeBusinessRepo() *fakeBusinessRepo {
	return &fakeBusinessRepo{businesses: make(map[uuid.UUID]*model.Business)}
}

func (r *fakeBusinessRepo) Create(_ context.Context, business *model.Business) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if business.ID == uuid.Nil {
		business.ID = uuid.New()
	}
	cp := *business
	r.businesses[business.ID] = &cp
	return nil
}

func (r *fakeBusinessRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	business, ok := r.businesses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *business
	return &cp, nil
}

func (r *fakeBusinessRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, business := range r.businesses {
		if business.UserID == userID {
			cp := *business
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeBusinessRepo) GetBySlug(_ context.Context, slug string) (*model.Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, business := range r.businesses {
		if business.Slug == slug {
			cp := *business
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeBusinessRepo) Update(_ context.Context, business *model.Business) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *business
	r.businesses[business.ID] = &cp
	return nil
}

func (r *fakeBusinessRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.businesses, id)
	return nil
}

type fakeServiceRepo struct {
	mu       sync.Mutex
	services map[uuid.UUID]*model.Service
}

func newFakeServiceRepo() *fakeServiceRepo {
	return &fakeServiceRepo{services: make(map[uuid.UUID]*model.Service)}
}

func (r *fakeServiceRepo) Create(_ context.Context, svc *model.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	cp := *svc
	r.services[svc.ID] = &cp
	return nil
}

func (r *fakeServiceRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc, ok := r.services[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *svc
	return &cp, nil
}

func (r *fakeServiceRepo) ListByBusiness(_ context.Context, businessID uuid.UUID, activeOnly bool) ([]model.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Service
	for _, svc := range r.services {
		if svc.BusinessID != businessID {
			continue
		}
		if activeOnly && !svc.IsActive {
			continue
		}
		out = append(out, *svc)
	}
	return out, nil
}

func (r *fakeServiceRepo) Update(_ context.Context, svc *model.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *svc
	r.services[svc.ID] = &cp
	return nil
}

func (r *fakeServiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.services, id)
	return nil
}

type fakeAvailabilityRepo struct {
	mu      sync.Mutex
	windows map[uuid.UUID][]model.Availability
	dates   map[uuid.UUID][]model.UnavailableDate
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{
		windows: make(map[uuid.UUID][]model.Availability),
		dates:   make(map[uuid.UUID][]model.UnavailableDate),
	}
}

func (r *fakeAvailabilityRepo) ListWindows(_ context.Context, businessID uuid.UUID) ([]model.Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Availability(nil), r.windows[businessID]...), nil
}

func (r *fakeAvailabilityRepo) ReplaceWindows(_ context.Context, businessID uuid.UUID, windows []model.Availability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.windows[businessID] = append([]model.Availability(nil), windows...)
	return nil
}

func (r *fakeAvailabilityRepo) AddUnavailableDate(_ context.Context, date *model.UnavailableDate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if date.ID == uuid.Nil {
		date.ID = uuid.New()
	}
	r.dates[date.BusinessID] = append(r.dates[date.BusinessID], *date)
	return nil
}

func (r *fakeAvailabilityRepo) ListUnavailableDates(_ context.Context, businessID uuid.UUID) ([]model.UnavailableDate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.UnavailableDate(nil), r.dates[businessID]...), nil
}

func (r *fakeAvailabilityRepo) RemoveUnavailableDate(_ context.Context, businessID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.dates[businessID][:0]
	for _, date := range r.dates[businessID] {
		if date.ID != id {
			kept = append(kept, date)
		}
	}
	r.dates[businessID] = kept
	return nil
}
