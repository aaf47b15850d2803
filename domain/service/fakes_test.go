package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

type nopLogger struct{}

func (nopLogger) Error(msg string, args ...any) {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Debug(msg string, args ...any) {}

// fakeOfferRepository keeps offers in a map; err, when set, fails every call
type fakeOfferRepository struct {
	mu     sync.Mutex
	offers map[string]*model.Offer
	seq    int
	err    error
}

func newFakeOfferRepository() *fakeOfferRepository {
	return &fakeOfferRepository{offers: make(map[string]*model.Offer)}
}

func (r *fakeOfferRepository) Create(ctx context.Context, draft model.OfferDraft) (*model.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.seq++
	offer := model.NewOffer(draft, time.Now().Add(time.Duration(r.seq)*time.Millisecond))
	offer.ID = fmt.Sprintf("offer-%d", r.seq)
	r.offers[offer.ID] = offer
	copied := *offer
	return &copied, nil
}

func (r *fakeOfferRepository) put(offer *model.Offer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offers[offer.ID] = offer
}

func (r *fakeOfferRepository) Get(ctx context.Context, id string) (*model.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	offer, ok := r.offers[id]
	if !ok {
		return nil, model.ErrOfferNotFound
	}
	copied := *offer
	return &copied, nil
}

func (r *fakeOfferRepository) ListAll(ctx context.Context) ([]*model.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	result := make([]*model.Offer, 0, len(r.offers))
	for _, o := range r.offers {
		copied := *o
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *fakeOfferRepository) ListApproved(ctx context.Context) ([]*model.Offer, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	approved := make([]*model.Offer, 0, len(all))
	for _, o := range all {
		if o.Status == model.OfferApproved {
			approved = append(approved, o)
		}
	}
	return approved, nil
}

func (r *fakeOfferRepository) ListApprovedPaged(ctx context.Context, page, limit int, filters model.OfferFilters) (*model.OfferPage, error) {
	approved, err := r.ListApproved(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]*model.Offer, 0, len(approved))
	for _, o := range approved {
		if filters.Matches(o) {
			matched = append(matched, o)
		}
	}
	start, end, p := model.Paginate(len(matched), page, limit)
	return &model.OfferPage{Offers: matched[start:end], Pagination: p}, nil
}

func (r *fakeOfferRepository) SetStatus(ctx context.Context, id string, status model.OfferStatus) (*model.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	offer, ok := r.offers[id]
	if !ok {
		return nil, model.ErrOfferNotFound
	}
	if !offer.CanBeReviewed() {
		return nil, &model.StatusConflictError{Status: string(offer.Status)}
	}
	now := time.Now()
	offer.Status = status
	if status == model.OfferApproved {
		offer.ApprovedAt = &now
	} else {
		offer.RejectedAt = &now
	}
	copied := *offer
	return &copied, nil
}

func (r *fakeOfferRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.offers[id]; !ok {
		return model.ErrOfferNotFound
	}
	delete(r.offers, id)
	return nil
}

func (r *fakeOfferRepository) Stats(ctx context.Context) (*model.OfferStats, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	stats := &model.OfferStats{Total: len(all)}
	for _, o := range all {
		switch o.Status {
		case model.OfferPending:
			stats.Pending++
		case model.OfferApproved:
			stats.Approved++
		case model.OfferRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

// fakeRemovalRepository shares the offer map of a fakeOfferRepository.
// approveErr makes Approve fail without touching anything.
type fakeRemovalRepository struct {
	offers     *fakeOfferRepository
	requests   map[string]*model.RemovalRequest
	seq        int
	approveErr error
}

func newFakeRemovalRepository(offers *fakeOfferRepository) *fakeRemovalRepository {
	return &fakeRemovalRepository{offers: offers, requests: make(map[string]*model.RemovalRequest)}
}

func (r *fakeRemovalRepository) FindOfferByNameAndPhone(ctx context.Context, name, phone string) (*model.Offer, error) {
	all, err := r.offers.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range all {
		if model.MatchesOwner(o, name, phone) {
			return o, nil
		}
	}
	return nil, model.ErrNoMatchingOffer
}

func (r *fakeRemovalRepository) HasPendingForUser(ctx context.Context, userID string) (bool, error) {
	for _, req := range r.requests {
		if req.UserID == userID && req.Status == model.RemovalRequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRemovalRepository) Create(ctx context.Context, userID string, draft model.RemovalDraft) (*model.RemovalRequest, error) {
	r.seq++
	req := model.NewRemovalRequest(userID, draft, time.Now())
	req.ID = fmt.Sprintf("removal-%d", r.seq)
	r.requests[req.ID] = req
	copied := *req
	return &copied, nil
}

func (r *fakeRemovalRepository) Get(ctx context.Context, id string) (*model.RemovalRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, model.ErrRemovalRequestNotFound
	}
	copied := *req
	return &copied, nil
}

func (r *fakeRemovalRepository) List(ctx context.Context) ([]*model.RemovalRequest, error) {
	result := make([]*model.RemovalRequest, 0, len(r.requests))
	for _, req := range r.requests {
		copied := *req
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeRemovalRepository) Approve(ctx context.Context, id string) (*model.RemovalRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, model.ErrRemovalRequestNotFound
	}
	if !req.CanBeReviewed() {
		return nil, &model.StatusConflictError{Status: string(req.Status)}
	}
	if r.approveErr != nil {
		return nil, r.approveErr
	}
	r.offers.mu.Lock()
	delete(r.offers.offers, req.UserID)
	r.offers.mu.Unlock()

	now := time.Now()
	req.Status = model.RemovalRequestApproved
	req.ProcessedAt = &now
	copied := *req
	return &copied, nil
}

func (r *fakeRemovalRepository) Reject(ctx context.Context, id string) (*model.RemovalRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, model.ErrRemovalRequestNotFound
	}
	if !req.CanBeReviewed() {
		return nil, &model.StatusConflictError{Status: string(req.Status)}
	}
	now := time.Now()
	req.Status = model.RemovalRequestRejected
	req.ProcessedAt = &now
	copied := *req
	return &copied, nil
}

func (r *fakeRemovalRepository) Reconcile(ctx context.Context) (int, error) {
	count := 0
	for _, req := range r.requests {
		if req.Status != model.RemovalRequestPending {
			continue
		}
		if _, err := r.offers.Get(ctx, req.UserID); err == model.ErrOfferNotFound {
			now := time.Now()
			req.Status = model.RemovalRequestApproved
			req.ProcessedAt = &now
			count++
		}
	}
	return count, nil
}

type editCall struct {
	ChatID    int64
	MessageID int
	Text      string
}

type answerCall struct {
	ID    string
	Text  string
	Alert bool
}

// recordingNotifier captures every outbound call
type recordingNotifier struct {
	mu       sync.Mutex
	chatID   int64
	disabled bool
	failWith error
	offers   []*model.Offer
	removals []*model.RemovalRequest
	edits    []editCall
	answers  []answerCall
	webhooks []string
}

func (n *recordingNotifier) fail() error {
	if n.disabled {
		return model.ErrNotifierDisabled
	}
	return n.failWith
}

func (n *recordingNotifier) NotifyNewOffer(ctx context.Context, offer *model.Offer) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.fail(); err != nil {
		return err
	}
	n.offers = append(n.offers, offer)
	return nil
}

func (n *recordingNotifier) NotifyRemovalRequest(ctx context.Context, req *model.RemovalRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.fail(); err != nil {
		return err
	}
	n.removals = append(n.removals, req)
	return nil
}

func (n *recordingNotifier) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.fail(); err != nil {
		return err
	}
	n.edits = append(n.edits, editCall{ChatID: chatID, MessageID: messageID, Text: text})
	return nil
}

func (n *recordingNotifier) AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.fail(); err != nil {
		return err
	}
	n.answers = append(n.answers, answerCall{ID: callbackID, Text: text, Alert: showAlert})
	return nil
}

func (n *recordingNotifier) SetWebhook(ctx context.Context, url string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.fail(); err != nil {
		return err
	}
	n.webhooks = append(n.webhooks, url)
	return nil
}

func (n *recordingNotifier) WebhookInfo(ctx context.Context) (*outbound.WebhookStatus, error) {
	if err := n.fail(); err != nil {
		return nil, err
	}
	return &outbound.WebhookStatus{}, nil
}

func (n *recordingNotifier) AdminChatID() int64 { return n.chatID }
func (n *recordingNotifier) Enabled() bool      { return !n.disabled }

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

func (p *recordingPublisher) Publish(event model.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]model.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

func validDraft() model.OfferDraft {
	return model.OfferDraft{
		Name:        "Budi",
		Skill:       "Web Dev",
		City:        "Jakarta",
		PhoneNumber: "081234567890",
		Description: "Membuat website untuk UMKM",
	}
}
