package votesystem

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"bot_dashboard/internal/model"
)

// memStore 内存实现的 Store
type memStore struct {
	mu          sync.Mutex
	requests    map[string]model.FeatureRequest
	lastVoted   map[string]time.Time
	autoApprove map[string]bool
	blacklist   map[string]bool
	saveErr     map[string]error
	saves       int
}

func newMemStore(requests ...model.FeatureRequest) *memStore {
	s := &memStore{
		requests:    make(map[string]model.FeatureRequest),
		lastVoted:   make(map[string]time.Time),
		autoApprove: make(map[string]bool),
		blacklist:   make(map[string]bool),
		saveErr:     make(map[string]error),
	}
	for _, r := range requests {
		s.requests[r.ID] = r
	}
	return s
}

func (s *memStore) FetchAll(context.Context) ([]model.FeatureRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]model.FeatureRequest, 0, len(s.requests))
	for _, r := range s.requests {
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (s *memStore) Get(_ context.Context, id string) (*model.FeatureRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *memStore) Save(_ context.Context, req *model.FeatureRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveErr[req.ID]; err != nil {
		return err
	}
	s.saves++
	s.requests[req.ID] = *req
	return nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.requests, id)
	return nil
}

func (s *memStore) CastVote(_ context.Context, id string, delta int, userID string, at time.Time) (*model.FeatureRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	r.Votes += delta
	s.requests[id] = r
	s.lastVoted[userID] = at
	return &r, nil
}

func (s *memStore) LastVoted(_ context.Context, userID string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastVoted[userID], nil
}

func (s *memStore) AutoApprove(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoApprove[userID], nil
}

func (s *memStore) IsBlacklisted(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blacklist[userID], nil
}

// recordingQueue 记录入队的通知任务
type recordingQueue struct {
	mu   sync.Mutex
	jobs []NotificationJob
}

func (q *recordingQueue) Enqueue(_ context.Context, job NotificationJob) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
}

func (q *recordingQueue) byKind(kind JobKind) []NotificationJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []NotificationJob
	for _, j := range q.jobs {
		if j.Kind == kind {
			out = append(out, j)
		}
	}
	return out
}

// recordingEvents 记录实时事件
type recordingEvents struct {
	mu     sync.Mutex
	events []string
}

func (e *recordingEvents) PublishFeatureEvent(eventType string, feature model.FeatureRequest) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, eventType+":"+feature.ID)
}

// fakeMessenger 记录私信，可注入错误
type fakeMessenger struct {
	mu    sync.Mutex
	sent  map[string][]*discordgo.MessageEmbed
	err   error
	panic bool
}

func (m *fakeMessenger) SendEmbed(_ context.Context, userID string, embed *discordgo.MessageEmbed) error {
	if m.panic {
		panic("messenger exploded")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.sent == nil {
		m.sent = make(map[string][]*discordgo.MessageEmbed)
	}
	m.sent[userID] = append(m.sent[userID], embed)
	return nil
}

func restError(code int) error {
	return &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: code, Message: "nope"}}
}

var errStoreDown = errors.New("store down")
