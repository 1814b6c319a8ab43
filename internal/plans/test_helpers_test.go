package plans

import (
	"context"
	"sync"
	"sync/atomic"

	"escape-planner/internal/llm"
	"escape-planner/internal/notify"
)

type mapStore struct {
	mu    sync.Mutex
	items map[string]Session
}

func newMapStore() *mapStore {
	return &mapStore{items: make(map[string]Session)}
}

func (m *mapStore) Get(ctx context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.items[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (m *mapStore) Save(ctx context.Context, sess Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[sess.ID] = sess
	return nil
}

func (m *mapStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

type stubLLM struct {
	resp     llm.Response
	err      error
	calls    atomic.Int32
	requests []llm.Request
}

func (s *stubLLM) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	s.calls.Add(1)
	s.requests = append(s.requests, req)
	return s.resp, s.err
}

type stubExporter struct {
	err   error
	calls int
	last  GeneratedPlan
}

func (s *stubExporter) Export(plan GeneratedPlan) (ExportedDocument, error) {
	s.calls++
	s.last = plan
	if s.err != nil {
		return ExportedDocument{}, s.err
	}
	return ExportedDocument{
		Bytes:    []byte("%PDF-1.3 stub"),
		Filename: "Quit-My-Job-Escape-Plan.pdf",
		MimeType: "application/pdf",
		Pages:    1,
	}, nil
}

type stubNotifier struct {
	mu    sync.Mutex
	leads []notify.Lead
	block chan struct{}
}

func (s *stubNotifier) Notify(ctx context.Context, lead notify.Lead) notify.Result {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	s.leads = append(s.leads, lead)
	s.mu.Unlock()
	return notify.Result{Outcomes: map[string]notify.Outcome{
		notify.TargetMailingList: {Target: notify.TargetMailingList, Status: notify.StatusFailed},
		notify.TargetSpreadsheet: {Target: notify.TargetSpreadsheet, Status: notify.StatusOK},
	}}
}

func (s *stubNotifier) Leads() []notify.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Lead(nil), s.leads...)
}

func scenarioForm() Form {
	return Form{
		JobTitle:      "Nurse",
		MonthlyIncome: "4000",
		Skills:        "Writing, Teaching",
		Savings:       "2000",
		Goal:          "Freelance writing",
	}
}
