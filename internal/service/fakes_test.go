package service

import (
	"context"
	"sort"
	"sync"

	"maturity-assessment-backend/internal/model"
	"maturity-assessment-backend/internal/repository"
)

// memStore implements the organization, assessment and question
// repositories in memory.
type memStore struct {
	mu          sync.Mutex
	nextID      uint
	orgs        map[uint]model.Organization
	assessments map[uint]model.Assessment
	questions   []model.Question
}

func newMemStore() *memStore {
	return &memStore{
		orgs:        make(map[uint]model.Organization),
		assessments: make(map[uint]model.Assessment),
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) CreateOrganization(_ context.Context, org *model.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	org.ID = m.id()
	m.orgs[org.ID] = *org
	return nil
}

func (m *memStore) GetOrganizationByID(_ context.Context, id uint) (*model.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orgs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (m *memStore) GetOrganizationByAccessCode(_ context.Context, code string) (*model.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orgs {
		if o.AccessCode == code {
			return &o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) AccessCodeExists(ctx context.Context, code string) (bool, error) {
	_, err := m.GetOrganizationByAccessCode(ctx, code)
	return err == nil, nil
}

func (m *memStore) ListOrganizations(_ context.Context) ([]model.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Organization, 0, len(m.orgs))
	for _, o := range m.orgs {
		for _, a := range m.assessments {
			if a.OrganizationID == o.ID {
				o.Assessments = append(o.Assessments, a)
			}
		}
		sort.Slice(o.Assessments, func(i, j int) bool { return o.Assessments[i].ID > o.Assessments[j].ID })
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) UpdatePassword(_ context.Context, id uint, hashedPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orgs[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.HashedPassword = hashedPassword
	m.orgs[id] = o
	return nil
}

func (m *memStore) DeleteOrganization(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orgs[id]; !ok {
		return repository.ErrNotFound
	}
	for aid, a := range m.assessments {
		if a.OrganizationID == id {
			delete(m.assessments, aid)
		}
	}
	delete(m.orgs, id)
	return nil
}

func (m *memStore) CreateAssessment(_ context.Context, a *model.Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.id()
	m.assessments[a.ID] = *a
	return nil
}

func (m *memStore) GetAssessmentByID(_ context.Context, id uint) (*model.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assessments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (m *memStore) GetOrganizationAssessment(ctx context.Context, orgID, id uint) (*model.Assessment, error) {
	a, err := m.GetAssessmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.OrganizationID != orgID {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (m *memStore) ListByOrganization(_ context.Context, orgID uint) ([]model.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Assessment
	for _, a := range m.assessments {
		if a.OrganizationID == orgID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) ListCompleted(_ context.Context, orgID uint, program string) ([]model.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Assessment
	for _, a := range m.assessments {
		if a.OrganizationID == orgID && a.Program == program && a.Completed() {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.Before(*out[j].CompletedAt) })
	return out, nil
}

func (m *memStore) SaveAssessment(_ context.Context, a *model.Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assessments[a.ID] = *a
	return nil
}

func (m *memStore) DeleteAssessment(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assessments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.assessments, id)
	return nil
}

func (m *memStore) Stats(_ context.Context) (*repository.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := repository.Stats{
		TotalOrganizations: int64(len(m.orgs)),
		TotalAssessments:   int64(len(m.assessments)),
	}
	var sum float64
	for _, a := range m.assessments {
		if !a.Completed() {
			s.InProgressAssessments++
			continue
		}
		s.CompletedAssessments++
		if a.MaturityLevel != nil {
			sum += *a.MaturityLevel
		}
	}
	if s.CompletedAssessments > 0 {
		avg := sum / float64(s.CompletedAssessments)
		s.AverageMaturity = &avg
	}
	return &s, nil
}

func (m *memStore) SeedProgram(_ context.Context, program string, questions []model.Question) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.questions {
		if q.Program == program {
			return 0, nil
		}
	}
	for _, q := range questions {
		q.ID = m.id()
		q.Program = program
		m.questions = append(m.questions, q)
	}
	return len(questions), nil
}

func (m *memStore) ListByProgram(_ context.Context, program string) ([]model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Question
	for _, q := range m.questions {
		if q.Program == program {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

// stubLLM is an llm.Client returning a fixed reply or error.
type stubLLM struct {
	reply  string
	err    error
	system string
	prompt string
}

func (s *stubLLM) Generate(_ context.Context, system, prompt string) (string, error) {
	s.system, s.prompt = system, prompt
	return s.reply, s.err
}
