package service

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"maturity-assessment-backend/internal/catalog"
	"maturity-assessment-backend/internal/model"
	"maturity-assessment-backend/internal/scoring"
	"maturity-assessment-backend/utilities"
)

type fixture struct {
	store       *memStore
	bus         *utilities.EventBus
	jwt         *utilities.JWTManager
	questions   QuestionService
	auth        AuthService
	assessments *assessmentService
	admin       AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	questions := NewQuestionService(store)
	require.NoError(t, questions.SeedCatalogs(context.Background()))

	bus := utilities.NewEventBus()
	jwt := utilities.NewJWTManager("test-secret", time.Hour)

	auth := NewAuthService(store, jwt).(*authService)
	auth.cost = bcrypt.MinCost

	assessments := NewAssessmentService(store, store, questions, bus).(*assessmentService)
	clock := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	assessments.now = func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}

	return &fixture{
		store:       store,
		bus:         bus,
		jwt:         jwt,
		questions:   questions,
		auth:        auth,
		assessments: assessments,
		admin:       NewAdminService(store, store, questions),
	}
}

func (f *fixture) register(t *testing.T, name, orgType string) *model.Organization {
	t.Helper()
	tok, err := f.auth.Register(context.Background(), RegisterInput{Name: name, Type: orgType, Sector: "Manufacturing", Password: "password1"})
	require.NoError(t, err)
	return tok.Organization
}

// answerAll selects option index for every question visible to orgType.
func (f *fixture) answerAll(t *testing.T, program, orgType string, index int) scoring.AnswerSet {
	t.Helper()
	qs, err := f.questions.ListQuestions(context.Background(), program, orgType)
	require.NoError(t, err)
	require.NotEmpty(t, qs)
	set := scoring.AnswerSet{}
	for _, q := range qs {
		set.Answers = append(set.Answers, scoring.Answer{QuestionID: q.ID, SelectedOption: scoring.Selected(index)})
	}
	return set
}

func TestSeedCatalogsIsIdempotent(t *testing.T) {
	f := newFixture(t)
	before := len(f.store.questions)
	require.NoError(t, f.questions.SeedCatalogs(context.Background()))
	assert.Equal(t, before, len(f.store.questions))

	programs, err := f.questions.Programs()
	require.NoError(t, err)
	total := 0
	for _, p := range programs {
		total += p.QuestionCount
	}
	assert.Equal(t, total, before)
}

func TestListQuestionsFiltersTargetType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all, err := f.questions.ListQuestions(ctx, "digital-maturity", "")
	require.NoError(t, err)
	company, err := f.questions.ListQuestions(ctx, "digital-maturity", model.OrgTypeCompany)
	require.NoError(t, err)
	pa, err := f.questions.ListQuestions(ctx, "digital-maturity", model.OrgTypePublicAdmin)
	require.NoError(t, err)

	assert.Less(t, len(company), len(all))
	assert.Less(t, len(pa), len(all))
	for _, q := range company {
		assert.NotEqual(t, catalog.TargetPublicAdmin, q.TargetType)
	}

	_, err = f.questions.ListQuestions(ctx, "astrology", "")
	assert.ErrorIs(t, err, ErrInvalidProgram)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.auth.Register(ctx, RegisterInput{Name: "  Acme  ", Type: "azienda", Password: "password1"})
	require.NoError(t, err)
	org := tok.Organization
	assert.Equal(t, "Acme", org.Name)
	assert.Equal(t, model.OrgTypeCompany, org.Type)
	assert.Len(t, org.AccessCode, 8)
	assert.Equal(t, strings.ToUpper(org.AccessCode), org.AccessCode)
	assert.Equal(t, "bearer", tok.TokenType)

	id, err := f.jwt.Validate(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, org.ID, id)

	login, err := f.auth.Login(ctx, strings.ToLower(org.AccessCode), "password1")
	require.NoError(t, err)
	assert.Equal(t, org.ID, login.Organization.ID)

	_, err = f.auth.Login(ctx, org.AccessCode, "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, "ZZZZZZZZ", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]RegisterInput{
		"missing name":   {Type: "company", Password: "password1"},
		"bad type":       {Name: "x", Type: "ngo", Password: "password1"},
		"short password": {Name: "x", Type: "pa", Password: "short"},
		"long password":  {Name: "x", Type: "pa", Password: strings.Repeat("p", 73)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.auth.Register(ctx, in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAuthResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.register(t, "Comune", "pa")
	assert.Equal(t, model.OrgTypePublicAdmin, org.Type)

	_, err := f.auth.ResetPassword(ctx, org.ID, "new-password")
	require.NoError(t, err)
	_, err = f.auth.Login(ctx, org.AccessCode, "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, org.AccessCode, "new-password")
	require.NoError(t, err)

	got, err := f.auth.ResetPasswordByAccessCode(ctx, strings.ToLower(org.AccessCode), "third-password")
	require.NoError(t, err)
	assert.Equal(t, org.ID, got.ID)

	_, err = f.auth.ResetPasswordByAccessCode(ctx, "NOPE0000", "third-password")
	assert.ErrorIs(t, err, ErrOrganizationNotFound)
	_, err = f.auth.ResetPassword(ctx, 9999, "third-password")
	assert.ErrorIs(t, err, ErrOrganizationNotFound)
	_, err = f.auth.ResetPassword(ctx, org.ID, "short")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGenerateAccessCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateAccessCode()
		require.NoError(t, err)
		require.Len(t, code, 8)
		for _, r := range code {
			assert.Contains(t, accessCodeAlphabet, string(r))
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestAssessmentLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.register(t, "Acme", "company")

	var completed atomic.Int32
	f.bus.Subscribe(utilities.EventAssessmentCompleted, func(data any) {
		if ev, ok := data.(utilities.AssessmentEvent); ok && ev.OrganizationID == org.ID {
			completed.Add(1)
		}
	})

	a, err := f.assessments.CreateAssessment(ctx, org.ID, "")
	require.NoError(t, err)
	assert.Equal(t, string(catalog.DigitalMaturity), a.Program)
	assert.Equal(t, model.StatusInProgress, a.Status)

	_, err = f.assessments.CreateAssessment(ctx, org.ID, "astrology")
	assert.ErrorIs(t, err, ErrInvalidProgram)

	_, err = f.assessments.GetReport(ctx, org.ID, a.ID)
	assert.ErrorIs(t, err, ErrAssessmentNotCompleted)

	other := f.register(t, "Other", "company")
	_, err = f.assessments.GetAssessment(ctx, other.ID, a.ID)
	assert.ErrorIs(t, err, ErrAssessmentNotFound)

	done, err := f.assessments.SubmitAssessment(ctx, org.ID, a.ID, f.answerAll(t, a.Program, org.Type, 4))
	require.NoError(t, err)
	assert.True(t, done.Completed())
	require.NotNil(t, done.CompletedAt)
	require.NotNil(t, done.MaturityLevel)
	assert.Equal(t, 5.0, *done.MaturityLevel)
	assert.Equal(t, scoring.LabelOptimized, done.MaturityLabel)
	assert.True(t, strings.HasPrefix(done.Report, "# DIGITAL MATURITY REPORT"))

	_, err = f.assessments.SubmitAssessment(ctx, org.ID, a.ID, scoring.AnswerSet{})
	assert.ErrorIs(t, err, ErrAssessmentCompleted)

	view, err := f.assessments.GetReport(ctx, org.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, done.Report, view.Report)
	assert.Equal(t, scoring.LabelOptimized, view.MaturityLabel)
	for category, gap := range view.GapAnalysis {
		assert.Equal(t, 0.0, gap.Gap, category)
		assert.Equal(t, scoring.PriorityLow, gap.Priority, category)
	}

	var pdf bytes.Buffer
	require.NoError(t, f.assessments.WriteReportPDF(ctx, org.ID, a.ID, &pdf))
	assert.True(t, bytes.HasPrefix(pdf.Bytes(), []byte("%PDF-")))

	list, err := f.assessments.ListAssessments(ctx, org.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	f.bus.Wait()
	assert.Equal(t, int32(1), completed.Load())
}

func TestSubmitEmptyAnswers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.register(t, "Acme", "company")

	a, err := f.assessments.CreateAssessment(ctx, org.ID, "governance")
	require.NoError(t, err)
	done, err := f.assessments.SubmitAssessment(ctx, org.ID, a.ID, scoring.AnswerSet{})
	require.NoError(t, err)

	assert.Equal(t, scoring.DefaultMaturity, *done.MaturityLevel)
	assert.Equal(t, scoring.LabelInitial, done.MaturityLabel)
	assert.Empty(t, done.Scores.Data())
	assert.NotNil(t, done.Responses.Data().Answers)
	assert.Contains(t, done.Report, "No area received a scored answer.")
}

func TestRegenerateReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.register(t, "Acme", "company")

	var regenerated atomic.Int32
	f.bus.Subscribe(utilities.EventAssessmentRegenerated, func(any) { regenerated.Add(1) })

	a, err := f.assessments.CreateAssessment(ctx, org.ID, "social-pact")
	require.NoError(t, err)
	_, err = f.assessments.RegenerateReport(ctx, a.ID)
	assert.ErrorIs(t, err, ErrAssessmentNotCompleted)
	_, err = f.assessments.RegenerateReport(ctx, 9999)
	assert.ErrorIs(t, err, ErrAssessmentNotFound)

	done, err := f.assessments.SubmitAssessment(ctx, org.ID, a.ID, f.answerAll(t, a.Program, org.Type, 2))
	require.NoError(t, err)

	// corrupt the stored result; regenerating must restore it
	stored := f.store.assessments[a.ID]
	stored.Report = ""
	stored.MaturityLabel = ""
	f.store.assessments[a.ID] = stored

	again, err := f.assessments.RegenerateReport(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, done.Report, again.Report)
	assert.Equal(t, scoring.LabelDefined, again.MaturityLabel)
	assert.Equal(t, done.CompletedAt, again.CompletedAt)

	f.bus.Wait()
	assert.Equal(t, int32(1), regenerated.Load())
}

func TestProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.register(t, "Acme", "company")

	_, err := f.assessments.GetProgress(ctx, org.ID, "innovation-conformity")
	assert.ErrorIs(t, err, ErrNoCompletedAssessments)

	first, err := f.assessments.CreateAssessment(ctx, org.ID, "innovation-conformity")
	require.NoError(t, err)
	_, err = f.assessments.SubmitAssessment(ctx, org.ID, first.ID, f.answerAll(t, first.Program, org.Type, 0))
	require.NoError(t, err)

	second, err := f.assessments.CreateAssessment(ctx, org.ID, "iso56002")
	require.NoError(t, err)
	_, err = f.assessments.SubmitAssessment(ctx, org.ID, second.ID, f.answerAll(t, second.Program, org.Type, 3))
	require.NoError(t, err)

	p, err := f.assessments.GetProgress(ctx, org.ID, "innovation-conformity")
	require.NoError(t, err)
	assert.Equal(t, 2, p.CompletedCount)
	assert.Equal(t, first.ID, p.InitialAssessmentID)
	assert.Equal(t, second.ID, p.LatestAssessmentID)
	assert.Equal(t, 1.0, p.InitialMaturity)
	assert.Equal(t, 4.0, p.CurrentMaturity)
	assert.Equal(t, 3.0, p.Improvement)
	assert.Equal(t, scoring.LabelInitial, p.InitialLabel)
	assert.Equal(t, scoring.LabelQuantitativelyManaged, p.CurrentLabel)
	require.NotEmpty(t, p.Categories)
	for category, c := range p.Categories {
		require.NotNil(t, c.Delta, category)
		assert.Equal(t, 3.0, *c.Delta, category)
	}

	_, err = f.assessments.GetProgress(ctx, org.ID, "astrology")
	assert.ErrorIs(t, err, ErrInvalidProgram)
}

func TestAdminService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.register(t, "Acme", "company")
	comune := f.register(t, "Comune", "public_admin")

	a, err := f.assessments.CreateAssessment(ctx, acme.ID, "digital-maturity")
	require.NoError(t, err)
	answers := f.answerAll(t, a.Program, acme.Type, 1)
	note := "partial rollout"
	answers.Answers[0].Notes = &note
	answers.Answers = append(answers.Answers, scoring.Answer{QuestionID: 99999, SelectedOption: scoring.Selected(0)})
	_, err = f.assessments.SubmitAssessment(ctx, acme.ID, a.ID, answers)
	require.NoError(t, err)

	b, err := f.assessments.CreateAssessment(ctx, comune.ID, "governance")
	require.NoError(t, err)
	_, err = f.assessments.SubmitAssessment(ctx, comune.ID, b.ID, f.answerAll(t, b.Program, comune.Type, 4))
	require.NoError(t, err)
	_, err = f.assessments.CreateAssessment(ctx, comune.ID, "social-pact")
	require.NoError(t, err)

	t.Run("stats", func(t *testing.T) {
		st, err := f.admin.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), st.TotalOrganizations)
		assert.Equal(t, int64(3), st.TotalAssessments)
		assert.Equal(t, int64(2), st.CompletedAssessments)
		assert.Equal(t, int64(1), st.InProgressAssessments)
		assert.Equal(t, 3.5, st.AverageMaturityLevel)
	})

	t.Run("organizations", func(t *testing.T) {
		orgs, err := f.admin.ListOrganizations(ctx)
		require.NoError(t, err)
		require.Len(t, orgs, 2)
		assert.Equal(t, "Comune", orgs[0].Name)
		assert.Equal(t, 2, orgs[0].AssessmentsCount)
		assert.Len(t, orgs[0].Assessments, 2)
		assert.Equal(t, acme.AccessCode, orgs[1].AccessCode)
	})

	t.Run("detailed responses", func(t *testing.T) {
		d, err := f.admin.DetailedResponses(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme", d.Organization.Name)
		assert.Equal(t, len(answers.Answers)-1, d.TotalQuestions)
		first := d.Responses[0]
		assert.Equal(t, &note, first.Notes)
		assert.Equal(t, 1, *first.SelectedOptionIndex)
		assert.Equal(t, 2.0, *first.SelectedScore)
		assert.Len(t, first.AllOptions, 5)
		assert.Equal(t, first.AllOptions[1], first.SelectedOptionText)

		_, err = f.admin.DetailedResponses(ctx, 9999)
		assert.ErrorIs(t, err, ErrAssessmentNotFound)
	})

	t.Run("detail", func(t *testing.T) {
		d, err := f.admin.AssessmentDetail(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, comune.ID, d.Organization.ID)
		assert.Equal(t, "governance", d.Program)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, f.admin.DeleteAssessment(ctx, a.ID))
		assert.ErrorIs(t, f.admin.DeleteAssessment(ctx, a.ID), ErrAssessmentNotFound)

		require.NoError(t, f.admin.DeleteOrganization(ctx, comune.ID))
		assert.ErrorIs(t, f.admin.DeleteOrganization(ctx, comune.ID), ErrOrganizationNotFound)

		st, err := f.admin.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), st.TotalOrganizations)
		assert.Zero(t, st.TotalAssessments)
		assert.Zero(t, st.AverageMaturityLevel)
	})
}

func TestAssistantWithoutModel(t *testing.T) {
	svc := NewAssistantService(nil)
	ctx := context.Background()

	reply := svc.Chat(ctx, AssistantRequest{QuestionText: "q", UserMessage: "help", QuestionHint: "Look at your CRM."})
	assert.Contains(t, reply, "not configured")
	assert.Contains(t, reply, "**Hint from the guide:**\nLook at your CRM.")

	reply = svc.Chat(ctx, AssistantRequest{QuestionText: "q", UserMessage: "help"})
	assert.Contains(t, reply, "'?' button")
}

func TestAssistantWithModel(t *testing.T) {
	ctx := context.Background()
	req := AssistantRequest{
		QuestionText: "Do you use cloud services?",
		QuestionHint: "Think of email and storage.",
		Options:      []string{"No", "Some", "All"},
		UserMessage:  "We use webmail only",
	}

	client := &stubLLM{reply: "  Choose **Some**.\n"}
	assert.Equal(t, "Choose **Some**.", NewAssistantService(client).Chat(ctx, req))
	assert.Equal(t, assistantSystemPrompt, client.system)
	assert.Contains(t, client.prompt, "Questionnaire question: Do you use cloud services?")
	assert.Contains(t, client.prompt, "- No\n- Some\n- All\n")
	assert.Contains(t, client.prompt, "Organization type: company\nSector: Not specified")
	assert.Contains(t, client.prompt, "User message: We use webmail only")

	failing := &stubLLM{err: assert.AnError}
	reply := NewAssistantService(failing).Chat(ctx, req)
	assert.Contains(t, reply, "temporarily unavailable")
	assert.Contains(t, reply, req.QuestionHint)
}

func TestReportFileListener(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dir := t.TempDir()
	files := NewReportFileService(f.store, f.store, f.questions, dir)
	InitReportEventListeners(f.bus, files)

	org := f.register(t, "Acme", "company")
	a, err := f.assessments.CreateAssessment(ctx, org.ID, "digital-maturity")
	require.NoError(t, err)

	_, err = files.GenerateReportFile(ctx, a.ID)
	assert.ErrorIs(t, err, ErrAssessmentNotCompleted)

	_, err = f.assessments.SubmitAssessment(ctx, org.ID, a.ID, f.answerAll(t, a.Program, org.Type, 2))
	require.NoError(t, err)
	f.bus.Wait()

	data, err := os.ReadFile(files.ReportFilePath(a.ID))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
