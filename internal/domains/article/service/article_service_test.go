package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsroom-backend/internal/domains/article/model"
	"newsroom-backend/internal/domains/article/repository"
	"newsroom-backend/internal/domains/workflow"
	infraCache "newsroom-backend/internal/infrastructure/cache"
	"newsroom-backend/internal/shared"
)

// =====================================================
// FIXTURES
// =====================================================

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.ArticleStatusChangedPayload
}

func (p *recordingPublisher) StatusChanged(ctx context.Context, payload shared.ArticleStatusChangedPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, payload)
	return nil
}

type fixture struct {
	svc    ServiceInterface
	repo   repository.ArticleRepository
	views  repository.ViewStore
	events *recordingPublisher
}

func newFixture() *fixture {
	repo := repository.NewMemoryArticleRepository()
	c := infraCache.NewMemoryCache()
	views := repository.NewMemoryViewStore(c)
	events := &recordingPublisher{}
	return &fixture{
		svc:    NewArticleService(repo, views, c, events, DefaultConfig()),
		repo:   repo,
		views:  views,
		events: events,
	}
}

func actor(role workflow.Role) workflow.Actor {
	return workflow.Actor{ID: uuid.New(), Role: role}
}

func statusPtr(s workflow.Status) *workflow.Status { return &s }

func draftRequest() model.CreateArticleRequest {
	return model.CreateArticleRequest{
		Title:    "Banjir rob di Jakarta Utara",
		Excerpt:  "Ratusan rumah terendam",
		Content:  "Isi berita",
		Category: "Nasional",
	}
}

// seed inserts an article directly in the given status
func (f *fixture) seed(t *testing.T, author uuid.UUID, status workflow.Status) *model.Article {
	t.Helper()
	now := time.Now()
	a, err := f.repo.Insert(context.Background(), &model.Article{
		Title:           "Seeded article",
		Category:        "Bisnis",
		AuthorID:        author,
		Status:          status,
		StatusChangedAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) status(t *testing.T, id uuid.UUID) workflow.Status {
	t.Helper()
	a, err := f.repo.Get(context.Background(), id)
	require.NoError(t, err)
	return a.Status
}

// =====================================================
// SCENARIOS
// =====================================================

func TestWorkflow_CreateSubmitNonAuthorDenied(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	author := actor(workflow.RoleWartawan)
	other := actor(workflow.RoleWartawan)

	created, err := f.svc.CreateDraft(ctx, author, draftRequest())
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusDraft, created.Status)
	assert.Equal(t, author.ID, created.AuthorID)

	// another reporter cannot submit it
	_, err = f.svc.Submit(ctx, other, created.ID, nil)
	var denied *workflow.PermissionDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, workflow.ActionSubmitForEditorReview, denied.Action)
	assert.Equal(t, workflow.StatusDraft, f.status(t, created.ID))

	submitted, err := f.svc.Submit(ctx, author, created.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPendingEditor, submitted.Status)
}

func TestWorkflow_RejectThenStaleApprove(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	editor := actor(workflow.RoleEditor)
	a := f.seed(t, uuid.New(), workflow.StatusPendingEditor)

	rejected, err := f.svc.Reject(ctx, editor, a.ID, "needs sources", nil)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusDraft, rejected.Status)
	require.NotNil(t, rejected.LastRejection)
	assert.Equal(t, "needs sources", rejected.LastRejection.Reason)

	_, err = f.svc.Approve(ctx, editor, a.ID, statusPtr(workflow.StatusPendingEditor))
	var cm *workflow.ConcurrentModificationError
	require.True(t, errors.As(err, &cm))
	assert.Equal(t, workflow.StatusPendingEditor, cm.Expected)
	assert.Equal(t, workflow.StatusDraft, cm.Actual)
	assert.Equal(t, workflow.StatusDraft, f.status(t, a.ID))
}

func TestWorkflow_PublishFromDraftIsInvalid(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	redaktur := actor(workflow.RoleRedaktur)
	a := f.seed(t, redaktur.ID, workflow.StatusDraft)

	_, err := f.svc.Publish(ctx, redaktur, a.ID, nil)
	var invalid *workflow.InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, workflow.StatusDraft, invalid.From)
	assert.Equal(t, workflow.StatusDraft, f.status(t, a.ID))
}

func TestWorkflow_RepublishKeepsPublishedAt(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	redaktur := actor(workflow.RoleRedaktur)

	firstPublish := time.Date(2026, 1, 10, 7, 0, 0, 0, time.UTC)
	now := time.Now()
	a, err := f.repo.Insert(ctx, &model.Article{
		Title:           "Pernah terbit",
		Category:        "Hukum",
		AuthorID:        uuid.New(),
		Status:          workflow.StatusPendingAdmin,
		StatusChangedAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
		PublishedAt:     &firstPublish,
	})
	require.NoError(t, err)

	published, err := f.svc.Approve(ctx, redaktur, a.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)
	assert.Equal(t, firstPublish, *published.PublishedAt)
}

// =====================================================
// PROPERTIES
// =====================================================

// đường duy nhất tới published đi qua pending_editor rồi pending_admin
func TestFullPipelineThroughBothReviews(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	author := actor(workflow.RoleWartawan)
	editor := actor(workflow.RoleEditor)
	redaktur := actor(workflow.RoleRedaktur)

	a, err := f.svc.CreateDraft(ctx, author, draftRequest())
	require.NoError(t, err)

	steps := []struct {
		run  func() (*model.ArticleResponse, error)
		want workflow.Status
	}{
		{func() (*model.ArticleResponse, error) { return f.svc.Submit(ctx, author, a.ID, nil) }, workflow.StatusPendingEditor},
		{func() (*model.ArticleResponse, error) { return f.svc.Approve(ctx, editor, a.ID, nil) }, workflow.StatusPendingAdmin},
		{func() (*model.ArticleResponse, error) { return f.svc.Publish(ctx, redaktur, a.ID, nil) }, workflow.StatusPublished},
	}
	for _, step := range steps {
		got, err := step.run()
		require.NoError(t, err)
		assert.Equal(t, step.want, got.Status)
	}

	notes, err := f.svc.Notes(ctx, redaktur, a.ID)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, workflow.StatusDraft, notes[0].From)
	assert.Equal(t, workflow.StatusPendingEditor, notes[1].From)
	assert.Equal(t, workflow.StatusPendingAdmin, notes[2].From)

	f.events.mu.Lock()
	assert.Len(t, f.events.events, 3)
	f.events.mu.Unlock()
}

// mọi lời gọi bị từ chối không đổi status đã lưu
func TestRefusedCallsLeaveStatusUnchanged(t *testing.T) {
	ctx := context.Background()

	type op struct {
		name   string
		action func(f *fixture, a workflow.Actor, id uuid.UUID) error
	}
	ops := []op{
		{"submit", func(f *fixture, a workflow.Actor, id uuid.UUID) error {
			_, err := f.svc.Submit(ctx, a, id, nil)
			return err
		}},
		{"approve", func(f *fixture, a workflow.Actor, id uuid.UUID) error {
			_, err := f.svc.Approve(ctx, a, id, nil)
			return err
		}},
		{"reject", func(f *fixture, a workflow.Actor, id uuid.UUID) error {
			_, err := f.svc.Reject(ctx, a, id, "alasan", nil)
			return err
		}},
		{"publish", func(f *fixture, a workflow.Actor, id uuid.UUID) error {
			_, err := f.svc.Publish(ctx, a, id, nil)
			return err
		}},
	}

	for _, role := range workflow.AllRoles() {
		for _, status := range workflow.AllStatuses() {
			for _, isAuthor := range []bool{true, false} {
				for _, o := range ops {
					f := newFixture()
					a := actor(role)
					authorID := uuid.New()
					if isAuthor {
						authorID = a.ID
					}
					art := f.seed(t, authorID, status)

					err := o.action(f, a, art.ID)
					if err == nil {
						continue
					}
					assert.True(t,
						errors.Is(err, workflow.ErrPermissionDenied) || errors.Is(err, workflow.ErrInvalidTransition),
						"%s %s on %s: unexpected error %v", role, o.name, status, err)
					assert.Equal(t, status, f.status(t, art.ID), "%s %s on %s", role, o.name, status)
				}
			}
		}
	}
}

// published_at không đổi sau khi edit bài đã publish
func TestPublishedAtSurvivesEdits(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	editor := actor(workflow.RoleEditor)
	redaktur := actor(workflow.RoleRedaktur)
	a := f.seed(t, uuid.New(), workflow.StatusPendingAdmin)

	published, err := f.svc.Publish(ctx, redaktur, a.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	first := *published.PublishedAt

	title := "Judul yang diperbaiki"
	edited, err := f.svc.Edit(ctx, editor, a.ID, model.UpdateArticleRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPublished, edited.Status)
	assert.Equal(t, first, *edited.PublishedAt)
	assert.Equal(t, title, edited.Title)
}

// reject và approve đồng thời với cùng expected: đúng một thắng
func TestConcurrentRejectAndApprove(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		f := newFixture()
		editor := actor(workflow.RoleEditor)
		redaktur := actor(workflow.RoleRedaktur)
		a := f.seed(t, uuid.New(), workflow.StatusPendingEditor)
		expected := statusPtr(workflow.StatusPendingEditor)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = f.svc.Reject(ctx, editor, a.ID, "perlu konfirmasi", expected)
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = f.svc.Approve(ctx, redaktur, a.ID, expected)
		}()
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			assert.True(t, errors.Is(err, workflow.ErrConcurrentModification), "unexpected %v", err)
		}
		require.Equal(t, 1, wins)

		final := f.status(t, a.ID)
		if errs[0] == nil {
			assert.Equal(t, workflow.StatusDraft, final)
		} else {
			assert.Equal(t, workflow.StatusPendingAdmin, final)
		}
	}
}

// qua service: queue lấy đúng status mục tiêu
func TestReviewQueueByRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	for _, st := range workflow.AllStatuses() {
		f.seed(t, uuid.New(), st)
		f.seed(t, uuid.New(), st)
	}

	editorQueue, err := f.svc.ReviewQueue(ctx, actor(workflow.RoleEditor))
	require.NoError(t, err)
	require.Len(t, editorQueue, 2)
	for _, a := range editorQueue {
		assert.Equal(t, workflow.StatusPendingEditor, a.Status)
	}

	redakturQueue, err := f.svc.ReviewQueue(ctx, actor(workflow.RoleRedaktur))
	require.NoError(t, err)
	require.Len(t, redakturQueue, 2)
	for _, a := range redakturQueue {
		assert.Equal(t, workflow.StatusPendingAdmin, a.Status)
	}

	wartawanQueue, err := f.svc.ReviewQueue(ctx, actor(workflow.RoleWartawan))
	require.NoError(t, err)
	assert.Empty(t, wartawanQueue)
}

// =====================================================
// OTHER OPERATIONS
// =====================================================

func TestCreateDraft_RoleGate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.svc.CreateDraft(ctx, actor(workflow.RoleEditor), draftRequest())
	assert.True(t, errors.Is(err, workflow.ErrPermissionDenied))

	_, err = f.svc.CreateDraft(ctx, workflow.Guest(), draftRequest())
	assert.True(t, errors.Is(err, workflow.ErrPermissionDenied))

	_, err = f.svc.CreateDraft(ctx, actor(workflow.RoleRedaktur), draftRequest())
	assert.NoError(t, err)

	bad := draftRequest()
	bad.Category = "Sains"
	_, err = f.svc.CreateDraft(ctx, actor(workflow.RoleWartawan), bad)
	assert.True(t, errors.Is(err, model.ErrValidation))
}

func TestReject_RequiresReason(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.seed(t, uuid.New(), workflow.StatusPendingEditor)

	_, err := f.svc.Reject(ctx, actor(workflow.RoleEditor), a.ID, "   ", nil)
	assert.True(t, errors.Is(err, model.ErrReasonRequired))
	assert.Equal(t, workflow.StatusPendingEditor, f.status(t, a.ID))
}

func TestEdit_AuthorOnlyWhileDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	author := actor(workflow.RoleWartawan)
	a := f.seed(t, author.ID, workflow.StatusDraft)
	content := "isi baru"

	_, err := f.svc.Edit(ctx, author, a.ID, model.UpdateArticleRequest{Content: &content})
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, author, a.ID, nil)
	require.NoError(t, err)

	_, err = f.svc.Edit(ctx, author, a.ID, model.UpdateArticleRequest{Content: &content})
	assert.True(t, errors.Is(err, workflow.ErrPermissionDenied))

	_, err = f.svc.Edit(ctx, author, a.ID, model.UpdateArticleRequest{})
	assert.True(t, errors.Is(err, model.ErrValidation))
}

func TestEdit_StaleExpectedStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.seed(t, uuid.New(), workflow.StatusPendingAdmin)
	title := "Judul baru untuk berita"
	stale := "pending_editor"

	_, err := f.svc.Edit(ctx, actor(workflow.RoleEditor), a.ID, model.UpdateArticleRequest{Title: &title, ExpectedStatus: &stale})
	assert.True(t, errors.Is(err, workflow.ErrConcurrentModification))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	author := actor(workflow.RoleWartawan)
	a := f.seed(t, author.ID, workflow.StatusDraft)

	err := f.svc.Delete(ctx, author, a.ID)
	assert.True(t, errors.Is(err, workflow.ErrPermissionDenied))

	require.NoError(t, f.svc.Delete(ctx, actor(workflow.RoleEditor), a.ID))

	err = f.svc.Delete(ctx, actor(workflow.RoleRedaktur), a.ID)
	assert.True(t, errors.Is(err, workflow.ErrNotFound))
}

func TestGet_Visibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	author := actor(workflow.RoleWartawan)
	draft := f.seed(t, author.ID, workflow.StatusDraft)

	resp, err := f.svc.Get(ctx, author, draft.ID)
	require.NoError(t, err)
	assert.Contains(t, resp.AllowedActions, workflow.ActionSubmitForEditorReview)

	_, err = f.svc.Get(ctx, actor(workflow.RoleWartawan), draft.ID)
	assert.True(t, errors.Is(err, workflow.ErrPermissionDenied))

	_, err = f.svc.Get(ctx, actor(workflow.RoleEditor), draft.ID)
	assert.NoError(t, err)

	_, err = f.svc.Get(ctx, actor(workflow.RoleEditor), uuid.New())
	assert.True(t, errors.Is(err, workflow.ErrNotFound))
}

func TestList_WartawanSeesOwnAndPublished(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	author := actor(workflow.RoleWartawan)
	f.seed(t, author.ID, workflow.StatusDraft)
	f.seed(t, uuid.New(), workflow.StatusDraft)
	f.seed(t, uuid.New(), workflow.StatusPublished)

	resp, err := f.svc.List(ctx, author, model.ListArticlesRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Pagination.Total)

	resp, err = f.svc.List(ctx, actor(workflow.RoleEditor), model.ListArticlesRequest{Status: "draft"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Pagination.Total)
}

func TestMyQueueAndStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	author := actor(workflow.RoleWartawan)
	f.seed(t, author.ID, workflow.StatusDraft)
	f.seed(t, author.ID, workflow.StatusPublished)
	f.seed(t, uuid.New(), workflow.StatusPendingEditor)

	mine, err := f.svc.MyQueue(ctx, author)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = f.svc.MyQueue(ctx, workflow.Guest())
	assert.True(t, errors.Is(err, model.ErrUnauthenticated))

	stats, err := f.svc.Stats(ctx, actor(workflow.RoleEditor))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PendingEditor)
	assert.Equal(t, 1, stats.ReviewQueue)
	assert.Equal(t, 1, stats.Published)

	own, err := f.svc.Stats(ctx, author)
	require.NoError(t, err)
	assert.Equal(t, 1, own.MyDrafts)
	assert.Equal(t, 1, own.MyPublished)
	assert.Equal(t, 0, own.ReviewQueue)
}

// =====================================================
// PUBLIC API
// =====================================================

func TestGetPublished_HidesUnpublished(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	draft := f.seed(t, uuid.New(), workflow.StatusPendingAdmin)
	live := f.seed(t, uuid.New(), workflow.StatusPublished)

	_, err := f.svc.GetPublished(ctx, draft.ID)
	assert.True(t, errors.Is(err, workflow.ErrNotFound))

	got, err := f.svc.GetPublished(ctx, live.ID)
	require.NoError(t, err)
	assert.Equal(t, live.ID, got.ID)
}

func TestListPublished_InvalidatedOnPublish(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seed(t, uuid.New(), workflow.StatusPublished)
	pending := f.seed(t, uuid.New(), workflow.StatusPendingAdmin)

	first, err := f.svc.ListPublished(ctx, model.PublicListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Pagination.Total)

	_, err = f.svc.Publish(ctx, actor(workflow.RoleRedaktur), pending.ID, nil)
	require.NoError(t, err)

	second, err := f.svc.ListPublished(ctx, model.PublicListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Pagination.Total)
}

func TestRecordView_OncePerSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	live := f.seed(t, uuid.New(), workflow.StatusPublished)

	counted, err := f.svc.RecordView(ctx, live.ID, "sess-1")
	require.NoError(t, err)
	assert.True(t, counted)

	counted, err = f.svc.RecordView(ctx, live.ID, "sess-1")
	require.NoError(t, err)
	assert.False(t, counted)

	counted, err = f.svc.RecordView(ctx, live.ID, "sess-2")
	require.NoError(t, err)
	assert.True(t, counted)

	pending, err := f.views.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending[live.ID])

	_, err = f.svc.RecordView(ctx, live.ID, "")
	assert.True(t, errors.Is(err, model.ErrValidation))

	draft := f.seed(t, uuid.New(), workflow.StatusDraft)
	_, err = f.svc.RecordView(ctx, draft.ID, "sess-1")
	assert.True(t, errors.Is(err, workflow.ErrNotFound))
}
