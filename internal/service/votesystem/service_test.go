package votesystem

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bot_dashboard/internal/model"
	"bot_dashboard/pkg/errorx"
)

const ownerID = "999"

// fixedNow 2024-05-16 周四
var fixedNow = time.Date(2024, 5, 16, 12, 0, 0, 0, time.Local)

type harness struct {
	svc    *Service
	store  *memStore
	queue  *recordingQueue
	events *recordingEvents
}

func newHarness(t *testing.T, requests ...model.FeatureRequest) *harness {
	t.Helper()
	h := &harness{
		store:  newMemStore(requests...),
		queue:  &recordingQueue{},
		events: &recordingEvents{},
	}
	h.svc = NewService(h.store, testConfig("https://discord.example/webhook"), DefaultSettings(), h.queue,
		WithEventPublisher(h.events),
		WithClock(func() time.Time { return fixedNow }),
	)
	return h
}

func requireCode(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, errorx.GetCode(err), "error: %v", err)
}

func TestGetManyHidesPendingFromNonOwners(t *testing.T) {
	h := newHarness(t,
		model.FeatureRequest{ID: "1_1", Title: "a"},
		model.FeatureRequest{ID: "1_2", Title: "b"},
		model.FeatureRequest{ID: "1_3", Title: "c", Pending: true},
		model.FeatureRequest{ID: "1_4", Title: "d"},
		model.FeatureRequest{ID: "1_5", Title: "e"},
	)
	ctx := context.Background()

	page, err := h.svc.GetMany(ctx, 2, 0, "", false, "")
	require.NoError(t, err)
	assert.Len(t, page.Cards, 2)
	assert.True(t, page.MoreAvailable)
	for _, c := range page.Cards {
		assert.False(t, c.Pending)
	}

	all, err := h.svc.GetMany(ctx, 0, 0, "", false, "")
	require.NoError(t, err)
	assert.Len(t, all.Cards, 4)
	assert.False(t, all.MoreAvailable)

	// 非管理员即使请求 includePending 也看不到
	all, err = h.svc.GetMany(ctx, 0, 0, "", true, "123")
	require.NoError(t, err)
	assert.Len(t, all.Cards, 4)

	all, err = h.svc.GetMany(ctx, 0, 0, "", true, ownerID)
	require.NoError(t, err)
	assert.Len(t, all.Cards, 5)
}

func TestGetManyPaginationAndFilter(t *testing.T) {
	h := newHarness(t,
		model.FeatureRequest{ID: "1_1", Title: "Dark mode", Body: "theme"},
		model.FeatureRequest{ID: "1_2", Title: "Music", Body: "add a dark playlist"},
		model.FeatureRequest{ID: "darkid_3", Title: "Other", Body: "x"},
		model.FeatureRequest{ID: "1_4", Title: "Moderation", Body: "Dark"},
	)
	ctx := context.Background()

	page, err := h.svc.GetMany(ctx, 0, 0, "dark", false, "")
	require.NoError(t, err)
	ids := make([]string, 0, len(page.Cards))
	for _, c := range page.Cards {
		ids = append(ids, c.ID)
	}
	// 区分大小写
	assert.ElementsMatch(t, []string{"1_2", "darkid_3"}, ids)

	page, err = h.svc.GetMany(ctx, 2, 2, "", false, "")
	require.NoError(t, err)
	assert.Len(t, page.Cards, 2)
	assert.False(t, page.MoreAvailable)

	page, err = h.svc.GetMany(ctx, 2, 10, "", false, "")
	require.NoError(t, err)
	assert.Empty(t, page.Cards)
	assert.NotNil(t, page.Cards)
	assert.False(t, page.MoreAvailable)

	page, err = h.svc.GetMany(ctx, 0, 3, "", false, "")
	require.NoError(t, err)
	assert.Len(t, page.Cards, 1)
}

func TestAddPending(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	feature, err := h.svc.Add(ctx, "  Dark mode ", "Please add a dark theme", "111")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(feature.ID, "111_"))
	assert.Equal(t, fmt.Sprintf("111_%d", fixedNow.UnixMilli()), feature.ID)
	assert.Equal(t, "Dark mode", feature.Title)
	assert.Equal(t, "Please add a dark theme", feature.Body)
	assert.True(t, feature.Pending)
	assert.Equal(t, 0, feature.Votes)

	stored, err := h.svc.Get(ctx, feature.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Pending)

	webhooks := h.queue.byKind(JobWebhook)
	require.Len(t, webhooks, 1)
	assert.Equal(t, "New Pending Feature Request", webhooks[0].Title)
	assert.Empty(t, webhooks[0].Description)
	assert.Equal(t, "?q="+feature.ID, webhooks[0].URLSuffix)
	assert.Empty(t, h.events.events)
}

func TestAddAutoApproved(t *testing.T) {
	h := newHarness(t)
	h.store.autoApprove["111"] = true

	feature, err := h.svc.Add(context.Background(), "Dark mode", "Please add a dark theme", "111")
	require.NoError(t, err)
	assert.False(t, feature.Pending)

	webhooks := h.queue.byKind(JobWebhook)
	require.Len(t, webhooks, 1)
	assert.Equal(t, "New Approved Feature Request", webhooks[0].Title)
	assert.Equal(t, "**Dark mode**\n\nPlease add a dark theme", webhooks[0].Description)
	assert.Equal(t, []string{EventCreated + ":" + feature.ID}, h.events.events)
}

func TestAddSanitizesAndValidates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	feature, err := h.svc.Add(ctx, "<b>Dark</b> mode<script>alert(1)</script>", "body", "111")
	require.NoError(t, err)
	assert.Equal(t, "Dark mode", feature.Title)

	_, err = h.svc.Add(ctx, "<script>x</script>", "body", "111")
	requireCode(t, err, http.StatusBadRequest)
	assert.Equal(t, `"title" is required.`, err.Error())

	_, err = h.svc.Add(ctx, "t", "b", "")
	requireCode(t, err, http.StatusUnauthorized)

	h.store.blacklist["666"] = true
	_, err = h.svc.Add(ctx, "t", "b", "666")
	requireCode(t, err, http.StatusForbidden)
}

func TestAddPendingLimit(t *testing.T) {
	var existing []model.FeatureRequest
	for i := 0; i < 5; i++ {
		existing = append(existing, model.FeatureRequest{ID: "111_" + string(rune('0'+i)), Title: "t", Pending: true})
	}
	h := newHarness(t, existing...)
	ctx := context.Background()

	_, err := h.svc.Add(ctx, "one more", "", "111")
	requireCode(t, err, http.StatusForbidden)
	assert.Equal(t, "You may only have up to 5 pending feature requests", err.Error())

	// 其他用户不受影响
	_, err = h.svc.Add(ctx, "mine", "", "222")
	require.NoError(t, err)

	// 免审核用户不受上限约束
	h.store.autoApprove["111"] = true
	_, err = h.svc.Add(ctx, "one more", "", "111")
	require.NoError(t, err)
}

func TestApprove(t *testing.T) {
	h := newHarness(t, model.FeatureRequest{ID: "111_1", Title: "Dark mode", Body: "body", Pending: true})
	ctx := context.Background()

	_, err := h.svc.Approve(ctx, "111_1", "111")
	requireCode(t, err, http.StatusForbidden)

	feature, err := h.svc.Approve(ctx, "111_1", ownerID)
	require.NoError(t, err)
	assert.False(t, feature.Pending)
	assert.Equal(t, 0, feature.Votes)

	stored, _ := h.store.Get(ctx, "111_1")
	assert.False(t, stored.Pending)

	// 不幂等
	_, err = h.svc.Approve(ctx, "111_1", ownerID)
	requireCode(t, err, http.StatusConflict)
	assert.Equal(t, msgAlreadyApproved, err.Error())

	webhooks := h.queue.byKind(JobWebhook)
	require.Len(t, webhooks, 1)
	assert.Equal(t, "New Approved Feature Request", webhooks[0].Title)
	assert.Equal(t, "**Dark mode**\n\nbody", webhooks[0].Description)

	authors := h.queue.byKind(JobAuthor)
	require.Len(t, authors, 1)
	assert.Equal(t, ModeApproved, authors[0].Mode)
	assert.Equal(t, "111_1", authors[0].Feature.ID)
	assert.Equal(t, []string{EventApproved + ":111_1"}, h.events.events)

	_, err = h.svc.Approve(ctx, "404_1", ownerID)
	requireCode(t, err, http.StatusBadRequest)
}

func TestApproveOwnRequestSkipsAuthorNotification(t *testing.T) {
	h := newHarness(t, model.FeatureRequest{ID: ownerID + "_1", Title: "t", Pending: true})

	_, err := h.svc.Approve(context.Background(), ownerID+"_1", ownerID)
	require.NoError(t, err)
	assert.Empty(t, h.queue.byKind(JobAuthor))
}

func TestDelete(t *testing.T) {
	h := newHarness(t,
		model.FeatureRequest{ID: "111_1", Title: "pending one", Pending: true},
		model.FeatureRequest{ID: "111_2", Title: "public one"},
	)
	ctx := context.Background()

	_, err := h.svc.Approve(ctx, "111_2", ownerID)
	requireCode(t, err, http.StatusConflict)

	err = h.svc.Delete(ctx, "111_1", "222")
	requireCode(t, err, http.StatusForbidden)

	// 作者删除自己的请求
	require.NoError(t, h.svc.Delete(ctx, "111_1", "111"))
	got, err := h.svc.Get(ctx, "111_1")
	require.NoError(t, err)
	assert.Nil(t, got)

	webhooks := h.queue.byKind(JobWebhook)
	require.Len(t, webhooks, 1)
	assert.Equal(t, "Feature Request has been denied by the author", webhooks[0].Title)
	assert.Equal(t, ColorRed, webhooks[0].Color)
	assert.Empty(t, h.queue.byKind(JobAuthor))

	// 管理员删除已发布的请求
	require.NoError(t, h.svc.Delete(ctx, "111_2", ownerID))
	webhooks = h.queue.byKind(JobWebhook)
	require.Len(t, webhooks, 2)
	assert.Equal(t, "Feature Request has been deleted by a dev", webhooks[1].Title)
	authors := h.queue.byKind(JobAuthor)
	require.Len(t, authors, 1)
	assert.Equal(t, ModeDeleted, authors[0].Mode)
	assert.Equal(t, []string{EventDeleted + ":111_2"}, h.events.events)

	err = h.svc.Delete(ctx, "111_2", ownerID)
	requireCode(t, err, http.StatusBadRequest)
	err = h.svc.Delete(ctx, "", ownerID)
	requireCode(t, err, http.StatusBadRequest)
	assert.Equal(t, msgFeatureIDMissing, err.Error())
}

func TestDeleteUnparseableAuthorRequiresOwner(t *testing.T) {
	h := newHarness(t, model.FeatureRequest{ID: "PVTI_abc", Title: "imported"})
	ctx := context.Background()

	requireCode(t, h.svc.Delete(ctx, "PVTI_abc", "111"), http.StatusForbidden)
	require.NoError(t, h.svc.Delete(ctx, "PVTI_abc", ownerID))
}

func TestAddVote(t *testing.T) {
	h := newHarness(t, model.FeatureRequest{ID: "111_1", Title: "Dark mode", Votes: 3})
	ctx := context.Background()

	feature, err := h.svc.AddVote(ctx, "111_1", "201", "up")
	require.NoError(t, err)
	assert.Equal(t, 4, feature.Votes)

	feature, err = h.svc.AddVote(ctx, "111_1", "202", "down")
	require.NoError(t, err)
	assert.Equal(t, 3, feature.Votes)

	// 同一用户同一周第二次投票，无论类型
	_, err = h.svc.AddVote(ctx, "111_1", "201", "down")
	requireCode(t, err, http.StatusForbidden)
	assert.Equal(t, msgVoteOncePerWeek, err.Error())
	_, err = h.svc.AddVote(ctx, "111_1", "201", "up")
	requireCode(t, err, http.StatusForbidden)

	stored, _ := h.store.Get(ctx, "111_1")
	assert.Equal(t, 3, stored.Votes)
	assert.True(t, fixedNow.Equal(h.store.lastVoted["201"]))

	webhooks := h.queue.byKind(JobWebhook)
	require.Len(t, webhooks, 2)
	assert.Equal(t, "Feature Request has been up voted", webhooks[0].Title)
	assert.Equal(t, "Dark mode\n\nVotes: 4 ", webhooks[0].Description)
	assert.Equal(t, ColorBlurple, webhooks[0].Color)
	assert.Equal(t, "Feature Request has been down voted", webhooks[1].Title)
}

func TestAddVoteRules(t *testing.T) {
	h := newHarness(t, model.FeatureRequest{ID: "111_1", Title: "t"})
	ctx := context.Background()

	_, err := h.svc.AddVote(ctx, "111_1", "201", "sideways")
	requireCode(t, err, http.StatusBadRequest)
	assert.Equal(t, msgInvalidVoteType, err.Error())

	_, err = h.svc.AddVote(ctx, "nope_1", "201", "up")
	requireCode(t, err, http.StatusBadRequest)

	_, err = h.svc.AddVote(ctx, "111_1", "", "up")
	requireCode(t, err, http.StatusUnauthorized)

	// 上周投过票不影响本周
	h.store.lastVoted["203"] = WeekStart(fixedNow).Add(-time.Minute)
	feature, err := h.svc.AddVote(ctx, "111_1", "203", "")
	require.NoError(t, err)
	assert.Equal(t, 1, feature.Votes)

	// 票数不设下限
	h.store.requests["111_1"] = model.FeatureRequest{ID: "111_1", Title: "t"}
	feature, err = h.svc.AddVote(ctx, "111_1", "204", "down")
	require.NoError(t, err)
	assert.Equal(t, -1, feature.Votes)
}

func TestUpdateStopsAtFirstInvalidItem(t *testing.T) {
	h := newHarness(t,
		model.FeatureRequest{ID: "111_123", Title: "old", Body: "old body"},
		model.FeatureRequest{ID: "111_456", Title: "untouched"},
	)
	ctx := context.Background()

	err := h.svc.Update(ctx, []FeatureEdit{
		{ID: "111_123", Title: "", Body: "x"},
		{ID: "111_456", Title: "new", Body: "y"},
	}, ownerID)
	requireCode(t, err, http.StatusBadRequest)

	var batch *errorx.BatchError
	require.True(t, errors.As(err, &batch))
	assert.Equal(t, []errorx.ItemError{{ID: "111_123", Error: `"title" is required.`}}, batch.Errors)

	assert.Equal(t, 0, h.store.saves)
	first, _ := h.store.Get(ctx, "111_123")
	assert.Equal(t, "old", first.Title)
	second, _ := h.store.Get(ctx, "111_456")
	assert.Equal(t, "untouched", second.Title)
	assert.Empty(t, h.queue.byKind(JobAuthor))
}

func TestUpdateUnknownIDAbortsRemaining(t *testing.T) {
	h := newHarness(t,
		model.FeatureRequest{ID: "111_1", Title: "a"},
		model.FeatureRequest{ID: "111_3", Title: "c"},
	)
	ctx := context.Background()

	err := h.svc.Update(ctx, []FeatureEdit{
		{ID: "111_1", Title: "a2"},
		{ID: "111_2", Title: "b2"},
		{ID: "111_3", Title: "c2"},
	}, ownerID)
	requireCode(t, err, http.StatusBadRequest)

	var batch *errorx.BatchError
	require.True(t, errors.As(err, &batch))
	assert.Equal(t, []errorx.ItemError{{ID: "111_2", Error: msgUnknownFeatureRequest}}, batch.Errors)

	// 失败前的条目已写入，之后的条目未处理
	first, _ := h.store.Get(ctx, "111_1")
	assert.Equal(t, "a2", first.Title)
	third, _ := h.store.Get(ctx, "111_3")
	assert.Equal(t, "c", third.Title)

	webhooks := h.queue.byKind(JobWebhook)
	require.Len(t, webhooks, 1)
	assert.Contains(t, webhooks[0].Description, "[111_1](https://bot.example:8443/vote?q=111_1)")
	assert.NotContains(t, webhooks[0].Description, "111_2")
	assert.NotContains(t, webhooks[0].Description, "111_3")
}

func TestUpdateSuccess(t *testing.T) {
	h := newHarness(t,
		model.FeatureRequest{ID: "111_1", Title: "a", Votes: 7, Pending: true},
		model.FeatureRequest{ID: ownerID + "_2", Title: "b"},
	)
	ctx := context.Background()
	approve := false

	require.NoError(t, h.svc.Update(ctx, []FeatureEdit{
		{ID: "111_1", Title: "a2", Body: "<i>new</i> body", Pending: &approve},
		{ID: ownerID + "_2", Title: "b2"},
	}, ownerID))

	first, _ := h.store.Get(ctx, "111_1")
	assert.Equal(t, "a2", first.Title)
	assert.Equal(t, "new body", first.Body)
	assert.Equal(t, 7, first.Votes)
	assert.False(t, first.Pending)

	second, _ := h.store.Get(ctx, ownerID+"_2")
	assert.Equal(t, "b2", second.Title)

	// 只通知非编辑者本人的作者
	authors := h.queue.byKind(JobAuthor)
	require.Len(t, authors, 1)
	assert.Equal(t, "111_1", authors[0].Feature.ID)
	assert.Equal(t, ModeUpdated, authors[0].Mode)

	webhooks := h.queue.byKind(JobWebhook)
	require.Len(t, webhooks, 1)
	assert.Equal(t, "Feature Requests have been edited", webhooks[0].Title)
	assert.Equal(t,
		"The following feature request(s) have been edited by a developer:\n"+
			"\n- [111_1](https://bot.example:8443/vote?q=111_1)"+
			"\n- [999_2](https://bot.example:8443/vote?q=999_2)",
		webhooks[0].Description)
	assert.Equal(t, ColorOrange, webhooks[0].Color)
}

func TestUpdateRequiresOwner(t *testing.T) {
	h := newHarness(t, model.FeatureRequest{ID: "111_1", Title: "a"})

	err := h.svc.Update(context.Background(), []FeatureEdit{{ID: "111_1", Title: "hacked"}}, "111")
	requireCode(t, err, http.StatusForbidden)
	assert.Equal(t, 0, h.store.saves)
}

func TestUpdateStorageFailureIsReported(t *testing.T) {
	h := newHarness(t,
		model.FeatureRequest{ID: "111_1", Title: "a"},
		model.FeatureRequest{ID: "111_2", Title: "b"},
	)
	h.store.saveErr["111_1"] = errStoreDown
	ctx := context.Background()

	err := h.svc.Update(ctx, []FeatureEdit{{ID: "111_1", Title: "a2"}, {ID: "111_2", Title: "b2"}}, ownerID)
	requireCode(t, err, http.StatusBadRequest)

	var batch *errorx.BatchError
	require.True(t, errors.As(err, &batch))
	assert.Equal(t, []errorx.ItemError{{ID: "111_1", Error: msgSaveFailed}}, batch.Errors)

	second, _ := h.store.Get(ctx, "111_2")
	assert.Equal(t, "b2", second.Title)

	authors := h.queue.byKind(JobAuthor)
	require.Len(t, authors, 1)
	assert.Equal(t, "111_2", authors[0].Feature.ID)
}

func TestAddVoteConcurrentSameUser(t *testing.T) {
	h := newHarness(t, model.FeatureRequest{ID: "111_1", Title: "t"})
	ctx := context.Background()

	const n = 20
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := h.svc.AddVote(ctx, "111_1", "201", "up")
			results <- err
		}()
	}

	succeeded := 0
	for i := 0; i < n; i++ {
		if err := <-results; err == nil {
			succeeded++
		} else {
			assert.Equal(t, http.StatusForbidden, errorx.GetCode(err))
		}
	}
	assert.Equal(t, 1, succeeded)

	stored, _ := h.store.Get(ctx, "111_1")
	assert.Equal(t, 1, stored.Votes)
}
