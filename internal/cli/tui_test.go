package cli

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/alexanderramin/labdesk/internal/notify"
	"github.com/alexanderramin/labdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTUI_MenuDependsOnRole(t *testing.T) {
	env := newCLIEnv(t)

	student := NewTestDriver(t, env.as(t, "alice"))
	view := student.View()
	assert.Contains(t, view, "我的工作量")
	assert.Contains(t, view, "公告")
	assert.NotContains(t, view, "待审核工作量")
	assert.NotContains(t, view, "全部工作量")
	assert.Contains(t, view, "alice")

	teacher := NewTestDriver(t, env.as(t, "tom"))
	view = teacher.View()
	assert.Contains(t, view, "待审核工作量")
	assert.Contains(t, view, "全部工作量")
	assert.Contains(t, view, "全部项目")
}

func TestTUI_SignedOutHeader(t *testing.T) {
	env := newCLIEnv(t)
	d := NewTestDriver(t, env.testApp(t))
	assert.Contains(t, d.View(), "未登录")
}

func TestTUI_OpenWorkloadAndGoBack(t *testing.T) {
	env := newCLIEnv(t)
	env.backend.AddWorkload(testutil.NewTestWorkload("整理实验记录", env.alice, testutil.WithMentor(env.mona)))
	d := NewTestDriver(t, env.as(t, "alice"))

	d.OpenMenu("我的工作量")
	require.Equal(t, ViewWorkloadList, d.ActiveViewID())
	assert.Contains(t, d.View(), "整理实验记录")
	assert.Contains(t, d.View(), "我的工作量")

	d.PressEnter()
	require.Equal(t, ViewWorkloadDetail, d.ActiveViewID())
	view := d.View()
	assert.Contains(t, view, "整理实验记录")
	assert.Contains(t, view, "e: edit")
	assert.Contains(t, view, "d: delete")
	assert.NotContains(t, view, "a: review")

	d.PressEsc()
	assert.Equal(t, ViewWorkloadList, d.ActiveViewID())
	d.PressEsc()
	assert.Equal(t, []ViewID{ViewMenu}, d.ViewStackIDs())
}

func TestTUI_ReviewQueueOffersReview(t *testing.T) {
	env := newCLIEnv(t)
	env.backend.AddWorkload(testutil.NewTestWorkload("焊接电路板", env.alice, testutil.WithMentor(env.mona)))
	d := NewTestDriver(t, env.as(t, "mona"))

	d.OpenMenu("待审核工作量")
	require.Equal(t, ViewWorkloadList, d.ActiveViewID())
	assert.Contains(t, d.View(), "焊接电路板")
	assert.Contains(t, d.View(), "alice")

	d.PressEnter()
	require.Equal(t, ViewWorkloadDetail, d.ActiveViewID())
	assert.Contains(t, d.View(), "a: review")
	// Not the submitter, so no edit or delete.
	assert.NotContains(t, d.View(), "e: edit")

	d.PressKey('a')
	require.Equal(t, ViewForm, d.ActiveViewID())
	assert.Equal(t, "审核", d.ActiveViewTitle())

	d.PressEsc()
	assert.Equal(t, ViewWorkloadDetail, d.ActiveViewID())
	require.NotNil(t, d.Notice())
	assert.Equal(t, "已取消", d.Notice().Title)
}

func TestTUI_PollAnnouncesNewSubmissions(t *testing.T) {
	env := newCLIEnv(t)
	env.backend.AddWorkload(testutil.NewTestWorkload("第一条", env.alice, testutil.WithMentor(env.mona)))
	d := NewTestDriver(t, env.as(t, "mona"))

	d.OpenMenu("待审核工作量")
	list, ok := d.ActiveView().(*listView[domain.Workload])
	require.True(t, ok)
	assert.Nil(t, d.Notice(), "the first load is not announced")

	env.backend.AddWorkload(testutil.NewTestWorkload("第二条", env.bob, testutil.WithMentor(env.mona)))
	d.Send(pollTickMsg[domain.Workload]{view: list, gen: list.pollGen})

	require.NotNil(t, d.Notice())
	assert.Equal(t, "新的待审核工作量", d.Notice().Title)
	assert.Equal(t, "有 1 条工作量等待您审核", d.Notice().Description)
	assert.Contains(t, d.View(), "第二条")

	// A stale tick is dropped.
	d.PressKey('j')
	assert.Nil(t, d.Notice())
	d.Send(pollTickMsg[domain.Workload]{view: list, gen: list.pollGen - 1})
	assert.Nil(t, d.Notice())
}

func TestTUI_SubmitWizardCancel(t *testing.T) {
	env := newCLIEnv(t)
	d := NewTestDriver(t, env.as(t, "alice"))

	d.OpenMenu("提交工作量")
	require.Equal(t, ViewForm, d.ActiveViewID())
	assert.Equal(t, "提交工作量", d.ActiveViewTitle())

	// Forms capture q.
	d.PressKey('q')
	assert.False(t, d.IsQuitting())

	d.PressEsc()
	assert.Equal(t, ViewMenu, d.ActiveViewID())
	require.NotNil(t, d.Notice())
	assert.Equal(t, "已取消", d.Notice().Title)
}

func TestTUI_ActionDonePopsAndRefreshes(t *testing.T) {
	env := newCLIEnv(t)
	w := env.backend.AddWorkload(testutil.NewTestWorkload("待删除", env.alice, testutil.WithMentor(env.mona)))
	d := NewTestDriver(t, env.as(t, "alice"))

	d.OpenMenu("我的工作量")
	d.PressEnter()
	require.Equal(t, ViewWorkloadDetail, d.ActiveViewID())

	// Simulate the delete completing on the backend.
	require.NoError(t, env.as(t, "alice").Workloads.Delete(t.Context(), w.ID))
	d.Send(actionDoneMsg{toast: notify.Success("工作量已删除", w.Name), popViews: 1})

	assert.Equal(t, ViewWorkloadList, d.ActiveViewID())
	require.NotNil(t, d.Notice())
	assert.Equal(t, notify.KindSuccess, d.Notice().Kind)
	assert.NotContains(t, d.View(), "#"+strconv.Itoa(w.ID))
	assert.Contains(t, d.View(), "还没有提交过工作量")
}

func TestTUI_ActionFailureKeepsView(t *testing.T) {
	env := newCLIEnv(t)
	env.backend.AddWorkload(testutil.NewTestWorkload("焊接", env.alice, testutil.WithMentor(env.mona)))
	d := NewTestDriver(t, env.as(t, "alice"))

	d.OpenMenu("我的工作量")
	d.PressEnter()
	d.Send(actionDoneMsg{toast: notify.Toast{Title: "审核失败"}, err: errors.New("boom"), popViews: 1})

	assert.Equal(t, ViewWorkloadDetail, d.ActiveViewID())
	require.NotNil(t, d.Notice())
	assert.Equal(t, notify.KindError, d.Notice().Kind)
	assert.Equal(t, notify.RetryLater, d.Notice().Description)
	assert.Contains(t, d.View(), "审核失败")
}

func TestTUI_AnnouncementTabs(t *testing.T) {
	env := newCLIEnv(t)
	env.backend.AddAnnouncement(testutil.NewTestAnnouncement("组会改期", domain.AnnouncementNotice))
	env.backend.AddAnnouncement(testutil.NewTestAnnouncement("机房停电", domain.AnnouncementWarning))
	d := NewTestDriver(t, env.as(t, "bob"))

	d.OpenMenu("公告")
	require.Equal(t, ViewAnnouncements, d.ActiveViewID())
	assert.Contains(t, d.View(), "组会改期")
	assert.Contains(t, d.View(), "机房停电")

	d.PressTab()
	assert.Contains(t, d.View(), "组会改期")
	assert.NotContains(t, d.View(), "机房停电")

	d.PressShiftTab()
	d.PressShiftTab()
	assert.Contains(t, d.View(), "机房停电")
	assert.NotContains(t, d.View(), "组会改期")
}

func TestTUI_AllWorkloadsFilters(t *testing.T) {
	env := newCLIEnv(t)
	for i := 0; i < 12; i++ {
		env.backend.AddWorkload(testutil.NewTestWorkload("hw-"+strconv.Itoa(i), env.alice,
			testutil.WithMentor(env.mona), testutil.WithSource(domain.SourceHardware)))
	}
	env.backend.AddWorkload(testutil.NewTestWorkload("doc-bob", env.bob,
		testutil.WithMentor(env.mona), testutil.WithSource(domain.SourceDocumentation)))
	d := NewTestDriver(t, env.as(t, "tom"))

	d.OpenMenu("全部工作量")
	require.Equal(t, ViewWorkloadList, d.ActiveViewID())
	assert.Contains(t, d.View(), "第 1 / 2 页 · 共 13 条")
	assert.Contains(t, d.View(), "筛选: 全部")
	assert.Contains(t, d.View(), "u: submitter")

	list := d.ActiveView().(*listView[domain.Workload])
	d.PressKey('l')
	require.Equal(t, 2, list.pageNum)

	// horizontal, innovation, hardware
	d.PressKey('o')
	assert.Equal(t, 1, list.pageNum)
	assert.Contains(t, d.View(), "没有符合条件的工作量")
	d.PressKey('o')
	d.PressKey('o')
	view := d.View()
	assert.Contains(t, view, "来源="+domain.SourceHardware.Label())
	assert.Contains(t, view, "第 1 / 2 页 · 共 12 条")
	assert.NotContains(t, view, "doc-bob")

	d.PressKey('l')
	require.Equal(t, 2, list.pageNum)
	d.PressKey('t')
	assert.Equal(t, 1, list.pageNum, "filter change goes back to page 1")
	assert.Contains(t, d.View(), "状态="+domain.WorkloadPending.Label())

	// Submitters come from the unfiltered listing.
	for i := 0; i < 3 && !strings.Contains(d.View(), "提交人=bob"); i++ {
		d.PressKey('u')
	}
	assert.Contains(t, d.View(), "提交人=bob")
	assert.Contains(t, d.View(), "没有符合条件的工作量")
}

func TestNextFilterValue(t *testing.T) {
	names := []string{"alice", "bob"}
	assert.Equal(t, "alice", nextFilterValue(domain.FilterAll, names))
	assert.Equal(t, "alice", nextFilterValue("", names))
	assert.Equal(t, "bob", nextFilterValue("alice", names))
	assert.Equal(t, domain.FilterAll, nextFilterValue("bob", names))
	assert.Equal(t, "alice", nextFilterValue("carol", names))
	assert.Equal(t, domain.FilterAll, nextFilterValue("carol", []string(nil)))
	assert.Equal(t, string(domain.WorkloadPending), nextFilterValue(domain.FilterAll, domain.WorkloadStatuses))
}

func TestTUI_Quit(t *testing.T) {
	env := newCLIEnv(t)

	d := NewTestDriver(t, env.as(t, "alice"))
	d.OpenMenu("公告")
	d.PressKey('q')
	assert.True(t, d.IsQuitting())

	d = NewTestDriver(t, env.as(t, "alice"))
	d.PressCtrlC()
	assert.True(t, d.IsQuitting())
}
