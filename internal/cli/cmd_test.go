package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/labdesk/internal/api"
	"github.com/alexanderramin/labdesk/internal/auth"
	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/alexanderramin/labdesk/internal/repository"
	"github.com/alexanderramin/labdesk/internal/service"
	"github.com/alexanderramin/labdesk/internal/testutil"
	"github.com/alexanderramin/labdesk/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "secret1"

// cliEnv is a fake backend seeded with one account per role.
type cliEnv struct {
	backend *testutil.FakeBackend
	alice   domain.User // student
	bob     domain.User // student
	mona    domain.User // mentor
	tom     domain.User // teacher
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	backend := testutil.NewFakeBackend(t)
	return &cliEnv{
		backend: backend,
		alice:   backend.AddUser(testutil.NewTestUser("alice", domain.RoleStudent), testPassword),
		bob:     backend.AddUser(testutil.NewTestUser("bob", domain.RoleStudent), testPassword),
		mona:    backend.AddUser(testutil.NewTestUser("mona", domain.RoleMentor), testPassword),
		tom:     backend.AddUser(testutil.NewTestUser("tom", domain.RoleTeacher), testPassword),
	}
}

// testApp wires a full App against the fake backend, with its own
// in-memory session database. It never prompts.
func (e *cliEnv) testApp(t *testing.T) *App {
	t.Helper()
	client, err := api.NewClient(api.Config{BaseURL: e.backend.URL(), Timeout: 2 * time.Second}, nil)
	require.NoError(t, err)

	database := testutil.NewTestDB(t)
	codec := testutil.NewTestCodec(t)
	store := auth.NewStore(client, testutil.NewTestUoW(database), codec,
		repository.NewSQLiteSessionRepo(database, codec),
		repository.NewSQLiteAuthEventRepo(database), "default")

	v := validation.New(validation.WithClock(func() time.Time { return testutil.FixedNow }))
	return &App{
		Accounts:  service.NewAccountService(store, v),
		Workloads: service.NewWorkloadService(client, store, v, 10),
		Projects:  service.NewProjectService(client, store, v, "tom"),
		Directory: service.NewDirectoryService(client, store),
		Session:   store,
		Settings:  Settings{APIURL: e.backend.URL(), PageSize: 10},
		Now:       func() time.Time { return testutil.FixedNow },
	}
}

// as returns an App signed in as username.
func (e *cliEnv) as(t *testing.T, username string) *App {
	t.Helper()
	app := e.testApp(t)
	_, err := app.Accounts.Login(context.Background(), validation.LoginForm{Username: username, Password: testPassword})
	require.NoError(t, err)
	return app
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	return executeCmdWithInput(t, app, "", args...)
}

func executeCmdWithInput(t *testing.T, app *App, input string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func hardwareArgs(extra ...string) []string {
	args := []string{"workload", "submit",
		"--name", "焊接电路板",
		"--content", "焊接并测试样机",
		"--source", "hardware",
		"--type", "onsite",
		"--start", "2025-06-01",
		"--end", "2025-06-10",
		"--intensity-type", "total",
		"--hours", "12",
	}
	return append(args, extra...)
}

// --- accounts ---

func TestLoginCmd_WithFlags(t *testing.T) {
	env := newCLIEnv(t)
	app := env.testApp(t)

	out, err := executeCmd(t, app, "login", "-u", "alice", "-p", testPassword)
	require.NoError(t, err)
	assert.Contains(t, out, "登录成功")
	assert.Contains(t, out, "alice")

	out, err = executeCmd(t, app, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "alice@lab.example.edu")
	assert.Contains(t, out, "学生")
}

func TestLoginCmd_ReadsPasswordFromInput(t *testing.T) {
	env := newCLIEnv(t)
	app := env.testApp(t)

	_, err := executeCmdWithInput(t, app, testPassword+"\n", "login", "-u", "mona")
	require.NoError(t, err)
	require.NotNil(t, app.Session.Snapshot().User)
	assert.Equal(t, "mona", app.Session.Snapshot().User.Username)
}

func TestLoginCmd_WrongPassword(t *testing.T) {
	env := newCLIEnv(t)
	app := env.testApp(t)

	out, err := executeCmd(t, app, "login", "-u", "alice", "-p", "wrong-password")
	require.Error(t, err)
	assert.Contains(t, out, "登录失败")
	assert.Nil(t, app.Session.Snapshot().User)
}

func TestWhoAmICmd_RequiresLogin(t *testing.T) {
	env := newCLIEnv(t)
	_, err := executeCmd(t, env.testApp(t), "whoami")
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)
}

func TestExpiredSession_TellsUserToLogIn(t *testing.T) {
	env := newCLIEnv(t)
	app := env.as(t, "alice")
	env.backend.ExpireSessions()

	_, err := executeCmd(t, app, "workload", "list")
	require.Error(t, err)
	assert.Nil(t, app.Session.Snapshot().User, "session dropped locally")

	var stderr bytes.Buffer
	PrintError(&stderr, err)
	assert.Contains(t, stderr.String(), "labdesk login")
	assert.NotContains(t, stderr.String(), "身份认证信息未提供")
}

func TestFailedMutation_ReportedOnce(t *testing.T) {
	env := newCLIEnv(t)
	w := env.backend.AddWorkload(testutil.NewTestWorkload("已审核", env.alice,
		testutil.WithMentor(env.mona), testutil.WithWorkloadStatus(domain.WorkloadMentorApproved)))

	out, err := executeCmd(t, env.as(t, "alice"), "workload", "delete", strconv.Itoa(w.ID), "-y")
	require.Error(t, err)
	assert.Equal(t, 1, strings.Count(out, "删除失败"))

	var stderr bytes.Buffer
	PrintError(&stderr, err)
	assert.Empty(t, stderr.String())

	PrintError(&stderr, auth.ErrNotLoggedIn)
	assert.Equal(t, "Error: 请先运行 labdesk login 登录\n", stderr.String())
}

func TestRegisterCmd(t *testing.T) {
	env := newCLIEnv(t)
	app := env.testApp(t)

	out, err := executeCmd(t, app, "register",
		"-u", "carol", "--email", "carol@lab.example.edu", "--role", "student",
		"-p", "labpass9", "--confirm-password", "labpass9")
	require.NoError(t, err)
	assert.Contains(t, out, "注册成功")

	// Registration does not sign in; the new account can.
	assert.Nil(t, app.Session.Snapshot().User)
	_, err = executeCmd(t, app, "login", "-u", "carol", "-p", "labpass9")
	require.NoError(t, err)
}

func TestRegisterCmd_MismatchedPasswords(t *testing.T) {
	env := newCLIEnv(t)
	out, err := executeCmd(t, env.testApp(t), "register",
		"-u", "carol", "--email", "carol@lab.example.edu", "--role", "student",
		"-p", "labpass9", "--confirm-password", "labpass8")
	require.Error(t, err)
	assert.Contains(t, out, "注册失败")
	_, sent := env.backend.LastRequest("POST", "/user/register/")
	assert.False(t, sent)
}

func TestLogoutCmd_RecordsHistory(t *testing.T) {
	env := newCLIEnv(t)
	app := env.as(t, "alice")

	out, err := executeCmd(t, app, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "已退出登录")
	assert.Nil(t, app.Session.Snapshot().User)

	out, err = executeCmd(t, app, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "登出")
	assert.Contains(t, out, "登录")
}

func TestProfileUpdateCmd_KeepsUnsetFields(t *testing.T) {
	env := newCLIEnv(t)
	app := env.as(t, "alice")

	out, err := executeCmd(t, app, "profile", "update", "--email", "alice@new.example.edu")
	require.NoError(t, err)
	assert.Contains(t, out, "个人信息已更新")

	u, ok := env.backend.User(env.alice.ID)
	require.True(t, ok)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@new.example.edu", u.Email)
}

func TestPasswdCmd(t *testing.T) {
	env := newCLIEnv(t)
	app := env.as(t, "alice")

	out, err := executeCmd(t, app, "profile", "passwd",
		"--current", testPassword, "--new", "Zq7#river", "--confirm", "Zq7#river")
	require.NoError(t, err)
	assert.Contains(t, out, "密码已修改")

	_, err = executeCmd(t, env.testApp(t), "login", "-u", "alice", "-p", "Zq7#river")
	require.NoError(t, err)
}

// --- directory ---

func TestUsersCmd_FiltersByRole(t *testing.T) {
	env := newCLIEnv(t)
	app := env.as(t, "alice")

	out, err := executeCmd(t, app, "users", "--role", "mentor")
	require.NoError(t, err)
	assert.Contains(t, out, "mona")
	assert.NotContains(t, out, "alice")

	_, err = executeCmd(t, app, "users", "--role", "admin")
	require.Error(t, err)
}

func TestAnnouncementsCmd_FiltersByType(t *testing.T) {
	env := newCLIEnv(t)
	env.backend.AddAnnouncement(testutil.NewTestAnnouncement("机房停电", domain.AnnouncementWarning))
	env.backend.AddAnnouncement(testutil.NewTestAnnouncement("组会改期", domain.AnnouncementNotice))
	app := env.as(t, "alice")

	out, err := executeCmd(t, app, "announcements", "--type", "warning")
	require.NoError(t, err)
	assert.Contains(t, out, "机房停电")
	assert.NotContains(t, out, "组会改期")

	out, err = executeCmd(t, app, "announcements")
	require.NoError(t, err)
	assert.Contains(t, out, "机房停电")
	assert.Contains(t, out, "组会改期")
}

// --- workloads ---

func TestWorkloadSubmitCmd_WithMentorByName(t *testing.T) {
	env := newCLIEnv(t)
	app := env.as(t, "alice")

	out, err := executeCmd(t, app, hardwareArgs("--mentor", "mona")...)
	require.NoError(t, err)
	assert.Contains(t, out, "工作量已提交")

	mine, err := app.Workloads.ListMine(context.Background())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].MentorReviewer)
	assert.Equal(t, env.mona.ID, mine[0].MentorReviewer.ID)
	assert.Equal(t, 12.0, mine[0].IntensityValue)

	out, err = executeCmd(t, app, "workload", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "焊接电路板")
}

func TestWorkloadSubmitCmd_StudentWithoutMentor(t *testing.T) {
	env := newCLIEnv(t)
	app := env.as(t, "alice")

	out, err := executeCmd(t, app, hardwareArgs()...)
	require.Error(t, err)
	assert.Contains(t, out, "请选择审核导师")
	_, sent := env.backend.LastRequest("POST", "/workload/")
	assert.False(t, sent)
}

func TestWorkloadSubmitCmd_UnknownMentor(t *testing.T) {
	env := newCLIEnv(t)
	_, err := executeCmd(t, env.as(t, "alice"), hardwareArgs("--mentor", "nobody")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mentor not found")
}

func TestWorkloadSubmitCmd_InnovationShares(t *testing.T) {
	env := newCLIEnv(t)
	app := env.as(t, "mona")

	args := hardwareArgs("--source", "innovation", "--stage", "before",
		"--share", "mona:60", "--share", strconv.Itoa(env.alice.ID)+":40")
	_, err := executeCmd(t, app, args...)
	require.NoError(t, err)

	mine, err := app.Workloads.ListMine(context.Background())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Len(t, mine[0].Shares, 2)
	assert.Equal(t, env.mona.ID, mine[0].Shares[0].User)
	assert.Equal(t, env.alice.ID, mine[0].Shares[1].User)
	assert.Equal(t, 40.0, mine[0].Shares[1].Percentage)
}

func TestWorkloadSubmitCmd_SharesMustTotal100(t *testing.T) {
	env := newCLIEnv(t)
	args := hardwareArgs("--source", "innovation", "--stage", "before", "--share", "mona:60")
	out, err := executeCmd(t, env.as(t, "mona"), args...)
	require.Error(t, err)
	assert.Contains(t, out, "提交失败")
}

func TestWorkloadSubmitCmd_Attachment(t *testing.T) {
	env := newCLIEnv(t)
	app := env.as(t, "tom")

	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))

	_, err := executeCmd(t, app, hardwareArgs("--file", path)...)
	require.NoError(t, err)

	mine, err := app.Workloads.ListMine(context.Background())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "report.pdf", mine[0].OriginalFilename.String)
}

func TestWorkloadShowCmd(t *testing.T) {
	env := newCLIEnv(t)
	w := env.backend.AddWorkload(testutil.NewTestWorkload("整理实验记录", env.alice, testutil.WithMentor(env.mona)))

	out, err := executeCmd(t, env.as(t, "alice"), "workload", "show", strconv.Itoa(w.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "整理实验记录")
	assert.Contains(t, out, "mona")

	_, err = executeCmd(t, env.as(t, "alice"), "workload", "show", "abc")
	require.Error(t, err)
}

func TestWorkloadEditCmd_AppliesOnlyChangedFlags(t *testing.T) {
	env := newCLIEnv(t)
	w := env.backend.AddWorkload(testutil.NewTestWorkload("旧名称", env.alice,
		testutil.WithMentor(env.mona), testutil.WithSource(domain.SourceHardware)))

	out, err := executeCmd(t, env.as(t, "alice"), "workload", "edit", strconv.Itoa(w.ID), "--name", "新名称")
	require.NoError(t, err)
	assert.Contains(t, out, "工作量已更新")

	got, ok := env.backend.Workload(w.ID)
	require.True(t, ok)
	assert.Equal(t, "新名称", got.Name)
	assert.Equal(t, w.Content, got.Content)
	assert.Equal(t, domain.SourceHardware, got.Source)
	require.NotNil(t, got.MentorReviewer)
	assert.Equal(t, env.mona.ID, got.MentorReviewer.ID)
}

func TestWorkloadEditCmd_ApprovedIsLocked(t *testing.T) {
	env := newCLIEnv(t)
	w := env.backend.AddWorkload(testutil.NewTestWorkload("已审核", env.alice,
		testutil.WithMentor(env.mona), testutil.WithWorkloadStatus(domain.WorkloadMentorApproved)))

	_, err := executeCmd(t, env.as(t, "alice"), "workload", "edit", strconv.Itoa(w.ID), "--name", "x")
	assert.ErrorIs(t, err, service.ErrNotEditable)
}

func TestWorkloadDeleteCmd(t *testing.T) {
	env := newCLIEnv(t)
	w := env.backend.AddWorkload(testutil.NewTestWorkload("待删除", env.alice, testutil.WithMentor(env.mona)))

	out, err := executeCmd(t, env.as(t, "alice"), "workload", "delete", strconv.Itoa(w.ID), "-y")
	require.NoError(t, err)
	assert.Contains(t, out, "工作量已删除")
	_, ok := env.backend.Workload(w.ID)
	assert.False(t, ok)
}

func TestWorkloadReviewCmd_MentorThenTeacher(t *testing.T) {
	env := newCLIEnv(t)
	w := env.backend.AddWorkload(testutil.NewTestWorkload("焊接", env.alice, testutil.WithMentor(env.mona)))
	id := strconv.Itoa(w.ID)

	mona := env.as(t, "mona")
	out, err := executeCmd(t, mona, "workload", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "焊接")

	out, err = executeCmd(t, mona, "workload", "review", id, "--decision", "approved", "-m", "完成得很好")
	require.NoError(t, err)
	assert.Contains(t, out, "审核完成")
	assert.Contains(t, out, domain.WorkloadMentorApproved.Label())

	tom := env.as(t, "tom")
	_, err = executeCmd(t, tom, "workload", "review", id, "--decision", "rejected", "-m", "工时偏高")
	require.NoError(t, err)

	got, _ := env.backend.Workload(w.ID)
	assert.Equal(t, domain.WorkloadTeacherRejected, got.Status)

	out, err = executeCmd(t, tom, "workload", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "焊接")
}

func TestWorkloadReviewCmd_CommentRequired(t *testing.T) {
	env := newCLIEnv(t)
	w := env.backend.AddWorkload(testutil.NewTestWorkload("焊接", env.alice, testutil.WithMentor(env.mona)))

	out, err := executeCmd(t, env.as(t, "mona"), "workload", "review", strconv.Itoa(w.ID), "--decision", "approved")
	require.Error(t, err)
	assert.Contains(t, out, "审核失败")
}

func TestWorkloadPendingCmd_StudentNotAllowed(t *testing.T) {
	env := newCLIEnv(t)
	_, err := executeCmd(t, env.as(t, "alice"), "workload", "pending")
	assert.ErrorIs(t, err, service.ErrRoleNotAllowed)
}

func TestWorkloadAllCmd_FiltersAndPages(t *testing.T) {
	env := newCLIEnv(t)
	for i := 0; i < 12; i++ {
		env.backend.AddWorkload(testutil.NewTestWorkload("hw-"+strconv.Itoa(i), env.alice,
			testutil.WithMentor(env.mona), testutil.WithSource(domain.SourceHardware)))
	}
	env.backend.AddWorkload(testutil.NewTestWorkload("doc-bob", env.bob,
		testutil.WithMentor(env.mona), testutil.WithSource(domain.SourceDocumentation)))

	tom := env.as(t, "tom")
	out, err := executeCmd(t, tom, "workload", "all", "--source", "hardware", "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "第 2 / 2 页 · 共 12 条")
	assert.NotContains(t, out, "doc-bob")

	out, err = executeCmd(t, tom, "workload", "all", "--submitter", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "doc-bob")
	assert.NotContains(t, out, "hw-1")

	_, err = executeCmd(t, env.as(t, "alice"), "workload", "all")
	assert.ErrorIs(t, err, service.ErrRoleNotAllowed)
}

func TestWorkloadExportCmd(t *testing.T) {
	env := newCLIEnv(t)
	path := filepath.Join(t.TempDir(), "out.xlsx")

	out, err := executeCmd(t, env.as(t, "tom"), "workload", "export", "--status", "teacher_approved", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "导出成功")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, env.backend.ExportData, data)

	req, ok := env.backend.LastRequest("GET", "/workload/export/")
	require.True(t, ok)
	assert.Equal(t, "teacher_approved", req.Query.Get("status"))
	assert.Empty(t, req.Query.Get("source"))
}

// --- projects ---

func TestProjectDeclareCmd_ThenTeacherReviews(t *testing.T) {
	env := newCLIEnv(t)
	alice := env.as(t, "alice")

	out, err := executeCmd(t, alice, "project", "declare", "--name", "智能小车", "--status", "pre_research", "--start", "2025-03-01")
	require.NoError(t, err)
	assert.Contains(t, out, "项目已申报")
	assert.Contains(t, out, domain.ReviewPending.Label())

	mine, err := alice.Projects.ListMine(context.Background())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	id := strconv.Itoa(mine[0].ID)

	tom := env.as(t, "tom")
	out, err = executeCmd(t, tom, "project", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "智能小车")

	_, err = executeCmd(t, tom, "project", "review", id, "--decision", "rejected", "-m", "请补充预算")
	require.NoError(t, err)

	// A rejected project can be edited again by its submitter.
	out, err = executeCmd(t, alice, "project", "edit", id, "--name", "智能小车二期")
	require.NoError(t, err)
	assert.Contains(t, out, "项目已更新")

	out, err = executeCmd(t, alice, "project", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "智能小车二期")
}

func TestProjectDeclareCmd_MissingName(t *testing.T) {
	env := newCLIEnv(t)
	out, err := executeCmd(t, env.as(t, "alice"), "project", "declare", "--start", "2025-03-01")
	require.Error(t, err)
	assert.Contains(t, out, "请输入项目名称")
}

func TestProjectListings(t *testing.T) {
	env := newCLIEnv(t)
	env.backend.AddProject(testutil.NewTestProject("已批项目", env.alice, testutil.WithReviewStatus(domain.ReviewApproved)))
	env.backend.AddProject(testutil.NewTestProject("待批项目", env.bob))

	out, err := executeCmd(t, env.as(t, "alice"), "project", "approved")
	require.NoError(t, err)
	assert.Contains(t, out, "已批项目")
	assert.NotContains(t, out, "待批项目")

	out, err = executeCmd(t, env.as(t, "tom"), "project", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "已批项目")
	assert.Contains(t, out, "待批项目")

	_, err = executeCmd(t, env.as(t, "alice"), "project", "pending")
	assert.ErrorIs(t, err, service.ErrRoleNotAllowed)
}

func TestProjectDeleteCmd_ApprovedIsLockedForStudents(t *testing.T) {
	env := newCLIEnv(t)
	p := env.backend.AddProject(testutil.NewTestProject("已批项目", env.alice, testutil.WithReviewStatus(domain.ReviewApproved)))

	_, err := executeCmd(t, env.as(t, "alice"), "project", "delete", strconv.Itoa(p.ID), "-y")
	assert.ErrorIs(t, err, service.ErrNotEditable)
	_, ok := env.backend.Project(p.ID)
	assert.True(t, ok)
}

// --- helpers ---

func TestParseShares(t *testing.T) {
	users := []domain.User{{ID: 7, Username: "alice"}, {ID: 9, Username: "bob"}}

	shares, err := parseShares("alice:60, 9:40", users)
	require.NoError(t, err)
	assert.Equal(t, []validation.ShareForm{{User: 7, Percentage: 60}, {User: 9, Percentage: 40}}, shares)

	shares, err = parseShares("  ", users)
	require.NoError(t, err)
	assert.Nil(t, shares)

	_, err = parseShares("alice", users)
	assert.Error(t, err)
	_, err = parseShares("carol:50", users)
	assert.Error(t, err)
	_, err = parseShares("alice:lots", users)
	assert.Error(t, err)
}

func TestFormatShares_RoundTrips(t *testing.T) {
	shares := []domain.WorkloadShare{
		{User: 7, UserInfo: &domain.UserRef{ID: 7, Username: "alice"}, Percentage: 62.5},
		{User: 9, Percentage: 37.5},
	}
	assert.Equal(t, "alice:62.5,9:37.5", formatShares(shares))

	parsed, err := parseShares(formatShares(shares), []domain.User{{ID: 7, Username: "alice"}})
	require.NoError(t, err)
	assert.Equal(t, 62.5, parsed[0].Percentage)
	assert.Equal(t, 9, parsed[1].User)
}

func TestReadLine_SuccessiveCalls(t *testing.T) {
	r := strings.NewReader("first\r\nsecond")
	a, err := readLine(r)
	require.NoError(t, err)
	b, err := readLine(r)
	require.NoError(t, err)
	assert.Equal(t, "first", a)
	assert.Equal(t, "second", b)
}
