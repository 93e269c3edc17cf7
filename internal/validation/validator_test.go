package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestValidator() *Validator {
	return New(WithClock(func() time.Time { return testNow }))
}

func fieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	require.Error(t, err)
	var fe FieldErrors
	require.True(t, errors.As(err, &fe), "expected FieldErrors, got %T", err)
	return fe
}

func validWorkload() WorkloadForm {
	return WorkloadForm{
		Name:             "实验报告",
		Content:          "整理实验数据",
		Source:           domain.SourceHardware,
		WorkType:         domain.WorkOnsite,
		StartDate:        "2025-06-01",
		EndDate:          "2025-06-10",
		IntensityType:    domain.IntensityDaily,
		IntensityValue:   "2.5",
		MentorReviewerID: 4,
		SubmitterRole:    domain.RoleStudent,
	}
}

func TestLoginForm(t *testing.T) {
	v := newTestValidator()
	assert.NoError(t, v.Validate(LoginForm{Username: "alice", Password: "secret"}))

	fe := fieldErrors(t, v.Validate(LoginForm{Password: "123"}))
	assert.Equal(t, "用户名不能为空", fe.First("username"))
	assert.Equal(t, "密码至少需要6个字符", fe.First("password"))
}

func TestRegisterForm(t *testing.T) {
	v := newTestValidator()
	ok := RegisterForm{Username: "bob", Email: "bob@lab.edu", Password: "secret1", ConfirmPassword: "secret1", Role: domain.RoleStudent}
	assert.NoError(t, v.Validate(ok))

	bad := ok
	bad.ConfirmPassword = "secret2"
	bad.Email = "not-an-email"
	bad.Role = "admin"
	fe := fieldErrors(t, v.Validate(bad))
	assert.Equal(t, "两次输入的密码不一致", fe.First("confirm_password"))
	assert.Equal(t, "请输入有效的邮箱地址", fe.First("email"))
	assert.Equal(t, "请选择角色", fe.First("role"))
}

func TestWorkloadForm_Valid(t *testing.T) {
	assert.NoError(t, newTestValidator().Validate(validWorkload()))
}

func TestWorkloadForm_RequiredFields(t *testing.T) {
	fe := fieldErrors(t, newTestValidator().Validate(WorkloadForm{}))
	assert.Equal(t, "请输入工作量名称", fe.First("name"))
	assert.Equal(t, "请选择工作量来源", fe.First("source"))
	assert.Equal(t, "请选择开始日期", fe.First("start_date"))
	assert.Equal(t, "请输入工作强度值", fe.First("intensity_value"))
}

func TestWorkloadForm_EndBeforeStart(t *testing.T) {
	f := validWorkload()
	f.EndDate = "2025-05-30"
	fe := fieldErrors(t, newTestValidator().Validate(f))
	assert.Equal(t, []string{"结束日期不能早于开始日期"}, fe["end_date"])
}

func TestWorkloadForm_SameDayIsAllowed(t *testing.T) {
	f := validWorkload()
	f.EndDate = f.StartDate
	assert.NoError(t, newTestValidator().Validate(f))
}

func TestWorkloadForm_DocumentationWindow(t *testing.T) {
	v := newTestValidator()
	f := validWorkload()
	f.Source = domain.SourceDocumentation
	f.StartDate, f.EndDate = "2025-05-01", "2025-05-20"
	assert.NoError(t, v.Validate(f))

	f.StartDate, f.EndDate = "2025-04-01", "2025-05-10"
	fe := fieldErrors(t, v.Validate(f))
	assert.Contains(t, fe["end_date"], "材料撰写必须在完成后1个月内申报")
}

func TestWorkloadForm_InnovationNeedsStageAndShares(t *testing.T) {
	v := newTestValidator()
	f := validWorkload()
	f.Source = domain.SourceInnovation
	fe := fieldErrors(t, v.Validate(f))
	assert.Equal(t, "请选择大创阶段", fe.First("innovation_stage"))
	assert.Equal(t, "大创类工作量的占比总和必须为100", fe.First("shares"))

	f.InnovationStage = string(domain.StageAfter)
	f.Shares = []ShareForm{{User: 1, Percentage: 33.3}, {User: 2, Percentage: 66.7}}
	assert.NoError(t, v.Validate(f))

	f.Shares = []ShareForm{{User: 1, Percentage: 120}, {User: 2, Percentage: -20}}
	fe = fieldErrors(t, v.Validate(f))
	assert.Equal(t, "占比必须在0到100之间", fe.First("shares[0].percentage"))
	assert.Equal(t, "占比必须在0到100之间", fe.First("shares[1].percentage"))
}

func TestWorkloadForm_AssistantSalary(t *testing.T) {
	v := newTestValidator()
	f := validWorkload()
	f.Source = domain.SourceAssistant
	f.AssistantSalaryPaid = "abc"
	fe := fieldErrors(t, v.Validate(f))
	assert.Equal(t, "请输入已发助教工资（整数）", fe.First("assistant_salary_paid"))

	for _, s := range []string{"NaN", "Inf", "-inf"} {
		f.AssistantSalaryPaid = s
		fe = fieldErrors(t, v.Validate(f))
		assert.Equal(t, "请输入已发助教工资（整数）", fe.First("assistant_salary_paid"), s)
	}

	f.AssistantSalaryPaid = "1200"
	assert.NoError(t, v.Validate(f))
}

func TestWorkloadForm_HorizontalNeedsProject(t *testing.T) {
	f := validWorkload()
	f.Source = domain.SourceHorizontal
	fe := fieldErrors(t, newTestValidator().Validate(f))
	assert.Equal(t, "请选择关联项目", fe.First("project_id"))

	f.ProjectID = 7
	assert.NoError(t, newTestValidator().Validate(f))
}

func TestWorkloadForm_StudentNeedsMentor(t *testing.T) {
	f := validWorkload()
	f.MentorReviewerID = 0
	fe := fieldErrors(t, newTestValidator().Validate(f))
	assert.Equal(t, "请选择审核导师", fe.First("mentor_reviewer_id"))

	f.SubmitterRole = domain.RoleMentor
	assert.NoError(t, newTestValidator().Validate(f))
}

func TestWorkloadForm_Attachment(t *testing.T) {
	v := newTestValidator()
	f := validWorkload()
	f.Attachment = &AttachmentForm{Filename: "big.PDF", Size: MaxAttachmentSize + 1}
	fe := fieldErrors(t, v.Validate(f))
	assert.Equal(t, []string{"文件大小不能超过10MB"}, fe["attachments"])

	f.Attachment = &AttachmentForm{Filename: "run.exe", Size: 10}
	fe = fieldErrors(t, v.Validate(f))
	assert.Equal(t, []string{"请上传常见的文档格式或图片格式"}, fe["attachments"])

	f.Attachment = &AttachmentForm{Filename: "scan.jpeg", Size: 10}
	assert.NoError(t, v.Validate(f))
}

func TestAttachmentFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proof.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))

	a, err := AttachmentFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "proof.pdf", a.Filename)
	assert.Equal(t, int64(8), a.Size)

	_, err = AttachmentFromFile(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestProjectForm(t *testing.T) {
	v := newTestValidator()
	fe := fieldErrors(t, v.Validate(ProjectForm{}))
	assert.Equal(t, "请输入项目名称", fe.First("name"))
	assert.Equal(t, "请选择项目状态", fe.First("project_status"))
	assert.Equal(t, "请选择开始日期", fe.First("start_date"))

	assert.NoError(t, v.Validate(ProjectForm{Name: "机器人", ProjectStatus: domain.ProjectInResearch, StartDate: "2025-01-01"}))
}

func TestReviewForm(t *testing.T) {
	v := newTestValidator()
	fe := fieldErrors(t, v.Validate(ReviewForm{Decision: "maybe"}))
	assert.Equal(t, "请填写完整的审核信息", fe.First("decision"))
	assert.Equal(t, "请填写完整的审核信息", fe.First("comment"))

	assert.NoError(t, v.Validate(ReviewForm{Decision: domain.DecisionApproved, Comment: "同意"}))
}

func TestProfileForm(t *testing.T) {
	fe := fieldErrors(t, newTestValidator().Validate(ProfileForm{Email: "x"}))
	assert.Equal(t, "用户名不能为空", fe.First("username"))
	assert.Equal(t, "请输入有效的邮箱地址", fe.First("email"))
}

func TestPasswordForm(t *testing.T) {
	v := newTestValidator()
	base := PasswordForm{CurrentPassword: "old-pass", Username: "zhangsan", Email: "zhangsan@lab.edu"}

	ok := base
	ok.NewPassword, ok.ConfirmPassword = "Tr0ub4dor&3", "Tr0ub4dor&3"
	assert.NoError(t, v.Validate(ok))

	mismatch := ok
	mismatch.ConfirmPassword = "other"
	fe := fieldErrors(t, v.Validate(mismatch))
	assert.Equal(t, "两次输入的密码不一致", fe.First("confirm_password"))

	similar := base
	similar.NewPassword, similar.ConfirmPassword = "zhangsan1", "zhangsan1"
	fe = fieldErrors(t, v.Validate(similar))
	assert.Equal(t, "新密码与用户名或邮箱过于相似", fe.First("new_password"))

	missing := ok
	missing.CurrentPassword = ""
	fe = fieldErrors(t, v.Validate(missing))
	assert.Equal(t, "请输入当前密码", fe.First("current_password"))
}

func TestPasswordSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, PasswordSimilarity("alice", "alice"), 1e-9)
	assert.Less(t, PasswordSimilarity("Tr0ub4dor&3", "alice", ""), maxSimilarity)
	assert.Equal(t, 0.0, PasswordSimilarity("anything"))
}

func TestFieldErrors_Lines(t *testing.T) {
	fe := FieldErrors{"name": {"a"}, "email": {"b", "c"}}
	assert.Equal(t, []string{"email: b, c", "name: a"}, fe.Lines())
	assert.Equal(t, "email: b, c; name: a", fe.Error())
	assert.Equal(t, "", fe.First("missing"))
}
