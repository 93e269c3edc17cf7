package validation

// Struct-level rule tags.
const (
	tagEndAfterStart   = "end_after_start"
	tagDocDeadline     = "doc_deadline"
	tagInnovationStage = "innovation_stage"
	tagSalary          = "salary"
	tagSharesTotal     = "shares_total"
	tagProjectRequired = "project_required"
	tagMentorRequired  = "mentor_required"
	tagFileSize        = "file_size"
	tagFileType        = "file_type"
	tagPwdSimilar      = "pwd_similar"
)

var ruleTexts = map[string]string{
	tagEndAfterStart:   "结束日期不能早于开始日期",
	tagDocDeadline:     "材料撰写必须在完成后1个月内申报",
	tagInnovationStage: "请选择大创阶段",
	tagSalary:          "请输入已发助教工资（整数）",
	tagSharesTotal:     "大创类工作量的占比总和必须为100",
	tagProjectRequired: "请选择关联项目",
	tagMentorRequired:  "请选择审核导师",
	tagFileSize:        "文件大小不能超过10MB",
	tagFileType:        "请上传常见的文档格式或图片格式",
	tagPwdSimilar:      "新密码与用户名或邮箱过于相似",
}

// fieldMessages overrides the generic translation for "field.tag". A
// "Form.field.tag" key wins over the bare one.
var fieldMessages = map[string]string{
	"username.required": "用户名不能为空",
	"password.min":      "密码至少需要6个字符",
	"password.required": "密码至少需要6个字符",
	"email.required":    "请输入有效的邮箱地址",
	"email.email":       "请输入有效的邮箱地址",
	"role.required":     "请选择角色",
	"role.oneof":        "请选择角色",

	"confirm_password.min":      "密码至少需要6个字符",
	"confirm_password.eqfield":  "两次输入的密码不一致",
	"current_password.required": "请输入当前密码",
	"new_password.min":          "密码至少需要6个字符",
	"new_password.required":     "密码至少需要6个字符",

	"WorkloadForm.name.required": "请输入工作量名称",
	"ProjectForm.name.required":  "请输入项目名称",
	"content.required":           "请输入工作量内容",
	"source.required":            "请选择工作量来源",
	"source.oneof":               "请选择工作量来源",
	"work_type.required":         "请选择工作类型",
	"work_type.oneof":            "请选择工作类型",
	"start_date.required":        "请选择开始日期",
	"start_date.datetime":        "日期格式应为YYYY-MM-DD",
	"end_date.required":          "请选择结束日期",
	"end_date.datetime":          "日期格式应为YYYY-MM-DD",
	"intensity_type.required":    "请选择工作强度类型",
	"intensity_type.oneof":       "请选择工作强度类型",
	"intensity_value.required":   "请输入工作强度值",
	"intensity_value.numeric":    "工作强度值必须是数字",
	"user.required":              "请选择参与人",
	"percentage.gte":             "占比必须在0到100之间",
	"percentage.lte":             "占比必须在0到100之间",

	"project_status.required": "请选择项目状态",
	"project_status.oneof":    "请选择项目状态",

	"decision.required": "请填写完整的审核信息",
	"decision.oneof":    "请填写完整的审核信息",
	"comment.required":  "请填写完整的审核信息",
}
