package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"
)

// RecordedRequest is a request seen by the FakeBackend.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Query  url.Values
	Form   url.Values
	JSON   map[string]any
}

type fakeAccount struct {
	user domain.User
	hash []byte
}

func hashPassword(password string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return hash
}

func (a *fakeAccount) checkPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
}

type injectedResponse struct {
	status int
	body   string
}

// FakeBackend is an in-process stand-in for the lab REST API. It enforces the
// session cookie, the CSRF header on unsafe requests and the role rules the
// client relies on.
type FakeBackend struct {
	Server *httptest.Server
	// ExportData is served by the export endpoint.
	ExportData []byte

	mu            sync.Mutex
	accounts      map[int]*fakeAccount
	sessions      map[string]int
	csrf          map[string]bool
	workloads     map[int]*domain.Workload
	projects      map[int]*domain.Project
	announcements []domain.Announcement
	injected      map[string]injectedResponse
	requests      []RecordedRequest
	nextID        int
}

// NewFakeBackend starts a backend that is shut down when the test ends.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	b := &FakeBackend{
		ExportData: []byte("PK\x03\x04xlsx"),
		accounts:   make(map[int]*fakeAccount),
		sessions:   make(map[string]int),
		csrf:       make(map[string]bool),
		workloads:  make(map[int]*domain.Workload),
		projects:   make(map[int]*domain.Project),
		injected:   make(map[string]injectedResponse),
		nextID:     1,
	}
	b.Server = httptest.NewServer(b.router())
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the API root to configure clients with.
func (b *FakeBackend) URL() string {
	return b.Server.URL + "/api"
}

func (b *FakeBackend) id() int {
	id := b.nextID
	b.nextID++
	return id
}

// AddUser registers an account. A zero ID is assigned automatically.
func (b *FakeBackend) AddUser(u domain.User, password string) domain.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u.ID == 0 {
		u.ID = b.id()
	}
	b.accounts[u.ID] = &fakeAccount{user: u, hash: hashPassword(password)}
	return u
}

func (b *FakeBackend) AddWorkload(w domain.Workload) domain.Workload {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w.ID == 0 {
		w.ID = b.id()
	}
	cp := w
	b.workloads[w.ID] = &cp
	return w
}

func (b *FakeBackend) AddProject(p domain.Project) domain.Project {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.ID == 0 {
		p.ID = b.id()
	}
	cp := p
	b.projects[p.ID] = &cp
	return p
}

func (b *FakeBackend) AddAnnouncement(a domain.Announcement) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.announcements = append(b.announcements, a)
}

func (b *FakeBackend) Workload(id int) (domain.Workload, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.workloads[id]
	if !ok {
		return domain.Workload{}, false
	}
	return *w, true
}

func (b *FakeBackend) Project(id int) (domain.Project, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.projects[id]
	if !ok {
		return domain.Project{}, false
	}
	return *p, true
}

func (b *FakeBackend) User(id int) (domain.User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.accounts[id]
	if !ok {
		return domain.User{}, false
	}
	return a.user, true
}

// Inject makes the next request to method+path answer with status and body.
func (b *FakeBackend) Inject(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.injected[method+" "+path] = injectedResponse{status: status, body: body}
}

// ExpireSessions forgets every server-side session.
func (b *FakeBackend) ExpireSessions() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions = make(map[string]int)
}

// Requests returns a copy of every recorded request.
func (b *FakeBackend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests...)
}

// LastRequest returns the most recent request matching method and path.
func (b *FakeBackend) LastRequest(method, path string) (RecordedRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.requests) - 1; i >= 0; i-- {
		if b.requests[i].Method == method && b.requests[i].Path == path {
			return b.requests[i], true
		}
	}
	return RecordedRequest{}, false
}

func (b *FakeBackend) router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(b.recordMiddleware, b.injectMiddleware, b.csrfMiddleware)

	api.HandleFunc("/user/login/", b.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/user/register/", b.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/user/logout/", b.authed(b.handleLogout)).Methods(http.MethodPost)
	api.HandleFunc("/user/me/", b.authed(b.handleMe)).Methods(http.MethodGet)
	api.HandleFunc("/user/update/", b.authed(b.handleUpdateProfile)).Methods(http.MethodPut)
	api.HandleFunc("/user/change-password/", b.authed(b.handleChangePassword)).Methods(http.MethodPost)
	api.HandleFunc("/user/list/", b.authed(b.handleListUsers)).Methods(http.MethodGet)

	api.HandleFunc("/workload/", b.authed(b.handleListWorkloads)).Methods(http.MethodGet)
	api.HandleFunc("/workload/", b.authed(b.handleCreateWorkload)).Methods(http.MethodPost)
	api.HandleFunc("/workload/pending_review/", b.authed(b.handlePendingWorkloads)).Methods(http.MethodGet)
	api.HandleFunc("/workload/reviewed/", b.authed(b.handleReviewedWorkloads)).Methods(http.MethodGet)
	api.HandleFunc("/workload/all_workloads/", b.authed(b.handleAllWorkloads)).Methods(http.MethodGet)
	api.HandleFunc("/workload/export/", b.authed(b.handleExport)).Methods(http.MethodGet)
	api.HandleFunc("/workload/{id:[0-9]+}/", b.authed(b.handleGetWorkload)).Methods(http.MethodGet)
	api.HandleFunc("/workload/{id:[0-9]+}/", b.authed(b.handleUpdateWorkload)).Methods(http.MethodPut)
	api.HandleFunc("/workload/{id:[0-9]+}/", b.authed(b.handleDeleteWorkload)).Methods(http.MethodDelete)
	api.HandleFunc("/workload/{id:[0-9]+}/review/", b.authed(b.handleReviewWorkload)).Methods(http.MethodPost)

	api.HandleFunc("/project/", b.authed(b.handleListProjects)).Methods(http.MethodGet)
	api.HandleFunc("/project/", b.authed(b.handleCreateProject)).Methods(http.MethodPost)
	api.HandleFunc("/project/pending_review/", b.authed(b.handlePendingProjects)).Methods(http.MethodGet)
	api.HandleFunc("/project/reviewed/", b.authed(b.handleReviewedProjects)).Methods(http.MethodGet)
	api.HandleFunc("/project/approved_review/", b.authed(b.handleApprovedProjects)).Methods(http.MethodGet)
	api.HandleFunc("/project/all_projects/", b.authed(b.handleAllProjects)).Methods(http.MethodGet)
	api.HandleFunc("/project/getDeclaredById/", b.authed(b.handleDeclaredProjects)).Methods(http.MethodGet)
	api.HandleFunc("/project/getRelatedById/", b.authed(b.handleRelatedProjects)).Methods(http.MethodGet)
	api.HandleFunc("/project/{id:[0-9]+}/", b.authed(b.handleGetProject)).Methods(http.MethodGet)
	api.HandleFunc("/project/{id:[0-9]+}/", b.authed(b.handleUpdateProject)).Methods(http.MethodPut)
	api.HandleFunc("/project/{id:[0-9]+}/", b.authed(b.handleDeleteProject)).Methods(http.MethodDelete)
	api.HandleFunc("/project/{id:[0-9]+}/review/", b.authed(b.handleReviewProject)).Methods(http.MethodPost)

	api.HandleFunc("/announcement/", b.authed(b.handleAnnouncements)).Methods(http.MethodGet)
	return r
}

// --- middleware ---

func (b *FakeBackend) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := RecordedRequest{
			Method: r.Method,
			Path:   strings.TrimPrefix(r.URL.Path, "/api"),
			Header: r.Header.Clone(),
			Query:  r.URL.Query(),
		}
		ct := r.Header.Get("Content-Type")
		switch {
		case strings.HasPrefix(ct, "multipart/form-data"):
			if err := r.ParseMultipartForm(32 << 20); err == nil {
				rec.Form = r.MultipartForm.Value
			}
		case strings.HasPrefix(ct, "application/json"):
			data, _ := io.ReadAll(r.Body)
			r.Body.Close()
			_ = json.Unmarshal(data, &rec.JSON)
			r.Body = io.NopCloser(strings.NewReader(string(data)))
		}
		b.mu.Lock()
		b.requests = append(b.requests, rec)
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) injectMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api")
		b.mu.Lock()
		resp, ok := b.injected[key]
		delete(b.injected, key)
		b.mu.Unlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(strings.TrimSpace(resp.body), "<") {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		} else {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(resp.status)
		io.WriteString(w, resp.body)
	})
}

// csrfMiddleware mirrors Django: an authenticated unsafe request must echo
// the csrftoken cookie in X-CSRFToken.
func (b *FakeBackend) csrfMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || b.sessionUser(r) == nil {
			next.ServeHTTP(w, r)
			return
		}
		ck, err := r.Cookie("csrftoken")
		if err != nil || ck.Value == "" || r.Header.Get("X-CSRFToken") != ck.Value {
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "CSRF Failed: CSRF token missing or incorrect."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type authedHandler func(w http.ResponseWriter, r *http.Request, me domain.User)

func (b *FakeBackend) authed(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me := b.sessionUser(r)
		if me == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "身份认证信息未提供。"})
			return
		}
		h(w, r, *me)
	}
}

func (b *FakeBackend) sessionUser(r *http.Request) *domain.User {
	ck, err := r.Cookie("sessionid")
	if err != nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.sessions[ck.Value]
	if !ok {
		return nil
	}
	acct, ok := b.accounts[id]
	if !ok {
		return nil
	}
	u := acct.user
	return &u
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func forbidden(w http.ResponseWriter) {
	writeJSON(w, http.StatusForbidden, map[string]string{"detail": "您没有执行该操作的权限。"})
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "未找到。"})
}

func pathID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

// --- users ---

func (b *FakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Username == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"username": {"该字段是必填项。"}})
		return
	}

	b.mu.Lock()
	var found *fakeAccount
	for _, a := range b.accounts {
		if a.user.Username == body.Username && a.checkPassword(body.Password) {
			found = a
			break
		}
	}
	if found == nil {
		b.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "用户名或密码错误"})
		return
	}
	sessionID := uuid.New().String()
	token := uuid.New().String()
	b.sessions[sessionID] = found.user.ID
	b.csrf[token] = true
	user := found.user
	b.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: token, Path: "/"})
	http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: sessionID, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]any{"message": "登录成功", "user": user})
}

func (b *FakeBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username  string      `json:"username"`
		Email     string      `json:"email"`
		Password  string      `json:"password"`
		Password2 string      `json:"password2"`
		Role      domain.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return
	}
	if body.Password != body.Password2 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"password": "两次密码不一致"})
		return
	}

	b.mu.Lock()
	for _, a := range b.accounts {
		if a.user.Username == body.Username {
			b.mu.Unlock()
			writeJSON(w, http.StatusBadRequest, map[string][]string{"username": {"该用户名已被使用"}})
			return
		}
	}
	role := body.Role
	if role == "" {
		role = domain.RoleStudent
	}
	u := domain.User{ID: b.id(), Username: body.Username, Email: body.Email, Role: role}
	b.accounts[u.ID] = &fakeAccount{user: u, hash: hashPassword(body.Password)}
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"message": "用户注册成功", "user": u})
}

func (b *FakeBackend) handleLogout(w http.ResponseWriter, r *http.Request, _ domain.User) {
	ck, _ := r.Cookie("sessionid")
	b.mu.Lock()
	delete(b.sessions, ck.Value)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "登出成功"})
}

func (b *FakeBackend) handleMe(w http.ResponseWriter, _ *http.Request, me domain.User) {
	writeJSON(w, http.StatusOK, me)
}

func (b *FakeBackend) handleUpdateProfile(w http.ResponseWriter, r *http.Request, me domain.User) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return
	}
	b.mu.Lock()
	for _, a := range b.accounts {
		if a.user.ID != me.ID && a.user.Username == body.Username {
			b.mu.Unlock()
			writeJSON(w, http.StatusBadRequest, map[string][]string{"username": {"该用户名已被使用"}})
			return
		}
	}
	acct := b.accounts[me.ID]
	acct.user.Username = body.Username
	acct.user.Email = body.Email
	u := acct.user
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"message": "个人信息更新成功", "user": u})
}

func (b *FakeBackend) handleChangePassword(w http.ResponseWriter, r *http.Request, me domain.User) {
	var body struct {
		Current string `json:"current_password"`
		New     string `json:"new_password"`
		Confirm string `json:"confirm_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acct := b.accounts[me.ID]
	if !acct.checkPassword(body.Current) {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"current_password": {"当前密码不正确"}})
		return
	}
	if body.New != body.Confirm {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"new_password": {"两次输入的新密码不一致"}})
		return
	}
	acct.hash = hashPassword(body.New)
	writeJSON(w, http.StatusOK, map[string]string{"message": "密码修改成功"})
}

func (b *FakeBackend) handleListUsers(w http.ResponseWriter, _ *http.Request, _ domain.User) {
	b.mu.Lock()
	users := make([]domain.User, 0, len(b.accounts))
	for _, a := range b.accounts {
		users = append(users, a.user)
	}
	b.mu.Unlock()
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	writeJSON(w, http.StatusOK, users)
}

// --- workloads ---

func (b *FakeBackend) listWorkloads(keep func(*domain.Workload) bool) []domain.Workload {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Workload, 0)
	for _, wl := range b.workloads {
		if keep(wl) {
			out = append(out, *wl)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (b *FakeBackend) handleListWorkloads(w http.ResponseWriter, _ *http.Request, me domain.User) {
	writeJSON(w, http.StatusOK, b.listWorkloads(func(wl *domain.Workload) bool {
		return wl.Submitter.ID == me.ID
	}))
}

// applyWorkloadForm copies multipart fields onto wl. It returns field errors
// in the backend's shape.
func (b *FakeBackend) applyWorkloadForm(r *http.Request, wl *domain.Workload) map[string][]string {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return map[string][]string{"non_field_errors": {"请求格式错误"}}
		}
	}
	errs := map[string][]string{}
	get := r.FormValue

	wl.Name = get("name")
	wl.Content = get("content")
	wl.Source = domain.WorkloadSource(get("source"))
	wl.WorkType = domain.WorkType(get("work_type"))
	wl.IntensityType = domain.IntensityType(get("intensity_type"))
	for _, f := range []string{"name", "content", "source", "work_type", "start_date", "end_date", "intensity_type", "intensity_value"} {
		if get(f) == "" {
			errs[f] = append(errs[f], "该字段是必填项。")
		}
	}
	if d, err := domain.ParseDate(get("start_date")); err == nil {
		wl.StartDate = d
	}
	if d, err := domain.ParseDate(get("end_date")); err == nil {
		wl.EndDate = d
	}
	if v, err := strconv.ParseFloat(get("intensity_value"), 64); err == nil {
		wl.IntensityValue = v
	}
	wl.InnovationStage = null.NewString(get("innovation_stage"), get("innovation_stage") != "")
	wl.AssistantSalaryPaid = null.Float64{}
	if v, err := strconv.ParseFloat(get("assistant_salary_paid"), 64); err == nil {
		wl.AssistantSalaryPaid = null.Float64From(v)
	}

	wl.MentorReviewer = nil
	if id, err := strconv.Atoi(get("mentor_reviewer_id")); err == nil {
		if acct, ok := b.accounts[id]; ok && acct.user.Role == domain.RoleMentor {
			ref := acct.user.Ref()
			wl.MentorReviewer = &ref
		} else {
			errs["mentor_reviewer_id"] = append(errs["mentor_reviewer_id"], "无效的导师")
		}
	}

	wl.Project, wl.ProjectID = nil, null.Int{}
	if id, err := strconv.Atoi(get("project_id")); err == nil {
		if p, ok := b.projects[id]; ok {
			ref := p.Ref()
			wl.Project = &ref
			wl.ProjectID = null.IntFrom(id)
		} else {
			errs["project_id"] = append(errs["project_id"], "项目不存在")
		}
	}

	wl.Shares = nil
	if raw := get("shares"); raw != "" {
		var shares []domain.WorkloadShare
		if err := json.Unmarshal([]byte(raw), &shares); err != nil {
			errs["shares"] = append(errs["shares"], "格式错误")
		}
		for i := range shares {
			if acct, ok := b.accounts[shares[i].User]; ok {
				ref := acct.user.Ref()
				shares[i].UserInfo = &ref
			}
		}
		wl.Shares = shares
	}

	if file, header, err := r.FormFile("attachments"); err == nil {
		file.Close()
		wl.OriginalFilename = null.StringFrom(header.Filename)
		wl.Attachments = null.StringFrom("attachments/" + header.Filename)
		wl.AttachmentsURL = null.StringFrom(b.Server.URL + "/media/attachments/" + header.Filename)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (b *FakeBackend) handleCreateWorkload(w http.ResponseWriter, r *http.Request, me domain.User) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "multipart body required"})
		return
	}
	b.mu.Lock()
	wl := &domain.Workload{}
	errs := b.applyWorkloadForm(r, wl)
	if errs == nil && me.Role == domain.RoleStudent && wl.MentorReviewer == nil {
		b.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, []string{"学生提交工作量时必须指定导师"})
		return
	}
	if errs != nil {
		b.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	now := domain.Timestamp{Time: time.Now().UTC()}
	wl.ID = b.id()
	wl.Submitter = me.Ref()
	wl.Status = domain.WorkloadPending
	wl.CreatedAt, wl.UpdatedAt = now, now
	b.workloads[wl.ID] = wl
	out := *wl
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, out)
}

func (b *FakeBackend) handleGetWorkload(w http.ResponseWriter, r *http.Request, _ domain.User) {
	wl, ok := b.Workload(pathID(r))
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, wl)
}

func (b *FakeBackend) handleUpdateWorkload(w http.ResponseWriter, r *http.Request, me domain.User) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "multipart body required"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	wl, ok := b.workloads[pathID(r)]
	if !ok || wl.Submitter.ID != me.ID {
		notFound(w)
		return
	}
	if !wl.Editable() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "当前状态不允许修改"})
		return
	}
	updated := *wl
	if errs := b.applyWorkloadForm(r, &updated); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	updated.Status = domain.WorkloadPending
	updated.UpdatedAt = domain.Timestamp{Time: time.Now().UTC()}
	*wl = updated
	writeJSON(w, http.StatusOK, updated)
}

func (b *FakeBackend) handleDeleteWorkload(w http.ResponseWriter, r *http.Request, me domain.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	wl, ok := b.workloads[pathID(r)]
	if !ok || wl.Submitter.ID != me.ID {
		notFound(w)
		return
	}
	if !wl.Editable() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "当前状态不允许删除"})
		return
	}
	delete(b.workloads, wl.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (b *FakeBackend) handlePendingWorkloads(w http.ResponseWriter, _ *http.Request, me domain.User) {
	writeJSON(w, http.StatusOK, b.listWorkloads(func(wl *domain.Workload) bool {
		switch me.Role {
		case domain.RoleMentor:
			return wl.Status == domain.WorkloadPending && wl.Submitter.Role == domain.RoleStudent &&
				wl.MentorReviewer != nil && wl.MentorReviewer.ID == me.ID
		case domain.RoleTeacher:
			return wl.AwaitingTeacher()
		}
		return false
	}))
}

func (b *FakeBackend) handleReviewedWorkloads(w http.ResponseWriter, _ *http.Request, me domain.User) {
	writeJSON(w, http.StatusOK, b.listWorkloads(func(wl *domain.Workload) bool {
		switch me.Role {
		case domain.RoleMentor:
			return wl.MentorReviewer != nil && wl.MentorReviewer.ID == me.ID && wl.MentorReviewTime.Valid()
		case domain.RoleTeacher:
			return wl.TeacherReviewer != nil && wl.TeacherReviewer.ID == me.ID
		}
		return false
	}))
}

func (b *FakeBackend) handleAllWorkloads(w http.ResponseWriter, _ *http.Request, me domain.User) {
	if me.Role != domain.RoleTeacher {
		forbidden(w)
		return
	}
	writeJSON(w, http.StatusOK, b.listWorkloads(func(*domain.Workload) bool { return true }))
}

func (b *FakeBackend) handleExport(w http.ResponseWriter, r *http.Request, me domain.User) {
	if me.Role != domain.RoleTeacher {
		forbidden(w)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="workloads.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(b.ExportData)
}

func (b *FakeBackend) handleReviewWorkload(w http.ResponseWriter, r *http.Request, me domain.User) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	wl, ok := b.workloads[pathID(r)]
	if !ok {
		notFound(w)
		return
	}
	status := domain.WorkloadStatus(body["status"])
	now := domain.Timestamp{Time: time.Now().UTC()}
	ref := me.Ref()
	switch me.Role {
	case domain.RoleMentor:
		if wl.Submitter.Role != domain.RoleStudent || wl.MentorReviewer == nil || wl.MentorReviewer.ID != me.ID {
			writeJSON(w, http.StatusBadRequest, []string{"您不是该工作量的指定审核导师"})
			return
		}
		if status != domain.WorkloadMentorApproved && status != domain.WorkloadMentorRejected {
			writeJSON(w, http.StatusBadRequest, []string{"导师只能将状态设置为'导师已审核'或'导师已驳回'"})
			return
		}
		if body["mentor_comment"] == "" {
			writeJSON(w, http.StatusBadRequest, []string{"请填写审核评论"})
			return
		}
		wl.MentorComment = null.StringFrom(body["mentor_comment"])
		wl.MentorReviewTime = now
	case domain.RoleTeacher:
		if wl.Submitter.Role == domain.RoleStudent && wl.Status != domain.WorkloadMentorApproved {
			writeJSON(w, http.StatusBadRequest, []string{"学生提交的工作量需要导师审核通过后才能进行教师审核"})
			return
		}
		if status != domain.WorkloadTeacherApproved && status != domain.WorkloadTeacherRejected {
			writeJSON(w, http.StatusBadRequest, []string{"教师只能将状态设置为'教师已审核'或'教师已驳回'"})
			return
		}
		if body["teacher_comment"] == "" {
			writeJSON(w, http.StatusBadRequest, []string{"请填写审核评论"})
			return
		}
		wl.TeacherComment = null.StringFrom(body["teacher_comment"])
		wl.TeacherReviewer = &ref
		wl.TeacherReviewTime = now
	default:
		forbidden(w)
		return
	}
	wl.Status = status
	wl.UpdatedAt = now
	writeJSON(w, http.StatusOK, *wl)
}

// --- projects ---

func (b *FakeBackend) listProjects(keep func(*domain.Project) bool) []domain.Project {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Project, 0)
	for _, p := range b.projects {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func isSubmitter(p *domain.Project, me domain.User) bool {
	return p.Submitter != nil && p.Submitter.ID == me.ID
}

func (b *FakeBackend) handleListProjects(w http.ResponseWriter, r *http.Request, me domain.User) {
	submitted := r.URL.Query().Get("submitted") == "true"
	writeJSON(w, http.StatusOK, b.listProjects(func(p *domain.Project) bool {
		if submitted {
			return isSubmitter(p, me)
		}
		return isSubmitter(p, me) || p.ReviewStatus == domain.ReviewApproved || me.Role == domain.RoleTeacher
	}))
}

func (b *FakeBackend) applyProjectForm(r *http.Request, p *domain.Project) map[string][]string {
	errs := map[string][]string{}
	p.Name = r.FormValue("name")
	p.ProjectStatus = domain.ProjectStatus(r.FormValue("project_status"))
	if p.Name == "" {
		errs["name"] = []string{"该字段是必填项。"}
	}
	if !domain.Valid(domain.ProjectStatuses, p.ProjectStatus) {
		errs["project_status"] = []string{"无效的选项。"}
	}
	d, err := domain.ParseDate(r.FormValue("start_date"))
	if err != nil {
		errs["start_date"] = []string{"日期格式错误。"}
	}
	p.StartDate = d
	if name := r.FormValue("teacher_reviewer"); name != "" {
		for _, a := range b.accounts {
			if a.user.Username == name && a.user.Role == domain.RoleTeacher {
				ref := a.user.Ref()
				p.TeacherReviewer = &ref
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (b *FakeBackend) handleCreateProject(w http.ResponseWriter, r *http.Request, me domain.User) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "multipart body required"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p := &domain.Project{}
	if errs := b.applyProjectForm(r, p); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	ref := me.Ref()
	now := domain.Timestamp{Time: time.Now().UTC()}
	p.ID = b.id()
	p.Submitter = &ref
	p.ReviewStatus = domain.ReviewPending
	if me.Role == domain.RoleTeacher && r.FormValue("review_status") == string(domain.ReviewApproved) {
		p.ReviewStatus = domain.ReviewApproved
	}
	p.CreatedAt, p.UpdatedAt = now, now
	b.projects[p.ID] = p
	writeJSON(w, http.StatusCreated, *p)
}

func (b *FakeBackend) handleGetProject(w http.ResponseWriter, r *http.Request, _ domain.User) {
	p, ok := b.Project(pathID(r))
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *FakeBackend) handleUpdateProject(w http.ResponseWriter, r *http.Request, me domain.User) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "multipart body required"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.projects[pathID(r)]
	if !ok || (!isSubmitter(p, me) && me.Role != domain.RoleTeacher) {
		notFound(w)
		return
	}
	if !p.Editable(me.Role) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "已审核通过的项目不能修改"})
		return
	}
	updated := *p
	if errs := b.applyProjectForm(r, &updated); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	if p.ResubmitsOnEdit(me.Role) {
		updated.ReviewStatus = domain.ReviewPending
	}
	updated.UpdatedAt = domain.Timestamp{Time: time.Now().UTC()}
	*p = updated
	writeJSON(w, http.StatusOK, updated)
}

func (b *FakeBackend) handleDeleteProject(w http.ResponseWriter, r *http.Request, me domain.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.projects[pathID(r)]
	if !ok || (!isSubmitter(p, me) && me.Role != domain.RoleTeacher) {
		notFound(w)
		return
	}
	if !p.Editable(me.Role) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "已审核通过的项目不能删除"})
		return
	}
	delete(b.projects, p.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (b *FakeBackend) handleReviewProject(w http.ResponseWriter, r *http.Request, me domain.User) {
	if me.Role != domain.RoleTeacher {
		forbidden(w)
		return
	}
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.projects[pathID(r)]
	if !ok {
		notFound(w)
		return
	}
	status := domain.ReviewStatus(body["review_status"])
	if status != domain.ReviewApproved && status != domain.ReviewRejected {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"review_status": {"无效的选项。"}})
		return
	}
	if body["teacher_comment"] == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"teacher_comment": {"请填写审核评论"}})
		return
	}
	ref := me.Ref()
	p.ReviewStatus = status
	p.TeacherComment = null.StringFrom(body["teacher_comment"])
	p.TeacherReviewer = &ref
	p.TeacherReviewTime = domain.Timestamp{Time: time.Now().UTC()}
	writeJSON(w, http.StatusOK, *p)
}

func (b *FakeBackend) handlePendingProjects(w http.ResponseWriter, _ *http.Request, me domain.User) {
	writeJSON(w, http.StatusOK, b.listProjects(func(p *domain.Project) bool {
		return me.Role == domain.RoleTeacher && p.ReviewStatus == domain.ReviewPending
	}))
}

func (b *FakeBackend) handleReviewedProjects(w http.ResponseWriter, _ *http.Request, me domain.User) {
	writeJSON(w, http.StatusOK, b.listProjects(func(p *domain.Project) bool {
		return p.TeacherReviewer != nil && p.TeacherReviewer.ID == me.ID && p.ReviewStatus != domain.ReviewPending
	}))
}

func (b *FakeBackend) handleApprovedProjects(w http.ResponseWriter, _ *http.Request, _ domain.User) {
	writeJSON(w, http.StatusOK, b.listProjects(func(p *domain.Project) bool {
		return p.ReviewStatus == domain.ReviewApproved
	}))
}

func (b *FakeBackend) handleAllProjects(w http.ResponseWriter, _ *http.Request, me domain.User) {
	if me.Role != domain.RoleTeacher {
		forbidden(w)
		return
	}
	writeJSON(w, http.StatusOK, b.listProjects(func(*domain.Project) bool { return true }))
}

func (b *FakeBackend) handleDeclaredProjects(w http.ResponseWriter, _ *http.Request, me domain.User) {
	writeJSON(w, http.StatusOK, b.listProjects(func(p *domain.Project) bool {
		return isSubmitter(p, me)
	}))
}

func (b *FakeBackend) handleRelatedProjects(w http.ResponseWriter, _ *http.Request, me domain.User) {
	related := map[int]bool{}
	for _, wl := range b.listWorkloads(func(wl *domain.Workload) bool { return wl.Submitter.ID == me.ID }) {
		if wl.ProjectID.Valid {
			related[wl.ProjectID.Int] = true
		}
	}
	writeJSON(w, http.StatusOK, b.listProjects(func(p *domain.Project) bool {
		return related[p.ID]
	}))
}

// --- announcements ---

func (b *FakeBackend) handleAnnouncements(w http.ResponseWriter, _ *http.Request, _ domain.User) {
	b.mu.Lock()
	out := append([]domain.Announcement{}, b.announcements...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}
