package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/labdesk/internal/api"
	"github.com/alexanderramin/labdesk/internal/auth"
	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/alexanderramin/labdesk/internal/repository"
	"github.com/alexanderramin/labdesk/internal/testutil"
	"github.com/alexanderramin/labdesk/internal/validation"
	"github.com/stretchr/testify/require"
)

const testPassword = "secret1"

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.events) == 0 {
		return UseCaseEvent{}
	}
	return o.events[len(o.events)-1]
}

type serviceEnv struct {
	backend *testutil.FakeBackend
	alice   domain.User // student
	bob     domain.User // student
	mona    domain.User // mentor
	tom     domain.User // teacher
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()
	backend := testutil.NewFakeBackend(t)
	return &serviceEnv{
		backend: backend,
		alice:   backend.AddUser(testutil.NewTestUser("alice", domain.RoleStudent), testPassword),
		bob:     backend.AddUser(testutil.NewTestUser("bob", domain.RoleStudent), testPassword),
		mona:    backend.AddUser(testutil.NewTestUser("mona", domain.RoleMentor), testPassword),
		tom:     backend.AddUser(testutil.NewTestUser("tom", domain.RoleTeacher), testPassword),
	}
}

// actor is one signed-in CLI process: its own client, store and services.
type actor struct {
	store     *auth.Store
	observer  *recordingObserver
	accounts  AccountService
	workloads WorkloadService
	projects  ProjectService
	directory DirectoryService
}

func (e *serviceEnv) newActor(t *testing.T) *actor {
	t.Helper()
	client, err := api.NewClient(api.Config{BaseURL: e.backend.URL(), Timeout: 2 * time.Second}, nil)
	require.NoError(t, err)

	database := testutil.NewTestDB(t)
	codec := testutil.NewTestCodec(t)
	store := auth.NewStore(client, testutil.NewTestUoW(database), codec,
		repository.NewSQLiteSessionRepo(database, codec),
		repository.NewSQLiteAuthEventRepo(database), "default")

	v := validation.New(validation.WithClock(func() time.Time { return testutil.FixedNow }))
	obs := &recordingObserver{}
	return &actor{
		store:     store,
		observer:  obs,
		accounts:  NewAccountService(store, v, obs),
		workloads: NewWorkloadService(client, store, v, 10, obs),
		projects:  NewProjectService(client, store, v, "tom", obs),
		directory: NewDirectoryService(client, store),
	}
}

func (e *serviceEnv) as(t *testing.T, username string) *actor {
	t.Helper()
	a := e.newActor(t)
	_, err := a.accounts.Login(context.Background(), validation.LoginForm{Username: username, Password: testPassword})
	require.NoError(t, err)
	return a
}
