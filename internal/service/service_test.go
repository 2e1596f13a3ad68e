package service_test

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/smartcardai/trialdesk/internal/domain"
	"github.com/smartcardai/trialdesk/internal/service"
	"github.com/smartcardai/trialdesk/internal/store/sqlite"
	"github.com/smartcardai/trialdesk/pkg/config"
	"github.com/smartcardai/trialdesk/pkg/events"
)

// ---------- Mocks ----------

type mockMailer struct {
	demoTo       string
	demoUsername string
	demoPassword string
	demoExpires  time.Time
	noticeTo     string
	noticeName   string
	sendErr      error
}

func (m *mockMailer) SendDemoCredentials(toEmail, toName, username, password string, expiresAt time.Time) error {
	m.demoTo = toEmail
	m.demoUsername = username
	m.demoPassword = password
	m.demoExpires = expiresAt
	return m.sendErr
}

func (m *mockMailer) SendAssignmentNotice(toEmail, toName, customerName, company string) error {
	m.noticeTo = toEmail
	m.noticeName = toName
	return m.sendErr
}

// ---------- Test Setup ----------

type testEnv struct {
	trials        service.TrialService
	staff         service.StaffService
	demos         service.DemoService
	auth          service.AuthService
	notifications service.NotificationService
	mailer        *mockMailer
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "svc.db"), 5*time.Second)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	db := store.DB()
	trialRepo := sqlite.NewTrialRepo(db)
	internRepo := sqlite.NewInternRepo(db)
	demoRepo := sqlite.NewDemoRepo(db)
	notificationRepo := sqlite.NewNotificationRepo(db)

	mail := &mockMailer{}
	bus := events.NewNoopBus()
	notifier := service.NewNotifier(notificationRepo)
	cfg := config.Load()

	return &testEnv{
		trials:        service.NewTrialService(trialRepo, internRepo, notifier, mail, bus),
		staff:         service.NewStaffService(internRepo, bus),
		demos:         service.NewDemoService(demoRepo, internRepo, notifier, mail, bus),
		auth:          service.NewAuthService(internRepo, cfg),
		notifications: service.NewNotificationService(notificationRepo),
		mailer:        mail,
	}
}

func registerTrial(t *testing.T, env *testEnv, email string) *domain.TrialRequest {
	t.Helper()

	created, err := env.trials.Register(context.Background(), &domain.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Company:   "Analytical Engines",
		Phone:     "+1-555-0100",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return created
}

func createIntern(t *testing.T, env *testEnv, username string) *domain.Intern {
	t.Helper()

	in, err := env.staff.Create(context.Background(), &domain.CreateInternRequest{
		Name:     "Intern " + username,
		Username: username,
		Password: "s3cret-pass",
		Email:    username + "@trialdesk.local",
	})
	if err != nil {
		t.Fatalf("create intern failed: %v", err)
	}
	return in
}

// ---------- Tests ----------

func TestRegister_ValidationFailures(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, err := env.trials.Register(ctx, &domain.RegisterRequest{
		FirstName: "NoEmail",
		LastName:  "User",
		Company:   "C",
		Phone:     "1",
	})
	if _, ok := err.(*domain.ValidationError); !ok {
		t.Fatalf("expected validation error for missing email, got %v", err)
	}

	_, err = env.trials.Register(ctx, &domain.RegisterRequest{
		FirstName: "Bad",
		LastName:  "Email",
		Email:     "not-an-email",
		Company:   "C",
		Phone:     "1",
	})
	if _, ok := err.(*domain.ValidationError); !ok {
		t.Fatalf("expected validation error for bad email, got %v", err)
	}
}

func TestAssign_NotifiesBothPartiesAndEmailsIntern(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	trial := registerTrial(t, env, "assignflow@example.com")
	in := createIntern(t, env, "helen")

	// Registration already produced one admin notification.
	before, err := env.notifications.List(ctx, domain.RecipientAdmin, nil, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	baseline := before.UnreadCount

	if _, err := env.trials.Assign(ctx, trial.ID, &in.ID); err != nil {
		t.Fatal(err)
	}

	adminView, err := env.notifications.List(ctx, domain.RecipientAdmin, nil, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if adminView.UnreadCount != baseline+1 {
		t.Fatalf("admin unread = %d, want %d", adminView.UnreadCount, baseline+1)
	}

	internView, err := env.notifications.List(ctx, domain.RecipientIntern, &in.ID, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if internView.UnreadCount != 1 {
		t.Fatalf("intern unread = %d, want 1", internView.UnreadCount)
	}
	if len(internView.Notifications) != 1 {
		t.Fatalf("intern should have exactly one notification, got %d", len(internView.Notifications))
	}

	// Mark-read moves the counter back down.
	if err := env.notifications.MarkRead(ctx, internView.Notifications[0].ID); err != nil {
		t.Fatal(err)
	}
	internView, _ = env.notifications.List(ctx, domain.RecipientIntern, &in.ID, 0, false)
	if internView.UnreadCount != 0 {
		t.Fatalf("intern unread = %d after mark-read, want 0", internView.UnreadCount)
	}

	if env.mailer.noticeTo != in.Email {
		t.Fatalf("assignment notice sent to %q, want %q", env.mailer.noticeTo, in.Email)
	}
}

func TestUnassign_NotifiesPreviousIntern(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	trial := registerTrial(t, env, "unassign@example.com")
	in := createIntern(t, env, "karla")

	if _, err := env.trials.Assign(ctx, trial.ID, &in.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.notifications.MarkAllRead(ctx, domain.RecipientIntern, &in.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := env.trials.Assign(ctx, trial.ID, nil); err != nil {
		t.Fatal(err)
	}

	view, err := env.notifications.List(ctx, domain.RecipientIntern, &in.ID, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if view.UnreadCount != 1 {
		t.Fatalf("intern unread = %d after unassignment, want 1", view.UnreadCount)
	}
	if got := view.Notifications[0].Title; got != "Assignment removed" {
		t.Fatalf("newest notification title = %q, want removal notice", got)
	}

	// Reassignment to someone else also tells the intern who lost it.
	other := createIntern(t, env, "lars")
	if _, err := env.trials.Assign(ctx, trial.ID, &in.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.notifications.MarkAllRead(ctx, domain.RecipientIntern, &in.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.trials.Assign(ctx, trial.ID, &other.ID); err != nil {
		t.Fatal(err)
	}

	view, err = env.notifications.List(ctx, domain.RecipientIntern, &in.ID, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if view.UnreadCount != 1 {
		t.Fatalf("intern unread = %d after reassignment, want 1", view.UnreadCount)
	}
}

func TestDemoRegister_EndToEnd(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	created, err := env.demos.Register(ctx, &domain.RegisterRequest{
		FirstName:   "Grace",
		LastName:    "Hopper",
		Email:       "grace@example.com",
		Company:     "Navy",
		Phone:       "+1-555-0111",
		AccountType: "demo",
	})
	if err != nil {
		t.Fatal(err)
	}

	if !regexp.MustCompile(`^demo_[a-z]{4}[0-9]{2}$`).MatchString(created.Username) {
		t.Fatalf("username %q does not match demo pattern", created.Username)
	}
	if !regexp.MustCompile(`^[a-z0-9]{8}$`).MatchString(created.Password) {
		t.Fatalf("password %q does not match demo pattern", created.Password)
	}

	lifetime := time.Until(created.ExpiresAt)
	if lifetime < domain.DemoLifetime-time.Minute || lifetime > domain.DemoLifetime+time.Minute {
		t.Fatalf("expiry %v not ~10 days out", lifetime)
	}

	// Credentials were emailed to the customer
	if env.mailer.demoTo != "grace@example.com" {
		t.Fatalf("credentials emailed to %q", env.mailer.demoTo)
	}
	if env.mailer.demoUsername != created.Username || env.mailer.demoPassword != created.Password {
		t.Fatal("emailed credentials do not match stored ones")
	}

	// A second active signup with the same email is rejected
	_, err = env.demos.Register(ctx, &domain.RegisterRequest{
		FirstName:   "Grace",
		LastName:    "Again",
		Email:       "grace@example.com",
		Company:     "Navy",
		Phone:       "+1-555-0112",
		AccountType: "demo",
	})
	if err != domain.ErrDuplicateActiveEmail {
		t.Fatalf("expected ErrDuplicateActiveEmail, got %v", err)
	}
}

func TestDemoRegenerate_SendsFreshCredentials(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	created, err := env.demos.Register(ctx, &domain.RegisterRequest{
		FirstName:   "Regen",
		LastName:    "User",
		Email:       "regen@example.com",
		Company:     "C",
		Phone:       "1",
		AccountType: "demo",
	})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := env.demos.Regenerate(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Username == created.Username {
		t.Fatal("expected regenerated username to differ")
	}
	if updated.Password == created.Password {
		t.Fatal("expected regenerated password to differ")
	}
	if env.mailer.demoUsername != updated.Username {
		t.Fatal("expected new credentials emailed")
	}

	// The username letters come from the first name, so only the digit
	// suffix varies between draws. Repeated regenerations must still
	// never hand back the prior username.
	prev := updated.Username
	for i := 0; i < 1000; i++ {
		updated, err = env.demos.Regenerate(ctx, created.ID)
		if err != nil {
			t.Fatal(err)
		}
		if updated.Username == prev {
			t.Fatalf("regeneration %d returned the prior username %q", i, prev)
		}
		prev = updated.Username
	}
}

func TestInternNote_AccessControl(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	trial := registerTrial(t, env, "notes@example.com")
	assigned := createIntern(t, env, "ivy")
	outsider := createIntern(t, env, "jack")

	if _, err := env.trials.Assign(ctx, trial.ID, &assigned.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := env.trials.AddInternNote(ctx, outsider.ID, trial.ID, "sneaky"); err != domain.ErrAccessDenied {
		t.Fatalf("expected ErrAccessDenied for outsider, got %v", err)
	}

	updated, err := env.trials.AddInternNote(ctx, assigned.ID, trial.ID, "left a voicemail")
	if err != nil {
		t.Fatal(err)
	}
	if updated.InternNote != "left a voicemail" {
		t.Fatalf("note not stored: %q", updated.InternNote)
	}
}

func TestLogin_InternAndAdmin(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	in := createIntern(t, env, "kara")

	result, err := env.auth.Login(ctx, in.Username, "s3cret-pass")
	if err != nil {
		t.Fatal(err)
	}
	if result.Role != service.RoleIntern || result.ID != in.ID {
		t.Fatalf("unexpected login result: %+v", result)
	}
	if result.Token == "" {
		t.Fatal("expected a token")
	}

	if _, err := env.auth.Login(ctx, in.Username, "wrong"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := env.auth.Login(ctx, "nobody", "whatever"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	// Admin bootstrap account from config defaults
	result, err = env.auth.Login(ctx, "admin", "admin")
	if err != nil {
		t.Fatal(err)
	}
	if result.Role != service.RoleAdmin {
		t.Fatalf("expected admin role, got %q", result.Role)
	}
}

func TestSuccessRate_AfterTransitionSequence(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	in := createIntern(t, env, "lena")
	first := registerTrial(t, env, "one@example.com")
	second := registerTrial(t, env, "two@example.com")

	if _, err := env.trials.Assign(ctx, first.ID, &in.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.trials.Assign(ctx, second.ID, &in.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.trials.UpdateStatus(ctx, first.ID, "completed"); err != nil {
		t.Fatal(err)
	}

	state, err := env.staff.Get(ctx, in.ID)
	if err != nil {
		t.Fatal(err)
	}
	if state.AssignedCount != 2 || state.CompletedCount != 1 {
		t.Fatalf("counters wrong: %+v", state)
	}
	if state.SuccessRate != 50.0 {
		t.Fatalf("success_rate = %v, want 50", state.SuccessRate)
	}
}
