package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"opinions/internal/anon"
	"opinions/internal/db"
	"opinions/internal/models"

	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := db.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, _ := conn.DB()
	t.Cleanup(func() { sqlDB.Close() })
	return conn
}

// clock 每次调用前进一秒，保证创建顺序可预期
type clock struct {
	mu  sync.Mutex
	cur time.Time
}

func newClock() *clock {
	return &clock{cur: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(d)
}

type fakeMailer struct {
	mu    sync.Mutex
	codes map[string]string
	err   error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{codes: make(map[string]string)}
}

func (m *fakeMailer) SendOTP(ctx context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.codes[email] = code
	return nil
}

func (m *fakeMailer) Code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

type fakeGoogle struct {
	identities map[string]*GoogleIdentity // by id token or code
	err        error
}

func (g *fakeGoogle) VerifyIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	if g.err != nil {
		return nil, g.err
	}
	if id, ok := g.identities[idToken]; ok {
		return id, nil
	}
	return nil, newError(ErrValidation, "Invalid Google token")
}

func (g *fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.google.test/auth?state=" + state
}

func (g *fakeGoogle) Exchange(ctx context.Context, code, redirectURI string) (*GoogleIdentity, error) {
	return g.VerifyIDToken(ctx, code)
}

// fixture 组装一套共用同一数据库的服务
type fixture struct {
	db            *gorm.DB
	clock         *clock
	anon          *anon.Pseudonymizer
	topics        *TopicService
	opinions      *OpinionService
	comments      *CommentService
	notifications *NotificationService
	users         *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := newTestDB(t)
	clk := newClock()

	f := &fixture{
		db:            conn,
		clock:         clk,
		anon:          anon.New("test-secret"),
		topics:        NewTopicService(conn),
		notifications: NewNotificationService(conn),
		users:         NewUserService(conn),
	}
	f.opinions = NewOpinionService(conn, f.topics)
	f.opinions.now = clk.Now
	f.notifications.now = clk.Now
	f.comments = NewCommentService(conn, f.anon, f.notifications)
	f.comments.now = clk.Now
	return f
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := models.User{Email: name + "@example.com", Username: name, IsSetupComplete: true, CreatedAt: f.clock.Now()}
	if err := f.db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &u
}

func (f *fixture) opinion(t *testing.T, author *models.User, topic string, anonymous bool) *OpinionView {
	t.Helper()
	o, err := f.opinions.Create(context.Background(), CreateOpinionInput{
		Title:       "Opinion on " + topic,
		Content:     "Some **content**",
		Topic:       topic,
		IsAnonymous: anonymous,
		UserID:      author.ID,
	})
	if err != nil {
		t.Fatalf("create opinion: %v", err)
	}
	return o
}

func (f *fixture) comment(t *testing.T, author *models.User, opinionID, parentID string, anonymous bool) *CommentView {
	t.Helper()
	c, err := f.comments.Create(context.Background(), CreateCommentInput{
		Content:     "comment by " + author.Username,
		OpinionID:   opinionID,
		ParentID:    parentID,
		IsAnonymous: anonymous,
		UserID:      author.ID,
	})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return c
}
