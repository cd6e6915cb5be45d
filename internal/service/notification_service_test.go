package service

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"go-printshop-ws/internal/model"
	"go-printshop-ws/internal/ws"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifRepo struct {
	mu     sync.Mutex
	rows   []model.Notification
	nextID uint
}

func (f *fakeNotifRepo) Create(n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n.NotifID = f.nextID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	f.rows = append(f.rows, *n)
	return nil
}

func (f *fakeNotifRepo) FindByUser(userID uuid.UUID) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, n := range f.rows {
		if n.UserID == nil || *n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifRepo) CountUnread(userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.rows {
		if n.Status == model.NotifUnread && (n.UserID == nil || *n.UserID == userID) {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotifRepo) MarkRead(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].NotifID == id {
			f.rows[i].Status = model.NotifRead
		}
	}
	return nil
}

func (f *fakeNotifRepo) MarkAllRead(userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].UserID != nil && *f.rows[i].UserID == userID {
			f.rows[i].Status = model.NotifRead
		}
	}
	return nil
}

func (f *fakeNotifRepo) DeleteByUser(userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	for _, n := range f.rows {
		if n.UserID == nil || *n.UserID != userID {
			kept = append(kept, n)
		}
	}
	f.rows = kept
	return nil
}

// fakeUserRepo only backs the broadcast recipient lookup; everything
// else is unused by the notification service.
type fakeUserRepo struct {
	activeIDs []uuid.UUID
}

func (f *fakeUserRepo) FindByEmail(email string) (*model.User, error)       { return nil, nil }
func (f *fakeUserRepo) FindByUsername(username string) (*model.User, error) { return nil, nil }
func (f *fakeUserRepo) FindByID(id uuid.UUID) (*model.User, error)          { return nil, nil }
func (f *fakeUserRepo) FindAll() ([]model.User, error)                      { return nil, nil }
func (f *fakeUserRepo) FindActiveIDs() ([]uuid.UUID, error)                 { return f.activeIDs, nil }
func (f *fakeUserRepo) Create(user *model.User) error                       { return nil }
func (f *fakeUserRepo) Update(user *model.User) error                       { return nil }
func (f *fakeUserRepo) SetActive(id uuid.UUID, active bool) error           { return nil }
func (f *fakeUserRepo) UpdatePassword(id uuid.UUID, hash string) error      { return nil }
func (f *fakeUserRepo) UpdatePrivileges(id uuid.UUID, p []model.Privilege) error {
	return nil
}
func (f *fakeUserRepo) UpdateTokenVersion(id uuid.UUID, version string) error { return nil }
func (f *fakeUserRepo) UpdateLastSeen(id uuid.UUID) error                     { return nil }

type notifFixture struct {
	svc   NotificationService
	repo  *fakeNotifRepo
	users *fakeUserRepo
	jobs  *fakeJobRepo
}

func newNotifFixture() *notifFixture {
	repo := &fakeNotifRepo{}
	users := &fakeUserRepo{}
	jobs := newFakeJobRepo()
	svc := NewNotificationService(repo, users, jobs, nil)
	return &notifFixture{svc: svc, repo: repo, users: users, jobs: jobs}
}

func TestNotifyJobCompletedTargetsOwner(t *testing.T) {
	fx := newNotifFixture()
	owner := uuid.New()

	err := fx.svc.NotifyJobCompleted(&model.PrintJob{
		JobID:  7,
		UserID: owner,
		File:   &model.File{FileName: "thesis.pdf"},
		Status: model.StatusCompleted,
	})
	require.NoError(t, err)

	rows, _ := fx.repo.FindByUser(owner)
	require.Len(t, rows, 1)
	assert.Equal(t, "Print Job Completed", rows[0].Subject)
	assert.Equal(t, "Your file ('thesis.pdf') is now printed and is ready for pickup.", rows[0].Message)
	assert.Equal(t, model.NotifUnread, rows[0].Status)
}

func TestMessageDeclinedUserOnlyForDeclinedJobs(t *testing.T) {
	fx := newNotifFixture()
	owner := uuid.New()

	declined := fx.jobs.seed(&model.PrintJob{UserID: owner, Status: model.StatusDeclined})
	pending := fx.jobs.seed(&model.PrintJob{UserID: owner, Status: model.StatusPending})

	err := fx.svc.MessageDeclinedUser(declined.JobID, "please upload a clearer scan")
	require.NoError(t, err)

	err = fx.svc.MessageDeclinedUser(pending.JobID, "should not send")
	require.Error(t, err)
	assert.Equal(t, KindState, KindOf(err))

	err = fx.svc.MessageDeclinedUser(declined.JobID, "")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	rows, _ := fx.repo.FindByUser(owner)
	require.Len(t, rows, 1)
	assert.Equal(t, "Declined Request Notice", rows[0].Subject)
}

func TestBroadcastToActive(t *testing.T) {
	fx := newNotifFixture()
	a, b := uuid.New(), uuid.New()
	fx.users.activeIDs = []uuid.UUID{a, b}

	count, err := fx.svc.BroadcastToActive("Maintenance", "Closed on Sunday")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rowsA, _ := fx.repo.FindByUser(a)
	rowsB, _ := fx.repo.FindByUser(b)
	assert.Len(t, rowsA, 1)
	assert.Len(t, rowsB, 1)

	_, err = fx.svc.BroadcastToActive("", "no subject")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

// The websocket mirror of a notice must carry the stored row verbatim,
// timestamp included, so the client renders the same created_at it
// would get from a list fetch.
func TestPushMirrorsStoredNotification(t *testing.T) {
	hub := ws.NewHub()
	repo := &fakeNotifRepo{}
	svc := NewNotificationService(repo, &fakeUserRepo{}, newFakeJobRepo(), hub)
	owner := uuid.New()

	delivered := make(chan ws.DirectMessage, 1)
	go func() {
		delivered <- <-hub.Direct
	}()

	err := svc.NotifyJobCompleted(&model.PrintJob{
		JobID:  3,
		UserID: owner,
		File:   &model.File{FileName: "poster.pdf"},
		Status: model.StatusCompleted,
	})
	require.NoError(t, err)

	var dm ws.DirectMessage
	select {
	case dm = <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("no websocket push received")
	}
	assert.Equal(t, owner.String(), dm.UserID)

	var payload struct {
		Type         string `json:"type"`
		Notification struct {
			NotifID   uint      `json:"notif_id"`
			Subject   string    `json:"subject"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"notification"`
	}
	require.NoError(t, json.Unmarshal(dm.Payload, &payload))

	rows, _ := repo.FindByUser(owner)
	require.Len(t, rows, 1)
	assert.Equal(t, "notification", payload.Type)
	assert.Equal(t, rows[0].NotifID, payload.Notification.NotifID)
	assert.Equal(t, rows[0].Subject, payload.Notification.Subject)
	assert.True(t, payload.Notification.CreatedAt.Equal(rows[0].CreatedAt),
		"pushed created_at %v differs from stored %v", payload.Notification.CreatedAt, rows[0].CreatedAt)
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	fx := newNotifFixture()
	owner := uuid.New()
	fx.users.activeIDs = []uuid.UUID{owner}

	_, err := fx.svc.BroadcastToActive("Hello", "first")
	require.NoError(t, err)
	_, err = fx.svc.BroadcastToActive("Hello", "second")
	require.NoError(t, err)

	count, err := fx.svc.UnreadCount(owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, fx.svc.MarkAllRead(owner))
	count, _ = fx.svc.UnreadCount(owner)
	assert.Equal(t, int64(0), count)

	require.NoError(t, fx.svc.ClearForUser(owner))
	rows, _ := fx.svc.ListForUser(owner)
	assert.Empty(t, rows)
}
