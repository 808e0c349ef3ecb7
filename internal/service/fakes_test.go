package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/model"
	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/repository"
)

// fakeUserStore is an in-memory UserStore with the same conditional-write
// semantics as the MySQL repository.
type fakeUserStore struct {
	byKey   map[string]*model.User
	creates int
	err     error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byKey: make(map[string]*model.User)}
}

func (f *fakeUserStore) CreateIfAbsent(ctx context.Context, user *model.User) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if existing, ok := f.byKey[user.EmailKey]; ok {
		return existing, nil
	}
	f.creates++
	stored := *user
	stored.CreatedAt = time.Now().UTC()
	f.byKey[user.EmailKey] = &stored
	return &stored, nil
}

func (f *fakeUserStore) GetByEmailKey(ctx context.Context, emailKey string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if user, ok := f.byKey[emailKey]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

type sentMail struct {
	to      string
	subject string
	body    string
}

// fakeMailer records outgoing mail so tests can read the delivered code.
type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (f *fakeMailer) lastCode() string {
	if len(f.sent) == 0 {
		return ""
	}
	return strings.TrimPrefix(f.sent[len(f.sent)-1].body, "Your OTP is: ")
}

// fakeReadingStore is an in-memory ReadingStore that stamps readings with a
// monotonically increasing clock, and mirrors the real ordering contract:
// Latest ascending, Range descending.
type fakeReadingStore struct {
	byUser map[string][]model.Reading
	epoch  int64
	err    error
}

func newFakeReadingStore() *fakeReadingStore {
	return &fakeReadingStore{byUser: make(map[string][]model.Reading), epoch: 1700000000}
}

func (f *fakeReadingStore) Insert(ctx context.Context, reading *model.Reading) error {
	if f.err != nil {
		return f.err
	}
	f.epoch++
	reading.ID = uuid.NewString()
	reading.RecordedEpoch = f.epoch
	reading.RecordedAt = time.Unix(f.epoch, 0).UTC()
	f.byUser[reading.UserID] = append(f.byUser[reading.UserID], *reading)
	return nil
}

func (f *fakeReadingStore) Latest(ctx context.Context, userID string, limit int) ([]model.Reading, error) {
	if f.err != nil {
		return nil, f.err
	}
	rows := f.byUser[userID]
	if len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	out := make([]model.Reading, len(rows))
	copy(out, rows)
	return out, nil
}

func (f *fakeReadingStore) Range(ctx context.Context, userID string, startEpoch, endEpoch int64) ([]model.Reading, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Reading
	rows := f.byUser[userID]
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].RecordedEpoch >= startEpoch && rows[i].RecordedEpoch <= endEpoch {
			out = append(out, rows[i])
		}
	}
	return out, nil
}

func floatArg(v float64) model.JSONFloat {
	return model.JSONFloat{Value: v, Valid: true}
}

func malformedArg() model.JSONFloat {
	return model.JSONFloat{Malformed: true}
}
