package service

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"deepseek-chat-be/internal/model"
	"deepseek-chat-be/internal/pkg/logger"
	"deepseek-chat-be/internal/pkg/serverutils"
	"deepseek-chat-be/internal/pkg/testutil"
	"deepseek-chat-be/internal/repository/unitofwork"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	svix "github.com/svix/svix-webhooks/go"
	"gorm.io/gorm"
)

const testWebhookSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

func signedHeaders(t *testing.T, payload []byte) http.Header {
	t.Helper()
	wh, err := svix.NewWebhook(testWebhookSecret)
	require.NoError(t, err)

	now := time.Now()
	sig, err := wh.Sign("msg_1", now, payload)
	require.NoError(t, err)

	h := http.Header{}
	h.Set("svix-id", "msg_1")
	h.Set("svix-timestamp", strconv.FormatInt(now.Unix(), 10))
	h.Set("svix-signature", sig)
	return h
}

func newWebhookFixture(t *testing.T) (IWebhookService, unitofwork.RepositoryFactory, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	uow := unitofwork.NewRepositoryFactory(db)
	verifier, err := NewSvixVerifier(testWebhookSecret)
	require.NoError(t, err)
	return NewWebhookService(uow, verifier, logger.NewNopLogger()), uow, db
}

// storedUser returns nil when no row exists.
func storedUser(t *testing.T, db *gorm.DB, id string) *model.User {
	t.Helper()
	var users []model.User
	require.NoError(t, db.Where("id = ?", id).Find(&users).Error)
	if len(users) == 0 {
		return nil
	}
	return &users[0]
}

func TestWebhookUserLifecycle(t *testing.T) {
	svc, uow, db := newWebhookFixture(t)
	ctx := context.Background()

	created := []byte(`{"type":"user.created","data":{"id":"user_1","first_name":"Ada","last_name":"Lovelace","primary_email_address_id":"e2","email_addresses":[{"id":"e1","email_address":"old@example.com"},{"id":"e2","email_address":"ada@example.com"}]}}`)
	res, err := svc.HandleIdentityEvent(ctx, created, signedHeaders(t, created))
	require.NoError(t, err)
	assert.True(t, res.Handled)

	user := storedUser(t, db, "user_1")
	require.NotNil(t, user)
	assert.Equal(t, "Ada Lovelace", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)

	updated := []byte(`{"type":"user.updated","data":{"id":"user_1","first_name":"Ada","email_addresses":[{"id":"e3","email_address":"new@example.com"}]}}`)
	_, err = svc.HandleIdentityEvent(ctx, updated, signedHeaders(t, updated))
	require.NoError(t, err)
	user = storedUser(t, db, "user_1")
	require.NotNil(t, user)
	assert.Equal(t, "new@example.com", user.Email)

	conversations := NewConversationService(uow, &fakeCompleter{}, nil, logger.NewNopLogger())
	_, err = conversations.Create(ctx, "user_1")
	require.NoError(t, err)

	deleted := []byte(`{"type":"user.deleted","data":{"id":"user_1","deleted":true}}`)
	_, err = svc.HandleIdentityEvent(ctx, deleted, signedHeaders(t, deleted))
	require.NoError(t, err)

	assert.Nil(t, storedUser(t, db, "user_1"))
	count, err := uow.NewUnitOfWork(ctx).ConversationRepository().CountOwned(ctx, "user_1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestWebhookUnknownTypeIsNoop(t *testing.T) {
	svc, _, _ := newWebhookFixture(t)
	payload := []byte(`{"type":"session.created","data":{}}`)

	res, err := svc.HandleIdentityEvent(context.Background(), payload, signedHeaders(t, payload))
	require.NoError(t, err)
	assert.False(t, res.Handled)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	svc, _, _ := newWebhookFixture(t)
	payload := []byte(`{"type":"user.deleted","data":{"id":"user_1"}}`)
	headers := signedHeaders(t, payload)

	_, err := svc.HandleIdentityEvent(context.Background(), []byte(`{"type":"user.deleted","data":{"id":"user_2"}}`), headers)
	assert.Equal(t, serverutils.KindValidation, serverutils.KindOf(err))

	_, err = svc.HandleIdentityEvent(context.Background(), payload, http.Header{})
	assert.Equal(t, serverutils.KindValidation, serverutils.KindOf(err))
}
