package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"photoshare-backend/internal/apperror"
	"photoshare-backend/internal/middleware"
	"photoshare-backend/internal/models"
	"photoshare-backend/internal/services"
	"photoshare-backend/internal/storage"
	"photoshare-backend/internal/testutil"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "handler-test-secret-at-least-32-bytes"
	cookieName = "session"
	maxUpload  = 10 << 20
)

type testServer struct {
	t      *testing.T
	store  *testutil.MemoryStore
	users  *services.UserService
	hub    *services.WSHub
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, func(*RouterConfig) {})
}

// newTestServerWith lets a test adjust the router configuration before it is built
func newTestServerWith(t *testing.T, configure func(*RouterConfig)) *testServer {
	t.Helper()

	store := testutil.NewMemoryStore()
	assets, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	users, images, shares := store.Users(), store.Images(), store.Shares()
	friendships, groups, notifications := store.Friendships(), store.Groups(), store.Notifications()

	hub := services.NewWSHub()
	access := services.NewAccessResolver(images, shares, groups)
	views := services.NewViewAssembler(users, images, shares, groups)
	dispatcher := services.NewDispatcher(notifications, users, groups, views, hub, nil)

	userService := services.NewUserService(users, testSecret, time.Hour)
	imageService := services.NewImageService(images, shares, users, groups, access, views, dispatcher, assets, maxUpload)
	friendService := services.NewFriendService(friendships, users, views, dispatcher)
	groupService := services.NewGroupService(groups, users, images, access, views, dispatcher)
	notificationService := services.NewNotificationService(notifications, views)

	cfg := RouterConfig{
		Sessions:   userService,
		CookieName: cookieName,
		Uploads:    assets.Handler(),
	}
	configure(&cfg)

	router := NewRouter(Handlers{
		Auth:          NewAuthHandler(userService, cookieName, false),
		Users:         NewUserHandler(userService),
		Images:        NewImageHandler(imageService, maxUpload),
		Friends:       NewFriendHandler(friendService),
		Groups:        NewGroupHandler(groupService),
		Notifications: NewNotificationHandler(notificationService),
		WebSocket:     NewWebSocketHandler(hub, userService, cookieName, nil),
	}, cfg)

	return &testServer{t: t, store: store, users: userService, hub: hub, router: router}
}

// session returns a cookie authenticating as userID
func (s *testServer) session(userID int64) *http.Cookie {
	token, err := s.users.GenerateJWT(userID)
	require.NoError(s.t, err)
	return &http.Cookie{Name: cookieName, Value: token}
}

func (s *testServer) do(method, path string, as *models.User, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.AddCookie(s.session(as.ID))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) upload(as *models.User, file []byte, fields map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if file != nil {
		part, err := mw.CreateFormFile("image", "photo.png")
		require.NoError(s.t, err)
		_, err = part.Write(file)
		require.NoError(s.t, err)
	}
	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(s.session(as.ID))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	srv := newTestServer(t)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/images"},
		{http.MethodGet, "/api/friends"},
		{http.MethodGet, "/api/groups"},
		{http.MethodGet, "/api/notifications"},
		{http.MethodGet, "/api/users/search?query=a"},
		{http.MethodGet, "/api/auth/me"},
	}
	for _, p := range paths {
		t.Run(p.path, func(t *testing.T) {
			rec := srv.do(p.method, p.path, nil, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/images", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "garbage"})
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/api/auth/register", nil, CredentialsRequest{Username: "alice", Password: "s3cret-pass"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "s3cret-pass")
	assert.NotContains(t, rec.Body.String(), "password")

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(session)
	me := httptest.NewRecorder()
	srv.router.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "alice", decode[models.User](t, me).Username)

	rec = srv.do(http.MethodPost, "/api/auth/register", nil, CredentialsRequest{Username: "Alice", Password: "s3cret-pass"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodPost, "/api/auth/login", nil, CredentialsRequest{Username: "alice", Password: "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(http.MethodPost, "/api/auth/login", nil, CredentialsRequest{Username: "alice", Password: "s3cret-pass"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodPost, "/api/auth/logout", nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestFriendRequestScenario(t *testing.T) {
	srv := newTestServer(t)
	a := srv.store.CreateUser(t, "anna")
	b := srv.store.CreateUser(t, "boris")

	rec := srv.do(http.MethodPost, "/api/friends/request", a, FriendRequestBody{UserID: b.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(http.MethodGet, "/api/friends/requests", b, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	requests := decode[[]models.FriendWithUser](t, rec)
	require.Len(t, requests, 1)
	assert.Equal(t, "anna", requests[0].User.Username)

	path := "/api/friends/requests/" + itoa(requests[0].ID)
	rec = srv.do(http.MethodPut, path, a, FriendResponseBody{Status: models.FriendshipAccepted})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(http.MethodPut, path, b, FriendResponseBody{Status: "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodPut, path, b, FriendResponseBody{Status: models.FriendshipAccepted})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, pair := range []struct{ viewer, friend *models.User }{{a, b}, {b, a}} {
		rec = srv.do(http.MethodGet, "/api/friends", pair.viewer, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		friends := decode[[]models.FriendWithUser](t, rec)
		require.Len(t, friends, 1)
		assert.Equal(t, pair.friend.Username, friends[0].User.Username)
	}

	rec = srv.do(http.MethodGet, "/api/notifications", a, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notes := decode[[]models.NotificationWithDetails](t, rec)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationFriendRequest, notes[0].Type)
	assert.Contains(t, notes[0].Content, "accepted")

	rec = srv.do(http.MethodPost, "/api/friends/request", b, FriendRequestBody{UserID: a.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodPost, "/api/friends/request", a, FriendRequestBody{UserID: a.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGroupImagesRequireMembership(t *testing.T) {
	srv := newTestServer(t)
	a := srv.store.CreateUser(t, "anna")
	b := srv.store.CreateUser(t, "boris")
	outsider := srv.store.CreateUser(t, "outsider")

	rec := srv.do(http.MethodPost, "/api/groups", a, CreateGroupRequest{Name: "trip"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	group := decode[models.GroupWithMembers](t, rec)
	require.Len(t, group.Members, 1)

	rec = srv.do(http.MethodPost, "/api/groups/"+itoa(group.ID)+"/members", a, AddMemberRequest{UserID: b.ID})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(http.MethodPost, "/api/groups/"+itoa(group.ID)+"/members", a, AddMemberRequest{UserID: b.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodGet, "/api/groups/"+itoa(group.ID)+"/images", b, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodGet, "/api/groups/"+itoa(group.ID)+"/images", outsider, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(http.MethodGet, "/api/groups/"+itoa(group.ID), outsider, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(http.MethodGet, "/api/groups/9999/images", a, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(http.MethodDelete, "/api/groups/"+itoa(group.ID)+"/members/"+itoa(a.ID), b, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(http.MethodDelete, "/api/groups/"+itoa(group.ID)+"/members/"+itoa(b.ID), b, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(http.MethodGet, "/api/groups/abc", a, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserSearch(t *testing.T) {
	srv := newTestServer(t)
	caller := srv.store.CreateUser(t, "Alfred")
	srv.store.CreateUser(t, "ALINA")
	srv.store.CreateUser(t, "kalle")
	srv.store.CreateUser(t, "bob")

	rec := srv.do(http.MethodGet, "/api/users/search?query=al", caller, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	names := []string{}
	for _, u := range decode[[]models.User](t, rec) {
		names = append(names, u.Username)
	}
	assert.ElementsMatch(t, []string{"ALINA", "kalle"}, names)
}

func TestImageUploadAndAccess(t *testing.T) {
	srv := newTestServer(t)
	a := srv.store.CreateUser(t, "anna")
	b := srv.store.CreateUser(t, "boris")
	c := srv.store.CreateUser(t, "chen")
	group := srv.store.CreateGroup(t, "trip", a.ID, b.ID, c.ID)
	png := testutil.PNG(t)

	rec := srv.upload(a, png, map[string]string{
		"description": "sunset",
		"groupIds":    "[" + itoa(group.ID) + "]",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	image := decode[models.ImageWithShares](t, rec)
	assert.Equal(t, a.ID, image.OwnerID)
	assert.Len(t, image.Shares.Groups, 1)
	assert.Empty(t, image.Shares.Users)

	for _, member := range []*models.User{b, c} {
		rec = srv.do(http.MethodGet, "/api/notifications", member, nil)
		notes := decode[[]models.NotificationWithDetails](t, rec)
		require.Len(t, notes, 1)
		assert.Equal(t, models.NotificationImageShare, notes[0].Type)
	}
	rec = srv.do(http.MethodGet, "/api/notifications/unread-count", a, nil)
	assert.JSONEq(t, `{"count":0}`, rec.Body.String())

	stranger := srv.store.CreateUser(t, "stranger")

	assert.Equal(t, http.StatusUnauthorized, srv.do(http.MethodGet, image.Path, nil, nil).Code)
	assert.Equal(t, http.StatusForbidden, srv.do(http.MethodGet, image.Path, stranger, nil).Code)
	for _, viewer := range []*models.User{a, b} {
		served := srv.do(http.MethodGet, image.Path, viewer, nil)
		assert.Equal(t, http.StatusOK, served.Code)
		assert.Equal(t, png, served.Body.Bytes())
	}

	imagePath := "/api/images/" + itoa(image.ID)
	assert.Equal(t, http.StatusOK, srv.do(http.MethodGet, imagePath, b, nil).Code)

	assert.Equal(t, http.StatusForbidden, srv.do(http.MethodGet, imagePath, stranger, nil).Code)
	assert.Equal(t, http.StatusNotFound, srv.do(http.MethodGet, "/api/images/9999", a, nil).Code)

	assert.Equal(t, http.StatusForbidden, srv.do(http.MethodDelete, imagePath, b, nil).Code)
	assert.Equal(t, http.StatusNoContent, srv.do(http.MethodDelete, imagePath, a, nil).Code)
	assert.Equal(t, http.StatusNotFound, srv.do(http.MethodGet, imagePath, a, nil).Code)

	rec = srv.do(http.MethodGet, "/api/notifications", b, nil)
	assert.Empty(t, decode[[]models.NotificationWithDetails](t, rec))
	assert.Equal(t, http.StatusNotFound, srv.do(http.MethodGet, image.Path, a, nil).Code)
}

func TestUploadsAreNotListed(t *testing.T) {
	srv := newTestServer(t)
	a := srv.store.CreateUser(t, "anna")
	rec := srv.upload(a, testutil.PNG(t), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	image := decode[models.ImageWithShares](t, rec)
	name := strings.TrimPrefix(image.Path, "/uploads/")

	for _, path := range []string{"/uploads/", "/uploads/missing.png"} {
		t.Run(path, func(t *testing.T) {
			for _, as := range []*models.User{nil, a} {
				rec := srv.do(http.MethodGet, path, as, nil)
				assert.Contains(t, []int{http.StatusUnauthorized, http.StatusNotFound}, rec.Code)
				assert.NotContains(t, rec.Body.String(), name)
			}
		})
	}
}

func TestAuthRateLimitClientAddress(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		want       []int
	}{
		{"forwarded headers ignored", false, []int{http.StatusUnauthorized, http.StatusTooManyRequests, http.StatusTooManyRequests}},
		{"trusted proxy", true, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusUnauthorized}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServerWith(t, func(cfg *RouterConfig) {
				cfg.AuthLimiter = middleware.NewRateLimiter(1, 1)
				cfg.TrustProxy = tt.trustProxy
			})

			codes := []int{}
			for _, ip := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
				body, err := json.Marshal(CredentialsRequest{Username: "nobody", Password: "wrong-password"})
				require.NoError(t, err)
				req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
				req.RemoteAddr = "198.51.100.7:4000"
				req.Header.Set("X-Forwarded-For", ip)
				rec := httptest.NewRecorder()
				srv.router.ServeHTTP(rec, req)
				codes = append(codes, rec.Code)
			}
			assert.Equal(t, tt.want, codes)
		})
	}
}

func TestImageUploadRejections(t *testing.T) {
	srv := newTestServer(t)
	a := srv.store.CreateUser(t, "anna")
	outsider := srv.store.CreateUser(t, "outsider")
	foreign := srv.store.CreateGroup(t, "foreign", outsider.ID)
	png := testutil.PNG(t)

	tests := []struct {
		name   string
		file   []byte
		fields map[string]string
		status int
	}{
		{"no file", nil, map[string]string{"description": "x"}, http.StatusBadRequest},
		{"not an image", []byte("plain text, not a picture"), nil, http.StatusBadRequest},
		{"malformed user ids", png, map[string]string{"userIds": "1,2"}, http.StatusBadRequest},
		{"unknown user", png, map[string]string{"userIds": "[9999]"}, http.StatusBadRequest},
		{"foreign group", png, map[string]string{"groupIds": "[" + itoa(foreign.ID) + "]"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.upload(a, tt.file, tt.fields)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	rec := srv.do(http.MethodGet, "/api/images", a, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestImageDates(t *testing.T) {
	srv := newTestServer(t)
	a := srv.store.CreateUser(t, "anna")

	for _, ts := range []time.Time{
		time.Date(2024, time.May, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.November, 9, 0, 0, 0, 0, time.UTC),
	} {
		ts := ts
		srv.store.Clock = func() time.Time { return ts }
		srv.store.CreateImage(t, a.ID)
	}

	rec := srv.do(http.MethodGet, "/api/images/dates", a, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"year":2024,"month":4},{"year":2023,"month":10}]`, rec.Body.String())

	rec = srv.do(http.MethodGet, "/api/images/by-date?year=2024&month=4", a, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.ImageWithShares](t, rec), 1)

	rec = srv.do(http.MethodGet, "/api/images/by-date?year=2024", a, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodGet, "/api/images/by-date?year=2024&month=12", a, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationReadState(t *testing.T) {
	srv := newTestServer(t)
	a := srv.store.CreateUser(t, "anna")
	b := srv.store.CreateUser(t, "boris")
	c := srv.store.CreateUser(t, "chen")

	require.Equal(t, http.StatusCreated, srv.do(http.MethodPost, "/api/friends/request", b, FriendRequestBody{UserID: a.ID}).Code)
	require.Equal(t, http.StatusCreated, srv.do(http.MethodPost, "/api/friends/request", c, FriendRequestBody{UserID: a.ID}).Code)

	notes := decode[[]models.NotificationWithDetails](t, srv.do(http.MethodGet, "/api/notifications", a, nil))
	require.Len(t, notes, 2)

	path := "/api/notifications/" + itoa(notes[0].ID) + "/read"
	assert.Equal(t, http.StatusForbidden, srv.do(http.MethodPut, path, b, nil).Code)

	rec := srv.do(http.MethodPut, path, a, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.NotificationWithDetails](t, rec).IsRead)

	rec = srv.do(http.MethodPut, "/api/notifications/read-all", a, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated":1}`, rec.Body.String())
}

func TestRespondAppError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", apperror.NotFound("Image not found"), http.StatusNotFound, "Image not found"},
		{"forbidden", apperror.Forbidden("nope"), http.StatusForbidden, "nope"},
		{"unexpected hides cause", apperror.Unexpected(errors.New("pq: secret detail"), "failed"), http.StatusInternalServerError, "Internal server error"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondAppError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decode[ErrorResponse](t, rec).Message)
			assert.False(t, strings.Contains(rec.Body.String(), "secret"))
		})
	}
}

func TestWebSocketNotificationStream(t *testing.T) {
	srv := newTestServer(t)
	a := srv.store.CreateUser(t, "anna")
	b := srv.store.CreateUser(t, "boris")

	ts := httptest.NewServer(srv.router)
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := srv.users.GenerateJWT(b.ID)
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return srv.hub.IsOnline(b.ID) }, time.Second, 10*time.Millisecond)

	rec := srv.do(http.MethodPost, "/api/friends/request", a, FriendRequestBody{UserID: b.ID})
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type string                         `json:"type"`
		Data models.NotificationWithDetails `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, services.MessageTypeNotification, msg.Type)
	assert.Equal(t, models.NotificationFriendRequest, msg.Data.Type)
	require.NotNil(t, msg.Data.Sender)
	assert.Equal(t, "anna", msg.Data.Sender.Username)

	conn.Close()
	assert.Eventually(t, func() bool { return !srv.hub.IsOnline(b.ID) }, time.Second, 10*time.Millisecond)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler(stubPinger{})(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	HealthHandler(stubPinger{err: errors.New("connection refused")})(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "refused")
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
