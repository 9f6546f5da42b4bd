// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"codeberg.org/oliverandrich/disney-bounding/internal/appcontext"
	"codeberg.org/oliverandrich/disney-bounding/internal/config"
	"codeberg.org/oliverandrich/disney-bounding/internal/htmx"
	"codeberg.org/oliverandrich/disney-bounding/internal/i18n"
	"codeberg.org/oliverandrich/disney-bounding/internal/models"
	"codeberg.org/oliverandrich/disney-bounding/internal/recordstore"
	"codeberg.org/oliverandrich/disney-bounding/internal/services/otp"
	"codeberg.org/oliverandrich/disney-bounding/internal/services/outfits"
	"codeberg.org/oliverandrich/disney-bounding/internal/services/session"
	"codeberg.org/oliverandrich/disney-bounding/internal/sse"
	"codeberg.org/oliverandrich/disney-bounding/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func init() {
	// Initialize i18n for template rendering
	_ = i18n.Init()
}

const testHashKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

type testEnv struct {
	e        *echo.Echo
	store    *testutil.TestStore
	outfits  *outfits.Service
	otp      *otp.Service
	sessions *session.Manager
	hub      *sse.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := testutil.NewTestStore(t)
	hub := sse.NewHub()

	sessions, err := session.NewManager(&config.SessionConfig{
		CookieName: "pb_auth",
		MaxAge:     3600,
		HashKey:    testHashKey,
	}, false)
	require.NoError(t, err)

	return &testEnv{
		e:        echo.New(),
		store:    store,
		outfits:  outfits.NewService(store, sse.NewNotifier(hub)),
		otp:      otp.NewService(store),
		sessions: sessions,
		hub:      hub,
	}
}

// signIn provisions an account and returns a session for it.
func (env *testEnv) signIn(t *testing.T, email string) *session.Session {
	t.Helper()
	ctx := context.Background()
	if _, err := env.store.FindUserByEmail(ctx, email); err != nil {
		_, err = env.store.CreateUser(ctx, recordstore.NewUser{Email: email, Password: "placeholder"})
		require.NoError(t, err)
	}
	otpID, err := env.store.RequestOTP(ctx, email)
	require.NoError(t, err)
	result, err := env.store.AuthWithOTP(ctx, otpID, env.store.Mailer.Code(t, email))
	require.NoError(t, err)
	return &session.Session{User: result.User, Token: result.Token}
}

// submit stores a pending outfit for sess.
func (env *testEnv) submit(t *testing.T, sess *session.Session, slug, outfitName string) *models.CommunityOutfit {
	t.Helper()
	outfit, err := env.store.CreateOutfit(context.Background(), sess.Token, recordstore.NewOutfit{
		CharacterSlug: slug,
		OutfitName:    outfitName,
		OwnerID:       sess.User.ID,
		Image: recordstore.File{
			Reader:      bytes.NewReader(testutil.PNGImage),
			Name:        "look.png",
			ContentType: "image/png",
			Size:        int64(len(testutil.PNGImage)),
		},
	})
	require.NoError(t, err)
	return outfit
}

func (env *testEnv) approve(t *testing.T, id string) {
	t.Helper()
	_, err := env.store.UpdateOutfitStatus(context.Background(), id, models.StatusApproved)
	require.NoError(t, err)
}

// context wraps req like the server middleware does.
func (env *testEnv) context(req *http.Request, sess *session.Session, admin bool) (*appcontext.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return &appcontext.Context{
		Context: env.e.NewContext(req, rec),
		Htmx:    htmx.ParseRequest(req),
		Assets:  &appcontext.Assets{},
		Session: sess,
		IsAdmin: admin,
	}, rec
}

type part struct {
	name, filename, contentType string
	data                        []byte
}

func multipartBody(t *testing.T, fields map[string]string, file *part) (io.Reader, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+file.name+`"; filename="`+file.filename+`"`)
		h.Set("Content-Type", file.contentType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func pngPart() *part {
	return &part{name: "image", filename: "look.png", contentType: "image/png", data: testutil.PNGImage}
}

func multipartRequest(t *testing.T, target string, fields map[string]string, file *part) *http.Request {
	t.Helper()
	body, contentType := multipartBody(t, fields, file)
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(echo.HeaderContentType, contentType)
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}
