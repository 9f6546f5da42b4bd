// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package pocketbase_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	superuserEmail    = "admin@example.com"
	superuserPassword = "secret-password"
	validCode         = "123456"
)

func signedToken(subject string, ttl time.Duration) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}).SignedString([]byte("fake-pocketbase-signing-key-0123"))
	if err != nil {
		panic(err)
	}
	return token
}

type fakeUser struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	Created         string `json:"created"`
	Updated         string `json:"updated"`
	EmailVisibility bool   `json:"emailVisibility"`
	Verified        bool   `json:"verified"`
}

type fakeOutfit struct {
	ID            string `json:"id"`
	CharacterSlug string `json:"character_slug"`
	OutfitName    string `json:"outfit_name"`
	Image         string `json:"image"`
	SubmitterName string `json:"submitter_name"`
	Status        string `json:"status"`
	Owner         string `json:"user"`
	Created       string `json:"created"`
	Updated       string `json:"updated"`
	imageBytes    []byte
}

// fakePocketBase emulates the endpoints and collection rules the store uses.
type fakePocketBase struct {
	*httptest.Server
	users          map[string]*fakeUser // by email
	tokens         map[string]string    // token -> user id
	otps           map[string]string    // otp id -> user id
	outfits        []*fakeOutfit
	adminToken     string
	fileToken      string
	superuserAuths int
	requests       []string
	createFields   map[string][]string // form values of the last outfit create
	mu             sync.Mutex
	nextID         int
}

func newFakePocketBase(t *testing.T) *fakePocketBase {
	t.Helper()
	f := &fakePocketBase{
		users:  map[string]*fakeUser{},
		tokens: map[string]string{},
		otps:   map[string]string{},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

func (f *fakePocketBase) id() string {
	f.nextID++
	return fmt.Sprintf("rec%012d", f.nextID)
}

func now() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05.000Z")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	writeJSON(w, status, map[string]any{"status": status, "message": message, "data": data})
}

func (f *fakePocketBase) addUser(email string) *fakeUser {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &fakeUser{ID: f.id(), Email: email, Created: now(), Updated: now()}
	f.users[email] = u
	return u
}

func (f *fakePocketBase) issueToken(userID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := signedToken(userID, time.Hour)
	f.tokens[token] = userID
	return token
}

func (f *fakePocketBase) addOutfit(o *fakeOutfit) *fakeOutfit {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = f.id()
	o.Created = now()
	o.Updated = o.Created
	f.outfits = append(f.outfits, o)
	return o
}

// revokeAdmin invalidates the issued superuser token server side.
func (f *fakePocketBase) revokeAdmin() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adminToken = ""
}

func (f *fakePocketBase) isAdmin(r *http.Request) bool {
	return f.adminToken != "" && r.Header.Get("Authorization") == f.adminToken
}

func (f *fakePocketBase) userFor(r *http.Request) string {
	return f.tokens[r.Header.Get("Authorization")]
}

func (f *fakePocketBase) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/collections/_superusers/auth-with-password":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["identity"] != superuserEmail || body["password"] != superuserPassword {
			writeError(w, http.StatusBadRequest, "Failed to authenticate.", nil)
			return
		}
		f.superuserAuths++
		f.adminToken = signedToken("superuser", time.Hour)
		writeJSON(w, http.StatusOK, map[string]any{"token": f.adminToken, "record": map[string]any{"id": "su1", "email": superuserEmail}})

	case r.URL.Path == "/api/collections/users/records":
		f.handleUsers(w, r)

	case r.Method == http.MethodPost && r.URL.Path == "/api/collections/users/request-otp":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		otpID := "otp" + strconv.Itoa(len(f.otps)+1)
		if u, ok := f.users[body["email"]]; ok {
			f.otps[otpID] = u.ID
		}
		writeJSON(w, http.StatusOK, map[string]string{"otpId": otpID})

	case r.Method == http.MethodPost && r.URL.Path == "/api/collections/users/auth-with-otp":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		userID, ok := f.otps[body["otpId"]]
		if !ok || body["password"] != validCode {
			writeError(w, http.StatusBadRequest, "Failed to authenticate.", nil)
			return
		}
		delete(f.otps, body["otpId"])
		token := signedToken(userID, time.Hour)
		f.tokens[token] = userID
		writeJSON(w, http.StatusOK, map[string]any{"token": token, "record": f.userByID(userID)})

	case r.Method == http.MethodPost && r.URL.Path == "/api/collections/users/auth-refresh":
		userID := f.userFor(r)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "The request requires valid record authorization token.", nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": r.Header.Get("Authorization"), "record": f.userByID(userID)})

	case r.URL.Path == "/api/collections/community_outfits/records":
		f.handleOutfits(w, r)

	case r.Method == http.MethodPost && r.URL.Path == "/api/files/token":
		if !f.isAdmin(r) {
			writeError(w, http.StatusUnauthorized, "Missing auth context.", nil)
			return
		}
		f.fileToken = signedToken("file", time.Minute)
		writeJSON(w, http.StatusOK, map[string]string{"token": f.fileToken})

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/files/community_outfits/"):
		f.handleFile(w, r, strings.TrimPrefix(r.URL.Path, "/api/files/community_outfits/"))

	case strings.HasPrefix(r.URL.Path, "/api/collections/community_outfits/records/"):
		f.handleOutfit(w, r, strings.TrimPrefix(r.URL.Path, "/api/collections/community_outfits/records/"))

	default:
		writeError(w, http.StatusNotFound, "The requested resource wasn't found.", nil)
	}
}

func (f *fakePocketBase) userByID(id string) *fakeUser {
	for _, u := range f.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (f *fakePocketBase) handleUsers(w http.ResponseWriter, r *http.Request) {
	if !f.isAdmin(r) {
		writeError(w, http.StatusForbidden, "Only superusers can perform this action.", nil)
		return
	}
	switch r.Method {
	case http.MethodGet:
		filter := r.URL.Query().Get("filter")
		items := []any{}
		for _, u := range f.users {
			if filter == "email = '"+strings.ReplaceAll(u.Email, "'", `\'`)+"'" {
				items = append(items, u)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"page": 1, "perPage": 1, "items": items})
	case http.MethodPost:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		email, _ := body["email"].(string)
		if _, exists := f.users[email]; exists {
			writeError(w, http.StatusBadRequest, "Failed to create record.", map[string]any{
				"email": map[string]string{"code": "validation_not_unique", "message": "Value must be unique."},
			})
			return
		}
		visible, _ := body["emailVisibility"].(bool)
		u := &fakeUser{ID: f.id(), Email: email, EmailVisibility: visible, Created: now(), Updated: now()}
		f.users[email] = u
		writeJSON(w, http.StatusOK, u)
	}
}

func matchesFilter(filter, field, value string) bool {
	if !strings.Contains(filter, field+" = ") {
		return true
	}
	return strings.Contains(filter, field+" = '"+value+"'")
}

func (f *fakePocketBase) handleOutfits(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		filter := q.Get("filter")
		page, _ := strconv.Atoi(q.Get("page"))
		perPage, _ := strconv.Atoi(q.Get("perPage"))
		matched := []*fakeOutfit{}
		// Newest first; outfits are appended in creation order.
		for i := len(f.outfits) - 1; i >= 0; i-- {
			o := f.outfits[i]
			if !f.isAdmin(r) && o.Status != "approved" {
				continue
			}
			if matchesFilter(filter, "character_slug", o.CharacterSlug) &&
				matchesFilter(filter, "outfit_name", o.OutfitName) &&
				matchesFilter(filter, "status", o.Status) {
				matched = append(matched, o)
			}
		}
		start := (page - 1) * perPage
		end := min(start+perPage, len(matched))
		items := []*fakeOutfit{}
		if start < len(matched) {
			items = matched[start:end]
		}
		writeJSON(w, http.StatusOK, map[string]any{"page": page, "perPage": perPage, "items": items})

	case http.MethodPost:
		userID := f.userFor(r)
		if userID == "" {
			writeError(w, http.StatusBadRequest, "Failed to create record.", nil)
			return
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		f.createFields = r.MultipartForm.Value
		file, header, err := r.FormFile("image")
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to create record.", map[string]any{
				"image": map[string]string{"code": "validation_required", "message": "Missing required value."},
			})
			return
		}
		data, _ := io.ReadAll(file)
		if !strings.HasPrefix(http.DetectContentType(data), "image/") {
			writeError(w, http.StatusBadRequest, "Failed to create record.", map[string]any{
				"image": map[string]string{"code": "validation_invalid_mime_type", "message": "Invalid file type."},
			})
			return
		}
		o := &fakeOutfit{
			ID:            f.id(),
			CharacterSlug: r.FormValue("character_slug"),
			OutfitName:    r.FormValue("outfit_name"),
			SubmitterName: r.FormValue("submitter_name"),
			Status:        r.FormValue("status"),
			Owner:         r.FormValue("user"),
			Image:         "stored_" + header.Filename,
			Created:       now(),
			Updated:       now(),
			imageBytes:    data,
		}
		f.outfits = append(f.outfits, o)
		writeJSON(w, http.StatusOK, o)
	}
}

func (f *fakePocketBase) handleOutfit(w http.ResponseWriter, r *http.Request, id string) {
	var outfit *fakeOutfit
	index := -1
	for i, o := range f.outfits {
		if o.ID == id {
			outfit, index = o, i
		}
	}

	switch r.Method {
	case http.MethodGet:
		if outfit == nil || (!f.isAdmin(r) && outfit.Status != "approved") {
			writeError(w, http.StatusNotFound, "The requested resource wasn't found.", nil)
			return
		}
		writeJSON(w, http.StatusOK, outfit)
	case http.MethodPatch:
		if !f.isAdmin(r) {
			writeError(w, http.StatusForbidden, "Only superusers can perform this action.", nil)
			return
		}
		if outfit == nil {
			writeError(w, http.StatusNotFound, "The requested resource wasn't found.", nil)
			return
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		outfit.Status = body["status"]
		outfit.Updated = now()
		writeJSON(w, http.StatusOK, outfit)
	case http.MethodDelete:
		userID := f.userFor(r)
		if outfit == nil || userID == "" || outfit.Owner != userID {
			writeError(w, http.StatusNotFound, "The requested resource wasn't found.", nil)
			return
		}
		f.outfits = append(f.outfits[:index], f.outfits[index+1:]...)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (f *fakePocketBase) handleFile(w http.ResponseWriter, r *http.Request, rest string) {
	id, filename, _ := strings.Cut(rest, "/")
	for _, o := range f.outfits {
		if o.ID != id || o.Image != filename {
			continue
		}
		token := r.URL.Query().Get("token")
		if o.Status != "approved" && (token == "" || token != f.fileToken) {
			break
		}
		w.Header().Set("Content-Type", http.DetectContentType(o.imageBytes))
		_, _ = w.Write(o.imageBytes)
		return
	}
	writeError(w, http.StatusNotFound, "The requested resource wasn't found.", nil)
}
