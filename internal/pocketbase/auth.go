// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package pocketbase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// SuperusersCollection is the built-in collection of administrators.
const SuperusersCollection = "_superusers"

// AuthResponse is returned by every auth endpoint.
type AuthResponse struct {
	Token  string          `json:"token"`
	Record json.RawMessage `json:"record"`
}

func (s *RecordService) authPath(action string) string {
	return "/api/collections/" + url.PathEscape(s.collection) + "/" + action
}

func (s *RecordService) authenticate(ctx context.Context, action string, payload any) (*AuthResponse, error) {
	var resp AuthResponse
	if err := s.client.sendJSON(ctx, http.MethodPost, s.authPath(action), nil, payload, &resp); err != nil {
		return nil, err
	}
	s.client.authStore.Save(resp.Token, resp.Record)
	return &resp, nil
}

// AuthWithPassword signs in with identity and password and stores the result.
func (s *RecordService) AuthWithPassword(ctx context.Context, identity, password string) (*AuthResponse, error) {
	return s.authenticate(ctx, "auth-with-password", map[string]string{
		"identity": identity,
		"password": password,
	})
}

// RequestOTP asks PocketBase to mail a one-time code and returns the otp id.
func (s *RecordService) RequestOTP(ctx context.Context, email string) (string, error) {
	var resp struct {
		OTPID string `json:"otpId"`
	}
	if err := s.client.sendJSON(ctx, http.MethodPost, s.authPath("request-otp"), nil,
		map[string]string{"email": email}, &resp); err != nil {
		return "", err
	}
	return resp.OTPID, nil
}

// AuthWithOTP exchanges an otp id and code for a token and stores the result.
func (s *RecordService) AuthWithOTP(ctx context.Context, otpID, password string) (*AuthResponse, error) {
	return s.authenticate(ctx, "auth-with-otp", map[string]string{
		"otpId":    otpID,
		"password": password,
	})
}

// AuthRefresh asks PocketBase to accept the current token and issue a new one.
func (s *RecordService) AuthRefresh(ctx context.Context) (*AuthResponse, error) {
	return s.authenticate(ctx, "auth-refresh", nil)
}
