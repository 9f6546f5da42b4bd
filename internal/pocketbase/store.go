// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package pocketbase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/disney-bounding/internal/models"
	"codeberg.org/oliverandrich/disney-bounding/internal/recordstore"
)

// Store implements recordstore.Store against a PocketBase instance.
//
// Visitor operations run on request-scoped clients; lookups that need
// elevated rights run on the shared superuser client.
type Store struct {
	provider *Provider
}

var _ recordstore.Store = (*Store)(nil)

// NewStore creates a store backed by provider.
func NewStore(provider *Provider) *Store {
	return &Store{provider: provider}
}

// Provider returns the underlying client provider.
func (s *Store) Provider() *Provider {
	return s.provider
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	admin, err := s.provider.Admin(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := admin.Collection(UsersCollection).GetFirstListItem(ctx,
		Filter("email = {:email}", map[string]any{"email": email}))
	if err != nil {
		return nil, s.adminError(err)
	}
	return decodeUser(raw)
}

func (s *Store) CreateUser(ctx context.Context, in recordstore.NewUser) (*models.User, error) {
	admin, err := s.provider.Admin(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"email":           in.Email,
		"password":        in.Password,
		"passwordConfirm": in.Password,
		"emailVisibility": in.EmailVisibility,
	}
	if in.Name != "" {
		body["name"] = in.Name
	}

	var raw json.RawMessage
	if err := admin.Collection(UsersCollection).Create(ctx, body, &raw); err != nil {
		var pbErr *Error
		if errors.As(err, &pbErr) && pbErr.Status == http.StatusBadRequest && pbErr.HasFieldCode("validation_not_unique") {
			return nil, recordstore.ErrConflict
		}
		return nil, s.adminError(err)
	}
	return decodeUser(raw)
}

func (s *Store) RequestOTP(ctx context.Context, email string) (string, error) {
	pb := s.provider.Client(ScopeRequest)
	return pb.Collection(UsersCollection).RequestOTP(ctx, email)
}

func (s *Store) AuthWithOTP(ctx context.Context, otpID, code string) (*recordstore.AuthResult, error) {
	pb := s.provider.Client(ScopeRequest)

	resp, err := pb.Collection(UsersCollection).AuthWithOTP(ctx, otpID, code)
	if err != nil {
		switch StatusOf(err) {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound:
			return nil, fmt.Errorf("%w: %v", recordstore.ErrAuthFailed, err)
		}
		return nil, err
	}

	user, err := decodeUser(resp.Record)
	if err != nil {
		return nil, err
	}
	return &recordstore.AuthResult{User: user, Token: resp.Token}, nil
}

// LoadAuth rejects malformed or expired tokens locally and asks PocketBase
// to accept the rest.
func (s *Store) LoadAuth(ctx context.Context, token string) (*models.User, error) {
	pb := s.provider.WithToken(token)
	if !pb.AuthStore().IsValid() {
		return nil, recordstore.ErrUnauthorized
	}

	resp, err := pb.Collection(UsersCollection).AuthRefresh(ctx)
	if err != nil {
		switch StatusOf(err) {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return nil, fmt.Errorf("%w: %v", recordstore.ErrUnauthorized, err)
		}
		return nil, err
	}
	return decodeUser(resp.Record)
}

func (s *Store) CreateOutfit(ctx context.Context, token string, in recordstore.NewOutfit) (*models.CommunityOutfit, error) {
	pb := s.provider.WithToken(token)
	if !pb.AuthStore().IsValid() {
		return nil, recordstore.ErrUnauthorized
	}

	fields := map[string]string{
		"character_slug": in.CharacterSlug,
		"outfit_name":    in.OutfitName,
		"status":         string(models.StatusPending),
	}
	if in.OwnerID != "" {
		fields["user"] = in.OwnerID
	}
	if in.SubmitterName != "" {
		fields["submitter_name"] = in.SubmitterName
	}

	var rec outfitRecord
	err := pb.Collection(models.CommunityOutfitsCollection).CreateMultipart(ctx, fields, []FileField{{
		Field:       "image",
		Name:        in.Image.Name,
		ContentType: in.Image.ContentType,
		Reader:      in.Image.Reader,
	}}, &rec)
	if err != nil {
		var pbErr *Error
		if errors.As(err, &pbErr) && pbErr.Status == http.StatusBadRequest && pbErr.FieldCode("image") != "" {
			return nil, fmt.Errorf("%w: %s", recordstore.ErrInvalidFile, pbErr.Data["image"].Message)
		}
		return nil, mapError(err)
	}
	return rec.toModel(), nil
}

// ListOutfits reads approved submissions as an anonymous visitor, so the
// collection's list rule applies. Other statuses need the superuser client.
func (s *Store) ListOutfits(ctx context.Context, filter recordstore.OutfitFilter) ([]models.CommunityOutfit, error) {
	pb := s.provider.Client(ScopeRequest)
	if filter.Status != models.StatusApproved {
		admin, err := s.provider.Admin(ctx)
		if err != nil {
			return nil, err
		}
		pb = admin
	}

	items, err := pb.Collection(models.CommunityOutfitsCollection).GetFullList(ctx, MaxPerPage, ListOptions{
		Filter: outfitFilter(filter),
		Sort:   "-created",
	})
	if err != nil {
		if filter.Status != models.StatusApproved {
			return nil, s.adminError(err)
		}
		return nil, mapError(err)
	}

	outfits := make([]models.CommunityOutfit, 0, len(items))
	for _, raw := range items {
		outfit, err := decodeOutfit(raw)
		if err != nil {
			return nil, err
		}
		outfits = append(outfits, *outfit)
	}
	return outfits, nil
}

func outfitFilter(f recordstore.OutfitFilter) string {
	var (
		clauses []string
		params  = map[string]any{}
	)
	if f.CharacterSlug != "" {
		clauses = append(clauses, "character_slug = {:slug}")
		params["slug"] = f.CharacterSlug
	}
	if f.OutfitName != "" {
		clauses = append(clauses, "outfit_name = {:outfit}")
		params["outfit"] = f.OutfitName
	}
	if f.Status != "" {
		clauses = append(clauses, "status = {:status}")
		params["status"] = string(f.Status)
	}
	return Filter(strings.Join(clauses, " && "), params)
}

func (s *Store) GetOutfit(ctx context.Context, id string) (*models.CommunityOutfit, error) {
	admin, err := s.provider.Admin(ctx)
	if err != nil {
		return nil, err
	}

	var rec outfitRecord
	if err := admin.Collection(models.CommunityOutfitsCollection).GetOne(ctx, id, &rec); err != nil {
		return nil, s.adminError(err)
	}
	return rec.toModel(), nil
}

func (s *Store) UpdateOutfitStatus(ctx context.Context, id string, status models.OutfitStatus) (*models.CommunityOutfit, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown outfit status %q", status)
	}
	admin, err := s.provider.Admin(ctx)
	if err != nil {
		return nil, err
	}

	var rec outfitRecord
	err = admin.Collection(models.CommunityOutfitsCollection).Update(ctx, id, map[string]any{"status": string(status)}, &rec)
	if err != nil {
		return nil, s.adminError(err)
	}
	return rec.toModel(), nil
}

func (s *Store) DeleteOutfit(ctx context.Context, token, id string) error {
	pb := s.provider.WithToken(token)
	if !pb.AuthStore().IsValid() {
		return recordstore.ErrUnauthorized
	}
	return mapError(pb.Collection(models.CommunityOutfitsCollection).Delete(ctx, id))
}

func (s *Store) FileURL(outfit *models.CommunityOutfit) string {
	return s.provider.Client(ScopeShared).FileURL(models.CommunityOutfitsCollection, outfit.ID, outfit.Image)
}

// OpenOutfitImage downloads the image with a superuser file token, so
// pending and rejected submissions can be previewed.
func (s *Store) OpenOutfitImage(ctx context.Context, id string) (io.ReadCloser, error) {
	outfit, err := s.GetOutfit(ctx, id)
	if err != nil {
		return nil, err
	}
	if outfit.Image == "" {
		return nil, recordstore.ErrNotFound
	}

	admin, err := s.provider.Admin(ctx)
	if err != nil {
		return nil, err
	}
	fileToken, err := admin.FileToken(ctx)
	if err != nil {
		return nil, s.adminError(err)
	}

	rc, err := admin.OpenFile(ctx, models.CommunityOutfitsCollection, outfit.ID, outfit.Image, fileToken)
	if err != nil {
		return nil, mapError(err)
	}
	return rc, nil
}

// adminError maps an error from a superuser call. A 401 or 403 means
// PocketBase no longer accepts the cached superuser token, so it is dropped.
func (s *Store) adminError(err error) error {
	switch StatusOf(err) {
	case http.StatusUnauthorized, http.StatusForbidden:
		s.provider.ResetAdmin()
	}
	return mapError(err)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch StatusOf(err) {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %v", recordstore.ErrNotFound, err)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %v", recordstore.ErrUnauthorized, err)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %v", recordstore.ErrForbidden, err)
	}
	return err
}
