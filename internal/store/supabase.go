package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/zhouzirui/mock-interview/backend/internal/model/interview"
)

// SupabaseStore talks to a Supabase project through its PostgREST endpoint.
type SupabaseStore struct {
	client *resty.Client
	table  string
}

func NewSupabase(baseURL, apiKey, table string) *SupabaseStore {
	if table == "" {
		table = "sessions"
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+"/rest/v1").
		SetTimeout(10*time.Second).
		SetHeader("apikey", apiKey).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")

	return &SupabaseStore{client: client, table: table}
}

func (s *SupabaseStore) Name() string { return "supabase" }

func (s *SupabaseStore) Get(ctx context.Context, sessionID string) (*interview.Session, error) {
	if sessionID == "" {
		return nil, ErrNotFound
	}

	var rows []record
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("sessionId", "eq."+sessionID).
		SetResult(&rows).
		Get("/" + s.table)
	if err != nil {
		return nil, fmt.Errorf("supabase fetch %s: %w", sessionID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("supabase fetch %s: status %d: %s", sessionID, resp.StatusCode(), resp.String())
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0].toSession(), nil
}

func (s *SupabaseStore) Save(ctx context.Context, session *interview.Session) error {
	if err := validateSession(session); err != nil {
		return err
	}

	rec, err := toRecord(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.SessionID, err)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("on_conflict", "sessionId").
		SetHeader("Prefer", "resolution=merge-duplicates,return=minimal").
		SetBody(rec).
		Post("/" + s.table)
	if err != nil {
		return fmt.Errorf("supabase save %s: %w", session.SessionID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("supabase save %s: status %d: %s", session.SessionID, resp.StatusCode(), resp.String())
	}
	return nil
}
