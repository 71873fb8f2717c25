package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/accessdeck/accessdeck/internal/logging"
)

const (
	EventLogin           = "login"
	EventLoginFailed     = "login_failed"
	EventLogout          = "logout"
	EventTokenRotated    = "token_rotated"
	EventPasswordReset   = "password_reset"
	EventPasswordChanged = "password_changed"
	EventSignup          = "signup"
)

type Event struct {
	Type   string    `json:"type"`
	Email  string    `json:"email,omitempty"`
	UserID uint      `json:"user_id,omitempty"`
	At     time.Time `json:"at"`
}

// Recorder indexes auth events into Elasticsearch. All methods are
// best-effort and nil-safe, so the engine can run without an ES cluster.
type Recorder struct {
	ES    *elasticsearch.Client
	Index string
}

func NewRecorder(cfg *elasticsearch.Config, index string) (*Recorder, error) {
	client, err := elasticsearch.NewClient(*cfg)
	if err != nil {
		return nil, err
	}
	return &Recorder{ES: client, Index: index}, nil
}

func (r *Recorder) Record(ctx context.Context, ev Event) {
	if r == nil || r.ES == nil {
		return
	}
	l := logging.FromContext(ctx)

	ev.At = time.Now().UTC()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(ev); err != nil {
		l.Warn("audit_encode_failed", "error", err)
		return
	}

	res, err := r.ES.Index(
		r.Index,
		&buf,
		r.ES.Index.WithContext(ctx),
	)
	if err != nil {
		l.Warn("audit_index_failed", "event", ev.Type, "error", err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		l.Warn("audit_index_failed", "event", ev.Type, "status", res.Status())
	}
}
