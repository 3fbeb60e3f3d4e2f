package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aria-khodro/cargo-relay/internal/config"
	"github.com/aria-khodro/cargo-relay/internal/core/domain"
)

// Verifier resolves a handshake bearer credential against the external
// identity service. The response body becomes the connection's identity.
type Verifier struct {
	url  string
	http *http.Client
}

func NewVerifier(cfg *config.Config) *Verifier {
	return &Verifier{
		url:  cfg.AuthHost + cfg.UserEndpoint,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *Verifier) Verify(ctx context.Context, bearer string) (domain.Identity, error) {
	if bearer == "" {
		return domain.Identity{}, domain.ErrMissingCredential
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.url, nil)
	if err != nil {
		return domain.Identity{}, err
	}
	req.Header.Set("Authorization", bearer)

	resp, err := v.http.Do(req)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("identity check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Identity{}, fmt.Errorf("%w: identity service returned %d", domain.ErrIdentityRejected, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Identity{}, err
	}
	var parsed struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: malformed identity body", domain.ErrIdentityRejected)
	}
	return domain.Identity{
		ID:      parsed.ID.String(),
		Details: body,
	}, nil
}
