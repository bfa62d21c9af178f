// Package registry verifies qualified-invoice registration numbers against
// the national tax agency's public registry.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
)

// Client queries the registry's announcement endpoint. Lookups never fail:
// any transport or decode problem degrades to an invalid verification with
// the raw context preserved, because a registry outage must not block the
// intake pipeline.
type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a registry client for the given API base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
}

var _ portssvc.RegistryVerifier = (*Client)(nil)

type announcementResponse struct {
	Announcement []struct {
		Name             *string `json:"name"`
		Address          *string `json:"address"`
		RegistrationDate *string `json:"registrationDate"`
		UpdateDate       *string `json:"updateDate"`
	} `json:"announcement"`
}

// NormalizeNumber uppercases the number and ensures the statutory T prefix.
func NormalizeNumber(registrationNumber string) string {
	clean := strings.ToUpper(strings.TrimSpace(registrationNumber))
	if !strings.HasPrefix(clean, "T") {
		clean = "T" + clean
	}
	return clean
}

func (c *Client) invalid(number string, raw map[string]any) domain.RegistryVerification {
	return domain.RegistryVerification{
		RegistrationNumber: number,
		IsValid:            false,
		Raw:                raw,
		CheckedAt:          c.now(),
	}
}

func (c *Client) Verify(ctx context.Context, registrationNumber string) domain.RegistryVerification {
	number := NormalizeNumber(registrationNumber)

	endpoint := fmt.Sprintf("%s/num?%s", c.baseURL, url.Values{
		"id":   {number},
		"type": {"21"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return c.invalid(number, map[string]any{"error": err.Error()})
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.invalid(number, map[string]any{"error": err.Error()})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return c.invalid(number, map[string]any{"error": err.Error()})
	}
	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > 500 {
			snippet = snippet[:500]
		}
		return c.invalid(number, map[string]any{"status_code": resp.StatusCode, "body": snippet})
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return c.invalid(number, map[string]any{"error": err.Error()})
	}
	var parsed announcementResponse
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Announcement) == 0 {
		return c.invalid(number, raw)
	}

	// Multiple announcements can come back for one number; the first one is
	// the current record and wins.
	rec := parsed.Announcement[0]
	return domain.RegistryVerification{
		RegistrationNumber: number,
		IsValid:            true,
		CompanyName:        rec.Name,
		Address:            rec.Address,
		RegistrationDate:   rec.RegistrationDate,
		UpdateDate:         rec.UpdateDate,
		Raw:                raw,
		CheckedAt:          c.now(),
	}
}
