package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/apperrors"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
)

const (
	freeeAPIBase  = "https://api.freee.co.jp/api/1"
	freeeAuthURL  = "https://accounts.secure.freee.co.jp/public_api/authorize"
	freeeTokenURL = "https://accounts.secure.freee.co.jp/public_api/token"
)

// FreeeEndpoint is the provider's OAuth endpoint pair.
var FreeeEndpoint = oauth2.Endpoint{
	AuthURL:  freeeAuthURL,
	TokenURL: freeeTokenURL,
}

// FreeeConnector registers expense deals through the freee accounting API.
type FreeeConnector struct {
	creds      *CredentialStore
	httpClient *http.Client
	apiBase    string
}

// NewFreeeConnector creates a connector using the given credential store.
func NewFreeeConnector(creds *CredentialStore) *FreeeConnector {
	return &FreeeConnector{
		creds:      creds,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiBase:    freeeAPIBase,
	}
}

var _ portssvc.PayableConnector = (*FreeeConnector)(nil)

func (c *FreeeConnector) Provider() string { return "freee" }

// AuthURL returns the consent URL for the interactive OAuth grant.
func (c *FreeeConnector) AuthURL(state string) string {
	return c.creds.AuthCodeURL(state)
}

// Authorize completes the OAuth grant: it exchanges the code and binds the
// grant to the user's first company.
func (c *FreeeConnector) Authorize(ctx context.Context, code string) (int64, error) {
	token, err := c.creds.Exchange(ctx, code)
	if err != nil {
		return 0, &apperrors.ConnectorError{Provider: c.Provider(), Err: fmt.Errorf("code exchange failed: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/users/me", nil)
	if err != nil {
		return 0, &apperrors.ConnectorError{Provider: c.Provider(), Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &apperrors.ConnectorError{Provider: c.Provider(), Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, &apperrors.ConnectorError{Provider: c.Provider(), Err: fmt.Errorf("users/me returned status %d", resp.StatusCode)}
	}

	var me struct {
		User struct {
			Companies []struct {
				ID int64 `json:"id"`
			} `json:"companies"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return 0, &apperrors.ConnectorError{Provider: c.Provider(), Err: err}
	}
	if len(me.User.Companies) == 0 {
		return 0, &apperrors.ConnectorError{Provider: c.Provider(), Err: fmt.Errorf("authorized user has no companies")}
	}

	companyID := me.User.Companies[0].ID
	c.creds.SetCompanyID(companyID)
	return companyID, nil
}

type dealDetail struct {
	TaxCode       int    `json:"tax_code"`
	AccountItemID int64  `json:"account_item_id"`
	Amount        int64  `json:"amount"`
	Description   string `json:"description"`
}

type dealBody struct {
	CompanyID   int64        `json:"company_id"`
	IssueDate   string       `json:"issue_date"`
	DueDate     string       `json:"due_date,omitempty"`
	Type        string       `json:"type"`
	PartnerName string       `json:"partner_name"`
	Details     []dealDetail `json:"details"`
}

// dealDetails maps the payable onto freee deal lines. freee derives the deal
// total from the sum of its detail amounts, so line items are forwarded only
// when they reconcile with the payable amount; otherwise a single aggregate
// line carries the total.
func dealDetails(req portssvc.PayableRequest) []dealDetail {
	var sum int64
	for _, it := range req.Items {
		sum += it.UnitPrice
	}
	if len(req.Items) == 0 || sum != req.Amount {
		return []dealDetail{{
			TaxCode:     136,
			Amount:      req.Amount,
			Description: req.Description,
		}}
	}
	details := make([]dealDetail, 0, len(req.Items))
	for _, it := range req.Items {
		details = append(details, dealDetail{
			TaxCode:     136,
			Amount:      it.UnitPrice,
			Description: it.Name,
		})
	}
	return details
}

// CreatePayable registers the payable as an expense deal. An authorization
// failure triggers a single credential refresh and one retry of the same
// request; any further failure surfaces as a ConnectorError.
func (c *FreeeConnector) CreatePayable(ctx context.Context, req portssvc.PayableRequest) (*domain.PayableConfirmation, error) {
	companyID, err := c.creds.CompanyID()
	if err != nil {
		return nil, &apperrors.ConnectorError{Provider: c.Provider(), Err: err}
	}
	token, err := c.creds.AccessToken()
	if err != nil {
		return nil, &apperrors.ConnectorError{Provider: c.Provider(), Err: err}
	}

	body := dealBody{
		CompanyID:   companyID,
		IssueDate:   req.IssueDate,
		DueDate:     req.DueDate,
		Type:        "expense",
		PartnerName: req.PartnerName,
		Details:     dealDetails(req),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &apperrors.ConnectorError{Provider: c.Provider(), Err: err}
	}

	raw, status, err := c.postDeal(ctx, token, payload)
	if status == http.StatusUnauthorized {
		token, err = c.creds.Refresh(ctx)
		if err != nil {
			return nil, &apperrors.ConnectorError{Provider: c.Provider(), Err: fmt.Errorf("token refresh failed: %w", err)}
		}
		raw, status, err = c.postDeal(ctx, token, payload)
	}
	if err != nil {
		return nil, &apperrors.ConnectorError{Provider: c.Provider(), Err: err}
	}
	if status < 200 || status >= 300 {
		return nil, &apperrors.ConnectorError{Provider: c.Provider(), Err: fmt.Errorf("deals returned status %d", status)}
	}

	return &domain.PayableConfirmation{Provider: c.Provider(), Raw: raw}, nil
}

func (c *FreeeConnector) postDeal(ctx context.Context, token string, payload []byte) (map[string]any, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/deals", bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	var raw map[string]any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			raw = map[string]any{"body": string(data)}
		}
	}
	return raw, resp.StatusCode, nil
}
