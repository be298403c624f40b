package httpgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quad-backend/internal/features/account/models"
	"quad-backend/internal/features/token"
)

// Client talks to an external token bridge over HTTP:
//
//	POST /v1/transfer-from {"from","to","amount"}
//	POST /v1/transfer      {"from","to","amount"}
//	GET  /v1/balances/{address} -> {"balance"}
//
// Amounts are decimal strings in the token's smallest unit.
type Client struct {
	baseURL    string
	apiToken   string
	custody    models.Identity
	httpClient *http.Client
}

func NewClient(baseURL, apiToken string, custody models.Identity, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiToken:   apiToken,
		custody:    custody,
		httpClient: &http.Client{Timeout: timeout},
	}
}

var _ token.Gateway = (*Client)(nil)

type transferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type balanceResponse struct {
	Balance string `json:"balance"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) Custody() models.Identity {
	return c.custody
}

func (c *Client) TransferFrom(ctx context.Context, from, to models.Identity, amount *big.Int) error {
	body := transferRequest{From: from.String(), To: to.String(), Amount: amount.String()}
	return c.do(ctx, http.MethodPost, "/v1/transfer-from", body, nil)
}

func (c *Client) Transfer(ctx context.Context, to models.Identity, amount *big.Int) error {
	body := transferRequest{From: c.custody.String(), To: to.String(), Amount: amount.String()}
	return c.do(ctx, http.MethodPost, "/v1/transfer", body, nil)
}

func (c *Client) BalanceOf(ctx context.Context, who models.Identity) (*big.Int, error) {
	var out balanceResponse
	if err := c.do(ctx, http.MethodGet, "/v1/balances/"+url.PathEscape(who.String()), nil, &out); err != nil {
		return nil, err
	}
	n, ok := new(big.Int).SetString(out.Balance, 10)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("invalid balance format %q", out.Balance)
	}
	return n, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token gateway %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&e)
		if e.Error != "" {
			return fmt.Errorf("token gateway http %d: %s", resp.StatusCode, e.Error)
		}
		return fmt.Errorf("token gateway http %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
