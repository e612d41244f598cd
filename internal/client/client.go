package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/simonvc/pocketledger/internal/service"
)

// UserHeader must match the server's identity header.
const UserHeader = "X-User-ID"

type Client struct {
	baseURL    string
	user       string
	httpClient *http.Client
}

// New returns a client acting as user. user may be empty for calls that
// need no identity (CreateUser, Ping).
func New(baseURL, user string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		user:    user,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// As returns a copy of c acting as user.
func (c *Client) As(user string) *Client {
	cp := *c
	cp.user = user
	return &cp
}

func (c *Client) User() string { return c.user }

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Users

func (c *Client) CreateUser(ctx context.Context, username string) (*ledger.User, error) {
	var result ledger.User
	if err := c.post(ctx, "/api/v1/users", map[string]string{"username": username}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Me(ctx context.Context) (*ledger.User, error) {
	var result ledger.User
	if err := c.get(ctx, "/api/v1/users/me", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Wallets

func (c *Client) CreateWallet(ctx context.Context, in service.WalletInput) (*ledger.Wallet, error) {
	var result ledger.Wallet
	if err := c.post(ctx, "/api/v1/wallets", in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListWallets(ctx context.Context) ([]ledger.Wallet, error) {
	var result []ledger.Wallet
	if err := c.get(ctx, "/api/v1/wallets", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetWallet(ctx context.Context, id string) (*ledger.Wallet, error) {
	var result ledger.Wallet
	if err := c.get(ctx, "/api/v1/wallets/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) UpdateWallet(ctx context.Context, id string, in service.WalletUpdate) (*ledger.Wallet, error) {
	var result ledger.Wallet
	if err := c.send(ctx, "PATCH", "/api/v1/wallets/"+url.PathEscape(id), in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteWallet(ctx context.Context, id string) error {
	return c.send(ctx, "DELETE", "/api/v1/wallets/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListWalletTransactions(ctx context.Context, walletID string) ([]ledger.Transaction, error) {
	var result []ledger.Transaction
	if err := c.get(ctx, "/api/v1/wallets/"+url.PathEscape(walletID)+"/transactions", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListWalletTransactionsBetween lists transactions dated within [start, end].
func (c *Client) ListWalletTransactionsBetween(ctx context.Context, walletID string, start, end time.Time) ([]ledger.Transaction, error) {
	params := url.Values{}
	params.Set("start", start.UTC().Format(time.RFC3339))
	params.Set("end", end.UTC().Format(time.RFC3339))
	var result []ledger.Transaction
	path := "/api/v1/wallets/" + url.PathEscape(walletID) + "/transactions?" + params.Encode()
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Categories

func (c *Client) CreateCategory(ctx context.Context, in service.CategoryInput) (*ledger.Category, error) {
	var result ledger.Category
	if err := c.post(ctx, "/api/v1/categories", in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]ledger.Category, error) {
	var result []ledger.Category
	if err := c.get(ctx, "/api/v1/categories", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetCategory(ctx context.Context, id string) (*ledger.Category, error) {
	var result ledger.Category
	if err := c.get(ctx, "/api/v1/categories/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id string, in service.CategoryInput) (*ledger.Category, error) {
	var result ledger.Category
	if err := c.send(ctx, "PATCH", "/api/v1/categories/"+url.PathEscape(id), in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.send(ctx, "DELETE", "/api/v1/categories/"+url.PathEscape(id), nil, nil)
}

// Transactions

func (c *Client) CreateTransaction(ctx context.Context, in service.TransactionInput) (*ledger.Transaction, error) {
	var result ledger.Transaction
	if err := c.post(ctx, "/api/v1/transactions", in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (*ledger.Transaction, error) {
	var result ledger.Transaction
	if err := c.get(ctx, "/api/v1/transactions/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) UpdateTransaction(ctx context.Context, id string, in service.TransactionInput) (*ledger.Transaction, error) {
	var result ledger.Transaction
	if err := c.send(ctx, "PUT", "/api/v1/transactions/"+url.PathEscape(id), in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.send(ctx, "DELETE", "/api/v1/transactions/"+url.PathEscape(id), nil, nil)
}

// Budgets

func (c *Client) CreateBudget(ctx context.Context, in service.BudgetInput) (*ledger.BudgetStatus, error) {
	var result ledger.BudgetStatus
	if err := c.post(ctx, "/api/v1/budgets", in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetBudget(ctx context.Context, id string) (*ledger.BudgetStatus, error) {
	var result ledger.BudgetStatus
	if err := c.get(ctx, "/api/v1/budgets/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) UpdateBudget(ctx context.Context, id string, in service.BudgetInput) (*ledger.BudgetStatus, error) {
	var result ledger.BudgetStatus
	if err := c.send(ctx, "PUT", "/api/v1/budgets/"+url.PathEscape(id), in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteBudget(ctx context.Context, id string) error {
	return c.send(ctx, "DELETE", "/api/v1/budgets/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListBudgets(ctx context.Context) ([]ledger.BudgetStatus, error) {
	return c.budgets(ctx, "/api/v1/budgets")
}

func (c *Client) ListActiveBudgets(ctx context.Context, at civil.Date) ([]ledger.BudgetStatus, error) {
	return c.budgets(ctx, "/api/v1/budgets/active?date="+at.String())
}

func (c *Client) ListBudgetsByCategory(ctx context.Context, categoryID string) ([]ledger.BudgetStatus, error) {
	return c.budgets(ctx, "/api/v1/budgets/by-category/"+url.PathEscape(categoryID))
}

func (c *Client) ListBudgetsByDateRange(ctx context.Context, start, end civil.Date) ([]ledger.BudgetStatus, error) {
	params := url.Values{}
	params.Set("start", start.String())
	params.Set("end", end.String())
	return c.budgets(ctx, "/api/v1/budgets/by-date-range?"+params.Encode())
}

// ReconcileBudgets recomputes every budget's spent amount server-side.
func (c *Client) ReconcileBudgets(ctx context.Context) ([]ledger.BudgetStatus, error) {
	var result []ledger.BudgetStatus
	if err := c.post(ctx, "/api/v1/budgets/reconcile", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) budgets(ctx context.Context, path string) ([]ledger.BudgetStatus, error) {
	var result []ledger.BudgetStatus
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// WatchAlerts streams the user's budget signals to fn until ctx is done or
// the connection drops. A cancelled ctx returns nil.
func (c *Client) WatchAlerts(ctx context.Context, fn func(ledger.BudgetSignal)) error {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/v1/alerts/ws"
	conn, resp, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPClient: c.streamClient(),
		HTTPHeader: http.Header{UserHeader: []string{c.user}},
	})
	if err != nil {
		if resp != nil && resp.StatusCode >= 400 {
			return &APIError{StatusCode: resp.StatusCode, Message: err.Error()}
		}
		return fmt.Errorf("dial alerts: %w", err)
	}
	defer conn.CloseNow()

	for {
		var sig ledger.BudgetSignal
		if err := wsjson.Read(ctx, conn, &sig); err != nil {
			if ctx.Err() != nil {
				conn.Close(websocket.StatusNormalClosure, "")
				return nil
			}
			return fmt.Errorf("read alert: %w", err)
		}
		fn(sig)
	}
}

// streamClient drops the request timeout, which would otherwise cut long
// lived streams.
func (c *Client) streamClient() *http.Client {
	cp := *c.httpClient
	cp.Timeout = 0
	return &cp
}

// Ping checks if the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.send(ctx, "GET", path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	return c.send(ctx, "POST", path, body, result)
}

func (c *Client) send(ctx context.Context, method, path string, body any, result any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.user != "" {
		req.Header.Set(UserHeader, c.user)
	}
	return c.doRequest(req, result)
}

type apiError struct {
	Error string `json:"error"`
}

func (c *Client) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(bodyBytes)}
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.Unmarshal(bodyBytes, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
