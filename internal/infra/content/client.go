package content

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
)

// 取得失敗（非2xx・通信エラー・レスポンス不正）
var ErrRequest = errors.New("content request failed")

type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string // 2025-01-13
	Token      string // 書き込み・非公開データのみ
	UseCDN     bool

	//テストで差し替える（空ならプロジェクトIDから組み立てる）
	BaseURL string
}

// Client はホスティングされたコンテンツAPI（クエリ + パラメータ）のHTTPクライアント。
type Client struct {
	httpClient *http.Client
	baseURL    string
	dataset    string
	apiVersion string
	token      string
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.ProjectID == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("content project id is required")
	}
	if cfg.Dataset == "" {
		return nil, fmt.Errorf("content dataset is required")
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = "2025-01-13"
	}

	base := cfg.BaseURL
	if base == "" {
		host := "api.sanity.io"
		if cfg.UseCDN {
			host = "apicdn.sanity.io"
		}
		base = fmt.Sprintf("https://%s.%s", cfg.ProjectID, host)
	}

	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimSuffix(base, "/"),
		dataset:    cfg.Dataset,
		apiVersion: strings.TrimPrefix(apiVersion, "v"),
		token:      cfg.Token,
	}, nil
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

type errorResponse struct {
	Error struct {
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"error"`
	Message string `json:"message"`
}

// Query はクエリを実行し、result をそのまま返す。
// params の値はJSONにして $name で渡す。
func (c *Client) Query(ctx context.Context, query string, params map[string]any) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("query", query)
	for name, v := range params {
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode param %s: %w", name, err)
		}
		q.Set("$"+name, string(encoded))
	}

	endpoint := fmt.Sprintf("%s/v%s/data/query/%s?%s", c.baseURL, c.apiVersion, url.PathEscape(c.dataset), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrRequest, err)
	}
	return resp.Result, nil
}

// Mutation は create のみ使う（importer）
type Mutation struct {
	Create map[string]any `json:"create,omitempty"`
}

func (c *Client) Mutate(ctx context.Context, mutations []Mutation) error {
	if c.token == "" {
		return fmt.Errorf("%w: token is required for mutations", ErrRequest)
	}
	payload, err := json.Marshal(map[string]any{"mutations": mutations})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/v%s/data/mutate/%s", c.baseURL, c.apiVersion, url.PathEscape(c.dataset))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.do(req)
	return err
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var er errorResponse
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &er) == nil {
			switch {
			case er.Error.Description != "":
				msg = er.Error.Description
			case er.Message != "":
				msg = er.Message
			}
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrRequest, resp.StatusCode, msg)
	}
	return body, nil
}
