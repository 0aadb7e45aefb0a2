package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/kode4food/paybutton/pkg/api"
	"github.com/kode4food/paybutton/pkg/log"
)

type (
	// Services are the remote wallet and order services the engine calls
	Services interface {
		GetFundingEligibility(
			context.Context, *api.FundingEligibilityRequest,
		) (api.FundingEligibility, error)
		GetSupplementalOrderInfo(
			context.Context, api.OrderID,
		) (*api.OrderInfo, error)
		GetSmartWallet(
			context.Context, *api.SmartWalletRequest,
		) (api.Wallet, error)
		UpdateButtonClientConfig(context.Context, *api.ClientConfig) error
		LoadFraudnet(context.Context, *api.FraudnetRequest) error
	}

	// HTTPClient calls the remote services over their GraphQL endpoint
	HTTPClient struct {
		httpClient *http.Client
		baseURL    string
	}
)

const (
	GraphQLPath  = "/graphql"
	FraudnetPath = "/fraudnet"

	userAgent = "PayButton-Engine/1.0"
)

const (
	queryFundingEligibility = `query GetFundingEligibility(
	$clientID: String!, $merchantID: [String], $buyerCountry: String,
	$currency: String, $intent: String
) { fundingEligibility }`

	querySmartWallet = `query GetSmartWallet(
	$clientID: String!, $merchantID: [String], $currency: String,
	$amount: String, $clientMetadataID: String
) { smartWallet }`

	queryCheckoutDetails = `query GetCheckoutDetails($orderID: String!) {
	checkoutSession { cart payees flags }
}`

	mutationClientConfig = `mutation UpdateClientConfig(
	$orderID: String!, $fundingSource: String!, $inline: Boolean
) { updateClientConfig }`
)

var (
	ErrHTTPError       = errors.New("remote service returned HTTP error")
	ErrGraphQL         = errors.New("remote service returned errors")
	ErrMissingResult   = errors.New("remote service returned no result")
	ErrInvalidOrderID  = errors.New("invalid order id")
	ErrMissingClientID = errors.New("client id required")
)

var _ Services = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the remote services at baseURL
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *HTTPClient) GetFundingEligibility(
	ctx context.Context, req *api.FundingEligibilityRequest,
) (api.FundingEligibility, error) {
	if req.ClientID == "" {
		return nil, api.ConfigurationError(
			"funding_eligibility_error", ErrMissingClientID,
		)
	}
	raw, err := c.query(ctx, "fundingEligibility", &api.GraphQLRequest{
		Query: queryFundingEligibility,
		Variables: map[string]any{
			"clientID":     req.ClientID,
			"merchantID":   req.MerchantID,
			"buyerCountry": req.BuyerCountry,
			"currency":     req.Currency,
			"intent":       req.Intent,
		},
	}, "")
	if err != nil {
		return nil, api.RemoteError("funding_eligibility_error", err)
	}

	var res api.FundingEligibility
	if err := json.Unmarshal([]byte(raw.Raw), &res); err != nil {
		return nil, api.RemoteError("funding_eligibility_error", err)
	}
	return res, nil
}

func (c *HTTPClient) GetSupplementalOrderInfo(
	ctx context.Context, orderID api.OrderID,
) (*api.OrderInfo, error) {
	if !orderID.IsValid() {
		return nil, api.RemoteError("supplemental_order_error",
			fmt.Errorf("%w: %q", ErrInvalidOrderID, orderID),
		)
	}
	raw, err := c.query(ctx, "checkoutSession", &api.GraphQLRequest{
		Query:     queryCheckoutDetails,
		Variables: map[string]any{"orderID": orderID},
	}, "")
	if err != nil {
		return nil, api.RemoteError("supplemental_order_error", err)
	}

	res := &api.OrderInfo{}
	if err := json.Unmarshal(
		[]byte(raw.Raw), &res.CheckoutSession,
	); err != nil {
		return nil, api.RemoteError("supplemental_order_error", err)
	}
	return res, nil
}

func (c *HTTPClient) GetSmartWallet(
	ctx context.Context, req *api.SmartWalletRequest,
) (api.Wallet, error) {
	if req.ClientID == "" {
		return nil, api.ConfigurationError(
			"smart_wallet_error", ErrMissingClientID,
		)
	}
	raw, err := c.query(ctx, "smartWallet", &api.GraphQLRequest{
		Query: querySmartWallet,
		Variables: map[string]any{
			"clientID":         req.ClientID,
			"merchantID":       req.MerchantID,
			"currency":         req.Currency,
			"amount":           req.Amount,
			"clientMetadataID": req.ClientMetadataID,
		},
	}, req.UserAccessToken)
	if err != nil {
		return nil, api.RemoteError("smart_wallet_error", err)
	}

	var res api.Wallet
	if err := json.Unmarshal([]byte(raw.Raw), &res); err != nil {
		return nil, api.RemoteError("smart_wallet_error", err)
	}
	return res, nil
}

func (c *HTTPClient) UpdateButtonClientConfig(
	ctx context.Context, cfg *api.ClientConfig,
) error {
	_, err := c.query(ctx, "updateClientConfig", &api.GraphQLRequest{
		Query: mutationClientConfig,
		Variables: map[string]any{
			"orderID":       cfg.OrderID,
			"fundingSource": cfg.FundingSource,
			"inline":        cfg.Inline,
		},
	}, "")
	if err != nil {
		return api.RemoteError("update_client_config_error", err)
	}
	return nil
}

func (c *HTTPClient) LoadFraudnet(
	ctx context.Context, req *api.FraudnetRequest,
) error {
	if _, err := c.post(ctx, FraudnetPath, req, ""); err != nil {
		return api.RemoteError("load_fraudnet_error", err)
	}
	return nil
}

func (c *HTTPClient) query(
	ctx context.Context, field string, req *api.GraphQLRequest, token string,
) (gjson.Result, error) {
	body, err := c.post(ctx, GraphQLPath, req, token)
	if err != nil {
		return gjson.Result{}, err
	}

	if errs := gjson.GetBytes(body, "errors"); errs.IsArray() {
		var msgs []string
		for _, e := range errs.Array() {
			msgs = append(msgs, e.Get("message").String())
		}
		if len(msgs) > 0 {
			return gjson.Result{}, fmt.Errorf("%w: %s",
				ErrGraphQL, strings.Join(msgs, "; "),
			)
		}
	}

	res := gjson.GetBytes(body, "data."+field)
	if !res.Exists() || res.Type == gjson.Null {
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrMissingResult, field)
	}
	return res, nil
}

func (c *HTTPClient) post(
	ctx context.Context, path string, payload any, token string,
) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body),
	)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	dur := time.Since(start)

	if err != nil {
		slog.Error("Remote service request failed",
			slog.String("path", path),
			slog.Duration("duration", dur),
			log.Error(err))
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("Remote service HTTP error",
			slog.String("path", path),
			slog.Int("status_code", resp.StatusCode),
			slog.String("response_body", string(respBody)))
		return nil, fmt.Errorf("%w: HTTP %d", ErrHTTPError, resp.StatusCode)
	}
	return respBody, nil
}
