package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/zhuantitest/ledgerparse/internal/common"
)

// Provider fetches one exchange rate from one upstream source.
type Provider interface {
	Name() string
	Rate(ctx context.Context, client *http.Client, from, to string) (float64, error)
}

// Default upstream endpoints, in failover order.
const (
	exchangerateHostURL = "https://api.exchangerate.host"
	openERAPIURL        = "https://open.er-api.com"
	jsDelivrURL         = "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest"
)

// DefaultProviders returns the standard failover chain.
func DefaultProviders() []Provider {
	return []Provider{
		&ExchangerateHost{BaseURL: exchangerateHostURL},
		&OpenERAPI{BaseURL: openERAPIURL},
		&JSDelivr{BaseURL: jsDelivrURL},
	}
}

func fetchJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rate provider status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedReply, err)
	}
	return nil
}

// ExchangerateHost queries the exchangerate.host convert endpoint.
type ExchangerateHost struct {
	BaseURL string
}

func (p *ExchangerateHost) Name() string { return "exchangerate.host" }

func (p *ExchangerateHost) Rate(ctx context.Context, client *http.Client, from, to string) (float64, error) {
	var body struct {
		Success bool `json:"success"`
		Info    struct {
			Rate float64 `json:"rate"`
		} `json:"info"`
		Result float64 `json:"result"`
	}
	url := fmt.Sprintf("%s/convert?from=%s&to=%s", p.BaseURL, from, to)
	if err := fetchJSON(ctx, client, url, &body); err != nil {
		return 0, err
	}

	rate := body.Info.Rate
	if rate == 0 {
		rate = body.Result
	}
	if rate <= 0 {
		return 0, fmt.Errorf("%w: zero rate for %s/%s", common.ErrMalformedReply, from, to)
	}
	return rate, nil
}

// OpenERAPI queries the open.er-api.com latest-rates endpoint.
type OpenERAPI struct {
	BaseURL string
}

func (p *OpenERAPI) Name() string { return "open.er-api.com" }

func (p *OpenERAPI) Rate(ctx context.Context, client *http.Client, from, to string) (float64, error) {
	var body struct {
		Result string             `json:"result"`
		Rates  map[string]float64 `json:"rates"`
	}
	url := fmt.Sprintf("%s/v6/latest/%s", p.BaseURL, from)
	if err := fetchJSON(ctx, client, url, &body); err != nil {
		return 0, err
	}

	if body.Result != "success" {
		return 0, fmt.Errorf("%w: result %q", common.ErrMalformedReply, body.Result)
	}
	rate, ok := body.Rates[strings.ToUpper(to)]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("%w: no rate for %s", common.ErrMalformedReply, to)
	}
	return rate, nil
}

// JSDelivr queries the CDN-hosted currency-api dataset, the last
// resort when both live APIs are down.
type JSDelivr struct {
	BaseURL string
}

func (p *JSDelivr) Name() string { return "jsdelivr" }

func (p *JSDelivr) Rate(ctx context.Context, client *http.Client, from, to string) (float64, error) {
	lowFrom := strings.ToLower(from)
	lowTo := strings.ToLower(to)

	var body map[string]json.RawMessage
	url := fmt.Sprintf("%s/v1/currencies/%s.json", p.BaseURL, lowFrom)
	if err := fetchJSON(ctx, client, url, &body); err != nil {
		return 0, err
	}

	var rates map[string]float64
	raw, ok := body[lowFrom]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s table", common.ErrMalformedReply, lowFrom)
	}
	if err := json.Unmarshal(raw, &rates); err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrMalformedReply, err)
	}

	rate, ok := rates[lowTo]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("%w: no rate for %s", common.ErrMalformedReply, to)
	}
	return rate, nil
}
