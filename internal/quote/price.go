package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// PriceFetcher fetches latest USD spot prices for a batch of CoinMarketCap
// numeric asset IDs. Implemented by CMCClient against the real API and by
// a fake in tests.
type PriceFetcher interface {
	FetchPrices(ctx context.Context, cmcIDs []int) (map[int]float64, error)
}

// CMCClient is a minimal read-only client for CoinMarketCap's
// cryptocurrency/quotes/latest endpoint, grounded on the same
// get-then-decode-JSON shape as btcwatch's EsploraClient.
type CMCClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewCMCClient(apiKey string) *CMCClient {
	return &CMCClient{
		baseURL:    "https://pro-api.coinmarketcap.com",
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type cmcQuoteResponse struct {
	Data map[string]struct {
		Quote struct {
			USD struct {
				Price float64 `json:"price"`
			} `json:"USD"`
		} `json:"quote"`
	} `json:"data"`
}

// FetchPrices fetches all requested CMC IDs in a single batched request,
// per spec §4.6's "Fetch latest USD prices by cmcId (batched)".
func (c *CMCClient) FetchPrices(ctx context.Context, cmcIDs []int) (map[int]float64, error) {
	if len(cmcIDs) == 0 {
		return map[int]float64{}, nil
	}

	ids := make([]string, len(cmcIDs))
	for i, id := range cmcIDs {
		ids[i] = strconv.Itoa(id)
	}

	url := c.baseURL + "/v2/cryptocurrency/quotes/latest?id=" + strings.Join(ids, ",")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-CMC_PRO_API_KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("quote: CMC request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var parsed cmcQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("quote: decoding CMC response: %w", err)
	}

	out := make(map[int]float64, len(cmcIDs))
	for key, entry := range parsed.Data {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		out[id] = entry.Quote.USD.Price
	}
	return out, nil
}
