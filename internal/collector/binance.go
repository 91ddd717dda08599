package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"SignalSentinel/internal/model"
)

// DefaultBinanceURL is the public spot REST endpoint.
const DefaultBinanceURL = "https://api.binance.com"

// BinanceFetcher implements Fetcher using the Binance spot REST API.
type BinanceFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewBinanceFetcher creates a new fetcher with optional proxy support.
func NewBinanceFetcher(baseURL, proxyURL string) *BinanceFetcher {
	if baseURL == "" {
		baseURL = DefaultBinanceURL
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &BinanceFetcher{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
	}
}

func (f *BinanceFetcher) Name() string { return "binance" }

// apiError is the body Binance returns instead of data on failure.
type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (f *BinanceFetcher) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := fmt.Sprintf("%s%s?%s", f.BaseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Msg != "" {
			return nil, fmt.Errorf("status %d: code %d: %s", resp.StatusCode, apiErr.Code, apiErr.Msg)
		}
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// FetchKlines returns bars oldest-first without duplicate open times.
func (f *BinanceFetcher) FetchKlines(ctx context.Context, symbol, interval string, limit int) ([]model.OHLCV, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))
	body, err := f.get(ctx, "/api/v3/klines", params)
	if err != nil {
		return nil, fmt.Errorf("fetch klines: %w", err)
	}

	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}
	bars := make([]model.OHLCV, 0, len(rows))
	for i, row := range rows {
		bar, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("decode kline %d: %w", i, err)
		}
		bars = append(bars, bar)
	}
	return normalizeBars(bars), nil
}

// parseKline reads [openTime, "open", "high", "low", "close", "volume", ...].
func parseKline(row []json.RawMessage) (model.OHLCV, error) {
	if len(row) < 6 {
		return model.OHLCV{}, fmt.Errorf("expected at least 6 fields, got %d", len(row))
	}
	var openTime int64
	if err := json.Unmarshal(row[0], &openTime); err != nil {
		return model.OHLCV{}, fmt.Errorf("open time: %w", err)
	}
	vals := make([]float64, 5)
	for i := range vals {
		v, err := decodeNumber(row[i+1])
		if err != nil {
			return model.OHLCV{}, err
		}
		vals[i] = v
	}
	bar := model.OHLCV{
		Time:   time.UnixMilli(openTime).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}
	if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 || bar.Volume < 0 {
		return model.OHLCV{}, errors.New("non-positive price or negative volume")
	}
	return bar, nil
}

// decodeNumber accepts both quoted decimals and bare JSON numbers.
func decodeNumber(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseFloat(s, 64)
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("not a number: %s", string(raw))
	}
	return v, nil
}

// normalizeBars sorts by time and keeps the last bar of any duplicate timestamp.
func normalizeBars(bars []model.OHLCV) []model.OHLCV {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func (f *BinanceFetcher) FetchCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	body, err := f.get(ctx, "/api/v3/ticker/price", url.Values{"symbol": {symbol}})
	if err != nil {
		return 0, fmt.Errorf("fetch current price: %w", err)
	}
	var result struct {
		Price string `json:"price"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("decode price: %w", err)
	}
	price, err := strconv.ParseFloat(result.Price, 64)
	if err != nil || price <= 0 {
		return 0, fmt.Errorf("decode price: invalid value %q", result.Price)
	}
	return price, nil
}

func (f *BinanceFetcher) Fetch24hStats(ctx context.Context, symbol string) (*model.Ticker24h, error) {
	body, err := f.get(ctx, "/api/v3/ticker/24hr", url.Values{"symbol": {symbol}})
	if err != nil {
		return nil, fmt.Errorf("fetch 24h stats: %w", err)
	}
	var raw struct {
		Symbol             string `json:"symbol"`
		PriceChange        string `json:"priceChange"`
		PriceChangePercent string `json:"priceChangePercent"`
		HighPrice          string `json:"highPrice"`
		LowPrice           string `json:"lowPrice"`
		Volume             string `json:"volume"`
		QuoteVolume        string `json:"quoteVolume"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode 24h stats: %w", err)
	}
	fields := []string{raw.PriceChange, raw.PriceChangePercent, raw.HighPrice, raw.LowPrice, raw.Volume, raw.QuoteVolume}
	vals := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("decode 24h stats: %w", err)
		}
		vals[i] = v
	}
	return &model.Ticker24h{
		Symbol:        raw.Symbol,
		PriceChange:   vals[0],
		ChangePercent: vals[1],
		High:          vals[2],
		Low:           vals[3],
		Volume:        vals[4],
		QuoteVolume:   vals[5],
	}, nil
}
