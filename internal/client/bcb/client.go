// Package bcb reads PTAX exchange rates published by the Banco Central do
// Brasil. Rates are quoted in BRL per unit of the foreign currency.
package bcb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://olinda.bcb.gov.br/olinda/servico/PTAX/versao/v1/odata"

// QuoteCurrency is the currency every PTAX rate is expressed in.
const QuoteCurrency = "BRL"

const closingBulletin = "Fechamento"

type Client struct {
	host       string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bcb api error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host string) *Client {
	if host == "" {
		host = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		host:       strings.TrimRight(host, "/"),
		httpClient: httpClient,
	}
}

// QuoteCurrency reports the currency the client's rates are expressed in.
func (c *Client) QuoteCurrency() string { return QuoteCurrency }

type quoteRow struct {
	CotacaoCompra decimal.Decimal `json:"cotacaoCompra"`
	CotacaoVenda  decimal.Decimal `json:"cotacaoVenda"`
	DataHora      string          `json:"dataHoraCotacao"`
	TipoBoletim   string          `json:"tipoBoletim"`
}

type odataResponse struct {
	Value []quoteRow `json:"value"`
}

// SellRate returns the PTAX sell rate for currency on day. found is false
// when the bank published nothing for that day (weekends, holidays).
func (c *Client) SellRate(ctx context.Context, currency string, day time.Time) (decimal.Decimal, bool, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return decimal.Zero, false, fmt.Errorf("currency is required")
	}
	path, rawQuery := quotePath(currency, day)
	body, err := c.doRequest(ctx, path, rawQuery)
	if err != nil {
		return decimal.Zero, false, err
	}
	var resp odataResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return decimal.Zero, false, fmt.Errorf("decode ptax response: %w", err)
	}
	row, ok := pickRow(resp.Value)
	if !ok || !row.CotacaoVenda.IsPositive() {
		return decimal.Zero, false, nil
	}
	return row.CotacaoVenda, true, nil
}

// quotePath builds the OData function call. USD has a dedicated endpoint;
// every other currency goes through CotacaoMoedaDia.
func quotePath(currency string, day time.Time) (string, string) {
	date := day.Format("01-02-2006")
	if currency == "USD" {
		return "/CotacaoDolarDia(dataCotacao=@dataCotacao)",
			"@dataCotacao='" + date + "'&$top=100&$format=json"
	}
	return "/CotacaoMoedaDia(moeda=@moeda,dataCotacao=@dataCotacao)",
		"@moeda='" + currency + "'&@dataCotacao='" + date + "'&$top=100&$format=json"
}

// pickRow prefers the closing bulletin and otherwise takes the last one
// published that day.
func pickRow(rows []quoteRow) (quoteRow, bool) {
	if len(rows) == 0 {
		return quoteRow{}, false
	}
	for _, r := range rows {
		if strings.HasPrefix(strings.TrimSpace(r.TipoBoletim), closingBulletin) {
			return r, true
		}
	}
	return rows[len(rows)-1], true
}

func (c *Client) doRequest(ctx context.Context, path, rawQuery string) ([]byte, error) {
	fullURL := c.host + path
	if rawQuery != "" {
		fullURL += "?" + rawQuery
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
