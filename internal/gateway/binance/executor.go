package binance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ladder/internal/gateway/exchange"
	"ladder/internal/logger"
	symbolpkg "ladder/internal/pkg/symbol"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/google/uuid"
)

// Executor places USDⓈ-M futures market orders through the go-binance SDK.
type Executor struct {
	cfg    Config
	client *futures.Client
}

var _ exchange.Executor = (*Executor)(nil)

func New(cfg Config) (*Executor, error) {
	final := cfg.withDefaults()
	if final.APIKey == "" || final.SecretKey == "" {
		return nil, fmt.Errorf("binance executor requires api key and secret")
	}
	client := futures.NewClient(final.APIKey, final.SecretKey)
	client.BaseURL = final.RESTBaseURL
	httpClient := &http.Client{Timeout: final.HTTPTimeout}
	if final.ProxyEnabled && final.RESTProxyURL != "" {
		proxyURL, err := url.Parse(final.RESTProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REST proxy url: %w", err)
		}
		baseTransport, ok := http.DefaultTransport.(*http.Transport)
		if !ok || baseTransport == nil {
			return nil, fmt.Errorf("http DefaultTransport is not *http.Transport")
		}
		transport := baseTransport.Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		httpClient.Transport = transport
	}
	client.HTTPClient = httpClient
	return &Executor{cfg: final, client: client}, nil
}

func (e *Executor) Name() string {
	if e.cfg.Testnet {
		return "binance-testnet"
	}
	return "binance"
}

func (e *Executor) OpenPosition(ctx context.Context, req exchange.OrderRequest) (*exchange.OrderResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return e.submit(ctx, req, orderSide(req.Side), false)
}

func (e *Executor) ClosePosition(ctx context.Context, req exchange.OrderRequest) (*exchange.OrderResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return e.submit(ctx, req, orderSide(exchange.OppositeSide(req.Side)), true)
}

func (e *Executor) submit(ctx context.Context, req exchange.OrderRequest, side futures.SideType, reduceOnly bool) (*exchange.OrderResult, error) {
	sym := symbolpkg.Binance.ToExchange(req.Symbol)
	clientID := uuid.NewString()
	qty := strconv.FormatFloat(req.Quantity, 'f', -1, 64)
	svc := e.client.NewCreateOrderService().
		Symbol(sym).
		Side(side).
		Type(futures.OrderTypeMarket).
		Quantity(qty).
		NewClientOrderID(clientID).
		NewOrderResponseType(futures.NewOrderRespTypeRESULT)
	if reduceOnly {
		svc = svc.ReduceOnly(true)
	}
	start := time.Now()
	res, err := svc.Do(ctx)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("binance order rejected code=%d: %s", apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("binance order failed: %w", err)
	}
	logger.Infof("binance order %s %s qty=%s reduce_only=%v status=%s dur=%s",
		sym, side, qty, reduceOnly, res.Status, time.Since(start))
	return &exchange.OrderResult{
		OrderID:       strconv.FormatInt(res.OrderID, 10),
		ClientOrderID: res.ClientOrderID,
		Symbol:        res.Symbol,
		Side:          strings.ToLower(string(res.Side)),
		Status:        string(res.Status),
		AvgPrice:      parseFloat(res.AvgPrice),
		FilledQty:     parseFloat(res.ExecutedQuantity),
		Venue:         e.Name(),
		SubmittedAt:   start,
	}, nil
}

func orderSide(side string) futures.SideType {
	if side == exchange.SideShort {
		return futures.SideTypeSell
	}
	return futures.SideTypeBuy
}

func parseFloat(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}
