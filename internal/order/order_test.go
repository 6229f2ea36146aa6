package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iurnickita/sankhyagw/internal/apperr"
	"github.com/iurnickita/sankhyagw/internal/model"
	"github.com/iurnickita/sankhyagw/internal/sankhya"
	"github.com/iurnickita/sankhyagw/internal/store"
)

type priceStub struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	err    error
	asked  []string
}

func (p *priceStub) PriceGet(_ context.Context, _ int64, productCode string) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asked = append(p.asked, productCode)
	if p.err != nil {
		return decimal.Zero, p.err
	}
	return p.prices[productCode], nil
}

var testNow = time.Date(2026, 10, 15, 14, 37, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validOrder() model.Order {
	return model.Order{
		CustomerCode:    "300",
		SellerCode:      "15",
		NoteModel:       "1230",
		OperationType:   "3200",
		SaleCondition:   "10",
		NegotiationDate: "2026-10-14",
		Note:            "entregar pela manha",
		Customer: model.Customer{
			TaxID:     "12345678000195",
			LegalName: "Mercado Central LTDA",
		},
		Lines: []model.OrderLine{
			{ProductCode: "10", Quantity: d("2"), UnitPrice: d("10.50")},
			{ProductCode: "20", Quantity: d("1"), UnitPrice: d("100"), DiscountPct: d("10")},
		},
	}
}

func TestTranslate(t *testing.T) {
	prices := &priceStub{}
	payload, err := NewTranslator(prices).Translate(context.Background(), 42, validOrder(), testNow)
	require.NoError(t, err)

	want := sankhya.OrderPayload{
		Customer: sankhya.PayloadCustomer{
			Type:      "PJ",
			TaxID:     "12345678000195",
			LegalName: "Mercado Central LTDA",
		},
		NoteModel:     1230,
		OperationType: 3200,
		SaleCondition: 10,
		Date:          "14/10/2026",
		Time:          "14:37",
		SellerCode:    15,
		CustomerCode:  300,
		Total:         111,
		Items: []sankhya.PayloadItem{
			{Sequence: 1, ProductCode: 10, Quantity: 2, Control: "007", StockLocation: 700, Unit: "UN", UnitPrice: 10.5},
			{Sequence: 2, ProductCode: 20, Quantity: 1, Control: "007", StockLocation: 700, Unit: "UN", UnitPrice: 100},
		},
	}
	assert.Equal(t, want, payload)
	assert.Empty(t, prices.asked)
}

func TestTranslateIgnoresCallerTotal(t *testing.T) {
	order := validOrder()
	order.Total = d("9999.99")
	order.Freight = d("15.333")
	order.Other = d("4.20")
	order.TotalDiscount = d("0.50")

	payload, err := NewTranslator(&priceStub{}).Translate(context.Background(), 42, order, testNow)
	require.NoError(t, err)
	// 21 + 90 + 15.333 + 4.20 - 0.50
	require.Equal(t, 130.03, payload.Total)
}

func TestTotal(t *testing.T) {
	tests := []struct {
		name  string
		order model.Order
		want  string
	}{
		{
			name:  "single line",
			order: model.Order{Lines: []model.OrderLine{{Quantity: d("3"), UnitPrice: d("1.99")}}},
			want:  "5.97",
		},
		{
			name: "line discount",
			order: model.Order{Lines: []model.OrderLine{
				{Quantity: d("1"), UnitPrice: d("33.33"), DiscountPct: d("33.3")},
			}},
			want: "22.23",
		},
		{
			name: "adjustments",
			order: model.Order{
				Freight:       d("10"),
				Other:         d("2.5"),
				TotalDiscount: d("5"),
				Lines:         []model.OrderLine{{Quantity: d("0.5"), UnitPrice: d("7")}},
			},
			want: "11",
		},
		{
			name: "full discount",
			order: model.Order{Lines: []model.OrderLine{
				{Quantity: d("4"), UnitPrice: d("12"), DiscountPct: d("100")},
			}},
			want: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, d(tt.want).Equal(Total(tt.order, nil)), Total(tt.order, nil).String())
		})
	}
}

func TestTranslateClampsFutureDate(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{date: "2026-10-15", want: "15/10/2026"},
		{date: "2026-10-16", want: "15/10/2026"},
		{date: "2031-01-01", want: "15/10/2026"},
		{date: "2025-02-28", want: "28/02/2025"},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			order := validOrder()
			order.NegotiationDate = tt.date
			payload, err := NewTranslator(&priceStub{}).Translate(context.Background(), 42, order, testNow)
			require.NoError(t, err)
			require.Equal(t, tt.want, payload.Date)
		})
	}
}

func TestTranslateLineDefaults(t *testing.T) {
	order := validOrder()
	order.Customer.Type = "PF"
	order.Lines = []model.OrderLine{
		{ProductCode: "10", Quantity: d("1"), UnitPrice: d("1"), StockLocation: "101", Control: "L1", Unit: "CX"},
		{ProductCode: "11", Quantity: d("1"), UnitPrice: d("1"), StockLocation: "abc"},
		{ProductCode: "12", Quantity: d("1"), UnitPrice: d("1"), StockLocation: "0"},
	}

	payload, err := NewTranslator(&priceStub{}).Translate(context.Background(), 42, order, testNow)
	require.NoError(t, err)
	require.Equal(t, "PF", payload.Customer.Type)

	require.Equal(t, int64(101), payload.Items[0].StockLocation)
	require.Equal(t, "L1", payload.Items[0].Control)
	require.Equal(t, "CX", payload.Items[0].Unit)
	require.Equal(t, int64(700), payload.Items[1].StockLocation)
	require.Equal(t, int64(700), payload.Items[2].StockLocation)
	for i, item := range payload.Items {
		require.Equal(t, i+1, item.Sequence)
	}
}

func TestTranslateLooksUpMissingPrices(t *testing.T) {
	prices := &priceStub{prices: map[string]decimal.Decimal{"10": d("4.25"), "30": d("8")}}
	order := validOrder()
	order.Lines = []model.OrderLine{
		{ProductCode: "10", Quantity: d("2")},
		{ProductCode: "20", Quantity: d("1"), UnitPrice: d("5")},
		{ProductCode: "30", Quantity: d("3"), DiscountPct: d("50")},
	}

	payload, err := NewTranslator(prices).Translate(context.Background(), 42, order, testNow)
	require.NoError(t, err)

	require.ElementsMatch(t, []string{"10", "30"}, prices.asked)
	require.Equal(t, 4.25, payload.Items[0].UnitPrice)
	require.Equal(t, 5.0, payload.Items[1].UnitPrice)
	require.Equal(t, 8.0, payload.Items[2].UnitPrice)
	// 8.5 + 5 + 12
	require.Equal(t, 25.5, payload.Total)
}

func TestTranslatePriceLookupFailure(t *testing.T) {
	lookupErr := errors.New("connection refused")
	order := validOrder()
	order.Lines[0].UnitPrice = decimal.Zero

	_, err := NewTranslator(&priceStub{err: lookupErr}).Translate(context.Background(), 42, order, testNow)
	require.ErrorIs(t, err, lookupErr)
	require.NotErrorIs(t, err, apperr.ErrValidation)
}

func TestTranslateUnknownPrice(t *testing.T) {
	order := validOrder()
	order.Lines[1].UnitPrice = decimal.Zero

	_, err := NewTranslator(&priceStub{err: store.ErrNoRows}).Translate(context.Background(), 42, order, testNow)
	require.ErrorIs(t, err, ErrPriceNotFound)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestTranslateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *model.Order)
		want   error
	}{
		{name: "customer code", mutate: func(o *model.Order) { o.CustomerCode = " " }, want: ErrCustomerCodeRequired},
		{name: "seller empty", mutate: func(o *model.Order) { o.SellerCode = "" }, want: ErrSellerRequired},
		{name: "seller zero", mutate: func(o *model.Order) { o.SellerCode = "0" }, want: ErrSellerRequired},
		{name: "seller padded zero", mutate: func(o *model.Order) { o.SellerCode = "000" }, want: ErrSellerRequired},
		{name: "tax id", mutate: func(o *model.Order) { o.Customer.TaxID = "" }, want: ErrTaxIDRequired},
		{name: "legal name", mutate: func(o *model.Order) { o.Customer.LegalName = "" }, want: ErrLegalNameRequired},
		{name: "note model missing", mutate: func(o *model.Order) { o.NoteModel = "" }, want: ErrNoteModelRequired},
		{name: "note model text", mutate: func(o *model.Order) { o.NoteModel = "TOP" }, want: ErrNoteModelInvalid},
		{name: "note model zero", mutate: func(o *model.Order) { o.NoteModel = "0" }, want: ErrNoteModelInvalid},
		{name: "customer code text", mutate: func(o *model.Order) { o.CustomerCode = "C-300" }, want: ErrInvalidCode},
		{name: "operation type text", mutate: func(o *model.Order) { o.OperationType = "venda" }, want: ErrInvalidCode},
		{name: "no lines", mutate: func(o *model.Order) { o.Lines = nil }, want: ErrNoLines},
		{name: "product code", mutate: func(o *model.Order) { o.Lines[1].ProductCode = "SKU-9" }, want: ErrInvalidProductCode},
		{name: "zero quantity", mutate: func(o *model.Order) { o.Lines[0].Quantity = decimal.Zero }, want: ErrInvalidQuantity},
		{name: "negative price", mutate: func(o *model.Order) { o.Lines[0].UnitPrice = d("-1") }, want: ErrInvalidUnitPrice},
		{name: "discount over 100", mutate: func(o *model.Order) { o.Lines[0].DiscountPct = d("100.01") }, want: ErrInvalidDiscount},
		{name: "date format", mutate: func(o *model.Order) { o.NegotiationDate = "14/10/2026" }, want: ErrInvalidDate},
		{name: "date missing", mutate: func(o *model.Order) { o.NegotiationDate = "" }, want: ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := validOrder()
			// a zero price would need a lookup, validation must fail first
			order.Lines[0].UnitPrice = decimal.Zero
			tt.mutate(&order)

			prices := &priceStub{}
			_, err := NewTranslator(prices).Translate(context.Background(), 42, order, testNow)
			require.ErrorIs(t, err, tt.want)
			require.ErrorIs(t, err, apperr.ErrValidation)
			require.ErrorIs(t, NewTranslator(prices).Validate(order, testNow), tt.want)
			require.Empty(t, prices.asked)
		})
	}
}

func TestValidateDoesNotLookUpPrices(t *testing.T) {
	order := validOrder()
	order.Lines[0].UnitPrice = decimal.Zero

	prices := &priceStub{err: store.ErrNoRows}
	require.NoError(t, NewTranslator(prices).Validate(order, testNow))
	require.Empty(t, prices.asked)
}
