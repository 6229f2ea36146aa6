// Package order validates a sales order and translates it into the ERP wire payload.
package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/iurnickita/sankhyagw/internal/apperr"
	"github.com/iurnickita/sankhyagw/internal/model"
	"github.com/iurnickita/sankhyagw/internal/sankhya"
	"github.com/iurnickita/sankhyagw/internal/store"
)

var (
	ErrCustomerCodeRequired = fmt.Errorf("%w: customer code is required", apperr.ErrValidation)
	ErrSellerRequired       = fmt.Errorf("%w: seller is required", apperr.ErrValidation)
	ErrTaxIDRequired        = fmt.Errorf("%w: customer tax id is required", apperr.ErrValidation)
	ErrLegalNameRequired    = fmt.Errorf("%w: customer legal name is required", apperr.ErrValidation)
	ErrNoteModelRequired    = fmt.Errorf("%w: note model is required", apperr.ErrValidation)
	ErrNoteModelInvalid     = fmt.Errorf("%w: note model must be a positive number", apperr.ErrValidation)
	ErrNoLines              = fmt.Errorf("%w: order has no lines", apperr.ErrValidation)
	ErrInvalidCode          = fmt.Errorf("%w: code must be numeric", apperr.ErrValidation)
	ErrInvalidProductCode   = fmt.Errorf("%w: product code must be numeric", apperr.ErrValidation)
	ErrInvalidQuantity      = fmt.Errorf("%w: quantity must be greater than zero", apperr.ErrValidation)
	ErrInvalidUnitPrice     = fmt.Errorf("%w: unit price must not be negative", apperr.ErrValidation)
	ErrInvalidDiscount      = fmt.Errorf("%w: discount must be between 0 and 100", apperr.ErrValidation)
	ErrInvalidDate          = fmt.Errorf("%w: negotiation date must be YYYY-MM-DD", apperr.ErrValidation)
)

// ErrPriceNotFound is a validation error, unlike the other price lookup failures:
// the caller fixes it by sending a unit price for the line.
var ErrPriceNotFound = fmt.Errorf("%w: product has no price", apperr.ErrValidation)

const (
	defaultCustomerType  = "PJ"
	defaultControl       = "007"
	defaultStockLocation = 700
	defaultUnit          = "UN"

	inputDateLayout = "2006-01-02"
	wireDateLayout  = "02/01/2006"
	wireTimeLayout  = "15:04"
)

var hundred = decimal.NewFromInt(100)

// PriceLookup returns the current unit price of a product for the tenant, store.ErrNoRows
// when the product has no price.
type PriceLookup interface {
	PriceGet(ctx context.Context, tenantID int64, productCode string) (decimal.Decimal, error)
}

type Translator struct {
	prices PriceLookup
}

func NewTranslator(prices PriceLookup) *Translator {
	return &Translator{prices: prices}
}

// Translate validates the order and builds the wire payload. now stamps the date clamp and
// the time of day. Validation happens before any price lookup.
// Validate checks the order without looking up prices.
func (t *Translator) Validate(order model.Order, now time.Time) error {
	if _, err := validateHeader(order); err != nil {
		return err
	}
	if _, err := validateLines(order.Lines); err != nil {
		return err
	}
	_, err := negotiationDate(order.NegotiationDate, now)
	return err
}

func (t *Translator) Translate(ctx context.Context, tenantID int64, order model.Order, now time.Time) (sankhya.OrderPayload, error) {
	codes, err := validateHeader(order)
	if err != nil {
		return sankhya.OrderPayload{}, err
	}
	items, err := validateLines(order.Lines)
	if err != nil {
		return sankhya.OrderPayload{}, err
	}
	date, err := negotiationDate(order.NegotiationDate, now)
	if err != nil {
		return sankhya.OrderPayload{}, err
	}

	prices, err := t.resolvePrices(ctx, tenantID, order.Lines)
	if err != nil {
		return sankhya.OrderPayload{}, err
	}

	for i := range items {
		items[i].UnitPrice = prices[i].InexactFloat64()
	}

	customerType := order.Customer.Type
	if customerType == "" {
		customerType = defaultCustomerType
	}

	return sankhya.OrderPayload{
		Customer: sankhya.PayloadCustomer{
			Type:              customerType,
			TaxID:             order.Customer.TaxID,
			StateRegistration: order.Customer.StateRegistration,
			LegalName:         order.Customer.LegalName,
		},
		NoteModel:     codes.noteModel,
		OperationType: codes.operationType,
		SaleCondition: codes.saleCondition,
		Date:          date,
		Time:          now.Format(wireTimeLayout),
		SellerCode:    codes.seller,
		CustomerCode:  codes.customer,
		Total:         Total(order, prices).InexactFloat64(),
		Items:         items,
	}, nil
}

// Total is the sum of the line totals plus freight and other charges minus the total discount,
// rounded to 2 places. prices overrides the line unit prices when not nil.
func Total(order model.Order, prices []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for i, line := range order.Lines {
		price := line.UnitPrice
		if prices != nil {
			price = prices[i]
		}
		total = total.Add(LineTotal(line.Quantity, price, line.DiscountPct))
	}
	total = total.Add(order.Freight).Add(order.Other).Sub(order.TotalDiscount)
	return total.Round(2)
}

// LineTotal is quantity × unit price × (1 − discount/100), unrounded.
func LineTotal(quantity, unitPrice, discountPct decimal.Decimal) decimal.Decimal {
	gross := quantity.Mul(unitPrice)
	return gross.Sub(gross.Mul(discountPct).Div(hundred))
}

type header struct {
	customer      int64
	seller        int64
	noteModel     int64
	operationType int64
	saleCondition int64
}

func validateHeader(order model.Order) (header, error) {
	var h header
	var err error

	customerCode := strings.TrimSpace(order.CustomerCode)
	if customerCode == "" {
		return header{}, ErrCustomerCodeRequired
	}
	seller := strings.TrimSpace(order.SellerCode)
	if seller == "" || seller == "0" {
		return header{}, ErrSellerRequired
	}
	if strings.TrimSpace(order.Customer.TaxID) == "" {
		return header{}, ErrTaxIDRequired
	}
	if strings.TrimSpace(order.Customer.LegalName) == "" {
		return header{}, ErrLegalNameRequired
	}
	noteModel := strings.TrimSpace(order.NoteModel)
	if noteModel == "" {
		return header{}, ErrNoteModelRequired
	}
	if h.noteModel, err = strconv.ParseInt(noteModel, 10, 64); err != nil || h.noteModel <= 0 {
		return header{}, ErrNoteModelInvalid
	}

	if h.customer, err = parseCode("customer code", customerCode); err != nil {
		return header{}, err
	}
	if h.seller, err = parseCode("seller", seller); err != nil {
		return header{}, err
	}
	if h.seller == 0 {
		return header{}, ErrSellerRequired
	}
	if h.operationType, err = parseCode("operation type", order.OperationType); err != nil {
		return header{}, err
	}
	if h.saleCondition, err = parseCode("sale condition", order.SaleCondition); err != nil {
		return header{}, err
	}
	return h, nil
}

// parseCode reads an optional numeric ERP code; blank reads as 0.
func parseCode(field, value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	code, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", field, value, ErrInvalidCode)
	}
	return code, nil
}

// validateLines checks every line and builds the wire items without prices.
// Sequence numbers follow the order of entry starting at 1.
func validateLines(lines []model.OrderLine) ([]sankhya.PayloadItem, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}

	items := make([]sankhya.PayloadItem, len(lines))
	for i, line := range lines {
		seq := i + 1
		productCode, err := strconv.ParseInt(strings.TrimSpace(line.ProductCode), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", seq, ErrInvalidProductCode)
		}
		if !line.Quantity.IsPositive() {
			return nil, fmt.Errorf("line %d: %w", seq, ErrInvalidQuantity)
		}
		if line.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("line %d: %w", seq, ErrInvalidUnitPrice)
		}
		if line.DiscountPct.IsNegative() || line.DiscountPct.GreaterThan(hundred) {
			return nil, fmt.Errorf("line %d: %w", seq, ErrInvalidDiscount)
		}

		control := line.Control
		if control == "" {
			control = defaultControl
		}
		unit := line.Unit
		if unit == "" {
			unit = defaultUnit
		}
		stockLocation, err := strconv.ParseInt(strings.TrimSpace(line.StockLocation), 10, 64)
		if err != nil || stockLocation == 0 {
			stockLocation = defaultStockLocation
		}

		items[i] = sankhya.PayloadItem{
			Sequence:      seq,
			ProductCode:   productCode,
			Quantity:      line.Quantity.InexactFloat64(),
			Control:       control,
			StockLocation: stockLocation,
			Unit:          unit,
		}
	}
	return items, nil
}

// negotiationDate reformats YYYY-MM-DD as DD/MM/YYYY. A date after today becomes today.
func negotiationDate(value string, now time.Time) (string, error) {
	date, err := time.ParseInLocation(inputDateLayout, strings.TrimSpace(value), now.Location())
	if err != nil {
		return "", fmt.Errorf("%q: %w", value, ErrInvalidDate)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.After(today) {
		return today.Format(wireDateLayout), nil
	}
	return date.Format(wireDateLayout), nil
}

// resolvePrices looks up the price of every zero priced line concurrently. The result
// keeps the order of the lines.
func (t *Translator) resolvePrices(ctx context.Context, tenantID int64, lines []model.OrderLine) ([]decimal.Decimal, error) {
	prices := make([]decimal.Decimal, len(lines))
	g, ctx := errgroup.WithContext(ctx)

	for i, line := range lines {
		if !line.UnitPrice.IsZero() {
			prices[i] = line.UnitPrice
			continue
		}
		g.Go(func() error {
			price, err := t.prices.PriceGet(ctx, tenantID, strings.TrimSpace(line.ProductCode))
			if errors.Is(err, store.ErrNoRows) {
				return fmt.Errorf("product %s: %w", line.ProductCode, ErrPriceNotFound)
			}
			if err != nil {
				return fmt.Errorf("price of product %s: %w", line.ProductCode, err)
			}
			if price.IsNegative() {
				return fmt.Errorf("price of product %s: %w", line.ProductCode, errNegativePrice)
			}
			prices[i] = price
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return prices, nil
}

var errNegativePrice = errors.New("negative price returned")
