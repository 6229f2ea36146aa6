package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Контракт арендатора (AD_CONTRATOS)

type Contract struct {
	TenantID int64
	Data     ContractData
}
type ContractData struct {
	Name                string
	TaxID               string
	Token               string
	AppKey              string
	Username            string
	Password            string
	Active              bool
	Sandbox             bool
	SyncActive          bool
	SyncIntervalMinutes int
	LastSync            time.Time
	NextSync            time.Time
}

// Credentials are the resolved ERP auth parameters of one tenant.
type Credentials struct {
	TenantID int64
	Token    string
	AppKey   string
	Username string
	Password string
	BaseURL  string
	Sandbox  bool
}

// Заказ на продажу

type Order struct {
	CustomerCode    string          `json:"customerCode"`
	SellerCode      string          `json:"sellerCode"`
	NoteModel       string          `json:"noteModel"`
	OperationType   string          `json:"operationType"`
	SaleCondition   string          `json:"saleCondition"`
	NegotiationDate string          `json:"negotiationDate"`
	Note            string          `json:"note"`
	Customer        Customer        `json:"customer"`
	Freight         decimal.Decimal `json:"freight"`
	Other           decimal.Decimal `json:"other"`
	TotalDiscount   decimal.Decimal `json:"totalDiscount"`

	// Total is whatever the caller computed; it is never transmitted.
	Total decimal.Decimal `json:"total"`
	Lines []OrderLine     `json:"lines"`
}

type Customer struct {
	Type              string `json:"type"`
	TaxID             string `json:"taxId"`
	StateRegistration string `json:"stateRegistration"`
	LegalName         string `json:"legalName"`
}

type OrderLine struct {
	Sequence      int             `json:"sequence"`
	ProductCode   string          `json:"productCode"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	DiscountPct   decimal.Decimal `json:"discountPct"`
	StockLocation string          `json:"stockLocation"`
	Control       string          `json:"control"`
	Unit          string          `json:"unit"`
}

// Result is the outcome of one order submission.
type Result struct {
	Success           bool   `json:"success"`
	OrderID           string `json:"orderId,omitempty"`
	Error             string `json:"error,omitempty"`
	Kind              string `json:"kind,omitempty"`
	IsValidationError bool   `json:"isValidationError"`
	Err               error  `json:"-"`
}
