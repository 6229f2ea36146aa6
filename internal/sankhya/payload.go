package sankhya

// OrderEndpoint creates a sales order.
const OrderEndpoint = "/v1/vendas/pedidos"

// JSON тело заказа
type OrderPayload struct {
	Customer      PayloadCustomer `json:"cliente"`
	NoteModel     int64           `json:"notaModelo"`
	OperationType int64           `json:"CODTIPOPER"`
	SaleCondition int64           `json:"CODTIPVENDA"`
	Date          string          `json:"data"`
	Time          string          `json:"hora"`
	SellerCode    int64           `json:"codigoVendedor"`
	CustomerCode  int64           `json:"codigoCliente"`
	Total         float64         `json:"valorTotal"`
	Items         []PayloadItem   `json:"itens"`
}

type PayloadCustomer struct {
	Type              string `json:"tipo"`
	TaxID             string `json:"cnpjCpf"`
	StateRegistration string `json:"ieRg"`
	LegalName         string `json:"razao"`
}

type PayloadItem struct {
	Sequence      int     `json:"sequencia"`
	ProductCode   int64   `json:"codigoProduto"`
	Quantity      float64 `json:"quantidade"`
	Control       string  `json:"controle"`
	StockLocation int64   `json:"codigoLocalEstoque"`
	Unit          string  `json:"unidade"`
	UnitPrice     float64 `json:"valorUnitario"`
}
