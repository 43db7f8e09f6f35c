package application

// CheckoutLine 结账时的一行商品
type CheckoutLine struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// CheckoutCommand 结账参数
// 支付凭证可在结账时一并提交，也可稍后通过 SubmitPayment 补交
type CheckoutCommand struct {
	UserID            string
	Lines             []CheckoutLine `json:"lines" binding:"required"`
	FulfillmentMethod string         `json:"fulfillment_method" binding:"required"`
	DeliveryAddress   string         `json:"delivery_address"`
	ContactNumber     string         `json:"contact_number" binding:"required"`
	GCashReference    string         `json:"gcash_reference"`
	PaymentProofRef   string         `json:"payment_proof_ref"`
}

// SubmitPaymentCommand 补交支付凭证的参数
type SubmitPaymentCommand struct {
	GCashReference  string `json:"gcash_reference" binding:"required"`
	PaymentProofRef string `json:"payment_proof_ref" binding:"required"`
}
