package application

// AddCartLineCommand 加入预约购物车的参数
type AddCartLineCommand struct {
	ProductID       uint   `json:"product_id" binding:"required"`
	Quantity        int    `json:"quantity" binding:"required,min=1"`
	ReservationDate string `json:"reservation_date" binding:"required"`
	ReservationTime string `json:"reservation_time" binding:"required"`
}

// SubmitCommand 提交预约的参数
// 定金凭证可在提交时一并给出，也可确认后通过 SubmitPayment 补交
type SubmitCommand struct {
	UserID          string
	ContactNumber   string `json:"contact_number" binding:"required"`
	Notes           string `json:"notes"`
	GCashReference  string `json:"gcash_reference"`
	PaymentProofRef string `json:"payment_proof_ref"`
}

// SubmitPaymentCommand 补交定金凭证的参数
type SubmitPaymentCommand struct {
	GCashReference  string `json:"gcash_reference" binding:"required"`
	PaymentProofRef string `json:"payment_proof_ref" binding:"required"`
}
