package orderdto

// CreateOrderInput freezes a quoted amount into a new escrow order.
// Exactly one of SourceAmount/DestinationBudget must be positive:
// SourceAmount quotes forward (supplier asks ¥X), DestinationBudget quotes
// inverse (buyer has R$Y to spend).
type CreateOrderInput struct {
	BuyerID           string
	SupplierID        string
	Description       string
	SourceAmount      float64
	DestinationBudget float64
}

type MarkShippedInput struct {
	OrderID      string
	TrackingCode string
}

type OpenDisputeInput struct {
	OrderID string
	Reason  string
}
