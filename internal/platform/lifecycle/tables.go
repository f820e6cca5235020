package lifecycle

// Equipment statuses.
const (
	EquipmentAvailable   = "available"
	EquipmentInUse       = "in_use"
	EquipmentMaintenance = "maintenance"
	EquipmentDamaged     = "damaged"
	EquipmentRetired     = "retired"
)

// Service request statuses.
const (
	RequestPending    = "pending"
	RequestQuoted     = "quoted"
	RequestAccepted   = "accepted"
	RequestRejected   = "rejected"
	RequestInProgress = "in_progress"
	RequestCompleted  = "completed"
	RequestCancelled  = "cancelled"
)

// Quote statuses.
const (
	QuoteDraft     = "draft"
	QuoteSubmitted = "submitted"
	QuoteAccepted  = "accepted"
	QuoteDeclined  = "declined"
	QuoteWithdrawn = "withdrawn"
)

// Dispute statuses.
const (
	DisputeOpen        = "open"
	DisputeUnderReview = "under_review"
	DisputeEscalated   = "escalated"
	DisputeResolved    = "resolved"
	DisputeClosed      = "closed"
)

// Ticket statuses.
const (
	TicketOpen            = "open"
	TicketInProgress      = "in_progress"
	TicketWaitingCustomer = "waiting_customer"
	TicketResolved        = "resolved"
	TicketClosed          = "closed"
)

// Payment statuses.
const (
	PaymentPending    = "pending"
	PaymentProcessing = "processing"
	PaymentPaid       = "paid"
	PaymentFailed     = "failed"
	PaymentRefunded   = "refunded"
	PaymentCancelled  = "cancelled"
)

var tables = map[Kind]Table{
	KindEquipment: {
		EquipmentAvailable:   {EquipmentInUse: true, EquipmentMaintenance: true, EquipmentRetired: true},
		EquipmentInUse:       {EquipmentAvailable: true, EquipmentMaintenance: true, EquipmentDamaged: true},
		EquipmentMaintenance: {EquipmentAvailable: true, EquipmentRetired: true},
		EquipmentDamaged:     {EquipmentMaintenance: true, EquipmentRetired: true},
		EquipmentRetired:     {},
	},
	KindServiceRequest: {
		RequestPending:    {RequestQuoted: true, RequestCancelled: true},
		RequestQuoted:     {RequestAccepted: true, RequestRejected: true, RequestCancelled: true},
		RequestRejected:   {RequestPending: true},
		RequestAccepted:   {RequestInProgress: true, RequestCancelled: true},
		RequestInProgress: {RequestCompleted: true},
		RequestCompleted:  {},
		RequestCancelled:  {},
	},
	KindQuote: {
		QuoteDraft:     {QuoteSubmitted: true},
		QuoteSubmitted: {QuoteAccepted: true, QuoteDeclined: true, QuoteWithdrawn: true},
		QuoteAccepted:  {},
		QuoteDeclined:  {},
		QuoteWithdrawn: {},
	},
	KindDispute: {
		DisputeOpen:        {DisputeUnderReview: true},
		DisputeUnderReview: {DisputeResolved: true, DisputeEscalated: true},
		DisputeEscalated:   {DisputeResolved: true},
		DisputeResolved:    {DisputeClosed: true},
		DisputeClosed:      {},
	},
	KindTicket: {
		TicketOpen:            {TicketInProgress: true},
		TicketInProgress:      {TicketWaitingCustomer: true, TicketResolved: true},
		TicketWaitingCustomer: {TicketInProgress: true},
		TicketResolved:        {TicketClosed: true, TicketInProgress: true},
		TicketClosed:          {},
	},
	KindPayment: {
		PaymentPending:    {PaymentProcessing: true, PaymentCancelled: true},
		PaymentProcessing: {PaymentPaid: true, PaymentFailed: true},
		PaymentFailed:     {PaymentPending: true},
		PaymentPaid:       {PaymentRefunded: true},
		PaymentRefunded:   {},
		PaymentCancelled:  {},
	},
}

// approvalTransitions lists, per kind, the single approval-class move out of
// each source state. The platform-admin ticket force-close is deliberately
// NOT here: it bypasses the table through its own audited code path.
var approvalTransitions = map[Kind]map[string]string{
	KindServiceRequest: {RequestPending: RequestQuoted},
	KindQuote:          {QuoteSubmitted: QuoteAccepted},
	KindDispute:        {DisputeOpen: DisputeUnderReview},
	KindPayment:        {PaymentPending: PaymentProcessing},
}
