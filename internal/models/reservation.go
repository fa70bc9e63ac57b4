package models

// TotalNumbers is how many slots the raffle sells.
const TotalNumbers = 1000

// Payment states a reservation moves through. New reservations start
// as pending.
const (
	PaymentPending   = "pending"
	PaymentPaid      = "paid"
	PaymentCancelled = "cancelled"
)

// Reservation is the one persisted entity: a numbered slot taken by a
// customer. Numero is unique across the store and acts as the key.
// Fecha is stamped once at creation and never updated.
type Reservation struct {
	Numero        int    `json:"numero" db:"numero"`
	CustomerName  string `json:"customerName" db:"customer_name"`
	CustomerPhone string `json:"customerPhone" db:"customer_phone"`
	CustomerEmail string `json:"customerEmail,omitempty" db:"customer_email"`
	CustomerNotes string `json:"customerNotes,omitempty" db:"customer_notes"`
	PaymentStatus string `json:"paymentStatus" db:"payment_status"`
	Fecha         string `json:"fecha" db:"fecha"`
}

// ReservationUpdate is a partial update. Only non-nil fields are
// merged into the matching record.
type ReservationUpdate struct {
	CustomerName  *string `json:"customerName"`
	CustomerPhone *string `json:"customerPhone"`
	CustomerEmail *string `json:"customerEmail"`
	CustomerNotes *string `json:"customerNotes"`
	PaymentStatus *string `json:"paymentStatus"`
}

// Apply merges the set fields into r.
func (u ReservationUpdate) Apply(r *Reservation) {
	if u.CustomerName != nil {
		r.CustomerName = *u.CustomerName
	}
	if u.CustomerPhone != nil {
		r.CustomerPhone = *u.CustomerPhone
	}
	if u.CustomerEmail != nil {
		r.CustomerEmail = *u.CustomerEmail
	}
	if u.CustomerNotes != nil {
		r.CustomerNotes = *u.CustomerNotes
	}
	if u.PaymentStatus != nil {
		r.PaymentStatus = *u.PaymentStatus
	}
}

// AvailableNumber is the placeholder the list endpoint synthesizes for
// slots that have no record when filtering by status=available.
type AvailableNumber struct {
	Numero     int  `json:"numero"`
	IsReserved bool `json:"isReserved"`
}

// Slot is the derived view entity, one per integer 1..TotalNumbers.
// It mirrors the matching Reservation when one exists and is
// recomputed on every read, never stored.
type Slot struct {
	Number        int    `json:"number"`
	IsReserved    bool   `json:"isReserved"`
	CustomerName  string `json:"customerName,omitempty"`
	CustomerPhone string `json:"customerPhone,omitempty"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	CustomerNotes string `json:"customerNotes,omitempty"`
	PaymentStatus string `json:"paymentStatus,omitempty"`
	ReservedDate  string `json:"reservedDate,omitempty"`
}

// Pagination describes the page window the list endpoint returned.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Prize is one entry of the fixed prize table, drawn from 4th place up
// to 1st. Icon and Color are presentation tags passed through to the
// winner record.
type Prize struct {
	Lugar  string `json:"lugar"`
	Nombre string `json:"nombre"`
	Icon   string `json:"icon"`
	Color  string `json:"color"`
}

// DrawWinner records one drawn prize. Winners live in memory only and
// are lost when the process restarts.
type DrawWinner struct {
	Premio      string `json:"premio"`
	Descripcion string `json:"descripcion"`
	Numero      int    `json:"numero"`
	Nombre      string `json:"nombre"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// DrawResult is the standalone single-draw variant's history entry.
type DrawResult struct {
	WinningNumber     int    `json:"winningNumber"`
	WinnerName        string `json:"winnerName"`
	DrawDate          string `json:"drawDate"`
	TotalParticipants int    `json:"totalParticipants"`
}
