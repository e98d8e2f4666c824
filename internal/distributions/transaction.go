package distributions

import "time"

// StatusCompleted is the only transaction status: a distribution either
// happens and is recorded, or fails validation and is never stored.
const StatusCompleted = "completed"

// Transaction is one recorded currency distribution. Immutable once
// stored; there is no update or delete.
//
// AdminUsername is a snapshot taken at creation time and must not be
// re-derived from the administrator record when rendering history.
type Transaction struct {
	ID            string    `json:"id"`
	UserUID       string    `json:"userUID"`
	UCAmount      int64     `json:"ucAmount"`
	CoinsAmount   int64     `json:"coinsAmount"`
	AdminID       string    `json:"adminId"`
	AdminUsername string    `json:"adminUsername"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}
