package lead

import (
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/autostream-ai/leadflow/agent/contract"
)

// StatusNew is the status every freshly captured lead starts with. Status is
// only ever changed through UpdateStatus at the storage boundary; the
// dialogue flow itself never touches it.
const StatusNew = "new_lead"

// Record is the persisted lead row.
type Record struct {
	bun.BaseModel `bun:"table:leads,alias:l"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Email     string    `bun:"email,notnull,unique"`
	Platform  string    `bun:"platform,notnull"`
	Plan      string    `bun:"plan,nullzero"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	Status    string    `bun:"status,notnull,default:'new_lead'"`
}

func (r Record) toContract() contractx.LeadRecord {
	return contractx.LeadRecord{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Platform:  r.Platform,
		Plan:      r.Plan,
		CreatedAt: r.CreatedAt,
		Status:    r.Status,
	}
}
