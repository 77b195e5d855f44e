package models

import (
	"time"
)

// Poll is a community question with fixed options. Inactive polls are hidden
// from players and refuse votes.
type Poll struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Question     string       `gorm:"size:500;not null" json:"question"`
	TournamentID *uint        `gorm:"index" json:"tournament_id,omitempty"`
	Tournament   *Tournament  `gorm:"foreignKey:TournamentID;constraint:OnDelete:SET NULL" json:"tournament,omitempty"`
	IsActive     bool         `gorm:"not null;default:true" json:"is_active"`
	Options      []PollOption `gorm:"foreignKey:PollID;constraint:OnDelete:CASCADE" json:"options"`
	CreatedAt    time.Time    `json:"created_at"`
}

// TableName specifies the table name for Poll model.
func (Poll) TableName() string {
	return "polls"
}

// PollOption is one answer to a poll. Votes is filled in on reads.
type PollOption struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	PollID uint   `gorm:"not null;index" json:"poll_id"`
	Text   string `gorm:"size:255;not null" json:"text"`
	Votes  int64  `gorm:"-" json:"votes"`
}

// TableName specifies the table name for PollOption model.
func (PollOption) TableName() string {
	return "poll_options"
}

// PollVote is a user's current answer to a poll; one per user and poll.
type PollVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PollID    uint      `gorm:"not null;uniqueIndex:idx_poll_vote_user" json:"poll_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_poll_vote_user" json:"user_id"`
	OptionID  uint      `gorm:"not null;index" json:"option_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Poll   *Poll       `gorm:"foreignKey:PollID;constraint:OnDelete:CASCADE" json:"-"`
	User   *User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Option *PollOption `gorm:"foreignKey:OptionID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for PollVote model.
func (PollVote) TableName() string {
	return "poll_votes"
}

// HasOption reports whether optionID belongs to the poll.
func (p *Poll) HasOption(optionID uint) bool {
	for _, o := range p.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}
