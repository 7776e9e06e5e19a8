package catalog

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/studysitare/portal/core"
)

// Subject is one academic subject, offered in exactly one semester.
type Subject struct {
	ID          int64       `db:"id" json:"id"`
	Name        string      `db:"name" json:"name"`
	Semester    int         `db:"semester" json:"semester"`
	Description null.String `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"` // UTC
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Name        string `json:"name" form:"name" validate:"required"`
	Semester    int    `json:"semester" form:"semester" validate:"required,min=1,max=8"`
	Description string `json:"description" form:"description"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Description = core.CleanString(ns.Description)
	return validate.Struct(ns)
}
