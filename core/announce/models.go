package announce

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/user"
)

const (
	AudienceAll      = "ALL"
	AudienceTeachers = "TEACHERS"
	AudienceStudents = "STUDENTS"
)

const (
	ComplaintOpen     = "OPEN"
	ComplaintResolved = "RESOLVED"
)

type (
	Announcement struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		Content   string    `json:"content"`
		Audience  string    `json:"audience"`
		AuthorID  string    `json:"author_id"`
		CreatedAt time.Time `json:"created_at"`

		AuthorName string `json:"author_name,omitempty"`
	}

	Notification struct {
		ID        string    `json:"id"`
		UserID    string    `json:"user_id"`
		Title     string    `json:"title"`
		Message   string    `json:"message"`
		Kind      string    `json:"kind"`
		IsRead    bool      `json:"is_read"`
		CreatedAt time.Time `json:"created_at"`
	}

	Complaint struct {
		ID         string      `json:"id"`
		AuthorID   string      `json:"author_id"`
		Subject    string      `json:"subject"`
		Content    string      `json:"content"`
		Status     string      `json:"status"`
		Resolution null.String `json:"resolution"`
		ResolvedAt null.Time   `json:"resolved_at"`
		CreatedAt  time.Time   `json:"created_at"`

		AuthorName string `json:"author_name,omitempty"`
	}

	NewAnnouncement struct {
		Title    string `json:"title" validate:"required"`
		Content  string `json:"content" validate:"required"`
		Audience string `json:"audience" validate:"required,oneof=ALL TEACHERS STUDENTS"`
	}

	NewComplaint struct {
		Subject string `json:"subject" validate:"required"`
		Content string `json:"content" validate:"required"`
	}

	Resolution struct {
		Resolution string `json:"resolution" validate:"required"`
	}

	Validator interface {
		Struct(s interface{}) error
	}
)

func (na *NewAnnouncement) Validate(validate Validator) error {
	na.Title = core.CleanString(na.Title)
	na.Content = core.CleanString(na.Content)
	na.Audience = strings.ToUpper(core.CleanString(na.Audience))
	return validate.Struct(na)
}

func (nc *NewComplaint) Validate(validate Validator) error {
	nc.Subject = core.CleanString(nc.Subject)
	nc.Content = core.CleanString(nc.Content)
	return validate.Struct(nc)
}

func (r *Resolution) Validate(validate Validator) error {
	r.Resolution = core.CleanString(r.Resolution)
	return validate.Struct(r)
}

// audienceRoles maps an announcement audience to the roles it reaches.
func audienceRoles(audience string) []string {
	switch audience {
	case AudienceTeachers:
		return []string{user.RoleTeacher}
	case AudienceStudents:
		return []string{user.RoleStudent}
	default:
		return []string{user.RolePrincipal, user.RoleTeacher, user.RoleStudent}
	}
}
