package resolution

import (
	"strings"
)

// Draft is the resolution form. The meeting comes from the route when creating.
type Draft struct {
	Title       string
	Description string
	Status      Status
}

// Validate trims the form and lists what is missing. Status is only sent on update and may be left empty.
func (d *Draft) Validate() []string {
	var errs []string
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	if d.Title == "" {
		errs = append(errs, "Resolution title is required")
	}
	d.Status = normalize(d.Status)
	if d.Status != "" && !d.Status.Valid() {
		errs = append(errs, "Status is invalid")
	}
	return errs
}

// DraftFrom fills the edit form from a stored resolution.
func DraftFrom(r Resolution) Draft {
	return Draft{Title: r.Title, Description: r.Description, Status: r.Status}
}

// StatusChange is the status form on a resolution page.
type StatusChange struct {
	Status Status
}

func (c *StatusChange) Validate() []string {
	c.Status = normalize(c.Status)
	switch {
	case c.Status == "":
		return []string{"Status is required"}
	case !c.Status.Valid():
		return []string{"Status is invalid"}
	}
	return nil
}

func normalize(s Status) Status {
	return Status(strings.ToUpper(strings.TrimSpace(string(s))))
}
