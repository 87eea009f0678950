package workspace

import (
	"strings"

	"github.com/five82/leaddesk/internal/crm"
	"github.com/five82/leaddesk/internal/crmerr"
)

func validateLead(op, name, phone string) error {
	if strings.TrimSpace(name) == "" {
		return crmerr.Validation(op, "name", "name is required")
	}
	if strings.TrimSpace(phone) == "" {
		return crmerr.Validation(op, "phone", "phone is required")
	}
	return nil
}

func validateTodo(op string, t crm.Todo) error {
	switch {
	case t.LeadID <= 0:
		return crmerr.Validation(op, "leadId", "a lead is required")
	case t.Type == crm.TodoTypeUnset:
		return crmerr.Validation(op, "type", "task type is required")
	case t.DateTime.IsZero():
		return crmerr.Validation(op, "dateTime", "date and time are required")
	}
	return nil
}
