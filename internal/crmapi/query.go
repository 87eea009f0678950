package crmapi

import (
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/five82/leaddesk/internal/crm"
	"github.com/five82/leaddesk/internal/filter"
)

// LeadQuery configures get_leads requests.
type LeadQuery struct {
	Page      int             `json:"page"`
	PerPage   int             `json:"perPage"`
	SortField string          `json:"sortField,omitempty"`
	SortOrder string          `json:"sortOrder,omitempty"`
	Query     string          `json:"query,omitempty"`
	Filters   []filter.Option `json:"filters,omitempty"`
}

// Values encodes the query string.
func (q LeadQuery) Values() url.Values {
	values := url.Values{}
	setPaging(values, q.Page, q.PerPage, q.SortField, q.SortOrder, q.Query)
	setFilters(values, q.Filters)
	return values
}

// TodoQuery configures get_tasks requests.
type TodoQuery struct {
	Page      int             `json:"page"`
	PerPage   int             `json:"perPage"`
	SortField string          `json:"sortField,omitempty"`
	SortOrder string          `json:"sortOrder,omitempty"`
	Query     string          `json:"query,omitempty"`
	LeadID    int64           `json:"leadId,omitempty"`
	Type      crm.TodoType    `json:"type,omitempty"`
	Status    crm.TodoStatus  `json:"status,omitempty"`
	From      time.Time       `json:"from,omitzero"`
	To        time.Time       `json:"to,omitzero"`
	Filters   []filter.Option `json:"filters,omitempty"`
}

// Values encodes the query string.
func (q TodoQuery) Values() url.Values {
	values := url.Values{}
	setPaging(values, q.Page, q.PerPage, q.SortField, q.SortOrder, q.Query)
	if q.LeadID > 0 {
		values.Set("lead_id", strconv.FormatInt(q.LeadID, 10))
	}
	if wire, err := crm.TodoTypeCodec.Encode(q.Type); err == nil {
		values.Set("type", wire)
	}
	if wire, err := crm.TodoStatusCodec.Encode(q.Status); err == nil {
		values.Set("status", wire)
	}
	if !q.From.IsZero() {
		values.Set("date_from", formatTime(q.From))
	}
	if !q.To.IsZero() {
		values.Set("date_to", formatTime(q.To))
	}
	setFilters(values, q.Filters)
	return values
}

func setPaging(values url.Values, page, perPage int, sortField, sortOrder, query string) {
	if page > 0 {
		values.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		values.Set("per_page", strconv.Itoa(perPage))
	}
	if f := strings.TrimSpace(sortField); f != "" {
		values.Set("sort_field", SnakeCase(f))
	}
	if o := strings.ToLower(strings.TrimSpace(sortOrder)); o == "asc" || o == "desc" {
		values.Set("sort_order", o)
	}
	if q := strings.TrimSpace(query); q != "" {
		values.Set("query", q)
	}
}

// setFilters maps filter options onto per-field parameters: "=" sends the
// field itself, ">=" and "<=" send field_min and field_max, and "contains"
// sends field_like. Enum labels are translated to wire values and list values
// are comma joined. Options sharing a parameter are all sent.
func setFilters(values url.Values, opts []filter.Option) {
	for _, opt := range opts {
		name := SnakeCase(opt.Field)
		if name == "" {
			continue
		}
		switch opt.Operator {
		case filter.OpGTE:
			name += "_min"
		case filter.OpLTE:
			name += "_max"
		case filter.OpContains:
			name += "_like"
		case filter.OpEqual:
		default:
			continue
		}
		values.Add(name, filterValue(opt.Field, opt.Value))
	}
}

func filterValue(field string, v any) string {
	translate := func(s string) string {
		if c, ok := crm.FieldCodecs[field]; ok {
			if wire, ok := c.ToWire(s); ok {
				return wire
			}
		}
		return s
	}
	switch x := filter.Normalize(v).(type) {
	case []string:
		out := make([]string, len(x))
		for i, s := range x {
			out[i] = translate(s)
		}
		return strings.Join(out, ",")
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return translate(x)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	default:
		return ""
	}
}

// SnakeCase converts an entity field name such as "propertyType" to the API's
// "property_type". Names already in snake case are returned unchanged.
func SnakeCase(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
