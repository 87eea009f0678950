package crm

import "strings"

// Stage is the sales pipeline stage of a lead. The zero value means unset.
type Stage int

const (
	StageUnset Stage = iota
	StageGeneralEnquiry
	StageContacted
	StageQualified
	StageSiteVisitScheduled
	StageSiteVisitDone
	StageNegotiation
	StageBooked
	StageLost
)

// StageCodec translates stages to and from the API.
var StageCodec = NewCodec("stage",
	Variant[Stage]{StageGeneralEnquiry, "init_general_enquiry", "Init - General Enquiry"},
	Variant[Stage]{StageContacted, "init_contacted", "Init - Contacted"},
	Variant[Stage]{StageQualified, "qualified", "Qualified"},
	Variant[Stage]{StageSiteVisitScheduled, "site_visit_scheduled", "Site Visit Scheduled"},
	Variant[Stage]{StageSiteVisitDone, "site_visit_done", "Site Visit Done"},
	Variant[Stage]{StageNegotiation, "negotiation", "Negotiation"},
	Variant[Stage]{StageBooked, "booked", "Booked"},
	Variant[Stage]{StageLost, "lost", "Lost"},
)

func (s Stage) String() string { return StageCodec.Label(s) }

// Source is where a lead came from.
type Source int

const (
	SourceUnset Source = iota
	SourceWebsite
	SourceReferral
	SourceWalkIn
	SourcePortal
	SourceSocial
	SourceColdCall
)

// SourceCodec translates lead sources to and from the API.
var SourceCodec = NewCodec("source",
	Variant[Source]{SourceWebsite, "website", "Website"},
	Variant[Source]{SourceReferral, "referral", "Referral"},
	Variant[Source]{SourceWalkIn, "walk_in", "Walk-in"},
	Variant[Source]{SourcePortal, "property_portal", "Property Portal"},
	Variant[Source]{SourceSocial, "social_media", "Social Media"},
	Variant[Source]{SourceColdCall, "cold_call", "Cold Call"},
)

func (s Source) String() string { return SourceCodec.Label(s) }

// Requirement is what the lead wants to do.
type Requirement int

const (
	RequirementUnset Requirement = iota
	RequirementBuy
	RequirementRent
	RequirementInvest
)

// RequirementCodec translates requirements to and from the API.
var RequirementCodec = NewCodec("requirement",
	Variant[Requirement]{RequirementBuy, "buy", "Buy"},
	Variant[Requirement]{RequirementRent, "rent", "Rent"},
	Variant[Requirement]{RequirementInvest, "investment", "Investment"},
)

func (r Requirement) String() string { return RequirementCodec.Label(r) }

// PropertyType is the kind of property a lead is interested in.
type PropertyType int

const (
	PropertyUnset PropertyType = iota
	PropertyApartment
	PropertyVilla
	PropertyPlot
	PropertyCommercial
)

// PropertyTypeCodec translates property types to and from the API.
var PropertyTypeCodec = NewCodec("property_type",
	Variant[PropertyType]{PropertyApartment, "apartment", "Apartment"},
	Variant[PropertyType]{PropertyVilla, "villa", "Villa"},
	Variant[PropertyType]{PropertyPlot, "plot", "Plot"},
	Variant[PropertyType]{PropertyCommercial, "commercial", "Commercial"},
)

func (p PropertyType) String() string { return PropertyTypeCodec.Label(p) }

// TodoType is the kind of scheduled task.
type TodoType int

const (
	TodoTypeUnset TodoType = iota
	TodoFollowUp
	TodoMeeting
	TodoSiteVisit
	TodoCall
)

// TodoTypeCodec translates task types to and from the API.
var TodoTypeCodec = NewCodec("type",
	Variant[TodoType]{TodoFollowUp, "follow_up", "Follow Up"},
	Variant[TodoType]{TodoMeeting, "meeting", "Meeting"},
	Variant[TodoType]{TodoSiteVisit, "site_visit", "Site Visit"},
	Variant[TodoType]{TodoCall, "call", "Call"},
)

func (t TodoType) String() string { return TodoTypeCodec.Label(t) }

// SectionName is the label without spaces, used to namespace per-type UI state
// (for example "todos_Meeting").
func (t TodoType) SectionName() string {
	if t == TodoTypeUnset {
		return "All"
	}
	return strings.ReplaceAll(t.String(), " ", "")
}

// TodoStatus is the lifecycle state of a task.
type TodoStatus int

const (
	TodoStatusUnset TodoStatus = iota
	TodoPending
	TodoCompleted
	TodoCancelled
)

// TodoStatusCodec translates task statuses to and from the API.
var TodoStatusCodec = NewCodec("status",
	Variant[TodoStatus]{TodoPending, "pending", "Pending"},
	Variant[TodoStatus]{TodoCompleted, "completed", "Completed"},
	Variant[TodoStatus]{TodoCancelled, "cancelled", "Cancelled"},
)

func (s TodoStatus) String() string { return TodoStatusCodec.Label(s) }

// FieldCodecs maps filterable enum fields, by their entity field name, to
// their codecs.
var FieldCodecs = map[string]WireTranslator{
	"stage":        StageCodec,
	"source":       SourceCodec,
	"requirement":  RequirementCodec,
	"propertyType": PropertyTypeCodec,
	"type":         TodoTypeCodec,
	"status":       TodoStatusCodec,
}
