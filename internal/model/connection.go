package model

import "time"

type ConnectionStatus string

type ConnectionStage string

type (
	Attachment    string
	Incoterm      string
	TransportMode string
)

const (
	ConnectionStatusPending      ConnectionStatus = "pending"
	ConnectionStatusInDiscussion ConnectionStatus = "inDiscussion"
	ConnectionStatusCompleted    ConnectionStatus = "completed"
	ConnectionStatusClosed       ConnectionStatus = "closed"
)

const (
	ConnectionStageIntro   ConnectionStage = "intro"
	ConnectionStageReply   ConnectionStage = "reply"
	ConnectionStageMeeting ConnectionStage = "meeting"
	ConnectionStageReview  ConnectionStage = "review"
	ConnectionStageDeal    ConnectionStage = "deal"
)

const (
	AttachmentNDA         Attachment = "nda"
	AttachmentRFQ         Attachment = "rfq"
	AttachmentCatalog     Attachment = "catalog"
	AttachmentCertificate Attachment = "certificate"
)

// Incoterms 2020.
const (
	IncotermEXW Incoterm = "EXW"
	IncotermFCA Incoterm = "FCA"
	IncotermCPT Incoterm = "CPT"
	IncotermCIP Incoterm = "CIP"
	IncotermDAP Incoterm = "DAP"
	IncotermDPU Incoterm = "DPU"
	IncotermDDP Incoterm = "DDP"
	IncotermFAS Incoterm = "FAS"
	IncotermFOB Incoterm = "FOB"
	IncotermCFR Incoterm = "CFR"
	IncotermCIF Incoterm = "CIF"
)

const (
	TransportModeSea        TransportMode = "sea"
	TransportModeAir        TransportMode = "air"
	TransportModeRoad       TransportMode = "road"
	TransportModeRail       TransportMode = "rail"
	TransportModeMultimodal TransportMode = "multimodal"
)

func (s ConnectionStatus) Valid() bool {
	switch s {
	case ConnectionStatusPending, ConnectionStatusInDiscussion, ConnectionStatusCompleted, ConnectionStatusClosed:
		return true
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s ConnectionStatus) Terminal() bool {
	return s == ConnectionStatusCompleted || s == ConnectionStatusClosed
}

func (s ConnectionStage) Valid() bool {
	switch s {
	case ConnectionStageIntro, ConnectionStageReply, ConnectionStageMeeting, ConnectionStageReview, ConnectionStageDeal:
		return true
	}
	return false
}

func (a Attachment) Valid() bool {
	switch a {
	case AttachmentNDA, AttachmentRFQ, AttachmentCatalog, AttachmentCertificate:
		return true
	}
	return false
}

func (i Incoterm) Valid() bool {
	switch i {
	case IncotermEXW, IncotermFCA, IncotermCPT, IncotermCIP, IncotermDAP, IncotermDPU,
		IncotermDDP, IncotermFAS, IncotermFOB, IncotermCFR, IncotermCIF:
		return true
	}
	return false
}

func (t TransportMode) Valid() bool {
	switch t {
	case TransportModeSea, TransportModeAir, TransportModeRoad, TransportModeRail, TransportModeMultimodal:
		return true
	}
	return false
}

// LogisticsPlan is carried along with a connection but never inspected by the lifecycle.
type LogisticsPlan struct {
	Incoterm   *Incoterm       `json:"incoterm,omitempty"`
	Transports []TransportMode `json:"transports"`
}

type StatusHistoryEntry struct {
	ID         int64            `json:"-"`
	Status     ConnectionStatus `json:"status"`
	Stage      ConnectionStage  `json:"stage"`
	OccurredAt time.Time        `json:"occurredAt"`
	Note       *string          `json:"note,omitempty"`
}

type Connection struct {
	ID                int64                `json:"id"`
	MatchID           int64                `json:"matchId"`
	BuyerProfileID    int64                `json:"buyerProfileId"`
	SupplierProfileID int64                `json:"supplierProfileId"`
	OwnerUserID       int64                `json:"ownerUserId"`
	IntroMessage      string               `json:"introMessage"`
	Locale            string               `json:"locale,omitempty"`
	Attachments       []Attachment         `json:"attachments"`
	LogisticsPlan     *LogisticsPlan       `json:"logisticsPlan,omitempty"`
	MeetingProposal   []time.Time          `json:"meetingProposal"`
	Status            ConnectionStatus     `json:"status"`
	Stage             ConnectionStage      `json:"stage"`
	StatusHistory     []StatusHistoryEntry `json:"statusHistory"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

// IsOwnedBy reports whether userID created the connection.
func (c *Connection) IsOwnedBy(userID int64) bool {
	return c.OwnerUserID == userID
}
