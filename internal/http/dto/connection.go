package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/invopop/jsonschema"

	"tradematch.app/linkup/internal/domain"
	"tradematch.app/linkup/internal/model"
)

// ErrMalformedBody is returned when a body is not a JSON object, or not one of
// the accepted envelopes.
var ErrMalformedBody = errors.New("malformed request body")

// ID accepts both JSON numbers and decimal strings. Snowflake ids exceed the
// integer precision of JavaScript clients, so responses always use strings.
type ID int64

func (i *ID) UnmarshalJSON(b []byte) error {
	raw := bytes.Trim(b, `"`)
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s", b)
	}
	*i = ID(v)
	return nil
}

func (ID) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string", Pattern: `^[1-9][0-9]*$`},
			{Type: "integer", Minimum: json.Number("1")},
		},
	}
}

type LogisticsPlanRequest struct {
	Incoterm   *string  `json:"incoterm,omitempty" jsonschema:"enum=EXW,enum=FCA,enum=CPT,enum=CIP,enum=DAP,enum=DPU,enum=DDP,enum=FAS,enum=FOB,enum=CFR,enum=CIF"`
	Transports []string `json:"transports,omitempty" binding:"omitempty,max=5" jsonschema:"enum=sea,enum=air,enum=road,enum=rail,enum=multimodal"`
}

type CreateConnectionRequest struct {
	MatchID           ID                    `json:"matchId" binding:"required"`
	BuyerProfileID    ID                    `json:"buyerProfileId" binding:"required"`
	SupplierProfileID ID                    `json:"supplierProfileId" binding:"required"`
	IntroMessage      string                `json:"introMessage" binding:"required" jsonschema:"minLength=1,maxLength=5000"`
	Locale            string                `json:"locale,omitempty" binding:"omitempty,max=10"`
	Attachments       []string              `json:"attachments,omitempty" binding:"omitempty,max=4" jsonschema:"enum=nda,enum=rfq,enum=catalog,enum=certificate"`
	LogisticsPlan     *LogisticsPlanRequest `json:"logisticsPlan,omitempty"`
	MeetingProposal   []string              `json:"meetingProposal,omitempty" binding:"omitempty,max=10" jsonschema:"format=date-time"`
}

func (r *CreateConnectionRequest) ToInput() domain.CreateConnectionInput {
	in := domain.CreateConnectionInput{
		MatchID:           int64(r.MatchID),
		BuyerProfileID:    int64(r.BuyerProfileID),
		SupplierProfileID: int64(r.SupplierProfileID),
		IntroMessage:      r.IntroMessage,
		Locale:            r.Locale,
		Attachments:       r.Attachments,
		MeetingProposal:   r.MeetingProposal,
	}
	if r.LogisticsPlan != nil {
		in.LogisticsPlan = &domain.LogisticsPlanInput{
			Incoterm:   r.LogisticsPlan.Incoterm,
			Transports: r.LogisticsPlan.Transports,
		}
	}
	return in
}

type UpdateStatusRequest struct {
	Status         string  `json:"status" binding:"required"`
	Note           *string `json:"note,omitempty"`
	ExpectedStatus *string `json:"expectedStatus,omitempty"`
}

type ListConnectionsQuery struct {
	Status *string `form:"status"`
	Limit  int32   `form:"limit" binding:"omitempty,min=0"`
	Offset int32   `form:"offset" binding:"omitempty,min=0"`
}

// DecodeCreateConnection normalizes a creation body. Both a bare object and
// {"data": {...}} are accepted; anything else, including unknown fields, is
// rejected.
func DecodeCreateConnection(body []byte) (*CreateConnectionRequest, error) {
	var req CreateConnectionRequest
	if err := decodeEnvelope(body, &req); err != nil {
		return nil, err
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func DecodeUpdateStatus(body []byte) (*UpdateStatusRequest, error) {
	var req UpdateStatusRequest
	if err := decodeEnvelope(body, &req); err != nil {
		return nil, err
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func decodeEnvelope(body []byte, dst any) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil || top == nil {
		return ErrMalformedBody
	}

	payload := body
	if data, ok := top["data"]; ok {
		if len(top) != 1 {
			return fmt.Errorf("%w: unexpected fields next to data", ErrMalformedBody)
		}
		payload = data
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedBody, err.Error())
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrMalformedBody)
	}
	return nil
}

// CreateConnectionSchema describes the bare creation payload.
func CreateConnectionSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}
	schema := r.Reflect(&CreateConnectionRequest{})
	schema.Title = "Create connection"
	return schema
}

type StatusHistoryEntryResponse struct {
	Status     model.ConnectionStatus `json:"status"`
	Stage      model.ConnectionStage  `json:"stage"`
	OccurredAt time.Time              `json:"occurredAt"`
	Note       *string                `json:"note,omitempty"`
}

type ConnectionResponse struct {
	ID                int64                        `json:"id,string"`
	MatchID           int64                        `json:"matchId,string"`
	BuyerProfileID    int64                        `json:"buyerProfileId,string"`
	SupplierProfileID int64                        `json:"supplierProfileId,string"`
	OwnerUserID       int64                        `json:"ownerUserId,string"`
	IntroMessage      string                       `json:"introMessage"`
	Locale            string                       `json:"locale,omitempty"`
	Attachments       []model.Attachment           `json:"attachments"`
	LogisticsPlan     *model.LogisticsPlan         `json:"logisticsPlan,omitempty"`
	MeetingProposal   []time.Time                  `json:"meetingProposal"`
	Status            model.ConnectionStatus       `json:"status"`
	Stage             model.ConnectionStage        `json:"stage"`
	StatusHistory     []StatusHistoryEntryResponse `json:"statusHistory"`
	CreatedAt         time.Time                    `json:"createdAt"`
	UpdatedAt         time.Time                    `json:"updatedAt"`
}

func ToConnectionResponse(c *model.Connection) *ConnectionResponse {
	history := make([]StatusHistoryEntryResponse, len(c.StatusHistory))
	for i, e := range c.StatusHistory {
		history[i] = StatusHistoryEntryResponse{
			Status:     e.Status,
			Stage:      e.Stage,
			OccurredAt: e.OccurredAt,
			Note:       e.Note,
		}
	}

	resp := &ConnectionResponse{
		ID:                c.ID,
		MatchID:           c.MatchID,
		BuyerProfileID:    c.BuyerProfileID,
		SupplierProfileID: c.SupplierProfileID,
		OwnerUserID:       c.OwnerUserID,
		IntroMessage:      c.IntroMessage,
		Locale:            c.Locale,
		Attachments:       c.Attachments,
		LogisticsPlan:     c.LogisticsPlan,
		MeetingProposal:   c.MeetingProposal,
		Status:            c.Status,
		Stage:             c.Stage,
		StatusHistory:     history,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
	if resp.Attachments == nil {
		resp.Attachments = []model.Attachment{}
	}
	if resp.MeetingProposal == nil {
		resp.MeetingProposal = []time.Time{}
	}
	return resp
}

func ToConnectionResponses(conns []model.Connection) []*ConnectionResponse {
	out := make([]*ConnectionResponse, len(conns))
	for i := range conns {
		out[i] = ToConnectionResponse(&conns[i])
	}
	return out
}
