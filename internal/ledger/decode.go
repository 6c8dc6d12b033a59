package ledger

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/julianstephens/stackspledge/internal/models"
)

//go:embed schemas/get-pledge.schema.json
var getPledgeSchemaJSON string

var (
	getPledgeSchemaOnce sync.Once
	getPledgeSchema     *jsonschema.Schema
	getPledgeSchemaErr  error
)

func pledgeSchema() (*jsonschema.Schema, error) {
	getPledgeSchemaOnce.Do(func() {
		getPledgeSchema, getPledgeSchemaErr = jsonschema.CompileString("get-pledge.schema.json", getPledgeSchemaJSON)
	})
	return getPledgeSchema, getPledgeSchemaErr
}

// ValidatePledgeResult checks a raw get-pledge result against the embedded schema.
func ValidatePledgeResult(raw []byte) error {
	schema, err := pledgeSchema()
	if err != nil {
		return fmt.Errorf("compile get-pledge schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parse get-pledge result: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid get-pledge result: %w", err)
	}
	return nil
}

// DecodePledge turns a get-pledge result into a pledge. found is false for
// (optional none).
func DecodePledge(id uint64, raw []byte) (pledge *models.Pledge, found bool, err error) {
	if err := ValidatePledgeResult(raw); err != nil {
		return nil, false, err
	}

	var top Value
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, false, fmt.Errorf("decode get-pledge result: %w", err)
	}
	some, err := top.AsOptional()
	if err != nil {
		return nil, false, err
	}
	if some == nil {
		return nil, false, nil
	}

	record := *some
	if !strings.HasPrefix(record.Type, "(tuple") {
		// Field map delivered directly as the optional payload
		record = Value{Type: "(tuple)", Value: top.Value}
	}
	fields, err := record.AsTuple()
	if err != nil {
		return nil, false, err
	}

	p := &models.Pledge{ID: id}
	if p.Creator, err = fields["creator"].AsString(); err != nil {
		return nil, false, fmt.Errorf("creator: %w", err)
	}
	if p.Message, err = fields["message"].AsString(); err != nil {
		return nil, false, fmt.Errorf("message: %w", err)
	}
	if p.Vouches, err = fields["vouches"].AsUint(); err != nil {
		return nil, false, fmt.Errorf("vouches: %w", err)
	}
	if p.Completed, err = fields["completed"].AsBool(); err != nil {
		return nil, false, fmt.Errorf("completed: %w", err)
	}
	created, err := fields["created-at"].AsUint()
	if err != nil {
		return nil, false, fmt.Errorf("created-at: %w", err)
	}
	p.CreatedAt = int64(created)

	category, err := fields["category"].AsString()
	if err != nil {
		return nil, false, fmt.Errorf("category: %w", err)
	}
	p.Category = models.Category(category)

	if completedAt, ok := fields["completed-at"]; ok {
		inner, err := completedAt.AsOptional()
		if err != nil {
			return nil, false, fmt.Errorf("completed-at: %w", err)
		}
		if inner != nil {
			ts, err := inner.AsUint()
			if err != nil {
				return nil, false, fmt.Errorf("completed-at: %w", err)
			}
			v := int64(ts)
			p.CompletedAt = &v
		}
	}

	return p, true, nil
}

// EncodePledge renders a pledge in the gateway's get-pledge result shape.
// A nil pledge encodes as (optional none).
func EncodePledge(p *models.Pledge) json.RawMessage {
	const optType = "(optional (tuple (category (string-ascii 32)) (completed bool) (completed-at (optional uint)) (created-at uint) (creator principal) (message (string-utf8 280)) (vouches uint)))"
	if p == nil {
		return rawJSON(map[string]any{"type": optType, "value": nil})
	}

	completedAt := map[string]any{"type": "(optional uint)", "value": nil}
	if p.CompletedAt != nil {
		completedAt["value"] = Uint(uint64(*p.CompletedAt))
	}
	fields := map[string]any{
		"creator":      Principal(p.Creator),
		"message":      Value{Type: "(string-utf8 280)", Value: rawJSON(p.Message)},
		"vouches":      Uint(p.Vouches),
		"completed":    Value{Type: "bool", Value: rawJSON(p.Completed)},
		"created-at":   Uint(uint64(p.CreatedAt)),
		"completed-at": completedAt,
		"category":     Value{Type: "(string-ascii 32)", Value: rawJSON(string(p.Category))},
	}
	return rawJSON(map[string]any{
		"type":  optType,
		"value": map[string]any{"type": strings.TrimSuffix(strings.TrimPrefix(optType, "(optional "), ")"), "value": fields},
	})
}
