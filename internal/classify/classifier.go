// Package classify maps raw chat payloads into typed timeline messages.
//
// The server history endpoint, the local echo of a user request, and the SQL
// executor all produce structurally different payloads; Classify is the one
// place that turns any of them into exactly one dbatypes.ChatMessage. Shape
// inspection must never leak outside this package.
package classify

import (
	"fmt"
	"sync"
	"time"

	"dbassist/pkg/dbatypes"
)

// Clock supplies timestamps for generated message identifiers. Production
// code passes nil (wall clock); tests inject a deterministic clock.
type Clock func() time.Time

// Classifier turns raw payloads into ChatMessage values. Classification
// itself is deterministic; the only state is the strictly-increasing floor
// that keeps generated identifiers unique when the clock is too coarse to
// tell two rapid appends apart.
type Classifier struct {
	now Clock

	mu     sync.Mutex
	lastID int64
}

// New creates a Classifier. A nil clock means time.Now.
func New(clock Clock) *Classifier {
	if clock == nil {
		clock = time.Now
	}
	return &Classifier{now: clock}
}

// Classify maps one raw payload into exactly one ChatMessage. It never
// fails: unrecognized shapes degrade to an assistant message carrying
// "No content" so the timeline never silently drops an event.
//
// Precedence, first match wins:
//  1. sender USER                          -> user request
//  2. sender ASSISTANT with plain content  -> assistant-generated text
//  3. a success flag                       -> query outcome
//  4. anything else                        -> degraded assistant fallback
func (c *Classifier) Classify(payload any) dbatypes.ChatMessage {
	switch p := payload.(type) {
	case *dbatypes.QueryResult:
		if p != nil {
			return c.queryOutcome(p, reportsAffectedRows(p.QueryType))
		}
	case dbatypes.QueryResult:
		return c.queryOutcome(&p, reportsAffectedRows(p.QueryType))
	case map[string]any:
		return c.classifyMap(p)
	}
	return c.fallback(nil)
}

func (c *Classifier) classifyMap(p map[string]any) dbatypes.ChatMessage {
	sender, _ := p["sender"].(string)

	// Rule 1: whatever else the payload carries, the user said it.
	if sender == string(dbatypes.SenderUser) {
		return dbatypes.ChatMessage{
			ID:      c.idFrom(p),
			Sender:  dbatypes.SenderUser,
			SentAt:  c.sentAtFrom(p),
			Kind:    dbatypes.KindUser,
			Content: stringField(p, "content"),
		}
	}

	// Rule 2: assistant text, but only when no structured execution result
	// rides along.
	if sender == string(dbatypes.SenderAssistant) {
		if content := stringField(p, "content"); content != "" {
			if _, hasResult := p["result"]; !hasResult {
				return dbatypes.ChatMessage{
					ID:      c.idFrom(p),
					Sender:  dbatypes.SenderAssistant,
					SentAt:  c.sentAtFrom(p),
					Kind:    dbatypes.KindLLM,
					Content: content,
				}
			}
		}
	}

	// Rule 3: a success boolean is the hallmark of an execution outcome.
	if _, ok := p["success"].(bool); ok {
		result, hasAffected := resultFromMap(p)
		return c.queryOutcome(result, hasAffected)
	}

	return c.fallback(p)
}

func (c *Classifier) queryOutcome(r *dbatypes.QueryResult, hasAffected bool) dbatypes.ChatMessage {
	return dbatypes.ChatMessage{
		ID:      c.nextID(),
		Sender:  dbatypes.SenderAssistant,
		SentAt:  c.now(),
		Kind:    dbatypes.KindQuery,
		Summary: summarize(r, hasAffected),
		Result:  r,
	}
}

func (c *Classifier) fallback(p map[string]any) dbatypes.ChatMessage {
	content := stringField(p, "content")
	if content == "" {
		content = "No content"
	}
	return dbatypes.ChatMessage{
		ID:      c.idFrom(p),
		Sender:  dbatypes.SenderAssistant,
		SentAt:  c.sentAtFrom(p),
		Kind:    dbatypes.KindLLM,
		Content: content,
	}
}

// summarize computes the one-line description of an execution outcome.
// Evaluated in order: aggregate value, row count, affected rows, then the
// result's own message or a generic notice.
func summarize(r *dbatypes.QueryResult, hasAffected bool) string {
	switch {
	case r.IsAggregateQuery && r.AggregateResult != nil:
		return fmt.Sprintf("%s: %v", r.AggregateResult.DisplayName, r.AggregateResult.Value)
	case r.QueryType == "SELECT":
		return fmt.Sprintf("Returned %d rows", r.RowCount)
	case hasAffected:
		return fmt.Sprintf("Affected %d rows", r.AffectedRows)
	case r.Message != "":
		return r.Message
	}
	return "Query executed"
}

// reportsAffectedRows tells whether a typed result's AffectedRows field is
// meaningful. The server only sets a query type other than SELECT on
// mutating statements.
func reportsAffectedRows(queryType string) bool {
	return queryType != "" && queryType != "SELECT"
}

// idFrom uses the payload's own identifier when present, otherwise a
// generated one.
func (c *Classifier) idFrom(p map[string]any) int64 {
	if v, ok := numField(p, "id"); ok {
		return int64(v)
	}
	return c.nextID()
}

// nextID derives a millisecond identifier from the clock, bumped past the
// last issued one so two rapid appends never collide.
func (c *Classifier) nextID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.now().UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id
	return id
}

// sentAtFrom uses the payload's own timestamp when it parses, otherwise the
// clock. The server serializes LocalDateTime without a zone, so both RFC3339
// and the bare form are accepted.
func (c *Classifier) sentAtFrom(p map[string]any) time.Time {
	if s, ok := p["sentAt"].(string); ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
		if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
			return t
		}
	}
	if t, ok := p["sentAt"].(time.Time); ok {
		return t
	}
	return c.now()
}

func resultFromMap(p map[string]any) (*dbatypes.QueryResult, bool) {
	r := &dbatypes.QueryResult{}
	r.Success, _ = p["success"].(bool)
	r.Message = stringField(p, "message")
	r.QueryType = stringField(p, "queryType")
	r.IsAggregateQuery, _ = p["isAggregateQuery"].(bool)

	if v, ok := numField(p, "rowCount"); ok {
		r.RowCount = int(v)
	}
	affected, hasAffected := numField(p, "affectedRows")
	if hasAffected {
		r.AffectedRows = int(affected)
	}

	if agg, ok := p["aggregateResult"].(map[string]any); ok {
		r.AggregateResult = &dbatypes.AggregateResult{
			Function:    stringField(agg, "function"),
			Value:       agg["value"],
			DisplayName: stringField(agg, "displayName"),
		}
	}

	switch cols := p["columns"].(type) {
	case []string:
		r.Columns = cols
	case []any:
		for _, col := range cols {
			if s, ok := col.(string); ok {
				r.Columns = append(r.Columns, s)
			}
		}
	}

	switch data := p["data"].(type) {
	case []map[string]any:
		r.Data = data
	case []any:
		for _, row := range data {
			if m, ok := row.(map[string]any); ok {
				r.Data = append(r.Data, m)
			}
		}
	}

	return r, hasAffected
}

func stringField(p map[string]any, key string) string {
	if p == nil {
		return ""
	}
	s, _ := p[key].(string)
	return s
}

// numField extracts a numeric field regardless of how the decoder typed it.
func numField(p map[string]any, key string) (float64, bool) {
	if p == nil {
		return 0, false
	}
	switch v := p[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
