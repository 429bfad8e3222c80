package trackchanges

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/nlstn/go-odata-engine/internal/data"
	"github.com/nlstn/go-odata-engine/internal/etag"
	"github.com/nlstn/go-odata-engine/internal/queryerrors"
)

// ChangeType represents the type of change recorded for an entity or link.
type ChangeType string

const (
	// ChangeTypeAdded indicates that a new entity was created.
	ChangeTypeAdded ChangeType = "added"
	// ChangeTypeUpdated indicates that an existing entity was updated.
	ChangeTypeUpdated ChangeType = "updated"
	// ChangeTypeDeleted indicates that an existing entity was deleted.
	ChangeTypeDeleted ChangeType = "deleted"
	// ChangeTypeLinkAdded indicates that a relationship was established.
	ChangeTypeLinkAdded ChangeType = "linkAdded"
	// ChangeTypeLinkDeleted indicates that a relationship was removed.
	ChangeTypeLinkDeleted ChangeType = "linkDeleted"
)

// LinkChange identifies a relationship between two entities.
type LinkChange struct {
	Source       *url.URL
	Relationship string
	Target       *url.URL
}

// ChangeEvent represents a change that happened to an entity or relationship.
type ChangeEvent struct {
	EntitySet string
	ID        *url.URL
	// Entity is the state after the change; nil for deletions and link changes.
	Entity  *data.Entity
	Link    *LinkChange
	Type    ChangeType
	Version int64
}

// TokenLength is the length of every delta token. Delta links carry only
// the first four characters of a token, so a token is exactly that long.
const TokenLength = 4

// maxTokens is the number of distinct base-36 tokens of TokenLength.
var maxTokens = func() int64 {
	n := int64(1)
	for i := 0; i < TokenLength; i++ {
		n *= 36
	}
	return n - 1
}()

// tokenState is the change history position a delta token stands for.
type tokenState struct {
	entitySet string
	version   int64
}

type entityHistory struct {
	Version int64
	Events  []ChangeEvent
}

// Tracker records changes per entity set and issues delta tokens.
// Tokens are short handles issued per tracker and resolved through the
// tracker, so they are only valid for the tracker that issued them.
type Tracker struct {
	mu       sync.RWMutex
	entities map[string]*entityHistory
	tokens   map[string]tokenState
	handles  map[tokenState]string
	issued   int64
}

// NewTracker creates a new change tracker.
func NewTracker() *Tracker {
	return &Tracker{
		entities: make(map[string]*entityHistory),
		tokens:   make(map[string]tokenState),
		handles:  make(map[tokenState]string),
	}
}

// RegisterEntitySet ensures the tracker maintains history for the entity set.
// It is safe to call multiple times.
func (t *Tracker) RegisterEntitySet(entitySet string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entities[entitySet]; !exists {
		t.entities[entitySet] = &entityHistory{}
	}
}

// RecordEntity stores an entity change and returns the new version number.
// The entity's ID identifies it across changes.
func (t *Tracker) RecordEntity(entitySet string, entity *data.Entity, changeType ChangeType) (int64, error) {
	if entity == nil || entity.ID == nil {
		return 0, fmt.Errorf("entity change in '%s' requires an entity id", entitySet)
	}
	switch changeType {
	case ChangeTypeAdded, ChangeTypeUpdated:
		return t.record(entitySet, ChangeEvent{ID: entity.ID, Entity: entity, Type: changeType}), nil
	case ChangeTypeDeleted:
		return t.record(entitySet, ChangeEvent{ID: entity.ID, Type: changeType}), nil
	default:
		return 0, fmt.Errorf("change type '%s' does not apply to entities", changeType)
	}
}

// RecordDeletion stores the deletion of the entity with the given id.
func (t *Tracker) RecordDeletion(entitySet string, id *url.URL) (int64, error) {
	if id == nil {
		return 0, fmt.Errorf("entity change in '%s' requires an entity id", entitySet)
	}
	return t.record(entitySet, ChangeEvent{ID: id, Type: ChangeTypeDeleted}), nil
}

// RecordLink stores an added or removed relationship.
func (t *Tracker) RecordLink(entitySet string, link LinkChange, added bool) int64 {
	changeType := ChangeTypeLinkDeleted
	if added {
		changeType = ChangeTypeLinkAdded
	}
	return t.record(entitySet, ChangeEvent{ID: link.Source, Link: &link, Type: changeType})
}

func (t *Tracker) record(entitySet string, event ChangeEvent) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	history, exists := t.entities[entitySet]
	if !exists {
		history = &entityHistory{}
		t.entities[entitySet] = history
	}

	history.Version++
	event.EntitySet = entitySet
	event.Version = history.Version
	history.Events = append(history.Events, event)

	return history.Version
}

// CurrentToken returns a delta token that represents the current state of the entity set.
func (t *Tracker) CurrentToken(entitySet string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	history, exists := t.entities[entitySet]
	if !exists {
		return "", fmt.Errorf("entity set '%s' is not registered", entitySet)
	}
	return t.issueLocked(entitySet, history.Version)
}

// ChangesSince returns the change events that happened after the supplied
// delta token and a new token for subsequent requests. The token may carry
// the leading "*" of the $deltatoken value of a delta link.
func (t *Tracker) ChangesSince(token string) ([]ChangeEvent, string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, err := t.lookupLocked(token)
	if err != nil {
		return nil, "", err
	}
	entitySet, version := state.entitySet, state.version

	history, exists := t.entities[entitySet]
	if !exists {
		return nil, "", queryerrors.Validation(fmt.Sprintf("entity set '%s' is not registered", entitySet))
	}
	if version > history.Version {
		return nil, "", queryerrors.Validation("invalid delta token")
	}

	var events []ChangeEvent
	for _, event := range history.Events {
		if event.Version > version {
			events = append(events, event)
		}
	}

	newToken, err := t.issueLocked(entitySet, history.Version)
	if err != nil {
		return nil, "", err
	}
	return events, newToken, nil
}

// Matcher decides whether an entity belongs to the tracked result, usually
// by evaluating the $filter of the original request.
type Matcher func(*data.Entity) (bool, error)

// Delta materializes the changes since token into a delta payload. Changes
// are collapsed per entity so only the latest state is reported. Entities
// that still exist but no longer satisfy match are reported as deleted with
// reason Changed. Returned entities carry a fresh ETag. A nil match accepts
// every entity.
func (t *Tracker) Delta(token string, match Matcher) (*data.Delta, string, error) {
	events, next, err := t.ChangesSince(token)
	if err != nil {
		return nil, "", err
	}

	delta := data.NewDelta()
	latest := make(map[string]ChangeEvent)
	var order []string

	for _, event := range events {
		switch event.Type {
		case ChangeTypeLinkAdded:
			delta.AddLink(event.Link.Source, event.Link.Relationship, event.Link.Target)
			continue
		case ChangeTypeLinkDeleted:
			delta.DeleteLink(event.Link.Source, event.Link.Relationship, event.Link.Target)
			continue
		}
		key := event.ID.String()
		if _, seen := latest[key]; !seen {
			order = append(order, key)
		}
		latest[key] = event
	}

	for _, key := range order {
		event := latest[key]
		if event.Type == ChangeTypeDeleted {
			delta.AddDeleted(event.ID, data.ReasonDeleted)
			continue
		}

		matches := true
		if match != nil {
			if matches, err = match(event.Entity); err != nil {
				return nil, "", err
			}
		}
		if !matches {
			delta.AddDeleted(event.ID, data.ReasonChanged)
			continue
		}

		// history entities are shared between readers
		entity := *event.Entity
		entity.ETag = etag.Generate(&entity)
		delta.Add(&entity)
	}

	return delta, next, nil
}

// EntitySetFromToken returns the entity set the delta token belongs to.
func (t *Tracker) EntitySetFromToken(token string) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	state, err := t.lookupLocked(token)
	if err != nil {
		return "", err
	}
	return state.entitySet, nil
}

// issueLocked returns the token for a history position, issuing a new one
// the first time the position is seen. t.mu must be held for writing.
func (t *Tracker) issueLocked(entitySet string, version int64) (string, error) {
	state := tokenState{entitySet: entitySet, version: version}
	if token, ok := t.handles[state]; ok {
		return token, nil
	}
	if t.issued >= maxTokens {
		return "", fmt.Errorf("delta tokens exhausted after %d positions", t.issued)
	}

	t.issued++
	token := strconv.FormatInt(t.issued, 36)
	token = strings.Repeat("0", TokenLength-len(token)) + token
	t.tokens[token] = state
	t.handles[state] = token
	return token, nil
}

// lookupLocked resolves a token. t.mu must be held.
func (t *Tracker) lookupLocked(token string) (tokenState, error) {
	state, ok := t.tokens[strings.TrimPrefix(token, "*")]
	if !ok {
		return tokenState{}, queryerrors.Validation("invalid delta token")
	}
	return state, nil
}
