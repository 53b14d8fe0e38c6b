package dynamodb

import (
	"fmt"
	"strings"

	"teamcal-backend/pkg/errors"
)

// Key prefixes for the single-table layout. Every row and index key is
// assembled through the builders below, never from inline literals, so
// the documented key shapes live in exactly one place.
const (
	userKeyPrefix       = "USER#"
	emailKeyPrefix      = "EMAIL#"
	teamKeyPrefix       = "TEAM#"
	memberKeyPrefix     = "MEMBER#"
	eventKeyPrefix      = "EVENT#"
	dateKeyPrefix       = "DATE#"
	connectionKeyPrefix = "CONNECTION#"
	outboxKeyPrefix     = "EVENTS#"
)

const gsi1Name = "GSI1"

// keyPart validates a raw identifier before it is embedded in a key.
// The '#' separator is reserved, and an empty part would alias a bare
// prefix, so both are rejected before any request reaches the store.
func keyPart(field, value string) (string, error) {
	if value == "" {
		return "", errors.NewDomainError(
			errors.DomainValidationError,
			"MALFORMED_IDENTIFIER",
			fmt.Sprintf("%s must not be empty", field),
		).WithDetail("field", field)
	}
	if strings.Contains(value, "#") {
		return "", errors.NewDomainError(
			errors.DomainValidationError,
			"MALFORMED_IDENTIFIER",
			fmt.Sprintf("%s must not contain '#'", field),
		).WithDetail("field", field)
	}
	return value, nil
}

// userKey builds USER#<userId>, used for both PK and SK of a user row
// and for the GSI1PK of a membership row.
func userKey(userID string) (string, error) {
	part, err := keyPart("userId", userID)
	if err != nil {
		return "", err
	}
	return userKeyPrefix + part, nil
}

// emailKey builds EMAIL#<email>, the GSI1PK of a user row. The email is
// expected to be normalized (lowercased, trimmed) before it gets here.
func emailKey(email string) (string, error) {
	part, err := keyPart("email", email)
	if err != nil {
		return "", err
	}
	return emailKeyPrefix + part, nil
}

// teamKey builds TEAM#<teamId>, used for both PK and SK of a team row,
// the PK of membership and event rows, and the GSI1SK of a membership.
func teamKey(teamID string) (string, error) {
	part, err := keyPart("teamId", teamID)
	if err != nil {
		return "", err
	}
	return teamKeyPrefix + part, nil
}

// memberKey builds MEMBER#<userId>, the SK of a membership row.
func memberKey(userID string) (string, error) {
	part, err := keyPart("userId", userID)
	if err != nil {
		return "", err
	}
	return memberKeyPrefix + part, nil
}

// eventKey builds EVENT#<eventId>, the SK of an event row.
func eventKey(eventID string) (string, error) {
	part, err := keyPart("eventId", eventID)
	if err != nil {
		return "", err
	}
	return eventKeyPrefix + part, nil
}

// dateKey builds DATE#<YYYY-MM-DD>, the GSI1PK of an event row. The day
// string comes from the day-key formatter and is already UTC-normalized.
func dateKey(day string) (string, error) {
	part, err := keyPart("day", day)
	if err != nil {
		return "", err
	}
	return dateKeyPrefix + part, nil
}

// eventDateSortKey builds TEAM#<teamId>#EVENT#<eventId>, the GSI1SK of
// an event row. The composite makes date partitions prefix-queryable by
// team with begins_with.
func eventDateSortKey(teamID, eventID string) (string, error) {
	teamPart, err := keyPart("teamId", teamID)
	if err != nil {
		return "", err
	}
	eventPart, err := keyPart("eventId", eventID)
	if err != nil {
		return "", err
	}
	return teamKeyPrefix + teamPart + "#" + eventKeyPrefix + eventPart, nil
}

// connectionKey builds CONNECTION#<connectionId>, used for both PK and
// SK of a live connection row.
func connectionKey(connectionID string) (string, error) {
	part, err := keyPart("connectionId", connectionID)
	if err != nil {
		return "", err
	}
	return connectionKeyPrefix + part, nil
}

// outboxKey builds EVENTS#<aggregateId>, the PK of an outbox row.
func outboxKey(aggregateID string) (string, error) {
	part, err := keyPart("aggregateId", aggregateID)
	if err != nil {
		return "", err
	}
	return outboxKeyPrefix + part, nil
}
