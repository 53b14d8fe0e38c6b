package validators

import (
	stderrors "errors"
	"strings"
	"testing"
	"time"

	pkgerrors "teamcal-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateInput() EventCreateInput {
	return EventCreateInput{
		Title:       "Sprint planning",
		Description: "Quarterly roadmap review",
		Category:    "meeting",
		Color:       "#1A2B3C",
		StartTime:   time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestEventValidator_ValidateCreate(t *testing.T) {
	v := NewEventValidator()

	assert.NoError(t, v.ValidateCreate(validCreateInput()))
}

func TestEventValidator_ValidateCreateFieldRules(t *testing.T) {
	v := NewEventValidator()

	tests := []struct {
		name   string
		mutate func(*EventCreateInput)
		field  string
	}{
		{
			name:   "missing title",
			mutate: func(in *EventCreateInput) { in.Title = "" },
			field:  "title",
		},
		{
			name:   "title too long",
			mutate: func(in *EventCreateInput) { in.Title = strings.Repeat("x", 201) },
			field:  "title",
		},
		{
			name:   "description too long",
			mutate: func(in *EventCreateInput) { in.Description = strings.Repeat("d", 1001) },
			field:  "description",
		},
		{
			name:   "unknown category",
			mutate: func(in *EventCreateInput) { in.Category = "festival" },
			field:  "category",
		},
		{
			name:   "malformed color",
			mutate: func(in *EventCreateInput) { in.Color = "red" },
			field:  "color",
		},
		{
			name:   "shorthand color",
			mutate: func(in *EventCreateInput) { in.Color = "#F00" },
			field:  "color",
		},
		{
			name:   "start equals end",
			mutate: func(in *EventCreateInput) { in.EndTime = in.StartTime },
			field:  "startTime",
		},
		{
			name: "start after end",
			mutate: func(in *EventCreateInput) {
				in.StartTime = time.Date(2025, 1, 15, 11, 0, 0, 0, time.UTC)
			},
			field: "startTime",
		},
		{
			name:   "zero start time",
			mutate: func(in *EventCreateInput) { in.StartTime = time.Time{} },
			field:  "startTime",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validCreateInput()
			tt.mutate(&input)

			err := v.ValidateCreate(input)
			require.Error(t, err)

			var validationErrs *pkgerrors.ValidationErrors
			require.True(t, stderrors.As(err, &validationErrs))
			assert.Contains(t, validationErrs.ToMap(), tt.field)
		})
	}
}

func TestEventValidator_BoundaryLengths(t *testing.T) {
	v := NewEventValidator()

	input := validCreateInput()
	input.Title = strings.Repeat("x", 200)
	input.Description = strings.Repeat("d", 1000)

	assert.NoError(t, v.ValidateCreate(input))
}

func TestEventValidator_CollectsAllViolations(t *testing.T) {
	v := NewEventValidator()

	input := validCreateInput()
	input.Title = ""
	input.Color = "nope"
	input.Category = "festival"

	err := v.ValidateCreate(input)
	require.Error(t, err)

	var validationErrs *pkgerrors.ValidationErrors
	require.True(t, stderrors.As(err, &validationErrs))
	assert.Len(t, validationErrs.Errors, 3)
}

func TestEventValidator_ValidateUpdate(t *testing.T) {
	v := NewEventValidator()
	longTitle := strings.Repeat("x", 201)
	goodTitle := "Rescheduled"
	badColor := "#XYZXYZ"

	t.Run("empty payload rejected", func(t *testing.T) {
		err := v.ValidateUpdate(EventUpdateInput{})
		assert.Error(t, err)
	})

	t.Run("single valid field accepted", func(t *testing.T) {
		assert.NoError(t, v.ValidateUpdate(EventUpdateInput{Title: &goodTitle}))
	})

	t.Run("present fields follow create rules", func(t *testing.T) {
		err := v.ValidateUpdate(EventUpdateInput{Title: &longTitle})
		assert.Error(t, err)

		err = v.ValidateUpdate(EventUpdateInput{Color: &badColor})
		assert.Error(t, err)
	})

	t.Run("paired times must be ordered", func(t *testing.T) {
		start := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
		end := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
		err := v.ValidateUpdate(EventUpdateInput{StartTime: &start, EndTime: &end})
		assert.Error(t, err)
	})
}

func TestTeamValidator(t *testing.T) {
	v := NewTeamValidator()

	assert.NoError(t, v.ValidateName("Platform"))
	assert.Error(t, v.ValidateName(""))
	assert.Error(t, v.ValidateName(strings.Repeat("x", 101)))

	assert.NoError(t, v.ValidateDescription("Infra and tooling"))
	assert.Error(t, v.ValidateDescription(strings.Repeat("d", 1001)))
}

func TestUserValidator(t *testing.T) {
	v := NewUserValidator()

	assert.NoError(t, v.ValidateEmail("alice@example.com"))
	assert.Error(t, v.ValidateEmail("not-an-email"))

	assert.NoError(t, v.ValidateName("Alice"))
	assert.Error(t, v.ValidateName(""))
}

func TestMemberValidator_RoleEnum(t *testing.T) {
	v := NewMemberValidator()

	for _, valid := range []string{"owner", "member", "viewer"} {
		assert.NoError(t, v.ValidateRole(valid))
	}
	for _, invalid := range []string{"", "admin", "Owner", "OWNER"} {
		assert.Error(t, v.ValidateRole(invalid), "role %q", invalid)
	}
}
