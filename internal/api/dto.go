package api

import (
	"errors"
	"regexp"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/lumen/internal/models"
	"github.com/starford/lumen/internal/noteservice"
	"github.com/starford/lumen/internal/prefs"
)

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListItem is a lightweight item in a list response (aliased from the domain layer).
type NoteListItem = noteservice.NoteListItem

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// TagsResponse lists distinct tags.
type TagsResponse struct {
	Tags []string `json:"tags" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []models.SearchResult `json:"results" validate:"required"`
}

// RemoteSearchRequest is the body of POST /search/remote.
type RemoteSearchRequest struct {
	Query string `json:"query" example:"sleep and training"`
	Limit int    `json:"limit" example:"5"`
}

// Validate implements validation.Validatable.
func (r RemoteSearchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Limit, validation.Min(0), validation.Max(50)),
	)
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Content string `json:"content" example:"What did I write about sourdough?" validate:"required"`
}

// Validate implements validation.Validatable.
func (r ChatRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required, validation.Length(1, 8000)),
	)
}

// SettingRequest is the body of PUT /settings/{key}.
type SettingRequest struct {
	Value string `json:"value" example:"true"`
}

var settingKey = regexp.MustCompile(`^[a-z0-9_.-]{1,64}$`)

func validateSetting(key string, req SettingRequest) error {
	if err := validation.Validate(key, validation.Required, validation.Match(settingKey)); err != nil {
		return validation.Errors{"key": err}
	}
	var rules []validation.Rule
	switch key {
	case prefs.KeyAutoSync:
		rules = []validation.Rule{validation.Required, validation.In("true", "false")}
	case prefs.KeySyncIntervalMinutes:
		rules = []validation.Rule{validation.Required, validation.By(intervalRange)}
	default:
		rules = []validation.Rule{validation.Length(0, 4096)}
	}
	if err := validation.Validate(req.Value, rules...); err != nil {
		return validation.Errors{"value": err}
	}
	return nil
}

// intervalRange accepts whole minutes between 1 and one day.
func intervalRange(v any) error {
	s, _ := v.(string)
	m, err := strconv.Atoi(s)
	if err != nil {
		return errors.New("must be an integer")
	}
	if m < 1 || m > 1440 {
		return errors.New("must be between 1 and 1440")
	}
	return nil
}

// SettingsResponse lists stored preferences.
type SettingsResponse struct {
	Settings []prefs.Entry `json:"settings" validate:"required"`
}
