// Package calendar creates Google Calendar events carrying Google Meet
// links.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// MeetCreator is the calendar surface consumed by the meeting service.
type MeetCreator interface {
	CreateMeetEvent(ctx context.Context, summary, description string, start, end time.Time) (string, error)
}

// GoogleCalendar creates events on the authorized user's primary calendar.
type GoogleCalendar struct {
	svc      *calendarapi.Service
	timezone string
	logger   zerolog.Logger
}

// NewGoogle builds a GoogleCalendar from an OAuth client-secrets file and a
// cached token file. When no token is cached yet the interactive
// authorization flow runs once and the token is saved for later starts.
func NewGoogle(ctx context.Context, credentialsFile, tokenFile, timezone string, logger zerolog.Logger) (*GoogleCalendar, error) {
	secrets, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read client secrets: %w", err)
	}
	config, err := google.ConfigFromJSON(secrets, calendarapi.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets: %w", err)
	}

	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		tok, err = tokenFromWeb(ctx, config)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenFile, tok); err != nil {
			logger.Warn().Err(err).Str("path", tokenFile).Msg("could not cache oauth token")
		}
	}

	svc, err := calendarapi.NewService(ctx, option.WithHTTPClient(config.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	return &GoogleCalendar{svc: svc, timezone: timezone, logger: logger}, nil
}

// CreateMeetEvent inserts a calendar event with an attached Meet conference
// and returns the Meet link.
func (g *GoogleCalendar) CreateMeetEvent(ctx context.Context, summary, description string, start, end time.Time) (string, error) {
	event := &calendarapi.Event{
		Summary:     summary,
		Description: description,
		Start: &calendarapi.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: g.timezone,
		},
		End: &calendarapi.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: g.timezone,
		},
		ConferenceData: &calendarapi.ConferenceData{
			CreateRequest: &calendarapi.CreateConferenceRequest{
				RequestId: "meet-" + uuid.New().String(),
				ConferenceSolutionKey: &calendarapi.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
	}

	created, err := g.svc.Events.Insert("primary", event).
		ConferenceDataVersion(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	g.logger.Info().Str("event_id", created.Id).Msg("calendar event created")
	return created.HangoutLink, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	return tok, json.NewDecoder(f).Decode(tok)
}

// tokenFromWeb runs the one-time console authorization flow.
func tokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Open the following link in your browser, then paste the authorization code:\n%v\n", authURL)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, fmt.Errorf("read authorization code: %w", err)
	}
	tok, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}
