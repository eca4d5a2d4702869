// Package plan activates care plans and fans out their deferred WhatsApp
// deliveries.
package plan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/patient360/backend/internal/domain/patient"
	"github.com/patient360/backend/internal/platform/scheduler"
	"github.com/patient360/backend/internal/platform/whatsapp"
)

var (
	// ErrNotUpdated is returned when plan activation matched no patient.
	ErrNotUpdated = errors.New("patient not updated")
	// ErrMobileMissing is returned when a send requires a mobile number the
	// patient does not have.
	ErrMobileMissing = errors.New("mobile number missing for patient")
	// ErrInvalidMobile is returned when a raw mobile number has fewer than
	// ten digits.
	ErrInvalidMobile = errors.New("invalid mobile number")
)

const (
	firstDayDelay = 5 * time.Second
	dailyDelay    = 24 * time.Hour
)

// deliveryDelay returns how long after activation a given day's plan fires.
// Day 1 goes out almost immediately; every later day waits a full day from
// activation, not from the previous send.
func deliveryDelay(day int) time.Duration {
	if day == 1 {
		return firstDayDelay
	}
	return dailyDelay
}

// Delivery is the scheduled payload for one day's plan message. It carries a
// snapshot of the patient taken at activation; later edits to the stored
// document do not affect pending deliveries.
type Delivery struct {
	Patient  patient.Patient
	PlanType string
	Day      int
}

// Option configures a Service.
type Option func(*Service)

// WithDelayFunc overrides the per-day delivery delay. Tests use this to
// avoid day-long waits.
func WithDelayFunc(fn func(day int) time.Duration) Option {
	return func(s *Service) { s.delayFor = fn }
}

// Service owns plan activation, the deferred deliveries, and the one-off
// summary sends.
type Service struct {
	repo     patient.Repository
	gateway  whatsapp.Gateway
	registry *whatsapp.TemplateRegistry
	sched    *scheduler.Scheduler
	delayFor func(day int) time.Duration
	logger   zerolog.Logger
}

func NewService(repo patient.Repository, gateway whatsapp.Gateway, registry *whatsapp.TemplateRegistry, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		gateway:  gateway,
		registry: registry,
		delayFor: deliveryDelay,
		logger:   logger,
	}
	for _, o := range opts {
		o(s)
	}
	s.sched = scheduler.New(s.deliver, logger)
	return s
}

// Start runs the delivery scheduler until ctx is cancelled. Pending
// deliveries are dropped on shutdown.
func (s *Service) Start(ctx context.Context) {
	s.sched.Start(ctx)
}

// PendingDeliveries reports how many plan messages are waiting to fire.
func (s *Service) PendingDeliveries() int {
	return s.sched.Pending()
}

// Activate stamps the patient with the plan type and activation time, sends
// the greeting, and schedules the seven daily deliveries. The greeting and
// the deliveries are best-effort; only store failures surface as errors.
func (s *Service) Activate(ctx context.Context, patientID int, planType string) error {
	matched, err := s.repo.UpdateFields(ctx, patientID, bson.M{"type": planType, "time": time.Now()})
	if err != nil {
		return err
	}
	if matched == 0 {
		return ErrNotUpdated
	}

	p, err := s.repo.FindByID(ctx, patientID)
	if err != nil {
		return err
	}

	if template, ok := s.registry.Resolve(whatsapp.TemplateGreetings); ok {
		s.gateway.SendGreeting(ctx, template, p.MobileNo, p.Name)
	}

	for day := 1; day <= 7; day++ {
		s.sched.Schedule(s.delayFor(day), Delivery{Patient: *p, PlanType: planType, Day: day})
	}

	s.logger.Info().
		Int("patientid", patientID).
		Str("plan_type", planType).
		Msg("plan activated, deliveries scheduled")
	return nil
}

// deliver sends one day's plan message. Failures end here as log lines;
// there is no retry and nothing to report back to.
func (s *Service) deliver(ctx context.Context, task scheduler.Task) {
	d, ok := task.Payload.(Delivery)
	if !ok {
		s.logger.Error().Str("task_id", task.ID).Msg("unexpected task payload")
		return
	}

	text, ok := d.Patient.PlanDay(d.PlanType, d.Day)
	if !ok {
		text = fmt.Sprintf("No %s plan for DAY%d", d.PlanType, d.Day)
	}

	template, ok := s.registry.Resolve(d.PlanType)
	if !ok {
		s.logger.Error().
			Str("plan_type", d.PlanType).
			Int("day", d.Day).
			Msg("no template mapped for plan type, delivery skipped")
		return
	}

	res := s.gateway.SendPlanUpdate(ctx, template, d.Patient.MobileNo, d.Patient.Name, text)
	s.logger.Info().
		Int("patientid", d.Patient.PatientID).
		Str("plan_type", d.PlanType).
		Int("day", d.Day).
		Bool("delivered", res.Delivered).
		Msg("plan delivery fired")
}

// SummaryResult is what a health summary send produces: the preview text
// shown to the caller and the raw gateway outcome.
type SummaryResult struct {
	PatientID int
	Name      string
	SentText  string
	Response  *whatsapp.SendResult
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

// SendSummary sends the five-field health summary template to the patient's
// own mobile number.
func (s *Service) SendSummary(ctx context.Context, patientID int) (*SummaryResult, error) {
	p, err := s.repo.FindByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if p.MobileNo == "" {
		return nil, ErrMobileMissing
	}

	name := p.Name
	if name == "" {
		name = "Unknown"
	}
	weight := orNA(patient.Stringify(p.Weight))
	bp := orNA(patient.Stringify(p.BP))
	heartrate := orNA(patient.Stringify(p.HeartRate))
	sugar := orNA(patient.Stringify(p.FastingSugar))

	template, _ := s.registry.Resolve(whatsapp.TemplateHealthSummary)
	// parameter order matches the template placeholders {{1}}..{{5}}
	res := s.gateway.SendTemplate(ctx, template, p.MobileNo, []string{name, weight, bp, heartrate, sugar})

	sentText := fmt.Sprintf(
		"Health Summary:\n\nName: %s\nWeight: %s\nBlood Pressure: %s\nHeart Rate: %s\nFasting Sugar: %s\n",
		name, weight, bp, heartrate, sugar,
	)
	return &SummaryResult{
		PatientID: patientID,
		Name:      name,
		SentText:  sentText,
		Response:  res,
	}, nil
}

// TemplateSendResult reports a static summary-template send.
type TemplateSendResult struct {
	Mobile   string
	Template string
	Response *whatsapp.SendResult
}

func cleanMobile(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SendSummaryTemplate sends the parameterless summary template to an
// arbitrary mobile number. The number is reduced to its digits and must
// keep at least ten of them.
func (s *Service) SendSummaryTemplate(ctx context.Context, rawMobile string) (*TemplateSendResult, error) {
	cleaned := cleanMobile(rawMobile)
	if len(cleaned) < 10 {
		return nil, ErrInvalidMobile
	}

	template, _ := s.registry.Resolve(whatsapp.TemplateHealthSummary)
	res := s.gateway.SendTemplate(ctx, template, cleaned, nil)

	return &TemplateSendResult{
		Mobile:   cleaned,
		Template: template,
		Response: res,
	}, nil
}
