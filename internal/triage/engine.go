package triage

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/supportbox/internal/domain"
	"github.com/spec-kit/supportbox/internal/events"
	"github.com/spec-kit/supportbox/internal/gateway"
	"github.com/spec-kit/supportbox/internal/observability"
	apperrors "github.com/spec-kit/supportbox/pkg/util"
)

const (
	defaultGatewayTimeout = 20 * time.Second
	defaultSubmitTimeout  = 10 * time.Second

	noticeGatewayFailure = "Não foi possível consultar o assistente agora. Descreva o problema no formulário para abrir um chamado."
	noticeEscalated      = "Seu relato foi identificado como urgente. Abra o chamado para atendimento humano."
	noticeSubmitFailure  = "Não foi possível registrar o chamado. Seus dados foram mantidos, tente novamente."
)

// TicketSink registers the ticket produced by formal intake.
type TicketSink interface {
	Submit(ctx context.Context, submission domain.TicketSubmission) (domain.TicketReceipt, error)
}

// Engine drives triage sessions through the wizard steps.
type Engine struct {
	gateway        gateway.Completer
	sink           TicketSink
	dispatcher     events.Dispatcher
	metrics        *observability.Metrics
	logger         *zap.Logger
	gatewayTimeout time.Duration
	submitTimeout  time.Duration
	now            func() time.Time
}

// EngineDependencies bundles collaborators for the engine.
type EngineDependencies struct {
	Gateway        gateway.Completer
	Sink           TicketSink
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	GatewayTimeout time.Duration
	SubmitTimeout  time.Duration
}

// TicketInput is what the requester enters in the formal intake form.
type TicketInput struct {
	Type        string
	Title       string
	Description string
	Category    string
	Priority    string
}

// NewEngine constructs engine.
func NewEngine(deps EngineDependencies) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher(logger)
	}
	gatewayTimeout := deps.GatewayTimeout
	if gatewayTimeout <= 0 {
		gatewayTimeout = defaultGatewayTimeout
	}
	submitTimeout := deps.SubmitTimeout
	if submitTimeout <= 0 {
		submitTimeout = defaultSubmitTimeout
	}
	return &Engine{
		gateway:        deps.Gateway,
		sink:           deps.Sink,
		dispatcher:     dispatcher,
		metrics:        deps.Metrics,
		logger:         logger,
		gatewayTimeout: gatewayTimeout,
		submitTimeout:  submitTimeout,
		now:            time.Now,
	}
}

// SubmitProblem sends the description for an automated triage attempt.
// A gateway failure is not an error for the caller: the session falls
// through to formal intake with a notice.
func (e *Engine) SubmitProblem(ctx context.Context, s *Session, text string) (Snapshot, error) {
	if strings.TrimSpace(text) == "" {
		return s.Snapshot(), ErrEmptyProblem
	}

	s.mu.Lock()
	if err := s.checkLocked(StepDiagnosis, "submit_problem"); err != nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, err
	}
	s.busy = true
	s.problemDescription = text
	s.notice = ""
	s.updatedAt = e.now()
	version := s.version
	callCtx, previous, finish := s.beginCallLocked(ctx, e.gatewayTimeout)
	s.mu.Unlock()

	fingerprint := observability.Fingerprint(text)
	logger := e.logger.With(zap.String("session_id", s.id), zap.String("problem_fp", fingerprint))

	var reply string
	callErr := awaitPrevious(callCtx, previous)
	if callErr == nil {
		reply, callErr = e.gateway.Complete(callCtx, gateway.CompletionRequest{
			Instruction: TriageInstruction,
			UserText:    text,
		})
	}
	finish()
	verdict := Classify(reply, callErr)
	e.metrics.RecordVerdict(string(verdict.Outcome))

	s.mu.Lock()
	if s.version != version {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		logger.Info("discarding stale triage result", zap.String("verdict", string(verdict.Outcome)))
		return snap, ErrStaleSession
	}
	s.busy = false
	now := e.now()
	var (
		eventType events.EventType
		reason    string
	)
	switch verdict.Outcome {
	case OutcomeResolve:
		s.step = StepAISuggestion
		s.aiSuggestion = verdict.Suggestion
		s.updatedAt = now
		logger.Info("triage suggestion offered")
	case OutcomeEscalate:
		s.enterIntakeLocked(domain.IntakeEscalated, now)
		s.notice = noticeEscalated
		eventType = events.EventTriageEscalated
		logger.Info("triage escalated to formal intake")
	default:
		s.enterIntakeLocked(domain.IntakeGatewayFailure, now)
		s.notice = noticeGatewayFailure
		eventType = events.EventTriageGatewayFailed
		reason = string(gateway.ReasonUnknown)
		if callErr != nil {
			reason = string(gateway.ReasonOf(callErr))
		}
		logger.Warn("triage gateway failed, falling back to formal intake", zap.String("reason", reason))
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if eventType != "" {
		e.publish(ctx, eventType, s.id, events.TriageOutcomePayload{ProblemFingerprint: fingerprint, Reason: reason})
	}
	return snap, nil
}

// AcceptSuggestion closes the session as deflected.
func (e *Engine) AcceptSuggestion(ctx context.Context, s *Session) (Snapshot, error) {
	s.mu.Lock()
	if err := s.checkLocked(StepAISuggestion, "accept_suggestion"); err != nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, err
	}
	fingerprint := observability.Fingerprint(s.problemDescription)
	s.step = StepResolved
	s.aiSuggestion = ""
	s.resolution = ResolutionDeflected
	s.updatedAt = e.now()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	e.metrics.RecordResolution(string(ResolutionDeflected))
	e.logger.Info("triage deflected", zap.String("session_id", s.id), zap.String("problem_fp", fingerprint))
	e.publish(ctx, events.EventTriageDeflected, s.id, events.TriageOutcomePayload{ProblemFingerprint: fingerprint})
	return snap, nil
}

// RejectSuggestion moves to formal intake keeping the original description.
func (e *Engine) RejectSuggestion(_ context.Context, s *Session) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(StepAISuggestion, "reject_suggestion"); err != nil {
		return s.snapshotLocked(), err
	}
	s.rejectedSuggestion = s.aiSuggestion
	s.enterIntakeLocked(domain.IntakeRejected, e.now())
	s.notice = ""
	return s.snapshotLocked(), nil
}

// Back returns from formal intake to diagnosis, keeping the description.
func (e *Engine) Back(_ context.Context, s *Session) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(StepFormalIntake, "back"); err != nil {
		return s.snapshotLocked(), err
	}
	s.step = StepDiagnosis
	s.ticketType = ""
	s.title = ""
	s.category = ""
	s.priority = ""
	s.escalated = false
	s.intakeReason = ""
	s.rejectedSuggestion = ""
	s.notice = ""
	s.updatedAt = e.now()
	return s.snapshotLocked(), nil
}

// SubmitTicket registers the formal ticket through the sink. On sink failure
// the session stays in formal intake with the entered data so the requester
// can retry.
func (e *Engine) SubmitTicket(ctx context.Context, s *Session, input TicketInput) (Snapshot, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return s.Snapshot(), apperrors.NewValidationError("description is required",
			map[string]any{"field": "description"})
	}
	category, ok := domain.ParseCategory(input.Category)
	if !ok {
		return s.Snapshot(), apperrors.NewValidationError("category is invalid",
			map[string]any{"field": "category", "allowed": domain.Categories})
	}
	ticketType := domain.TicketTypeIncident
	if strings.TrimSpace(input.Type) != "" {
		ticketType, ok = domain.ParseTicketType(input.Type)
		if !ok {
			return s.Snapshot(), apperrors.NewValidationError("type is invalid",
				map[string]any{"field": "type", "allowed": []domain.TicketType{domain.TicketTypeIncident, domain.TicketTypeRequest}})
		}
	}
	title := strings.TrimSpace(input.Title)

	var explicitPriority domain.TicketPriority
	if strings.TrimSpace(input.Priority) != "" {
		explicitPriority, ok = domain.ParsePriority(input.Priority)
		if !ok {
			return s.Snapshot(), apperrors.NewValidationError("priority is invalid",
				map[string]any{"field": "priority"})
		}
	}

	s.mu.Lock()
	if err := s.checkLocked(StepFormalIntake, "submit_ticket"); err != nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, err
	}
	s.busy = true
	s.problemDescription = input.Description
	s.ticketType = ticketType
	s.title = title
	s.category = category
	if explicitPriority != "" {
		s.priority = explicitPriority
	}
	if s.priority == "" {
		s.priority = domain.TicketPriorityMedium
	}
	s.notice = ""
	s.updatedAt = e.now()
	version := s.version
	submission := domain.TicketSubmission{
		SessionID:          s.id,
		Type:               ticketType,
		Title:              title,
		Description:        description,
		Category:           category,
		Priority:           s.priority,
		Origin:             s.intakeReason,
		RejectedSuggestion: s.rejectedSuggestion,
	}
	callCtx, previous, finish := s.beginCallLocked(ctx, e.submitTimeout)
	s.mu.Unlock()

	logger := e.logger.With(zap.String("session_id", s.id), zap.String("problem_fp", observability.Fingerprint(description)))

	var receipt domain.TicketReceipt
	err := awaitPrevious(callCtx, previous)
	if err == nil {
		receipt, err = e.sink.Submit(callCtx, submission)
	}
	finish()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != version {
		if err == nil {
			logger.Warn("ticket registered for a session reset in flight", zap.String("protocol_id", receipt.ProtocolID))
		}
		return s.snapshotLocked(), ErrStaleSession
	}
	s.busy = false
	s.updatedAt = e.now()
	if err != nil {
		s.notice = noticeSubmitFailure
		logger.Error("ticket submission failed", zap.Error(err))
		return s.snapshotLocked(), apperrors.NewSubmissionFailed(err)
	}

	s.step = StepResolved
	s.protocolID = receipt.ProtocolID
	s.ticketID = receipt.TicketID
	s.resolution = ResolutionTicketCreated
	e.metrics.RecordResolution(string(ResolutionTicketCreated))
	logger.Info("ticket registered", zap.String("protocol_id", receipt.ProtocolID))
	return s.snapshotLocked(), nil
}

// Reset returns the session to an empty diagnosis step. A call still in
// flight is cancelled and its result discarded.
func (e *Engine) Reset(_ context.Context, s *Session) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(e.now())
	return s.snapshotLocked()
}

func (e *Engine) publish(ctx context.Context, eventType events.EventType, sessionID string, payload any) {
	err := e.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SessionID: sessionID,
		Actor:     events.ActorSystem,
		Timestamp: e.now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		e.logger.Warn("publish triage event failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}
