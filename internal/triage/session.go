package triage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/supportbox/internal/domain"
	apperrors "github.com/spec-kit/supportbox/pkg/util"
)

// Step is the position of a session in the wizard.
type Step string

const (
	StepDiagnosis    Step = "DIAGNOSIS"
	StepAISuggestion Step = "AI_SUGGESTION"
	StepFormalIntake Step = "FORMAL_INTAKE"
	StepResolved     Step = "RESOLVED"
)

// Resolution says how a resolved session ended.
type Resolution string

const (
	ResolutionDeflected     Resolution = "DEFLECTED"
	ResolutionTicketCreated Resolution = "TICKET_CREATED"
)

// Session is one wizard instance. All fields are guarded by mu; callers
// interact through the Engine and read state through Snapshot.
type Session struct {
	mu sync.Mutex

	id      string
	version uint64
	step    Step
	busy    bool

	problemDescription string
	aiSuggestion       string
	ticketType         domain.TicketType
	title              string
	category           domain.TicketCategory
	priority           domain.TicketPriority
	escalated          bool
	intakeReason       domain.IntakeReason
	rejectedSuggestion string
	notice             string

	protocolID string
	ticketID   string
	resolution Resolution

	createdAt time.Time
	updatedAt time.Time

	// cancelCall aborts the outstanding gateway or sink call. callDone is
	// closed once that call has returned, even after a reset abandoned it.
	cancelCall context.CancelFunc
	callDone   chan struct{}
}

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	ID                 string
	Version            uint64
	Step               Step
	Busy               bool
	ProblemDescription string
	AISuggestion       string
	TicketType         domain.TicketType
	Title              string
	Category           domain.TicketCategory
	Priority           domain.TicketPriority
	Escalated          bool
	IntakeReason       domain.IntakeReason
	RejectedSuggestion string
	Notice             string
	ProtocolID         string
	TicketID           string
	Resolution         Resolution
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewSession returns a session in the diagnosis step.
func NewSession(now time.Time) *Session {
	return &Session{
		id:        uuid.NewString(),
		step:      StepDiagnosis,
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:                 s.id,
		Version:            s.version,
		Step:               s.step,
		Busy:               s.busy,
		ProblemDescription: s.problemDescription,
		AISuggestion:       s.aiSuggestion,
		TicketType:         s.ticketType,
		Title:              s.title,
		Category:           s.category,
		Priority:           s.priority,
		Escalated:          s.escalated,
		IntakeReason:       s.intakeReason,
		RejectedSuggestion: s.rejectedSuggestion,
		Notice:             s.notice,
		ProtocolID:         s.protocolID,
		TicketID:           s.ticketID,
		Resolution:         s.resolution,
		CreatedAt:          s.createdAt,
		UpdatedAt:          s.updatedAt,
	}
}

// idleSince reports the last activity time unless the session is busy.
func (s *Session) idleSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt, !s.busy
}

// checkLocked enforces busy gating before the step table.
func (s *Session) checkLocked(from Step, action string) error {
	if s.busy {
		return ErrSessionBusy
	}
	if s.step != from {
		return apperrors.NewInvalidTransition(string(s.step), action)
	}
	return nil
}

// enterIntakeLocked moves the session to formal intake for the given reason.
func (s *Session) enterIntakeLocked(reason domain.IntakeReason, now time.Time) {
	s.step = StepFormalIntake
	s.aiSuggestion = ""
	s.intakeReason = reason
	s.escalated = reason == domain.IntakeEscalated
	if s.escalated {
		s.priority = domain.TicketPriorityUrgent
	} else {
		s.priority = domain.TicketPriorityMedium
	}
	s.updatedAt = now
}

// beginCallLocked registers a new outstanding call bounded by timeout. It
// returns the call context, the done channel of an earlier abandoned call
// (nil or closed when there is none) and a finish func the caller must run
// once the call returns.
func (s *Session) beginCallLocked(ctx context.Context, timeout time.Duration) (context.Context, <-chan struct{}, func()) {
	previous := s.callDone
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	done := make(chan struct{})
	s.cancelCall = cancel
	s.callDone = done
	return callCtx, previous, func() {
		cancel()
		close(done)
	}
}

// awaitPrevious blocks until an abandoned call has drained so a session never
// has two calls outstanding.
func awaitPrevious(ctx context.Context, previous <-chan struct{}) error {
	if previous == nil {
		return nil
	}
	select {
	case <-previous:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) resetLocked(now time.Time) {
	if s.cancelCall != nil {
		s.cancelCall()
		s.cancelCall = nil
	}
	s.version++
	s.step = StepDiagnosis
	s.busy = false
	s.problemDescription = ""
	s.aiSuggestion = ""
	s.ticketType = ""
	s.title = ""
	s.category = ""
	s.priority = ""
	s.escalated = false
	s.intakeReason = ""
	s.rejectedSuggestion = ""
	s.notice = ""
	s.protocolID = ""
	s.ticketID = ""
	s.resolution = ""
	s.updatedAt = now
}
