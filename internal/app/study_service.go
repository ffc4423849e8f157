package app

import (
	"context"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"vize-study-service/internal/domain"
	"vize-study-service/internal/srs"
)

// UserSessionRepository abstracts how the durable learner state is stored
// (in-memory, Redis, etc).
type UserSessionRepository interface {
	Load(ctx context.Context) (domain.UserSession, error)
	Save(ctx context.Context, session domain.UserSession) error
}

// CatalogRepository loads the normalized question catalog (from cache/backing store).
type CatalogRepository interface {
	GetQuestions(ctx context.Context) ([]domain.Question, error)
}

// Study modes. They govern how BuildQuiz selects questions from the catalog.
const (
	ModeStandard    = "standard"
	ModeMistakeBank = "mistake-bank"
	ModeSmartReview = "smart-review"
	ModeCustom      = "custom"
)

const (
	standardQuizSize = 20
	customQuizCap    = 50
	defaultQuizSize  = 10
)

// QuizOptions narrows custom-mode selection.
type QuizOptions struct {
	Konu   string
	Zorluk string
	Count  int
}

// StudyService owns the learner's durable session and the transient quiz. It
// is the only component allowed to mutate either; every UserSession mutation
// is followed by a fire-and-forget save to the repository.
type StudyService struct {
	store   UserSessionRepository
	catalog CatalogRepository
	now     func() time.Time
	rnd     *rand.Rand

	mu      sync.RWMutex
	session domain.UserSession
	quiz    *domain.Quiz
}

// NewStudyService loads the persisted learner state and returns a ready
// service. A load failure is non-fatal: the learner starts from defaults and
// the failure is logged.
func NewStudyService(ctx context.Context, store UserSessionRepository, catalog CatalogRepository) *StudyService {
	return newStudyServiceWithClock(ctx, store, catalog, time.Now)
}

// NewStudyServiceWithClock is test-only for deterministic timestamps.
func NewStudyServiceWithClock(ctx context.Context, store UserSessionRepository, catalog CatalogRepository, now func() time.Time) *StudyService {
	return newStudyServiceWithClock(ctx, store, catalog, now)
}

// newStudyServiceWithClock allows deterministic timestamps in tests.
func newStudyServiceWithClock(ctx context.Context, store UserSessionRepository, catalog CatalogRepository, now func() time.Time) *StudyService {
	session, err := store.Load(ctx)
	if err != nil {
		log.Printf("load user session failed, starting fresh: %v", err)
		session = domain.DefaultUserSession()
	}
	return &StudyService{
		store:   store,
		catalog: catalog,
		now:     now,
		rnd:     rand.New(rand.NewSource(now().UnixNano())),
		session: session,
	}
}

// UserSession returns a copy of the durable learner state.
func (s *StudyService) UserSession() domain.UserSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySession(s.session)
}

// CurrentQuiz returns a copy of the quiz in progress, if any.
func (s *StudyService) CurrentQuiz() (domain.Quiz, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.quiz == nil {
		return domain.Quiz{}, false
	}
	return copyQuiz(*s.quiz), true
}

// BuildQuiz selects questions from the catalog for the given mode and starts
// a quiz with them. An empty selection is legal; the caller decides what to
// offer the learner instead.
func (s *StudyService) BuildQuiz(ctx context.Context, mode string, opts QuizOptions) ([]domain.Question, error) {
	all, err := s.catalog.GetQuestions(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var selected []domain.Question
	switch mode {
	case ModeStandard:
		selected = s.sampleLocked(all, standardQuizSize)
	case ModeMistakeBank:
		wanted := make(map[string]struct{}, len(s.session.MistakeBank))
		for _, id := range s.session.MistakeBank {
			wanted[id] = struct{}{}
		}
		for _, q := range all {
			if _, ok := wanted[q.ID]; ok {
				selected = append(selected, q)
			}
		}
	case ModeSmartReview:
		today := s.now()
		for _, q := range all {
			item, ok := s.session.ReviewSchedule[q.ID]
			if ok && srs.IsDue(item, today) {
				selected = append(selected, q)
			}
		}
	case ModeCustom:
		filtered := all
		if opts.Konu != "" {
			filtered = filterQuestions(filtered, func(q domain.Question) bool { return q.Konu == opts.Konu })
		}
		if opts.Zorluk != "" {
			filtered = filterQuestions(filtered, func(q domain.Question) bool { return q.Zorluk == opts.Zorluk })
		}
		count := opts.Count
		if count <= 0 {
			count = defaultQuizSize
		}
		if count > customQuizCap {
			count = customQuizCap
		}
		selected = s.sampleLocked(filtered, count)
	default:
		return nil, domain.ErrUnknownMode
	}

	s.initializeLocked(selected, mode)
	return selected, nil
}

// InitializeQuiz starts a quiz with an explicit question list, replacing any
// quiz in progress unconditionally.
func (s *StudyService) InitializeQuiz(questions []domain.Question, mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initializeLocked(questions, mode)
}

func (s *StudyService) initializeLocked(questions []domain.Question, mode string) {
	qs := make([]domain.Question, len(questions))
	copy(qs, questions)
	s.quiz = &domain.Quiz{
		Questions:   qs,
		Mode:        mode,
		UserAnswers: make(map[string]int),
	}
}

// AddAnswer records the learner's pick for a question in the current quiz.
// Re-answering replaces the prior record. A wrong answer lands the question in
// the mistake bank; either way the review schedule advances. Answering with
// no quiz in progress or an unknown question id is a caller bug: state is
// untouched and a sentinel error is returned.
func (s *StudyService) AddAnswer(ctx context.Context, questionID string, selectedIndex int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quiz == nil {
		log.Printf("add answer with no active quiz (question %s)", questionID)
		return false, domain.ErrNoActiveQuiz
	}

	var question *domain.Question
	for i := range s.quiz.Questions {
		if s.quiz.Questions[i].ID == questionID {
			question = &s.quiz.Questions[i]
			break
		}
	}
	if question == nil {
		log.Printf("add answer for question %s not in current quiz", questionID)
		return false, domain.ErrQuestionNotInQuiz
	}

	s.quiz.UserAnswers[questionID] = selectedIndex
	correct := selectedIndex == question.DogruCevapIndex

	if !correct {
		s.addMistakeLocked(questionID)
	}

	level := 0
	if item, ok := s.session.ReviewSchedule[questionID]; ok {
		level = item.Level
	}
	s.session.ReviewSchedule[questionID] = srs.Update(level, correct, s.now())

	s.persistLocked(ctx)
	return correct, nil
}

// FinishQuiz computes the summary, advances the streak, and discards the
// quiz. Safe to call with no quiz in progress; the summary is then empty.
func (s *StudyService) FinishQuiz(ctx context.Context) domain.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := s.summaryLocked()
	if s.quiz == nil {
		return summary
	}

	s.session.Streak = srs.UpdateStreak(s.session.Streak, s.now())
	s.quiz = nil
	s.persistLocked(ctx)
	return summary
}

// Score returns the current quiz score as a rounded percentage; 0 when no
// quiz is active or the quiz is empty.
func (s *StudyService) Score() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summaryLocked().Score
}

// Summary returns the full derived result for the current quiz.
func (s *StudyService) Summary() domain.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summaryLocked()
}

func (s *StudyService) summaryLocked() domain.Summary {
	if s.quiz == nil || len(s.quiz.Questions) == 0 {
		return domain.Summary{}
	}
	correct := 0
	for _, q := range s.quiz.Questions {
		if answer, ok := s.quiz.UserAnswers[q.ID]; ok && answer == q.DogruCevapIndex {
			correct++
		}
	}
	total := len(s.quiz.Questions)
	return domain.Summary{
		Score:     int(math.Round(float64(correct) / float64(total) * 100)),
		Correct:   correct,
		Incorrect: total - correct,
		Total:     total,
	}
}

// AddMistake inserts a question id into the mistake bank (set semantics).
func (s *StudyService) AddMistake(ctx context.Context, questionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addMistakeLocked(questionID) {
		s.persistLocked(ctx)
	}
}

// RemoveMistake deletes a question id from the mistake bank if present.
func (s *StudyService) RemoveMistake(ctx context.Context, questionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, id := range s.session.MistakeBank {
		if id == questionID {
			s.session.MistakeBank = append(s.session.MistakeBank[:i], s.session.MistakeBank[i+1:]...)
			s.persistLocked(ctx)
			return
		}
	}
}

// MistakeCount reports the size of the mistake bank.
func (s *StudyService) MistakeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.session.MistakeBank)
}

// HasMistake reports whether a question id is in the mistake bank.
func (s *StudyService) HasMistake(questionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.session.MistakeBank {
		if id == questionID {
			return true
		}
	}
	return false
}

func (s *StudyService) addMistakeLocked(questionID string) bool {
	for _, id := range s.session.MistakeBank {
		if id == questionID {
			return false
		}
	}
	s.session.MistakeBank = append(s.session.MistakeBank, questionID)
	return true
}

// DueQuestionIDs lists the question ids whose review date has arrived, at day
// granularity.
func (s *StudyService) DueQuestionIDs(today time.Time) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	due := make([]string, 0)
	for id, item := range s.session.ReviewSchedule {
		if srs.IsDue(item, today) {
			due = append(due, id)
		}
	}
	return due
}

// UpdateSettings applies a partial settings update; nil fields are untouched.
func (s *StudyService) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.Theme != nil {
		s.session.Settings.Theme = *patch.Theme
	}
	if patch.ShowExplanationImmediately != nil {
		s.session.Settings.ShowExplanationImmediately = *patch.ShowExplanationImmediately
	}
	s.persistLocked(ctx)
}

// persistLocked saves the durable state. Failures are non-fatal: the
// in-memory session stays authoritative and the failure is logged.
func (s *StudyService) persistLocked(ctx context.Context) {
	if err := s.store.Save(ctx, copySession(s.session)); err != nil {
		log.Printf("persist user session: %v", err)
	}
}

// sampleLocked returns up to n questions in random order.
func (s *StudyService) sampleLocked(questions []domain.Question, n int) []domain.Question {
	shuffled := make([]domain.Question, len(questions))
	copy(shuffled, questions)
	s.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

func filterQuestions(questions []domain.Question, keep func(domain.Question) bool) []domain.Question {
	out := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}

func copySession(session domain.UserSession) domain.UserSession {
	out := session
	out.MistakeBank = make([]string, len(session.MistakeBank))
	copy(out.MistakeBank, session.MistakeBank)
	out.ReviewSchedule = make(map[string]domain.ReviewItem, len(session.ReviewSchedule))
	for id, item := range session.ReviewSchedule {
		out.ReviewSchedule[id] = item
	}
	return out
}

func copyQuiz(quiz domain.Quiz) domain.Quiz {
	out := quiz
	out.Questions = make([]domain.Question, len(quiz.Questions))
	copy(out.Questions, quiz.Questions)
	out.UserAnswers = make(map[string]int, len(quiz.UserAnswers))
	for id, answer := range quiz.UserAnswers {
		out.UserAnswers[id] = answer
	}
	return out
}
