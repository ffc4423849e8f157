package domain

import "encoding/json"

// Question is a single quiz item in its canonical, already-normalized form.
// Secenekler holds the options in presentation order; DogruCevapIndex points
// at the correct option within that order.
type Question struct {
	ID              string   `json:"id"`
	Konu            string   `json:"konu"`
	Zorluk          string   `json:"zorluk"`
	Tip             string   `json:"tip,omitempty"`
	SoruMetni       string   `json:"soruMetni"`
	Secenekler      []string `json:"secenekler"`
	DogruCevap      string   `json:"dogruCevap"`
	DogruCevapIndex int      `json:"dogruCevapIndex"`
	Aciklama        string   `json:"aciklama"`
}

// ReviewItem tracks the spaced-repetition state of one question.
type ReviewItem struct {
	Level        int    `json:"level"`
	DueDate      string `json:"dueDate"`      // RFC 3339
	LastReviewed string `json:"lastReviewed"` // RFC 3339
}

// Streak counts consecutive study days.
type Streak struct {
	Count           int    `json:"count"`
	LastStudiedDate string `json:"lastStudiedDate"` // YYYY-MM-DD, empty if never
}

// Settings holds learner preferences.
type Settings struct {
	Theme                      string `json:"theme"`
	ShowExplanationImmediately bool   `json:"showExplanationImmediately"`
}

// SettingsPatch carries a partial settings update; nil fields are untouched.
type SettingsPatch struct {
	Theme                      *string `json:"theme,omitempty"`
	ShowExplanationImmediately *bool   `json:"showExplanationImmediately,omitempty"`
}

// UserSession is the durable per-learner state. It is the only state that
// survives process restarts.
type UserSession struct {
	MistakeBank    []string              `json:"mistakeBank"`
	ReviewSchedule map[string]ReviewItem `json:"reviewSchedule"`
	Streak         Streak                `json:"streak"`
	Settings       Settings              `json:"settings"`
}

// Quiz is the transient state of one run-through. It is never persisted.
type Quiz struct {
	Questions   []Question     `json:"questions"`
	Mode        string         `json:"mode"`
	UserAnswers map[string]int `json:"userAnswers"`
}

// Summary is the derived result of a quiz, computed on demand.
type Summary struct {
	Score     int `json:"score"` // percentage, rounded
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Total     int `json:"total"`
}

// DefaultUserSession returns the state of a learner who has never studied.
func DefaultUserSession() UserSession {
	return UserSession{
		MistakeBank:    []string{},
		ReviewSchedule: map[string]ReviewItem{},
		Streak:         Streak{Count: 0, LastStudiedDate: ""},
		Settings: Settings{
			Theme:                      "light",
			ShowExplanationImmediately: true,
		},
	}
}

// sessionBlob mirrors UserSession with every field optional so that older or
// partial persisted blobs can be merged field-by-field instead of replaced
// wholesale.
type sessionBlob struct {
	MistakeBank    []string              `json:"mistakeBank"`
	ReviewSchedule map[string]ReviewItem `json:"reviewSchedule"`
	Streak         *Streak               `json:"streak"`
	Settings       *struct {
		Theme                      *string `json:"theme"`
		ShowExplanationImmediately *bool   `json:"showExplanationImmediately"`
	} `json:"settings"`
}

// DecodeUserSession parses a persisted session blob, filling any field the
// blob is missing from DefaultUserSession. A field that is present survives
// even when its siblings are absent.
func DecodeUserSession(data []byte) (UserSession, error) {
	session := DefaultUserSession()
	var blob sessionBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return session, err
	}
	if blob.MistakeBank != nil {
		session.MistakeBank = blob.MistakeBank
	}
	if blob.ReviewSchedule != nil {
		session.ReviewSchedule = blob.ReviewSchedule
	}
	if blob.Streak != nil {
		session.Streak = *blob.Streak
	}
	if blob.Settings != nil {
		if blob.Settings.Theme != nil {
			session.Settings.Theme = *blob.Settings.Theme
		}
		if blob.Settings.ShowExplanationImmediately != nil {
			session.Settings.ShowExplanationImmediately = *blob.Settings.ShowExplanationImmediately
		}
	}
	return session, nil
}
