package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/famquest/famquest_api/dto"
	"github.com/famquest/famquest_api/model"
)

func timeAt(hour, min int) time.Time {
	return time.Date(2026, time.March, 10, hour, min, 0, 0, time.UTC)
}

func TestCompletionIncrements(t *testing.T) {
	rejectedAt := timeAt(10, 0)

	tests := []struct {
		name  string
		event dto.TaskCompletionContext
		want  struct {
			early, birthday, resubmit int
		}
	}{
		{
			name:  "plain completion",
			event: dto.TaskCompletionContext{TaskCategory: "kitchen", TaskPoints: 10, CompletedAt: timeAt(12, 0)},
			want:  struct{ early, birthday, resubmit int }{0, 0, 0},
		},
		{
			name:  "before eight counts as early",
			event: dto.TaskCompletionContext{CompletedAt: timeAt(7, 59)},
			want:  struct{ early, birthday, resubmit int }{1, 0, 0},
		},
		{
			name:  "exactly eight is not early",
			event: dto.TaskCompletionContext{CompletedAt: timeAt(8, 0)},
			want:  struct{ early, birthday, resubmit int }{0, 0, 0},
		},
		{
			name:  "birthday completion",
			event: dto.TaskCompletionContext{CompletedAt: timeAt(12, 0), IsBirthday: true},
			want:  struct{ early, birthday, resubmit int }{0, 1, 0},
		},
		{
			name: "resubmit within thirty minutes",
			event: dto.TaskCompletionContext{
				CompletedAt:        rejectedAt.Add(30 * time.Minute),
				IsResubmit:         true,
				PreviousRejectedAt: &rejectedAt,
			},
			want: struct{ early, birthday, resubmit int }{0, 0, 1},
		},
		{
			name: "resubmit after the window",
			event: dto.TaskCompletionContext{
				CompletedAt:        rejectedAt.Add(31 * time.Minute),
				IsResubmit:         true,
				PreviousRejectedAt: &rejectedAt,
			},
			want: struct{ early, birthday, resubmit int }{0, 0, 0},
		},
		{
			name: "resubmit without rejection timestamp",
			event: dto.TaskCompletionContext{
				CompletedAt: timeAt(12, 0),
				IsResubmit:  true,
			},
			want: struct{ early, birthday, resubmit int }{0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inc := completionIncrements(tt.event)
			if inc.Tasks != 1 {
				t.Errorf("Tasks = %d, want 1", inc.Tasks)
			}
			if inc.Points != tt.event.TaskPoints {
				t.Errorf("Points = %d, want %d", inc.Points, tt.event.TaskPoints)
			}
			if inc.Category != tt.event.TaskCategory {
				t.Errorf("Category = %q, want %q", inc.Category, tt.event.TaskCategory)
			}
			if inc.Early != tt.want.early {
				t.Errorf("Early = %d, want %d", inc.Early, tt.want.early)
			}
			if inc.Birthday != tt.want.birthday {
				t.Errorf("Birthday = %d, want %d", inc.Birthday, tt.want.birthday)
			}
			if inc.ResubmitQuick != tt.want.resubmit {
				t.Errorf("ResubmitQuick = %d, want %d", inc.ResubmitQuick, tt.want.resubmit)
			}
		})
	}
}

func TestNextStreak(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, time.March, d, 15, 30, 0, 0, time.UTC)
	}

	tests := []struct {
		name            string
		last            *time.Time
		consecutive     int
		maxConsecutive  int
		completedAt     time.Time
		wantConsecutive int
		wantMax         int
	}{
		{
			name:            "first ever completion",
			last:            nil,
			completedAt:     day(10),
			wantConsecutive: 1,
			wantMax:         1,
		},
		{
			name:            "same day leaves streak alone",
			last:            ptrTime(day(10)),
			consecutive:     4,
			maxConsecutive:  6,
			completedAt:     day(10).Add(5 * time.Hour),
			wantConsecutive: 4,
			wantMax:         6,
		},
		{
			name:            "next day extends",
			last:            ptrTime(day(10)),
			consecutive:     2,
			maxConsecutive:  2,
			completedAt:     day(11),
			wantConsecutive: 3,
			wantMax:         3,
		},
		{
			name:            "gap resets but keeps the best",
			last:            ptrTime(day(10)),
			consecutive:     5,
			maxConsecutive:  5,
			completedAt:     day(13),
			wantConsecutive: 1,
			wantMax:         5,
		},
		{
			name:            "extension does not regress a higher best",
			last:            ptrTime(day(10)),
			consecutive:     2,
			maxConsecutive:  9,
			completedAt:     day(11),
			wantConsecutive: 3,
			wantMax:         9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotConsecutive, gotMax := nextStreak(tt.last, tt.consecutive, tt.maxConsecutive, tt.completedAt)
			if gotConsecutive != tt.wantConsecutive || gotMax != tt.wantMax {
				t.Errorf("nextStreak() = (%d, %d), want (%d, %d)", gotConsecutive, gotMax, tt.wantConsecutive, tt.wantMax)
			}
		})
	}
}

func TestNextStreakAcrossSpringForward(t *testing.T) {
	// Clocks jump forward overnight, making the local day 23 hours and the
	// two timestamps carry different offsets. The transition must still read
	// as one calendar day and extend the streak.
	est := time.FixedZone("EST", -5*3600)
	edt := time.FixedZone("EDT", -4*3600)
	last := time.Date(2026, time.March, 7, 22, 0, 0, 0, est)
	completed := time.Date(2026, time.March, 8, 21, 0, 0, 0, edt)

	consecutive, maxConsecutive := nextStreak(&last, 3, 3, completed)
	if consecutive != 4 || maxConsecutive != 4 {
		t.Errorf("nextStreak() = (%d, %d), want (4, 4)", consecutive, maxConsecutive)
	}
}

func TestClampProgress(t *testing.T) {
	tests := []struct {
		value, requirement, want int
	}{
		{-3, 10, 0},
		{0, 10, 0},
		{7, 10, 7},
		{10, 10, 10},
		{25, 10, 10},
	}

	for _, tt := range tests {
		if got := clampProgress(tt.value, tt.requirement); got != tt.want {
			t.Errorf("clampProgress(%d, %d) = %d, want %d", tt.value, tt.requirement, got, tt.want)
		}
	}
}

func TestEvaluateConditionThresholds(t *testing.T) {
	snapshot := &model.UserAchievementProgress{
		TotalTasksCompleted:  9,
		TotalPointsEarned:    500,
		EarlyCompletionCount: 5,
		ResubmitQuickCount:   2,
		CategoryCounts:       json.RawMessage(`{"kitchen":3}`),
	}

	tests := []struct {
		name         string
		def          model.AchievementDefinition
		wantUnlocked bool
		wantProgress int
	}{
		{
			name:         "total tasks one short",
			def:          model.AchievementDefinition{ConditionType: model.ConditionTotalTasks, Requirement: 10},
			wantUnlocked: false,
			wantProgress: 9,
		},
		{
			name:         "total tasks at threshold",
			def:          model.AchievementDefinition{ConditionType: model.ConditionTotalTasks, Requirement: 9},
			wantUnlocked: true,
			wantProgress: 9,
		},
		{
			name:         "total points overshoot clamps",
			def:          model.AchievementDefinition{ConditionType: model.ConditionTotalPoints, Requirement: 200},
			wantUnlocked: true,
			wantProgress: 200,
		},
		{
			name: "category counter",
			def: model.AchievementDefinition{
				ConditionType:     model.ConditionCategoryTasks,
				Requirement:       3,
				RequirementDetail: json.RawMessage(`{"category":"kitchen"}`),
			},
			wantUnlocked: true,
			wantProgress: 3,
		},
		{
			name: "category counter absent category",
			def: model.AchievementDefinition{
				ConditionType:     model.ConditionCategoryTasks,
				Requirement:       3,
				RequirementDetail: json.RawMessage(`{"category":"garden"}`),
			},
			wantUnlocked: false,
			wantProgress: 0,
		},
		{
			name:         "early completions",
			def:          model.AchievementDefinition{ConditionType: model.ConditionEarlyCompletion, Requirement: 5},
			wantUnlocked: true,
			wantProgress: 5,
		},
		{
			name:         "quick resubmits below threshold",
			def:          model.AchievementDefinition{ConditionType: model.ConditionResubmitQuick, Requirement: 3},
			wantUnlocked: false,
			wantProgress: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := EvaluateCondition(&tt.def, snapshot, nil, 0)
			if err != nil {
				t.Fatalf("EvaluateCondition() error = %v", err)
			}
			if res.Unlocked != tt.wantUnlocked || res.Progress != tt.wantProgress {
				t.Errorf("EvaluateCondition() = (%v, %d), want (%v, %d)", res.Unlocked, res.Progress, tt.wantUnlocked, tt.wantProgress)
			}
		})
	}
}

func TestEvaluateConditionConsecutiveDays(t *testing.T) {
	// A broken streak still displays the historical best, but unlocking
	// tracks the live streak only.
	snapshot := &model.UserAchievementProgress{ConsecutiveDays: 2, MaxConsecutiveDays: 5}
	def := &model.AchievementDefinition{ConditionType: model.ConditionConsecutiveDays, Requirement: 3}

	res, err := EvaluateCondition(def, snapshot, nil, 0)
	if err != nil {
		t.Fatalf("EvaluateCondition() error = %v", err)
	}
	if res.Unlocked {
		t.Error("expected locked with live streak below requirement")
	}
	if res.Progress != 3 {
		t.Errorf("Progress = %d, want 3 (best streak clamped)", res.Progress)
	}

	snapshot.ConsecutiveDays = 3
	res, err = EvaluateCondition(def, snapshot, nil, 0)
	if err != nil {
		t.Fatalf("EvaluateCondition() error = %v", err)
	}
	if !res.Unlocked {
		t.Error("expected unlocked once live streak meets requirement")
	}
}

func TestEvaluateConditionSpecificTime(t *testing.T) {
	hour := 6
	detail, _ := json.Marshal(model.RequirementDetail{Hour: &hour})
	def := &model.AchievementDefinition{
		ConditionType:     model.ConditionSpecificTime,
		Requirement:       1,
		RequirementDetail: detail,
	}
	snapshot := &model.UserAchievementProgress{}

	// No event: reads as zero, never unlocks on display passes.
	res, err := EvaluateCondition(def, snapshot, nil, 0)
	if err != nil {
		t.Fatalf("EvaluateCondition() error = %v", err)
	}
	if res.Unlocked || res.Progress != 0 {
		t.Errorf("without event = (%v, %d), want (false, 0)", res.Unlocked, res.Progress)
	}

	early := dto.TaskCompletionContext{CompletedAt: timeAt(5, 30)}
	res, err = EvaluateCondition(def, snapshot, &early, 0)
	if err != nil {
		t.Fatalf("EvaluateCondition() error = %v", err)
	}
	if !res.Unlocked || res.Progress != 1 {
		t.Errorf("early event = (%v, %d), want (true, 1)", res.Unlocked, res.Progress)
	}

	late := dto.TaskCompletionContext{CompletedAt: timeAt(7, 0)}
	res, err = EvaluateCondition(def, snapshot, &late, 0)
	if err != nil {
		t.Fatalf("EvaluateCondition() error = %v", err)
	}
	if res.Unlocked {
		t.Error("expected locked for completion after the hour")
	}
}

func TestEvaluateConditionBirthdayTask(t *testing.T) {
	def := &model.AchievementDefinition{ConditionType: model.ConditionBirthdayTask, Requirement: 1}
	snapshot := &model.UserAchievementProgress{BirthdayTasks: 1}

	// Counter satisfied but no birthday event: progress shows complete while
	// the unlock stays gated on the event flag.
	res, err := EvaluateCondition(def, snapshot, nil, 0)
	if err != nil {
		t.Fatalf("EvaluateCondition() error = %v", err)
	}
	if res.Unlocked {
		t.Error("expected locked without a birthday event")
	}
	if res.Progress != 1 {
		t.Errorf("Progress = %d, want 1", res.Progress)
	}

	event := dto.TaskCompletionContext{CompletedAt: timeAt(12, 0), IsBirthday: true}
	res, err = EvaluateCondition(def, snapshot, &event, 0)
	if err != nil {
		t.Fatalf("EvaluateCondition() error = %v", err)
	}
	if !res.Unlocked {
		t.Error("expected unlocked on a birthday completion")
	}
}

func TestEvaluateConditionCategoryStreak(t *testing.T) {
	detail, _ := json.Marshal(model.RequirementDetail{Category: "homework"})
	def := &model.AchievementDefinition{
		ConditionType:     model.ConditionCategoryStreak,
		Requirement:       5,
		RequirementDetail: detail,
	}
	// The category is validated but evaluation runs on the global best streak.
	snapshot := &model.UserAchievementProgress{MaxConsecutiveDays: 5}

	res, err := EvaluateCondition(def, snapshot, nil, 0)
	if err != nil {
		t.Fatalf("EvaluateCondition() error = %v", err)
	}
	if !res.Unlocked || res.Progress != 5 {
		t.Errorf("EvaluateCondition() = (%v, %d), want (true, 5)", res.Unlocked, res.Progress)
	}

	// Missing category fails validation before evaluation.
	bad := &model.AchievementDefinition{ConditionType: model.ConditionCategoryStreak, Requirement: 5}
	if _, err := EvaluateCondition(bad, snapshot, nil, 0); err == nil {
		t.Error("expected error for category_streak without a category")
	}
}

func TestEvaluateConditionStreakAnyTime(t *testing.T) {
	def := &model.AchievementDefinition{ConditionType: model.ConditionStreakAnyTime, Requirement: 14}
	// The snapshot's own streak fields are ignored for this condition.
	snapshot := &model.UserAchievementProgress{MaxConsecutiveDays: 30}

	res, err := EvaluateCondition(def, snapshot, nil, 7)
	if err != nil {
		t.Fatalf("EvaluateCondition() error = %v", err)
	}
	if res.Unlocked || res.Progress != 7 {
		t.Errorf("EvaluateCondition() = (%v, %d), want (false, 7)", res.Unlocked, res.Progress)
	}

	res, err = EvaluateCondition(def, snapshot, nil, 14)
	if err != nil {
		t.Fatalf("EvaluateCondition() error = %v", err)
	}
	if !res.Unlocked {
		t.Error("expected unlocked once the avatar streak meets the requirement")
	}
}

func TestEvaluateConditionUnknownType(t *testing.T) {
	def := &model.AchievementDefinition{ConditionType: "does_not_exist", Requirement: 1}
	if _, err := EvaluateCondition(def, &model.UserAchievementProgress{}, nil, 0); err == nil {
		t.Error("expected error for unknown condition type")
	}
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
