package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDefinitionDetail(t *testing.T) {
	hour := 6

	tests := []struct {
		name    string
		def     AchievementDefinition
		wantErr bool
	}{
		{
			name: "threshold condition needs no detail",
			def:  AchievementDefinition{ID: "a1", ConditionType: ConditionTotalTasks},
		},
		{
			name: "category_tasks with category",
			def: AchievementDefinition{
				ID:                "a2",
				ConditionType:     ConditionCategoryTasks,
				RequirementDetail: json.RawMessage(`{"category":"kitchen"}`),
			},
		},
		{
			name:    "category_tasks without category",
			def:     AchievementDefinition{ID: "a3", ConditionType: ConditionCategoryTasks},
			wantErr: true,
		},
		{
			name:    "category_streak without category",
			def:     AchievementDefinition{ID: "a4", ConditionType: ConditionCategoryStreak},
			wantErr: true,
		},
		{
			name: "specific_time with hour",
			def: AchievementDefinition{
				ID:                "a5",
				ConditionType:     ConditionSpecificTime,
				RequirementDetail: mustDetail(RequirementDetail{Hour: &hour}),
			},
		},
		{
			name:    "specific_time without hour",
			def:     AchievementDefinition{ID: "a6", ConditionType: ConditionSpecificTime},
			wantErr: true,
		},
		{
			name: "malformed detail payload",
			def: AchievementDefinition{
				ID:                "a7",
				ConditionType:     ConditionTotalTasks,
				RequirementDetail: json.RawMessage(`{broken`),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.def.Detail()
			if (err != nil) != tt.wantErr {
				t.Errorf("Detail() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPrivilegeList(t *testing.T) {
	def := AchievementDefinition{Privileges: json.RawMessage(`["pick_movie","stay_up_late"]`)}
	got := def.PrivilegeList()
	if len(got) != 2 || got[0] != "pick_movie" || got[1] != "stay_up_late" {
		t.Errorf("PrivilegeList() = %v", got)
	}

	empty := AchievementDefinition{}
	if got := empty.PrivilegeList(); len(got) != 0 {
		t.Errorf("PrivilegeList() on empty = %v, want none", got)
	}

	bad := AchievementDefinition{Privileges: json.RawMessage(`{not an array}`)}
	if got := bad.PrivilegeList(); got != nil {
		t.Errorf("PrivilegeList() on malformed = %v, want nil", got)
	}
}

func TestUserIsBirthday(t *testing.T) {
	birthday := date(2015, 6, 21)
	u := &User{Birthday: &birthday}

	if !u.IsBirthday(date(2026, 6, 21)) {
		t.Error("expected birthday match on same month and day")
	}
	if u.IsBirthday(date(2026, 6, 22)) {
		t.Error("expected no match on a different day")
	}

	none := &User{}
	if none.IsBirthday(date(2026, 6, 21)) {
		t.Error("expected no match without a birthday on file")
	}
}

func mustDetail(d RequirementDetail) json.RawMessage {
	raw, _ := json.Marshal(d)
	return raw
}

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
}
