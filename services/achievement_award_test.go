package services

import (
	"errors"
	"testing"

	"github.com/famquest/famquest_api/model"
)

type fakeAwardStore struct {
	definitions    []model.AchievementDefinition
	definitionsErr error
	progress       model.UserAchievementProgress
	earned         map[string]bool
	duplicate      bool
	createErr      error
	created        []string
}

func (f *fakeAwardStore) GetActiveDefinitions() ([]model.AchievementDefinition, error) {
	return f.definitions, f.definitionsErr
}

func (f *fakeAwardStore) GetOrCreateProgress(userID string) (*model.UserAchievementProgress, error) {
	progress := f.progress
	progress.UserID = userID
	return &progress, nil
}

func (f *fakeAwardStore) GetEarnedDefinitionIDs(userID string) (map[string]bool, error) {
	if f.earned == nil {
		return map[string]bool{}, nil
	}
	return f.earned, nil
}

func (f *fakeAwardStore) CreateUserAchievement(award *model.UserAchievement) (bool, error) {
	if f.createErr != nil {
		return false, f.createErr
	}
	if f.duplicate {
		return false, nil
	}
	f.created = append(f.created, award.AchievementID)
	return true, nil
}

type fakeAvatarReader struct {
	streak int
}

func (f fakeAvatarReader) GetAvatar(userID string) (*model.Avatar, error) {
	return &model.Avatar{UserID: userID, MaxConsecutiveDays: f.streak}, nil
}

type fakeCreditor struct {
	xpCredits    []int
	honorCredits []int
	xpFailures   int
}

func (f *fakeCreditor) CreditXP(userID string, points int) error {
	if f.xpFailures > 0 {
		f.xpFailures--
		return errors.New("wallet unavailable")
	}
	f.xpCredits = append(f.xpCredits, points)
	return nil
}

func (f *fakeCreditor) CreditHonorPoints(userID string, points int) error {
	f.honorCredits = append(f.honorCredits, points)
	return nil
}

func awardTestService(store *fakeAwardStore, creditor *fakeCreditor) *AchievementService {
	return &AchievementService{
		awards:  store,
		avatars: fakeAvatarReader{},
		credits: creditor,
	}
}

func tenChoresDefinition() model.AchievementDefinition {
	return model.AchievementDefinition{
		ID:            "ach-ten-chores",
		Name:          "Ten Chores",
		Dimension:     model.DimensionAccumulation,
		Level:         model.LevelBronze,
		ConditionType: model.ConditionTotalTasks,
		Requirement:   10,
		PointsReward:  50,
		HonorPoints:   5,
	}
}

func TestCheckAndAwardCreditsOncePerUnlock(t *testing.T) {
	store := &fakeAwardStore{
		definitions: []model.AchievementDefinition{
			tenChoresDefinition(),
			{
				ID:            "ach-point-hoarder",
				Name:          "Point Hoarder",
				Dimension:     model.DimensionAccumulation,
				Level:         model.LevelGold,
				ConditionType: model.ConditionTotalPoints,
				Requirement:   1000,
				PointsReward:  200,
			},
		},
		progress: model.UserAchievementProgress{TotalTasksCompleted: 10, TotalPointsEarned: 400},
	}
	creditor := &fakeCreditor{}
	svc := awardTestService(store, creditor)

	result := svc.CheckAndAward("child-1", nil)

	if len(result.NewAchievements) != 1 || result.NewAchievements[0].ID != "ach-ten-chores" {
		t.Fatalf("NewAchievements = %+v, want exactly ach-ten-chores", result.NewAchievements)
	}
	if len(store.created) != 1 || store.created[0] != "ach-ten-chores" {
		t.Errorf("created rows = %v, want [ach-ten-chores]", store.created)
	}
	if len(creditor.xpCredits) != 1 || creditor.xpCredits[0] != 50 {
		t.Errorf("xp credits = %v, want one credit of 50", creditor.xpCredits)
	}
	if len(creditor.honorCredits) != 1 || creditor.honorCredits[0] != 5 {
		t.Errorf("honor credits = %v, want one credit of 5", creditor.honorCredits)
	}
	if got := result.UpdatedProgress["ach-ten-chores"]; got != 10 {
		t.Errorf("UpdatedProgress[unlocked] = %d, want 10", got)
	}
	if got := result.UpdatedProgress["ach-point-hoarder"]; got != 400 {
		t.Errorf("UpdatedProgress[locked] = %d, want 400", got)
	}
}

func TestCheckAndAwardSwallowsInsertConflict(t *testing.T) {
	// A concurrent approval won the unique-index race: the insert reports
	// already-earned, and no credit may be issued for the lost race.
	store := &fakeAwardStore{
		definitions: []model.AchievementDefinition{tenChoresDefinition()},
		progress:    model.UserAchievementProgress{TotalTasksCompleted: 10},
		duplicate:   true,
	}
	creditor := &fakeCreditor{}
	svc := awardTestService(store, creditor)

	result := svc.CheckAndAward("child-1", nil)

	if len(result.NewAchievements) != 0 {
		t.Errorf("NewAchievements = %+v, want none on a lost insert race", result.NewAchievements)
	}
	if len(creditor.xpCredits) != 0 || len(creditor.honorCredits) != 0 {
		t.Errorf("credits issued on a lost race: xp=%v honor=%v", creditor.xpCredits, creditor.honorCredits)
	}
}

func TestCheckAndAwardSkipsEarnedDefinitions(t *testing.T) {
	store := &fakeAwardStore{
		definitions: []model.AchievementDefinition{tenChoresDefinition()},
		progress:    model.UserAchievementProgress{TotalTasksCompleted: 10},
		earned:      map[string]bool{"ach-ten-chores": true},
	}
	creditor := &fakeCreditor{}
	svc := awardTestService(store, creditor)

	result := svc.CheckAndAward("child-1", nil)

	if len(store.created) != 0 {
		t.Errorf("insert attempted for an already earned definition: %v", store.created)
	}
	if len(result.NewAchievements) != 0 {
		t.Errorf("NewAchievements = %+v, want none", result.NewAchievements)
	}
	if _, ok := result.UpdatedProgress["ach-ten-chores"]; ok {
		t.Error("earned definition reported progress, want it skipped entirely")
	}
	if len(creditor.xpCredits) != 0 || len(creditor.honorCredits) != 0 {
		t.Errorf("credits issued twice: xp=%v honor=%v", creditor.xpCredits, creditor.honorCredits)
	}
}

func TestCheckAndAwardAbsorbsInsertFailure(t *testing.T) {
	store := &fakeAwardStore{
		definitions: []model.AchievementDefinition{tenChoresDefinition()},
		progress:    model.UserAchievementProgress{TotalTasksCompleted: 10},
		createErr:   errors.New("connection reset by peer"),
	}
	creditor := &fakeCreditor{}
	svc := awardTestService(store, creditor)

	result := svc.CheckAndAward("child-1", nil)

	if result == nil {
		t.Fatal("CheckAndAward() = nil, want a result even when the insert fails")
	}
	if len(result.NewAchievements) != 0 {
		t.Errorf("NewAchievements = %+v, want none when the row was not created", result.NewAchievements)
	}
	if len(creditor.xpCredits) != 0 || len(creditor.honorCredits) != 0 {
		t.Errorf("credits issued without an unlock row: xp=%v honor=%v", creditor.xpCredits, creditor.honorCredits)
	}
}

func TestCheckAndAwardCatalogUnavailable(t *testing.T) {
	store := &fakeAwardStore{definitionsErr: errors.New("database is down")}
	svc := awardTestService(store, &fakeCreditor{})

	result := svc.CheckAndAward("child-1", nil)

	if result == nil {
		t.Fatal("CheckAndAward() = nil, want an empty result when the catalog is unavailable")
	}
	if len(result.NewAchievements) != 0 || len(result.UpdatedProgress) != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
}

func TestCheckAndAwardRetriesTransientCreditFailure(t *testing.T) {
	store := &fakeAwardStore{
		definitions: []model.AchievementDefinition{tenChoresDefinition()},
		progress:    model.UserAchievementProgress{TotalTasksCompleted: 10},
	}
	creditor := &fakeCreditor{xpFailures: 1}
	svc := awardTestService(store, creditor)

	result := svc.CheckAndAward("child-1", nil)

	if len(result.NewAchievements) != 1 {
		t.Fatalf("NewAchievements = %+v, want the unlock", result.NewAchievements)
	}
	if len(creditor.xpCredits) != 1 || creditor.xpCredits[0] != 50 {
		t.Errorf("xp credits = %v, want the retry to land one credit of 50", creditor.xpCredits)
	}
}

func TestCheckAndAwardKeepsAwardWhenCreditFails(t *testing.T) {
	// Both credit attempts fail: the unlock row stays and is reported, the
	// missing XP is a logged loss rather than a rollback.
	store := &fakeAwardStore{
		definitions: []model.AchievementDefinition{tenChoresDefinition()},
		progress:    model.UserAchievementProgress{TotalTasksCompleted: 10},
	}
	creditor := &fakeCreditor{xpFailures: 2}
	svc := awardTestService(store, creditor)

	result := svc.CheckAndAward("child-1", nil)

	if len(result.NewAchievements) != 1 || result.NewAchievements[0].ID != "ach-ten-chores" {
		t.Fatalf("NewAchievements = %+v, want the unlock despite the failed credit", result.NewAchievements)
	}
	if len(store.created) != 1 {
		t.Errorf("created rows = %v, want the unlock row kept", store.created)
	}
	if len(creditor.xpCredits) != 0 {
		t.Errorf("xp credits = %v, want none after both attempts failed", creditor.xpCredits)
	}
	if len(creditor.honorCredits) != 1 || creditor.honorCredits[0] != 5 {
		t.Errorf("honor credits = %v, want the honor payout unaffected", creditor.honorCredits)
	}
}
