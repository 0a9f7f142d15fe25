package services

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/famquest/famquest_api/dto"
	"github.com/famquest/famquest_api/model"
	"github.com/famquest/famquest_api/shared"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type FamilyService struct {
	context.DefaultService

	sqlSvc *PostgresService
}

const FAMILY_SVC = "family_svc"

const inviteCodeLength = 8
const inviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func (svc FamilyService) Id() string {
	return FAMILY_SVC
}

func (svc *FamilyService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *FamilyService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	return nil
}

// CreateFamily creates a family owned by the calling parent and moves them into
// it. A user can only belong to one family at a time.
func (svc *FamilyService) CreateFamily(ownerID string, req dto.CreateFamilyRequest) (*dto.FamilyResponse, error) {
	owner, err := svc.sqlSvc.Users().GetUser(ownerID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "User not found")
	}
	if owner.FamilyID != nil {
		return nil, shared.NewConflictError(nil, "You already belong to a family")
	}

	code, err := svc.generateInviteCode()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to generate invite code")
	}

	family := &model.Family{
		Name:       req.Name,
		InviteCode: code,
		OwnerID:    ownerID,
	}
	if err := svc.sqlSvc.Families().CreateFamily(family); err != nil {
		return nil, shared.NewInternalError(err, "Failed to create family")
	}

	if err := svc.sqlSvc.Users().SetFamily(ownerID, family.ID); err != nil {
		return nil, shared.NewInternalError(err, "Failed to join created family")
	}

	resp := toFamilyResponse(family, true)
	return &resp, nil
}

// JoinFamily adds the caller to the family matching the invite code.
func (svc *FamilyService) JoinFamily(userID string, req dto.JoinFamilyRequest) (*dto.FamilyResponse, error) {
	user, err := svc.sqlSvc.Users().GetUser(userID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "User not found")
	}
	if user.FamilyID != nil {
		return nil, shared.NewConflictError(nil, "You already belong to a family")
	}

	family, err := svc.sqlSvc.Families().GetFamilyByInviteCode(req.InviteCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(nil, "Invalid invite code")
		}
		return nil, shared.NewInternalError(err, "Failed to look up invite code")
	}

	if err := svc.sqlSvc.Users().SetFamily(userID, family.ID); err != nil {
		return nil, shared.NewInternalError(err, "Failed to join family")
	}

	log.WithFields(log.Fields{
		"user_id":   userID,
		"family_id": family.ID,
	}).Info("User joined family")

	resp := toFamilyResponse(family, user.Role == model.RoleParent)
	return &resp, nil
}

// GetFamilyDetail returns the family with its member roster. The invite code is
// only included for parents.
func (svc *FamilyService) GetFamilyDetail(familyID, viewerRole string) (*dto.FamilyDetailResponse, error) {
	family, err := svc.sqlSvc.Families().GetFamily(familyID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Family not found")
	}

	members, err := svc.sqlSvc.Users().GetFamilyMembers(familyID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load family members")
	}

	items := make([]dto.FamilyMemberResponse, 0, len(members))
	for i := range members {
		member := dto.FamilyMemberResponse{
			ID:          members[i].ID,
			Username:    members[i].Username,
			Role:        members[i].Role,
			HonorPoints: members[i].HonorPoints,
		}
		if avatar, err := svc.sqlSvc.Rewards().GetAvatar(members[i].ID); err == nil {
			member.Level = avatar.Level
			member.TotalXP = avatar.TotalXP
		}
		items = append(items, member)
	}

	showCode := viewerRole == model.RoleParent || viewerRole == model.RoleAdmin
	return &dto.FamilyDetailResponse{
		Family:  toFamilyResponse(family, showCode),
		Members: items,
	}, nil
}

// RegenerateInviteCode replaces the invite code, invalidating the old one. Only
// the family owner may rotate it.
func (svc *FamilyService) RegenerateInviteCode(familyID, callerID string) (*dto.FamilyResponse, error) {
	family, err := svc.sqlSvc.Families().GetFamily(familyID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Family not found")
	}
	if family.OwnerID != callerID {
		return nil, shared.NewForbiddenError(nil, "Only the family owner can rotate the invite code")
	}

	code, err := svc.generateInviteCode()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to generate invite code")
	}
	if err := svc.sqlSvc.Families().UpdateInviteCode(familyID, code); err != nil {
		return nil, shared.NewInternalError(err, "Failed to update invite code")
	}

	family.InviteCode = code
	resp := toFamilyResponse(family, true)
	return &resp, nil
}

// generateInviteCode draws 8 characters from an alphabet with the easily
// confused ones (0, O, 1, I) removed.
func (svc *FamilyService) generateInviteCode() (string, error) {
	code := make([]byte, inviteCodeLength)
	alphabetSize := big.NewInt(int64(len(inviteCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		code[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

func toFamilyResponse(family *model.Family, includeCode bool) dto.FamilyResponse {
	resp := dto.FamilyResponse{
		ID:        family.ID,
		Name:      family.Name,
		OwnerID:   family.OwnerID,
		CreatedAt: family.CreatedAt,
	}
	if includeCode {
		resp.InviteCode = family.InviteCode
	}
	return resp
}
