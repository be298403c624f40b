package mapper

import (
	"math/big"

	"quad-backend/internal/features/account/models"
)

func amountString(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}

func ToProfileResponse(p *models.Profile) *models.ProfileResponse {
	if p == nil {
		return nil
	}
	return &models.ProfileResponse{
		Address:      p.Identity.String(),
		Username:     p.Username,
		Email:        p.Email,
		PhoneNumber:  p.PhoneNumber,
		Bio:          p.Bio,
		Category:     uint8(p.Category),
		CategoryName: p.Category.String(),
		Registered:   p.Registered,
		Balance:      amountString(p.Balance),
		RegisteredAt: p.RegisteredAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func ToStatsResponse(s *models.Stats) *models.StatsResponse {
	return &models.StatsResponse{
		TotalDeposited:  amountString(s.TotalDeposited),
		RegisteredCount: s.RegisteredCount,
	}
}

func ToEntryResponse(e models.Entry) models.EntryResponse {
	resp := models.EntryResponse{
		ID:   e.ID,
		Kind: string(e.Kind),
		From: e.From.String(),
		To:   e.To.String(),
		At:   e.At,
	}
	if e.Amount != nil {
		resp.Amount = e.Amount.String()
	}
	return resp
}

func ToJournalResponse(entries []models.Entry) *models.JournalResponse {
	items := make([]models.EntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, ToEntryResponse(e))
	}
	return &models.JournalResponse{Items: items, Total: len(items)}
}

func ToAuditResponse(r *models.AuditReport) *models.AuditResponse {
	return &models.AuditResponse{
		Accounts:       r.Accounts,
		BalanceSum:     amountString(r.BalanceSum),
		TotalDeposited: amountString(r.TotalDeposited),
		Drift:          r.Drift().String(),
		Consistent:     r.Consistent,
		CheckedAt:      r.CheckedAt,
	}
}
